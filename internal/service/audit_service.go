package service

import (
	"context"
	"encoding/json"

	"warehouse/internal/model"
	"warehouse/internal/repository"
)

type ActivityLogResponse struct {
	ID         string `json:"id"`
	User       string `json:"user"`
	Role       string `json:"role"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Detail     string `json:"detail"`
	Details    string `json:"details"`
	Time       string `json:"time"`
}

type AuditService interface {
	GetActivityLogs(ctx context.Context, action string, page, limit int) ([]ActivityLogResponse, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// GetActivityLogs retrieves paginated audit entries for back-office review.
func (s *auditService) GetActivityLogs(ctx context.Context, action string, page, limit int) ([]ActivityLogResponse, int64, error) {
	logs, total, err := s.auditRepo.List(ctx, action, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ActivityLogResponse, 0, len(logs))
	for _, l := range logs {
		user := "System"
		if l.User != nil {
			user = l.User.Username
		}
		res = append(res, ActivityLogResponse{
			ID:         l.ID.String(),
			User:       user,
			Role:       l.Role,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Detail:     l.Detail,
			Details:    l.Details,
			Time:       l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// auditEntry builds an ActivityLog attributed to the actor. payload, when
// non-nil, is serialized into the structured Details column.
func auditEntry(actor Actor, action, entityID, entityName, detail string, payload interface{}) *model.ActivityLog {
	entry := &model.ActivityLog{
		UserID:     actor.ID,
		Role:       actor.Role,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Detail:     detail,
	}
	if payload != nil {
		details, _ := json.Marshal(payload)
		entry.Details = string(details)
	}
	return entry
}
