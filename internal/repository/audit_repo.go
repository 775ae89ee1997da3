package repository

import (
	"context"

	"warehouse/internal/model"

	"gorm.io/gorm"
)

// AuditRepository is the append-only activity sink. The fulfillment core only
// writes entries; List exists for the back-office review endpoint.
type AuditRepository interface {
	Log(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, action string, page, limit int) ([]model.ActivityLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, action string, page, limit int) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ActivityLog{})
	if action != "" {
		db = db.Where("action = ?", action)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
