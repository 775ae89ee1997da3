package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdjustmentService resolves parked quantity increases. An increase created by
// EditFields sits PENDING until an operator confirms it (the stock arrives on
// the shelf) or rejects it (the edit was a mistake). Decreases never pass
// through here.
type AdjustmentService interface {
	List(ctx context.Context, status string, page, limit int) ([]model.StockAdjustment, int64, error)
	Confirm(ctx context.Context, actor Actor, id string) (*model.StockAdjustment, error)
	Reject(ctx context.Context, actor Actor, id string) (*model.StockAdjustment, error)
}

type adjustmentService struct {
	adjRepo      repository.AdjustmentRepository
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          Broadcaster
}

func NewAdjustmentService(
	adjRepo repository.AdjustmentRepository,
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub Broadcaster,
) AdjustmentService {
	return &adjustmentService{
		adjRepo:      adjRepo,
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

func (s *adjustmentService) List(ctx context.Context, status string, page, limit int) ([]model.StockAdjustment, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.adjRepo.List(ctx, status, page, limit)
}

func (s *adjustmentService) resolve(ctx context.Context, id string) (*model.StockAdjustment, error) {
	adjID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid adjustment id: %w", err)
	}
	adj, err := s.adjRepo.FindByIDForUpdate(ctx, adjID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock adjustment", Key: id}
		}
		return nil, fmt.Errorf("failed to load adjustment: %w", err)
	}
	if adj.Status != model.AdjustmentPending {
		return nil, fmt.Errorf("adjustment already resolved: %s", adj.Status)
	}
	return adj, nil
}

// Confirm applies the parked quantity increase to the ledger row. The target
// row may have shrunk since the request was made; the confirmed count wins
// because the operator is asserting what is physically on the shelf.
func (s *adjustmentService) Confirm(ctx context.Context, actor Actor, id string) (*model.StockAdjustment, error) {
	var adj *model.StockAdjustment
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		adj, txErr = s.resolve(txCtx, id)
		if txErr != nil {
			return txErr
		}

		entry, txErr := s.stockRepo.FindByIDForUpdate(txCtx, adj.StockEntryID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "stock entry", Key: adj.StockEntryID.String()}
			}
			return fmt.Errorf("failed to load stock entry: %w", txErr)
		}

		now := time.Now()
		change := adj.ToQuantity - entry.Quantity
		entry.Quantity = adj.ToQuantity
		if txErr := s.stockRepo.UpdateQuantity(txCtx, entry.ID, entry.Quantity, now); txErr != nil {
			return fmt.Errorf("failed to update quantity: %w", txErr)
		}

		movement := &model.StockMovement{
			StockEntryID:   entry.ID,
			MovementType:   model.MovementIn,
			QuantityChange: change,
			QuantityAfter:  entry.Quantity,
			Reason:         "confirmed quantity adjustment",
		}
		if txErr := s.movementRepo.Create(txCtx, movement); txErr != nil {
			return fmt.Errorf("failed to record stock movement: %w", txErr)
		}

		adj.Status = model.AdjustmentConfirmed
		adj.ResolvedBy = actor.Name
		adj.ResolvedAt = &now
		if txErr := s.adjRepo.Update(txCtx, adj); txErr != nil {
			return fmt.Errorf("failed to update adjustment: %w", txErr)
		}

		detail := fmt.Sprintf("Confirmed quantity %d -> %d for %s", adj.FromQuantity, adj.ToQuantity, adj.EntryName)
		audit := auditEntry(actor, model.ActionConfirmAdjustment, adj.ID.String(), adj.EntryName, detail, adj)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(EventStockUpdated, adj)
	return adj, nil
}

func (s *adjustmentService) Reject(ctx context.Context, actor Actor, id string) (*model.StockAdjustment, error) {
	var adj *model.StockAdjustment
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		adj, txErr = s.resolve(txCtx, id)
		if txErr != nil {
			return txErr
		}

		now := time.Now()
		adj.Status = model.AdjustmentRejected
		adj.ResolvedBy = actor.Name
		adj.ResolvedAt = &now
		if txErr := s.adjRepo.Update(txCtx, adj); txErr != nil {
			return fmt.Errorf("failed to update adjustment: %w", txErr)
		}

		detail := fmt.Sprintf("Rejected quantity %d -> %d for %s", adj.FromQuantity, adj.ToQuantity, adj.EntryName)
		audit := auditEntry(actor, model.ActionRejectAdjustment, adj.ID.String(), adj.EntryName, detail, nil)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}
