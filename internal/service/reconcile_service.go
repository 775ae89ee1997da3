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

// itemKey is the identity a job item resolves ledger rows by.
type itemKey struct {
	Barcode      string
	LocationCode string
	ShelfNumber  string
}

// ReconcileResult reports what a finish-picking commit deducted. Covered maps
// each item identity to the quantity already applied against the ledger, which
// makes a repeated sweep a no-op.
type ReconcileResult struct {
	TotalDeducted int
	EntriesTouched int
	Covered map[itemKey]int
}

// Reconciler translates a session's accumulated pending deductions into
// per-row ledger deductions, then sweeps the final item list for drift
// (items whose quantity was edited after their pending update was recorded).
// Callers run it inside a transaction; any missing row or insufficiency aborts
// the whole commit.
type Reconciler interface {
	Reconcile(ctx context.Context, actor Actor, jobID uuid.UUID, pending []PendingStockUpdate, items []model.JobItem) (*ReconcileResult, error)
	Sweep(ctx context.Context, actor Actor, jobID uuid.UUID, items []model.JobItem, covered map[itemKey]int) (int, error)
}

type reconciler struct {
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
}

func NewReconciler(
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
) Reconciler {
	return &reconciler{stockRepo: stockRepo, movementRepo: movementRepo, auditRepo: auditRepo}
}

// Reconcile applies the pending deductions in accumulation order, then runs
// the drift sweep. Pending updates targeting the same row have already been
// summed by the session; the defensive aggregation here keeps that invariant
// even for callers that build the list by hand.
func (r *reconciler) Reconcile(ctx context.Context, actor Actor, jobID uuid.UUID, pending []PendingStockUpdate, items []model.JobItem) (*ReconcileResult, error) {
	type rowDeduction struct {
		update PendingStockUpdate
	}
	order := make([]uuid.UUID, 0, len(pending))
	byRow := make(map[uuid.UUID]*rowDeduction, len(pending))
	for _, p := range pending {
		if existing, ok := byRow[p.StockEntryID]; ok {
			existing.update.DeductedQuantity += p.DeductedQuantity
			continue
		}
		cp := p
		byRow[p.StockEntryID] = &rowDeduction{update: cp}
		order = append(order, p.StockEntryID)
	}

	result := &ReconcileResult{Covered: make(map[itemKey]int)}

	for _, id := range order {
		p := byRow[id].update

		entry, err := r.stockRepo.FindByIDForUpdate(ctx, p.StockEntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Resource: "stock entry", Key: p.StockEntryID.String()}
			}
			return nil, fmt.Errorf("failed to load stock entry: %w", err)
		}

		if err := r.deduct(ctx, actor, jobID, entry, p.DeductedQuantity, p.Reason, p.StoreName); err != nil {
			return nil, err
		}

		key := itemKey{Barcode: entry.Barcode, LocationCode: p.LocationCode, ShelfNumber: p.ShelfNumber}
		result.Covered[key] += p.DeductedQuantity
		result.TotalDeducted += p.DeductedQuantity
		result.EntriesTouched++
	}

	swept, err := r.Sweep(ctx, actor, jobID, items, result.Covered)
	if err != nil {
		return nil, err
	}
	result.TotalDeducted += swept

	return result, nil
}

// Sweep covers every item whose intent was not (fully) captured as a pending
// update, deducting the missing delta from rows resolved by
// (barcode, location, shelf). Items already covered are skipped, so running
// the sweep again with the same coverage map deducts nothing.
func (r *reconciler) Sweep(ctx context.Context, actor Actor, jobID uuid.UUID, items []model.JobItem, covered map[itemKey]int) (int, error) {
	total := 0
	for i := range items {
		item := &items[i]
		key := itemKey{Barcode: item.Barcode, LocationCode: item.LocationCode, ShelfNumber: item.ShelfNumber}

		delta := item.Quantity - covered[key]
		if delta <= 0 {
			continue
		}

		entries, err := r.stockRepo.FindAtLocation(ctx, item.Barcode, item.LocationCode, item.ShelfNumber)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve stock for %s at %s/%s: %w", item.Barcode, item.LocationCode, item.ShelfNumber, err)
		}
		if len(entries) == 0 {
			return 0, &NotFoundError{
				Resource: "stock entry",
				Key:      fmt.Sprintf("%s at %s/%s", item.Barcode, item.LocationCode, item.ShelfNumber),
			}
		}

		available := 0
		for i := range entries {
			available += entries[i].Quantity
		}
		if delta > available {
			return 0, &InsufficientStockError{StockEntryID: entries[0].ID, Requested: delta, Available: available}
		}

		remaining := delta
		for i := range entries {
			if remaining == 0 {
				break
			}
			entry := &entries[i]
			take := remaining
			if take > entry.Quantity {
				take = entry.Quantity
			}
			if take == 0 {
				continue
			}
			if err := r.deduct(ctx, actor, jobID, entry, take, item.Reason, item.StoreName); err != nil {
				return 0, err
			}
			remaining -= take
		}

		covered[key] += delta
		total += delta
	}
	return total, nil
}

// deduct applies one ledger deduction plus its movement record and audit entry.
// The entry must already be locked by the caller's transaction.
func (r *reconciler) deduct(ctx context.Context, actor Actor, jobID uuid.UUID, entry *model.StockEntry, qty int, reason, storeName string) error {
	if qty > entry.Quantity {
		return &InsufficientStockError{StockEntryID: entry.ID, Requested: qty, Available: entry.Quantity}
	}

	now := time.Now()
	entry.Quantity -= qty
	entry.LastUpdated = now
	if err := r.stockRepo.UpdateQuantity(ctx, entry.ID, entry.Quantity, now); err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}

	movement := &model.StockMovement{
		StockEntryID:   entry.ID,
		JobID:          &jobID,
		MovementType:   model.MovementOut,
		QuantityChange: -qty,
		QuantityAfter:  entry.Quantity,
		Reason:         reason,
	}
	if err := r.movementRepo.Create(ctx, movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}

	detail := fmt.Sprintf("Picked %d x %s", qty, entry.Name)
	if reason != "" {
		detail += fmt.Sprintf(" (%s)", reason)
	}
	if storeName != "" {
		detail += " for " + storeName
	}
	audit := auditEntry(actor, model.ActionDeductStock, entry.ID.String(), entry.Name, detail, map[string]interface{}{
		"job_id":   jobID.String(),
		"quantity": qty,
		"reason":   reason,
		"store":    storeName,
	})
	if err := r.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
