package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyJob rejects finishing a picking session with zero items.
var ErrEmptyJob = errors.New("job has no items: add at least one item before finishing picking")

// InvalidQuantityError rejects a non-positive quantity or a move/deduct
// quantity exceeding what the source row holds. Nothing is written.
type InvalidQuantityError struct {
	Quantity int
	Reason   string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: %s", e.Quantity, e.Reason)
}

// InsufficientStockError rejects a deduction that would drive a row negative.
type InsufficientStockError struct {
	StockEntryID uuid.UUID
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock on entry %s: requested %d, available %d",
		e.StockEntryID, e.Requested, e.Available)
}

// NotFoundError reports a missing resource. Reconciliation surfaces this when
// a pending deduction references a row that no longer exists, instead of
// silently skipping it.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// LocationUnavailableError rejects stock writes targeting a location whose
// availability flag is off.
type LocationUnavailableError struct {
	LocationCode string
}

func (e *LocationUnavailableError) Error() string {
	return fmt.Sprintf("location %s is not available for stock writes", e.LocationCode)
}
