package service

import (
	"context"
	"testing"

	"warehouse/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdjustmentFixture() (*fakeStockRepo, *fakeAdjustmentRepo, *fakeMovementRepo, *fakeAuditRepo, AdjustmentService) {
	stockRepo := newFakeStockRepo()
	adjRepo := newFakeAdjustmentRepo()
	movementRepo := &fakeMovementRepo{}
	auditRepo := &fakeAuditRepo{}
	svc := NewAdjustmentService(adjRepo, stockRepo, movementRepo, auditRepo, fakeTxManager{}, &fakeBroadcaster{})
	return stockRepo, adjRepo, movementRepo, auditRepo, svc
}

func TestConfirmAppliesRequestedQuantity(t *testing.T) {
	stockRepo, adjRepo, movementRepo, auditRepo, svc := newAdjustmentFixture()
	entryID := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	adj := &model.StockAdjustment{
		StockEntryID: entryID, EntryName: "WIDGET",
		FromQuantity: 10, ToQuantity: 15,
		Status: model.AdjustmentPending, RequestedBy: "alice",
	}
	require.NoError(t, adjRepo.Create(context.Background(), adj))

	resolved, err := svc.Confirm(context.Background(), Actor{Name: "bob", Role: "manager"}, adj.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.AdjustmentConfirmed, resolved.Status)
	assert.Equal(t, "bob", resolved.ResolvedBy)
	require.NotNil(t, resolved.ResolvedAt)

	entry, _ := stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 15, entry.Quantity)

	require.Len(t, movementRepo.movements, 1)
	assert.Equal(t, model.MovementIn, movementRepo.movements[0].MovementType)
	assert.Equal(t, 5, movementRepo.movements[0].QuantityChange)
	assert.Equal(t, 1, auditRepo.countAction(model.ActionConfirmAdjustment))
}

func TestConfirmedCountWinsOverInterveningChanges(t *testing.T) {
	// The row shrank between request and confirmation; the confirmed count is
	// what the operator sees on the shelf, so it wins.
	stockRepo, adjRepo, movementRepo, _, svc := newAdjustmentFixture()
	entryID := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 6, LocationCode: "A1", ShelfNumber: "1"})

	adj := &model.StockAdjustment{
		StockEntryID: entryID, EntryName: "WIDGET",
		FromQuantity: 10, ToQuantity: 15,
		Status: model.AdjustmentPending, RequestedBy: "alice",
	}
	require.NoError(t, adjRepo.Create(context.Background(), adj))

	_, err := svc.Confirm(context.Background(), Actor{Name: "bob", Role: "manager"}, adj.ID.String())
	require.NoError(t, err)

	entry, _ := stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 15, entry.Quantity)
	assert.Equal(t, 9, movementRepo.movements[0].QuantityChange, "movement records the actual change")
}

func TestRejectLeavesStockUntouched(t *testing.T) {
	stockRepo, adjRepo, movementRepo, auditRepo, svc := newAdjustmentFixture()
	entryID := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	adj := &model.StockAdjustment{
		StockEntryID: entryID, EntryName: "WIDGET",
		FromQuantity: 10, ToQuantity: 15,
		Status: model.AdjustmentPending, RequestedBy: "alice",
	}
	require.NoError(t, adjRepo.Create(context.Background(), adj))

	resolved, err := svc.Reject(context.Background(), Actor{Name: "bob", Role: "manager"}, adj.ID.String())
	require.NoError(t, err)

	assert.Equal(t, model.AdjustmentRejected, resolved.Status)

	entry, _ := stockRepo.FindByID(context.Background(), entryID)
	assert.Equal(t, 10, entry.Quantity)
	assert.Empty(t, movementRepo.movements)
	assert.Equal(t, 1, auditRepo.countAction(model.ActionRejectAdjustment))
}

func TestResolveRejectsAlreadyResolved(t *testing.T) {
	stockRepo, adjRepo, _, _, svc := newAdjustmentFixture()
	entryID := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	adj := &model.StockAdjustment{
		StockEntryID: entryID, EntryName: "WIDGET",
		FromQuantity: 10, ToQuantity: 15,
		Status: model.AdjustmentPending, RequestedBy: "alice",
	}
	require.NoError(t, adjRepo.Create(context.Background(), adj))

	_, err := svc.Reject(context.Background(), Actor{Name: "bob", Role: "manager"}, adj.ID.String())
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), Actor{Name: "bob", Role: "manager"}, adj.ID.String())
	require.Error(t, err, "a resolved adjustment cannot be confirmed")
}

func TestResolveMissingAdjustment(t *testing.T) {
	_, _, _, _, svc := newAdjustmentFixture()

	_, err := svc.Confirm(context.Background(), Actor{Name: "bob", Role: "manager"}, uuid.NewString())
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
