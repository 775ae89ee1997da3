package service

import (
	"context"
	"testing"
	"time"

	"warehouse/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture() (*fakeStockRepo, *fakeLocationRepo, *fakeMovementRepo, *fakeAdjustmentRepo, *fakeAuditRepo, *fakeBroadcaster, LedgerService) {
	stockRepo := newFakeStockRepo()
	locationRepo := newFakeLocationRepo()
	movementRepo := &fakeMovementRepo{}
	adjRepo := newFakeAdjustmentRepo()
	auditRepo := &fakeAuditRepo{}
	hub := &fakeBroadcaster{}
	svc := NewLedgerService(stockRepo, locationRepo, movementRepo, adjRepo, auditRepo, fakeTxManager{}, hub)
	return stockRepo, locationRepo, movementRepo, adjRepo, auditRepo, hub, svc
}

func testActor() Actor {
	return Actor{Name: "alice", Role: "staff"}
}

func TestAddStockCreatesEntry(t *testing.T) {
	stockRepo, _, movementRepo, _, auditRepo, hub, svc := newLedgerFixture()

	entry, err := svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name:         "widget",
		Quantity:     10,
		Barcode:      "111",
		LocationCode: "A1",
		ShelfNumber:  "3",
	})
	require.NoError(t, err)

	assert.Equal(t, "WIDGET", entry.Name, "names are stored uppercase")
	assert.Equal(t, 10, entry.Quantity)
	assert.Equal(t, model.StockStatusPending, entry.Status)
	assert.Equal(t, model.FulfillmentFBA, entry.FulfillmentType)

	all, _ := stockRepo.ListAll(context.Background())
	require.Len(t, all, 1)

	require.Len(t, movementRepo.movements, 1)
	assert.Equal(t, model.MovementIn, movementRepo.movements[0].MovementType)
	assert.Equal(t, 1, auditRepo.countAction(model.ActionAddStock))
	assert.Contains(t, hub.events, EventStockUpdated)
}

func TestAddStockRejectsInvalidInput(t *testing.T) {
	_, _, _, _, _, _, svc := newLedgerFixture()

	_, err := svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name: "widget", Quantity: 0, LocationCode: "A1", ShelfNumber: "0",
	})
	var invalidQty *InvalidQuantityError
	require.ErrorAs(t, err, &invalidQty)

	_, err = svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name: "widget", Quantity: 5, LocationCode: "Z9", ShelfNumber: "0",
	})
	require.Error(t, err, "unknown location code must be rejected")

	_, err = svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name: "widget", Quantity: 5, LocationCode: "A1", ShelfNumber: "99",
	})
	require.Error(t, err, "shelf out of range must be rejected")
}

func TestAddStockRejectsUnavailableLocation(t *testing.T) {
	_, locationRepo, _, _, _, _, svc := newLedgerFixture()
	require.NoError(t, locationRepo.Upsert(context.Background(), &model.Location{LocationCode: "B1", IsAvailable: false}))

	_, err := svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name: "widget", Quantity: 5, LocationCode: "B1", ShelfNumber: "0",
	})
	var unavailable *LocationUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "B1", unavailable.LocationCode)
}

func TestAddStockCleansUpEmptiedRows(t *testing.T) {
	stockRepo, _, _, _, _, _, svc := newLedgerFixture()
	stockRepo.add(model.StockEntry{Name: "WIDGET", Barcode: "111", Quantity: 0, LocationCode: "A1", ShelfNumber: "1"})

	_, err := svc.AddStock(context.Background(), testActor(), AddStockRequest{
		Name: "widget", Quantity: 4, Barcode: "111", LocationCode: "A1", ShelfNumber: "3",
	})
	require.NoError(t, err)

	all, _ := stockRepo.ListAll(context.Background())
	require.Len(t, all, 1, "the emptied row sharing the barcode is removed")
	assert.Equal(t, 4, all[0].Quantity)
}

func TestDeductRejectsInsufficientStock(t *testing.T) {
	stockRepo, _, _, _, _, _, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 3, LocationCode: "A1", ShelfNumber: "1"})

	_, err := svc.Deduct(context.Background(), testActor(), id.String(), 5, "order")
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Available)

	entry, _ := stockRepo.FindByID(context.Background(), id)
	assert.Equal(t, 3, entry.Quantity, "failed deduction must not change the row")
}

func TestDeductUpdatesQuantityAndMovement(t *testing.T) {
	stockRepo, _, movementRepo, _, _, _, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	entry, err := svc.Deduct(context.Background(), testActor(), id.String(), 4, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 6, entry.Quantity)

	require.Len(t, movementRepo.movements, 1)
	assert.Equal(t, -4, movementRepo.movements[0].QuantityChange)
	assert.Equal(t, 6, movementRepo.movements[0].QuantityAfter)
}

func TestEditFieldsItemizedDiff(t *testing.T) {
	stockRepo, _, _, _, auditRepo, _, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{
		Name: "WIDGET", Quantity: 5, Price: decimal.NewFromFloat(3.99),
		Unit: "pc", LocationCode: "A1", ShelfNumber: "1",
	})

	newPrice := decimal.NewFromFloat(4.49)
	newUnit := "box"
	result, err := svc.EditFields(context.Background(), testActor(), id.String(), EditStockRequest{
		Price: &newPrice,
		Unit:  &newUnit,
	})
	require.NoError(t, err)

	require.Len(t, result.Changes, 2)
	fields := []string{result.Changes[0].Field, result.Changes[1].Field}
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "unit")
	assert.Equal(t, 1, auditRepo.countAction(model.ActionEditStock))
}

func TestEditFieldsUnchangedValueProducesNoDiff(t *testing.T) {
	stockRepo, _, _, _, auditRepo, hub, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 5, Unit: "pc", LocationCode: "A1", ShelfNumber: "1"})

	sameUnit := "pc"
	result, err := svc.EditFields(context.Background(), testActor(), id.String(), EditStockRequest{Unit: &sameUnit})
	require.NoError(t, err)

	assert.Empty(t, result.Changes)
	assert.Equal(t, 0, auditRepo.countAction(model.ActionEditStock))
	assert.Empty(t, hub.events, "no-op edit must not broadcast")
}

func TestEditFieldsQuantityDecreaseCommitsImmediately(t *testing.T) {
	stockRepo, _, movementRepo, adjRepo, _, _, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	newQty := 6
	result, err := svc.EditFields(context.Background(), testActor(), id.String(), EditStockRequest{Quantity: &newQty})
	require.NoError(t, err)

	assert.Equal(t, 6, result.Entry.Quantity)
	assert.Nil(t, result.PendingAdjustment)

	entry, _ := stockRepo.FindByID(context.Background(), id)
	assert.Equal(t, 6, entry.Quantity)

	require.Len(t, movementRepo.movements, 1)
	assert.Equal(t, -4, movementRepo.movements[0].QuantityChange)

	pending, _, _ := adjRepo.List(context.Background(), model.AdjustmentPending, 1, 10)
	assert.Empty(t, pending)
}

func TestEditFieldsQuantityIncreaseParksAdjustment(t *testing.T) {
	stockRepo, _, _, adjRepo, auditRepo, hub, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 10, LocationCode: "A1", ShelfNumber: "1"})

	newQty := 15
	result, err := svc.EditFields(context.Background(), testActor(), id.String(), EditStockRequest{Quantity: &newQty})
	require.NoError(t, err)

	require.NotNil(t, result.PendingAdjustment)
	assert.Equal(t, 10, result.PendingAdjustment.FromQuantity)
	assert.Equal(t, 15, result.PendingAdjustment.ToQuantity)
	assert.Equal(t, model.AdjustmentPending, result.PendingAdjustment.Status)

	entry, _ := stockRepo.FindByID(context.Background(), id)
	assert.Equal(t, 10, entry.Quantity, "increase must not apply until confirmed")

	pending, _, _ := adjRepo.List(context.Background(), model.AdjustmentPending, 1, 10)
	assert.Len(t, pending, 1)
	assert.Equal(t, 1, auditRepo.countAction(model.ActionRequestAdjustment))
	assert.Contains(t, hub.events, EventAdjustmentPending)
}

func TestLocationSummaryMergesByIdentity(t *testing.T) {
	stockRepo, _, _, _, _, _, svc := newLedgerFixture()

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	stockRepo.add(model.StockEntry{Name: "WIDGET", Barcode: "111", LocationCode: "A1", ShelfNumber: "1", Quantity: 5, LastUpdated: older})
	stockRepo.add(model.StockEntry{Name: "WIDGET", Barcode: "111", LocationCode: "A1", ShelfNumber: "1", Quantity: 3, LastUpdated: newer})
	stockRepo.add(model.StockEntry{Name: "WIDGET", Barcode: "111", LocationCode: "B1", ShelfNumber: "2", Quantity: 7, LastUpdated: older})

	summary, err := svc.LocationSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, summary, 2, "same identity merges, different shelf stays separate")

	var merged *StockSummaryRow
	for i := range summary {
		if summary[i].LocationCode == "A1" {
			merged = &summary[i]
		}
	}
	require.NotNil(t, merged)
	assert.Equal(t, 8, merged.Quantity, "quantities sum across rows")
	assert.Equal(t, 2, merged.Rows)
	assert.WithinDuration(t, newer, merged.LastUpdated, time.Second, "lastUpdated is the most recent")
}

func TestDeleteEntryAudits(t *testing.T) {
	stockRepo, _, _, _, auditRepo, _, svc := newLedgerFixture()
	id := stockRepo.add(model.StockEntry{Name: "WIDGET", Quantity: 5, LocationCode: "A1", ShelfNumber: "1"})

	require.NoError(t, svc.DeleteEntry(context.Background(), testActor(), id.String()))

	_, err := stockRepo.FindByID(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, 1, auditRepo.countAction(model.ActionDeleteStock))
}
