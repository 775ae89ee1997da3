package service

import (
	"context"
	"testing"

	"warehouse/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobFixture struct {
	sessions  *SessionManager
	stockRepo *fakeStockRepo
	jobRepo   *fakeJobRepo
	auditRepo *fakeAuditRepo
	hub       *fakeBroadcaster
	svc       JobService
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		sessions:  NewSessionManager(),
		stockRepo: newFakeStockRepo(),
		jobRepo:   newFakeJobRepo(),
		auditRepo: &fakeAuditRepo{},
		hub:       &fakeBroadcaster{},
	}
	reconciler := NewReconciler(f.stockRepo, &fakeMovementRepo{}, f.auditRepo)
	f.svc = NewJobService(f.sessions, f.jobRepo, f.stockRepo, f.auditRepo, reconciler, fakeTxManager{}, f.hub)
	return f
}

func (f *jobFixture) seedStock(barcode string, qty int) {
	f.stockRepo.add(model.StockEntry{
		Name: "WIDGET", Barcode: barcode, Quantity: qty,
		LocationCode: "A1", ShelfNumber: "1", ASIN: "B000TEST",
	})
}

func (f *jobFixture) startWithItem(t *testing.T, barcode string, qty int) string {
	t.Helper()
	sess := f.svc.StartSession(testActor())
	_, err := f.svc.AddSessionItem(context.Background(), sess.ID, AddSessionItemRequest{
		Barcode: barcode, Quantity: qty, LocationCode: "A1", ShelfNumber: "1",
	})
	require.NoError(t, err)
	return sess.ID
}

func (f *jobFixture) finishedJob(t *testing.T, barcode string, qty int) *JobResponse {
	t.Helper()
	sessID := f.startWithItem(t, barcode, qty)
	job, err := f.svc.FinishPicking(context.Background(), testActor(), sessID)
	require.NoError(t, err)
	return job
}

func TestAddSessionItemResolvesStock(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)

	sessID := f.startWithItem(t, "111", 3)

	sess, err := f.svc.GetSession(sessID)
	require.NoError(t, err)
	require.Len(t, sess.Items, 1)
	assert.Equal(t, "WIDGET", sess.Items[0].Name, "name resolved from the ledger row")
	assert.Equal(t, 3, sess.Items[0].Quantity)
	require.Len(t, sess.Pending, 1)
	assert.Equal(t, 3, sess.Pending[0].DeductedQuantity)

	// Nothing is deducted while the session is open.
	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 10, all[0].Quantity)
}

func TestAddSessionItemRejectsMissingOrShortStock(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 2)

	sess := f.svc.StartSession(testActor())

	_, err := f.svc.AddSessionItem(context.Background(), sess.ID, AddSessionItemRequest{
		Barcode: "999", Quantity: 1, LocationCode: "A1", ShelfNumber: "1",
	})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, err = f.svc.AddSessionItem(context.Background(), sess.ID, AddSessionItemRequest{
		Barcode: "111", Quantity: 5, LocationCode: "A1", ShelfNumber: "1",
	})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
}

func TestFinishPickingRejectsEmptySession(t *testing.T) {
	f := newJobFixture()
	sess := f.svc.StartSession(testActor())

	_, err := f.svc.FinishPicking(context.Background(), testActor(), sess.ID)
	require.ErrorIs(t, err, ErrEmptyJob)

	_, getErr := f.svc.GetSession(sess.ID)
	require.NoError(t, getErr, "failed finish keeps the session alive")
}

func TestFinishPickingCommitsDeductions(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)

	job := f.finishedJob(t, "111", 3)

	assert.Equal(t, model.JobStatusAwaitingPack, job.Status)
	require.NotNil(t, job.Picker)
	assert.Equal(t, "alice", *job.Picker)
	require.Len(t, job.Items, 1)
	assert.False(t, job.Items[0].Verified)

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 7, all[0].Quantity)

	assert.Equal(t, 1, f.auditRepo.countAction(model.ActionDeductStock), "exactly one deduction for a fully covered item")
	assert.Equal(t, 1, f.auditRepo.countAction(model.ActionFinishPicking))
	assert.Contains(t, f.hub.events, EventJobAwaitingPack)
}

func TestFinishPickingClosesSession(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	sessID := f.startWithItem(t, "111", 3)

	_, err := f.svc.FinishPicking(context.Background(), testActor(), sessID)
	require.NoError(t, err)

	_, err = f.svc.GetSession(sessID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestFinishPickingFailureKeepsSession(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	sessID := f.startWithItem(t, "111", 3)

	// Stock vanishes between picking and finishing.
	all, _ := f.stockRepo.ListAll(context.Background())
	require.NoError(t, f.stockRepo.Delete(context.Background(), all[0].ID))

	_, err := f.svc.FinishPicking(context.Background(), testActor(), sessID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	_, getErr := f.svc.GetSession(sessID)
	require.NoError(t, getErr, "session survives a failed commit")
}

func TestFinishPickingAppliesEditedItemQuantity(t *testing.T) {
	// Pending captured 3, operator edits the line to 5; the commit must
	// deduct 5 in total.
	f := newJobFixture()
	f.seedStock("111", 10)
	sessID := f.startWithItem(t, "111", 3)

	_, err := f.svc.UpdateSessionItem(context.Background(), sessID, UpdateJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1", NewQuantity: 5,
	})
	require.NoError(t, err)

	_, err = f.svc.FinishPicking(context.Background(), testActor(), sessID)
	require.NoError(t, err)

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 5, all[0].Quantity)
}

func TestRemoveSessionItemDropsPendingDeduction(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	f.stockRepo.add(model.StockEntry{Name: "GADGET", Barcode: "222", Quantity: 4, LocationCode: "A1", ShelfNumber: "1"})

	sessID := f.startWithItem(t, "111", 3)
	_, err := f.svc.AddSessionItem(context.Background(), sessID, AddSessionItemRequest{
		Barcode: "222", Quantity: 2, LocationCode: "A1", ShelfNumber: "1",
	})
	require.NoError(t, err)

	sess, err := f.svc.RemoveSessionItem(context.Background(), sessID, RemoveJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1",
	})
	require.NoError(t, err)
	require.Len(t, sess.Items, 1)
	require.Len(t, sess.Pending, 1)
	assert.Equal(t, "222", sess.Pending[0].Barcode)

	_, err = f.svc.FinishPicking(context.Background(), testActor(), sessID)
	require.NoError(t, err)

	entries, _ := f.stockRepo.FindByBarcode(context.Background(), "111")
	assert.Equal(t, 10, entries[0].Quantity, "removed line must not be deducted")
}

func TestAbandonSessionLeavesLedgerUntouched(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	sessID := f.startWithItem(t, "111", 3)

	require.NoError(t, f.svc.AbandonSession(sessID))

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 10, all[0].Quantity)

	_, err := f.svc.GetSession(sessID)
	require.Error(t, err)
}

func TestSetItemVerifiedOnlyWhileAwaitingPack(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3)

	require.NoError(t, f.svc.SetItemVerified(context.Background(), testActor(), job.ID, "111", true))

	got, err := f.svc.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Verified)

	// Unknown barcode
	err = f.svc.SetItemVerified(context.Background(), testActor(), job.ID, "999", true)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	// Completed jobs refuse verification changes.
	_, err = f.svc.CompletePacking(context.Background(), testActor(), job.ID)
	require.NoError(t, err)
	err = f.svc.SetItemVerified(context.Background(), testActor(), job.ID, "111", false)
	require.Error(t, err)
}

func TestUpdateItemAppliesQuantityDeltaToLedger(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3) // ledger now at 7

	updated, err := f.svc.UpdateItem(context.Background(), testActor(), job.ID, UpdateJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1", NewQuantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Items[0].Quantity)

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 5, all[0].Quantity, "extra 2 units deducted")

	// Shrinking the line restores units.
	updated, err = f.svc.UpdateItem(context.Background(), testActor(), job.ID, UpdateJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1", NewQuantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Items[0].Quantity)

	all, _ = f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 9, all[0].Quantity)
}

func TestUpdateItemRejectsOverdraft(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 4)
	job := f.finishedJob(t, "111", 3) // ledger now at 1

	_, err := f.svc.UpdateItem(context.Background(), testActor(), job.ID, UpdateJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1", NewQuantity: 6,
	})
	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	got, _ := f.svc.GetJob(context.Background(), job.ID)
	assert.Equal(t, 3, got.Items[0].Quantity, "failed edit leaves the item unchanged")
}

func TestRemoveItemRestoresStock(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3) // ledger now at 7

	got, err := f.svc.RemoveItem(context.Background(), testActor(), job.ID, RemoveJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1",
	})
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 10, all[0].Quantity, "removed item's units return to the ledger")
	assert.Equal(t, 1, f.auditRepo.countAction(model.ActionRemoveJobItem))
}

func TestRemoveItemRecreatesDeletedRow(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 3)
	job := f.finishedJob(t, "111", 3) // row drained to 0

	// The emptied row is deleted out-of-band.
	all, _ := f.stockRepo.ListAll(context.Background())
	require.NoError(t, f.stockRepo.Delete(context.Background(), all[0].ID))

	_, err := f.svc.RemoveItem(context.Background(), testActor(), job.ID, RemoveJobItemRequest{
		Barcode: "111", LocationCode: "A1", ShelfNumber: "1",
	})
	require.NoError(t, err)

	entries, _ := f.stockRepo.FindByBarcode(context.Background(), "111")
	require.Len(t, entries, 1, "a fresh row is created from the item's fields")
	assert.Equal(t, 3, entries[0].Quantity)
	assert.Equal(t, "WIDGET", entries[0].Name)
	assert.Equal(t, "A1", entries[0].LocationCode)
}

func TestCompletePackingTransitionsJob(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3)

	done, err := f.svc.CompletePacking(context.Background(), testActor(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, model.JobStatusCompleted, done.Status)
	require.NotNil(t, done.Packer)
	assert.Equal(t, "alice", *done.Packer)
	assert.Contains(t, f.hub.events, EventJobCompleted)

	// Completing twice is rejected.
	_, err = f.svc.CompletePacking(context.Background(), testActor(), job.ID)
	require.Error(t, err)
}

func TestCompletePackingAcceptsUnverifiedItems(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3)

	// No VerifyItem calls at all; completion still succeeds.
	_, err := f.svc.CompletePacking(context.Background(), testActor(), job.ID)
	require.NoError(t, err)
}

func TestDeleteJobDoesNotReverseLedger(t *testing.T) {
	f := newJobFixture()
	f.seedStock("111", 10)
	job := f.finishedJob(t, "111", 3) // ledger now at 7

	require.NoError(t, f.svc.DeleteJob(context.Background(), testActor(), job.ID))

	_, err := f.svc.GetJob(context.Background(), job.ID)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	all, _ := f.stockRepo.ListAll(context.Background())
	assert.Equal(t, 7, all[0].Quantity, "committed deductions stay committed")
	assert.Equal(t, 1, f.auditRepo.countAction(model.ActionDeleteJob))
}
