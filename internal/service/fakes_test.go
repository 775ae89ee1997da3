package service

import (
	"context"
	"time"

	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stand-ins for the gorm-backed repositories. They keep insertion
// order so oldest-first draining behaves like the real queries.

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeBroadcaster struct {
	events []string
}

func (b *fakeBroadcaster) BroadcastEvent(event string, data interface{}) {
	b.events = append(b.events, event)
}

type fakeStockRepo struct {
	order   []uuid.UUID
	entries map[uuid.UUID]*model.StockEntry
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{entries: make(map[uuid.UUID]*model.StockEntry)}
}

func (r *fakeStockRepo) add(entry model.StockEntry) uuid.UUID {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	cp := entry
	r.entries[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return cp.ID
}

func (r *fakeStockRepo) Create(ctx context.Context, entry *model.StockEntry) error {
	entry.ID = r.add(*entry)
	return nil
}

func (r *fakeStockRepo) Update(ctx context.Context, entry *model.StockEntry) error {
	if _, ok := r.entries[entry.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *fakeStockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeStockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeStockRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockEntry, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeStockRepo) FindByBarcode(ctx context.Context, barcode string) ([]model.StockEntry, error) {
	var out []model.StockEntry
	for _, id := range r.order {
		if e := r.entries[id]; e.Barcode == barcode {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindAtLocation(ctx context.Context, barcode, locationCode, shelfNumber string) ([]model.StockEntry, error) {
	var out []model.StockEntry
	for _, id := range r.order {
		e := r.entries[id]
		if e.Barcode == barcode && e.LocationCode == locationCode && e.ShelfNumber == shelfNumber {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) FindByMergeKey(ctx context.Context, key model.MergeKey) (*model.StockEntry, error) {
	for _, id := range r.order {
		e := r.entries[id]
		if e.Key() == key {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStockRepo) List(ctx context.Context, filter repository.StockFilter, page, limit int) ([]model.StockEntry, int64, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return all, int64(len(all)), nil
}

func (r *fakeStockRepo) ListAll(ctx context.Context) ([]model.StockEntry, error) {
	out := make([]model.StockEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out, nil
}

func (r *fakeStockRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int, at time.Time) error {
	entry, ok := r.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	entry.Quantity = quantity
	entry.LastUpdated = at
	return nil
}

func (r *fakeStockRepo) DeleteZeroQuantityByBarcode(ctx context.Context, barcode string, excludeID uuid.UUID) error {
	for _, id := range append([]uuid.UUID(nil), r.order...) {
		e := r.entries[id]
		if e.Barcode == barcode && e.Quantity == 0 && e.ID != excludeID {
			_ = r.Delete(ctx, id)
		}
	}
	return nil
}

type fakeMovementRepo struct {
	movements []model.StockMovement
}

func (r *fakeMovementRepo) Create(ctx context.Context, movement *model.StockMovement) error {
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *fakeMovementRepo) ListByEntry(ctx context.Context, stockEntryID uuid.UUID, limit int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.StockEntryID == stockEntryID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	logs []model.ActivityLog
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.ActivityLog) error {
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.ActivityLog, int64, error) {
	var out []model.ActivityLog
	for _, l := range r.logs {
		if action == "" || l.Action == action {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAuditRepo) countAction(action string) int {
	n := 0
	for _, l := range r.logs {
		if l.Action == action {
			n++
		}
	}
	return n
}

type fakeAdjustmentRepo struct {
	adjustments map[uuid.UUID]*model.StockAdjustment
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo {
	return &fakeAdjustmentRepo{adjustments: make(map[uuid.UUID]*model.StockAdjustment)}
}

func (r *fakeAdjustmentRepo) Create(ctx context.Context, adj *model.StockAdjustment) error {
	if adj.ID == uuid.Nil {
		adj.ID = uuid.New()
	}
	cp := *adj
	r.adjustments[adj.ID] = &cp
	return nil
}

func (r *fakeAdjustmentRepo) Update(ctx context.Context, adj *model.StockAdjustment) error {
	if _, ok := r.adjustments[adj.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *adj
	r.adjustments[adj.ID] = &cp
	return nil
}

func (r *fakeAdjustmentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.StockAdjustment, error) {
	adj, ok := r.adjustments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *adj
	return &cp, nil
}

func (r *fakeAdjustmentRepo) List(ctx context.Context, status string, page, limit int) ([]model.StockAdjustment, int64, error) {
	var out []model.StockAdjustment
	for _, a := range r.adjustments {
		if status == "" || a.Status == status {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

type fakeLocationRepo struct {
	locations map[string]*model.Location
}

func newFakeLocationRepo() *fakeLocationRepo {
	return &fakeLocationRepo{locations: make(map[string]*model.Location)}
}

func (r *fakeLocationRepo) Upsert(ctx context.Context, loc *model.Location) error {
	cp := *loc
	r.locations[loc.LocationCode] = &cp
	return nil
}

func (r *fakeLocationRepo) Get(ctx context.Context, locationCode string) (*model.Location, error) {
	loc, ok := r.locations[locationCode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *loc
	return &cp, nil
}

func (r *fakeLocationRepo) List(ctx context.Context) ([]model.Location, error) {
	var out []model.Location
	for _, l := range r.locations {
		out = append(out, *l)
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs  map[uuid.UUID]*model.Job
	items map[uuid.UUID]*model.JobItem
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:  make(map[uuid.UUID]*model.Job),
		items: make(map[uuid.UUID]*model.JobItem),
	}
}

func (r *fakeJobRepo) Create(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now()
	cp := *job
	cp.Items = nil
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) CreateItem(ctx context.Context, item *model.JobItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeJobRepo) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *job
	cp.Items = nil
	for _, it := range r.items {
		if it.JobID == id {
			cp.Items = append(cp.Items, *it)
		}
	}
	return &cp, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	job, ok := r.jobs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	job.Status = status
	return nil
}

func (r *fakeJobRepo) Update(ctx context.Context, job *model.Job) error {
	if _, ok := r.jobs[job.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *job
	cp.Items = nil
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.jobs, id)
	for itemID, it := range r.items {
		if it.JobID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *fakeJobRepo) List(ctx context.Context, status string, page, limit int) ([]model.Job, int64, error) {
	var out []model.Job
	for id, j := range r.jobs {
		if status != "" && j.Status != status {
			continue
		}
		job, _ := r.FindByIDWithItems(ctx, id)
		out = append(out, *job)
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepo) SetItemVerified(ctx context.Context, jobID uuid.UUID, barcode string, verified bool) (int64, error) {
	var rows int64
	for _, it := range r.items {
		if it.JobID == jobID && it.Barcode == barcode {
			it.Verified = verified
			rows++
		}
	}
	return rows, nil
}

func (r *fakeJobRepo) UpdateItem(ctx context.Context, item *model.JobItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeJobRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	delete(r.items, itemID)
	return nil
}

func (r *fakeJobRepo) FindItem(ctx context.Context, jobID uuid.UUID, barcode, locationCode, shelfNumber string) (*model.JobItem, error) {
	for _, it := range r.items {
		if it.JobID == jobID && it.Barcode == barcode && it.LocationCode == locationCode && it.ShelfNumber == shelfNumber {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
