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

// DTOs
type AddSessionItemRequest struct {
	Barcode      string `json:"barcode" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	LocationCode string `json:"location_code" binding:"required"`
	ShelfNumber  string `json:"shelf_number" binding:"required"`
	Reason       string `json:"reason"`
	StoreName    string `json:"store_name"`
}

type UpdateJobItemRequest struct {
	Barcode      string `json:"barcode" binding:"required"`
	LocationCode string `json:"location_code" binding:"required"`
	ShelfNumber  string `json:"shelf_number" binding:"required"`
	NewBarcode   string `json:"new_barcode"`
	NewQuantity  int    `json:"new_quantity" binding:"required,gt=0"`
}

type RemoveJobItemRequest struct {
	Barcode      string `json:"barcode" binding:"required"`
	LocationCode string `json:"location_code" binding:"required"`
	ShelfNumber  string `json:"shelf_number" binding:"required"`
}

type SessionResponse struct {
	ID        string               `json:"id"`
	Operator  string               `json:"operator"`
	StartedAt time.Time            `json:"started_at"`
	Items     []SessionItem        `json:"items"`
	Pending   []PendingStockUpdate `json:"pending"`
}

type JobItemResponse struct {
	Barcode      string `json:"barcode"`
	Name         string `json:"name"`
	ASIN         string `json:"asin"`
	Quantity     int    `json:"quantity"`
	Verified     bool   `json:"verified"`
	LocationCode string `json:"location_code"`
	ShelfNumber  string `json:"shelf_number"`
	Reason       string `json:"reason"`
	StoreName    string `json:"store_name"`
}

type JobResponse struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	CreatedBy   string            `json:"created_by"`
	Picker      *string           `json:"picker"`
	Packer      *string           `json:"packer"`
	PickingTime int               `json:"picking_time"`
	Items       []JobItemResponse `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
}

// JobService drives the picking -> awaiting_pack -> completed workflow. A job
// accumulates in an in-memory pick session; FinishPicking persists it and
// commits the session's deductions against the ledger in one transaction.
type JobService interface {
	StartSession(actor Actor) SessionResponse
	GetSession(id string) (SessionResponse, error)
	AddSessionItem(ctx context.Context, sessionID string, req AddSessionItemRequest) (SessionResponse, error)
	UpdateSessionItem(ctx context.Context, sessionID string, req UpdateJobItemRequest) (SessionResponse, error)
	RemoveSessionItem(ctx context.Context, sessionID string, req RemoveJobItemRequest) (SessionResponse, error)
	AbandonSession(sessionID string) error
	FinishPicking(ctx context.Context, actor Actor, sessionID string) (*JobResponse, error)
	SetItemVerified(ctx context.Context, actor Actor, jobID, barcode string, verified bool) error
	UpdateItem(ctx context.Context, actor Actor, jobID string, req UpdateJobItemRequest) (*JobResponse, error)
	RemoveItem(ctx context.Context, actor Actor, jobID string, req RemoveJobItemRequest) (*JobResponse, error)
	CompletePacking(ctx context.Context, actor Actor, jobID string) (*JobResponse, error)
	DeleteJob(ctx context.Context, actor Actor, jobID string) error
	GetJob(ctx context.Context, jobID string) (*JobResponse, error)
	ListJobs(ctx context.Context, status string, page, limit int) ([]JobResponse, int64, error)
}

type jobService struct {
	sessions   *SessionManager
	jobRepo    repository.JobRepository
	stockRepo  repository.StockRepository
	auditRepo  repository.AuditRepository
	reconciler Reconciler
	txManager  repository.TransactionManager
	hub        Broadcaster
}

func NewJobService(
	sessions *SessionManager,
	jobRepo repository.JobRepository,
	stockRepo repository.StockRepository,
	auditRepo repository.AuditRepository,
	reconciler Reconciler,
	txManager repository.TransactionManager,
	hub Broadcaster,
) JobService {
	return &jobService{
		sessions:   sessions,
		jobRepo:    jobRepo,
		stockRepo:  stockRepo,
		auditRepo:  auditRepo,
		reconciler: reconciler,
		txManager:  txManager,
		hub:        hub,
	}
}

func toSessionResponse(sess PickSession) SessionResponse {
	return SessionResponse{
		ID:        sess.ID.String(),
		Operator:  sess.Operator,
		StartedAt: sess.StartedAt,
		Items:     sess.Items,
		Pending:   sess.Pending,
	}
}

func toJobResponse(job *model.Job) *JobResponse {
	items := make([]JobItemResponse, 0, len(job.Items))
	for _, it := range job.Items {
		items = append(items, JobItemResponse{
			Barcode:      it.Barcode,
			Name:         it.Name,
			ASIN:         it.ASIN,
			Quantity:     it.Quantity,
			Verified:     it.Verified,
			LocationCode: it.LocationCode,
			ShelfNumber:  it.ShelfNumber,
			Reason:       it.Reason,
			StoreName:    it.StoreName,
		})
	}
	return &JobResponse{
		ID:          job.ID.String(),
		Status:      job.Status,
		CreatedBy:   job.CreatedBy,
		Picker:      job.Picker,
		Packer:      job.Packer,
		PickingTime: job.PickingTime,
		Items:       items,
		CreatedAt:   job.CreatedAt,
	}
}

func (s *jobService) StartSession(actor Actor) SessionResponse {
	sess := s.sessions.Start(actor.Name)
	return toSessionResponse(*sess)
}

func (s *jobService) GetSession(id string) (SessionResponse, error) {
	sessID, err := uuid.Parse(id)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("invalid session id: %w", err)
	}
	sess, ok := s.sessions.Get(sessID)
	if !ok {
		return SessionResponse{}, &NotFoundError{Resource: "pick session", Key: id}
	}
	return toSessionResponse(sess), nil
}

// AddSessionItem resolves the scanned barcode against the ledger at the given
// location and records both the item line and the deferred deduction intent.
// Nothing is written to the ledger until FinishPicking.
func (s *jobService) AddSessionItem(ctx context.Context, sessionID string, req AddSessionItemRequest) (SessionResponse, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("invalid session id: %w", err)
	}
	if req.Quantity <= 0 {
		return SessionResponse{}, &InvalidQuantityError{Quantity: req.Quantity, Reason: "quantity must be positive"}
	}

	entries, err := s.stockRepo.FindByBarcode(ctx, req.Barcode)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("failed to look up barcode: %w", err)
	}

	var target *model.StockEntry
	available := 0
	for i := range entries {
		e := &entries[i]
		if e.LocationCode != req.LocationCode || e.ShelfNumber != req.ShelfNumber {
			continue
		}
		available += e.Quantity
		if target == nil && e.Quantity >= req.Quantity {
			target = e
		}
	}
	if target == nil {
		if available == 0 {
			return SessionResponse{}, &NotFoundError{
				Resource: "stock entry",
				Key:      fmt.Sprintf("%s at %s/%s", req.Barcode, req.LocationCode, req.ShelfNumber),
			}
		}
		return SessionResponse{}, &InsufficientStockError{Requested: req.Quantity, Available: available}
	}

	item := SessionItem{
		Barcode:      req.Barcode,
		Name:         target.Name,
		ASIN:         target.ASIN,
		Quantity:     req.Quantity,
		LocationCode: req.LocationCode,
		ShelfNumber:  req.ShelfNumber,
		Reason:       req.Reason,
		StoreName:    req.StoreName,
	}
	update := PendingStockUpdate{
		StockEntryID:     target.ID,
		Barcode:          req.Barcode,
		DeductedQuantity: req.Quantity,
		Reason:           req.Reason,
		StoreName:        req.StoreName,
		LocationCode:     req.LocationCode,
		ShelfNumber:      req.ShelfNumber,
	}

	sess, ok := s.sessions.AddItem(sessID, item, update)
	if !ok {
		return SessionResponse{}, &NotFoundError{Resource: "pick session", Key: sessionID}
	}
	return toSessionResponse(sess), nil
}

// UpdateSessionItem overwrites an item's quantity before finalization. The
// pending deductions are left alone; the reconciliation sweep applies the
// difference at finish time.
func (s *jobService) UpdateSessionItem(ctx context.Context, sessionID string, req UpdateJobItemRequest) (SessionResponse, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("invalid session id: %w", err)
	}
	if req.NewQuantity <= 0 {
		return SessionResponse{}, &InvalidQuantityError{Quantity: req.NewQuantity, Reason: "quantity must be positive"}
	}
	sess, ok := s.sessions.UpdateItemQuantity(sessID, req.Barcode, req.LocationCode, req.ShelfNumber, req.NewQuantity)
	if !ok {
		return SessionResponse{}, &NotFoundError{Resource: "session item", Key: req.Barcode}
	}
	return toSessionResponse(sess), nil
}

func (s *jobService) RemoveSessionItem(ctx context.Context, sessionID string, req RemoveJobItemRequest) (SessionResponse, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("invalid session id: %w", err)
	}
	sess, ok := s.sessions.RemoveItem(sessID, req.Barcode, req.LocationCode, req.ShelfNumber)
	if !ok {
		return SessionResponse{}, &NotFoundError{Resource: "session item", Key: req.Barcode}
	}
	return toSessionResponse(sess), nil
}

// AbandonSession discards the in-memory session. No ledger write has happened
// yet, so there is nothing to revert.
func (s *jobService) AbandonSession(sessionID string) error {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	if _, ok := s.sessions.Get(sessID); !ok {
		return &NotFoundError{Resource: "pick session", Key: sessionID}
	}
	s.sessions.Close(sessID)
	return nil
}

// FinishPicking is the picking -> awaiting_pack transition: it persists the
// job with its items and commits every accumulated deduction against the
// ledger. The whole commit runs in one transaction; a missing row or an
// insufficiency anywhere rolls back everything and keeps the session alive.
func (s *jobService) FinishPicking(ctx context.Context, actor Actor, sessionID string) (*JobResponse, error) {
	sessID, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	sess, ok := s.sessions.Get(sessID)
	if !ok {
		return nil, &NotFoundError{Resource: "pick session", Key: sessionID}
	}
	if len(sess.Items) == 0 {
		return nil, ErrEmptyJob
	}

	elapsed, _ := s.sessions.Elapsed(sessID)
	picker := actor.Name

	job := model.Job{
		Status:      model.JobStatusAwaitingPack,
		CreatedBy:   sess.Operator,
		Picker:      &picker,
		PickingTime: elapsed,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := s.jobRepo.Create(txCtx, &job); txErr != nil {
			return fmt.Errorf("failed to create job: %w", txErr)
		}

		totalUnits := 0
		for _, it := range sess.Items {
			item := &model.JobItem{
				JobID:        job.ID,
				Barcode:      it.Barcode,
				Name:         it.Name,
				ASIN:         it.ASIN,
				Quantity:     it.Quantity,
				LocationCode: it.LocationCode,
				ShelfNumber:  it.ShelfNumber,
				Reason:       it.Reason,
				StoreName:    it.StoreName,
			}
			if txErr := s.jobRepo.CreateItem(txCtx, item); txErr != nil {
				return fmt.Errorf("failed to create job item: %w", txErr)
			}
			job.Items = append(job.Items, *item)
			totalUnits += it.Quantity
		}

		if _, txErr := s.reconciler.Reconcile(txCtx, actor, job.ID, sess.Pending, job.Items); txErr != nil {
			return txErr
		}

		detail := fmt.Sprintf("Finished picking: %d items, %d units", len(sess.Items), totalUnits)
		audit := auditEntry(actor, model.ActionFinishPicking, job.ID.String(), "", detail, map[string]interface{}{
			"items":        len(sess.Items),
			"units":        totalUnits,
			"picking_time": elapsed,
		})
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Close(sessID)
	res := toJobResponse(&job)
	s.hub.BroadcastEvent(EventJobAwaitingPack, res)
	return res, nil
}

func (s *jobService) loadJob(ctx context.Context, jobID string) (*model.Job, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, fmt.Errorf("invalid job id: %w", err)
	}
	job, err := s.jobRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "job", Key: jobID}
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	return job, nil
}

// SetItemVerified toggles one item's verification flag during packing. The
// update patches only the verified column of the matching rows, so concurrent
// toggles on different items never overwrite each other.
func (s *jobService) SetItemVerified(ctx context.Context, actor Actor, jobID, barcode string, verified bool) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != model.JobStatusAwaitingPack {
		return fmt.Errorf("job is %s: items can only be verified while awaiting pack", job.Status)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		rows, txErr := s.jobRepo.SetItemVerified(txCtx, job.ID, barcode, verified)
		if txErr != nil {
			return fmt.Errorf("failed to update verification: %w", txErr)
		}
		if rows == 0 {
			return &NotFoundError{Resource: "job item", Key: barcode}
		}

		state := "unverified"
		if verified {
			state = "verified"
		}
		detail := fmt.Sprintf("Marked %s %s", barcode, state)
		audit := auditEntry(actor, model.ActionVerifyItem, job.ID.String(), barcode, detail, nil)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
}

// UpdateItem overwrites one item's barcode/quantity during packing and applies
// the quantity difference against the ledger row the item was picked from, so
// the committed deduction always matches the final item list. A barcode change
// is treated as a display correction only.
func (s *jobService) UpdateItem(ctx context.Context, actor Actor, jobID string, req UpdateJobItemRequest) (*JobResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusAwaitingPack {
		return nil, fmt.Errorf("job is %s: items can only be edited while awaiting pack", job.Status)
	}
	if req.NewQuantity <= 0 {
		return nil, &InvalidQuantityError{Quantity: req.NewQuantity, Reason: "quantity must be positive"}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, txErr := s.jobRepo.FindItem(txCtx, job.ID, req.Barcode, req.LocationCode, req.ShelfNumber)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "job item", Key: req.Barcode}
			}
			return fmt.Errorf("failed to load job item: %w", txErr)
		}

		delta := req.NewQuantity - item.Quantity
		if delta != 0 {
			if txErr := s.applyLedgerDelta(txCtx, actor, job.ID, item, delta); txErr != nil {
				return txErr
			}
		}

		oldQty := item.Quantity
		oldBarcode := item.Barcode
		item.Quantity = req.NewQuantity
		if req.NewBarcode != "" {
			item.Barcode = req.NewBarcode
		}
		if txErr := s.jobRepo.UpdateItem(txCtx, item); txErr != nil {
			return fmt.Errorf("failed to update job item: %w", txErr)
		}

		detail := fmt.Sprintf("Updated item %s: quantity %d -> %d", oldBarcode, oldQty, req.NewQuantity)
		audit := auditEntry(actor, model.ActionUpdateJobItem, job.ID.String(), item.Name, detail, map[string]interface{}{
			"barcode":      oldBarcode,
			"new_barcode":  item.Barcode,
			"old_quantity": oldQty,
			"new_quantity": req.NewQuantity,
		})
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetJob(ctx, jobID)
}

// RemoveItem deletes one item during packing and restores its deducted
// quantity to the ledger, so removing a line never strands stock.
func (s *jobService) RemoveItem(ctx context.Context, actor Actor, jobID string, req RemoveJobItemRequest) (*JobResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusAwaitingPack {
		return nil, fmt.Errorf("job is %s: items can only be removed while awaiting pack", job.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, txErr := s.jobRepo.FindItem(txCtx, job.ID, req.Barcode, req.LocationCode, req.ShelfNumber)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "job item", Key: req.Barcode}
			}
			return fmt.Errorf("failed to load job item: %w", txErr)
		}

		if txErr := s.applyLedgerDelta(txCtx, actor, job.ID, item, -item.Quantity); txErr != nil {
			return txErr
		}

		if txErr := s.jobRepo.DeleteItem(txCtx, item.ID); txErr != nil {
			return fmt.Errorf("failed to delete job item: %w", txErr)
		}

		detail := fmt.Sprintf("Removed item %s (%d units restored)", item.Barcode, item.Quantity)
		audit := auditEntry(actor, model.ActionRemoveJobItem, job.ID.String(), item.Name, detail, nil)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetJob(ctx, jobID)
}

// applyLedgerDelta adjusts the ledger for an item edit: positive delta deducts
// more, negative delta restores. Restoration targets the oldest row at the
// item's location, recreating one from the item's denormalized fields if every
// row has since been deleted.
func (s *jobService) applyLedgerDelta(ctx context.Context, actor Actor, jobID uuid.UUID, item *model.JobItem, delta int) error {
	entries, err := s.stockRepo.FindAtLocation(ctx, item.Barcode, item.LocationCode, item.ShelfNumber)
	if err != nil {
		return fmt.Errorf("failed to resolve stock for %s: %w", item.Barcode, err)
	}

	now := time.Now()
	if delta > 0 {
		remaining := delta
		available := 0
		for i := range entries {
			available += entries[i].Quantity
		}
		if len(entries) == 0 {
			return &NotFoundError{
				Resource: "stock entry",
				Key:      fmt.Sprintf("%s at %s/%s", item.Barcode, item.LocationCode, item.ShelfNumber),
			}
		}
		if remaining > available {
			return &InsufficientStockError{StockEntryID: entries[0].ID, Requested: remaining, Available: available}
		}
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
			entry.Quantity -= take
			if err := s.stockRepo.UpdateQuantity(ctx, entry.ID, entry.Quantity, now); err != nil {
				return fmt.Errorf("failed to update quantity: %w", err)
			}
			remaining -= take
		}
		return nil
	}

	restore := -delta
	if len(entries) > 0 {
		entry := &entries[0]
		entry.Quantity += restore
		if err := s.stockRepo.UpdateQuantity(ctx, entry.ID, entry.Quantity, now); err != nil {
			return fmt.Errorf("failed to restore quantity: %w", err)
		}
		return nil
	}

	// All rows for this identity are gone; recreate one so the units are not lost.
	entry := model.StockEntry{
		Name:         item.Name,
		Quantity:     restore,
		LocationCode: item.LocationCode,
		ShelfNumber:  item.ShelfNumber,
		Barcode:      item.Barcode,
		ASIN:         item.ASIN,
		Status:       model.StockStatusActive,
		StoreName:    item.StoreName,
		LastUpdated:  now,
	}
	if err := s.stockRepo.Create(ctx, &entry); err != nil {
		return fmt.Errorf("failed to recreate stock entry: %w", err)
	}
	return nil
}

// CompletePacking is the awaiting_pack -> completed transition. Verification
// is advisory: any mix of verified and unverified items is accepted.
func (s *jobService) CompletePacking(ctx context.Context, actor Actor, jobID string) (*JobResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusAwaitingPack {
		return nil, fmt.Errorf("job is %s: only awaiting_pack jobs can be completed", job.Status)
	}

	packer := actor.Name
	now := time.Now()
	job.Status = model.JobStatusCompleted
	job.Packer = &packer
	job.CompletedAt = &now

	totalUnits := 0
	for _, it := range job.Items {
		totalUnits += it.Quantity
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := s.jobRepo.Update(txCtx, job); txErr != nil {
			return fmt.Errorf("failed to update job: %w", txErr)
		}
		detail := fmt.Sprintf("Completed packing: %d items, %d units", len(job.Items), totalUnits)
		audit := auditEntry(actor, model.ActionCompletePacking, job.ID.String(), "", detail, nil)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := toJobResponse(job)
	s.hub.BroadcastEvent(EventJobCompleted, res)
	return res, nil
}

// DeleteJob is the admin side channel: available from any state and it never
// reverses ledger deductions already committed.
func (s *jobService) DeleteJob(ctx context.Context, actor Actor, jobID string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	totalUnits := 0
	for _, it := range job.Items {
		totalUnits += it.Quantity
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := s.jobRepo.Delete(txCtx, job.ID); txErr != nil {
			return fmt.Errorf("failed to delete job: %w", txErr)
		}
		detail := fmt.Sprintf("Deleted %s job: %d items, %d units (ledger not reversed)", job.Status, len(job.Items), totalUnits)
		audit := auditEntry(actor, model.ActionDeleteJob, job.ID.String(), "", detail, nil)
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
}

func (s *jobService) GetJob(ctx context.Context, jobID string) (*JobResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toJobResponse(job), nil
}

func (s *jobService) ListJobs(ctx context.Context, status string, page, limit int) ([]JobResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	jobs, total, err := s.jobRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		res = append(res, *toJobResponse(&jobs[i]))
	}
	return res, total, nil
}
