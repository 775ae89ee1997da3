package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"warehouse/internal/model"
	"warehouse/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type AddStockRequest struct {
	Name            string          `json:"name" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,gt=0"`
	Price           decimal.Decimal `json:"price"`
	Unit            string          `json:"unit"`
	Supplier        string          `json:"supplier"`
	LocationCode    string          `json:"location_code" binding:"required"`
	ShelfNumber     string          `json:"shelf_number" binding:"required"`
	Barcode         string          `json:"barcode"`
	ASIN            string          `json:"asin"`
	Status          string          `json:"status" binding:"omitempty,oneof=pending active"`
	DamagedItems    int             `json:"damaged_items" binding:"omitempty,min=0"`
	FulfillmentType string          `json:"fulfillment_type" binding:"omitempty,oneof=fba mf"`
	StoreName       string          `json:"store_name"`
}

// EditStockRequest patches a subset of fields. Nil pointers are untouched.
// Quantity follows its own rule: a decrease commits immediately, an increase
// is parked as a pending adjustment until an operator confirms it.
type EditStockRequest struct {
	Name            *string          `json:"name"`
	Quantity        *int             `json:"quantity" binding:"omitempty,min=0"`
	Price           *decimal.Decimal `json:"price"`
	Unit            *string          `json:"unit"`
	Supplier        *string          `json:"supplier"`
	LocationCode    *string          `json:"location_code"`
	ShelfNumber     *string          `json:"shelf_number"`
	Barcode         *string          `json:"barcode"`
	ASIN            *string          `json:"asin"`
	Status          *string          `json:"status" binding:"omitempty,oneof=pending active"`
	DamagedItems    *int             `json:"damaged_items" binding:"omitempty,min=0"`
	FulfillmentType *string          `json:"fulfillment_type" binding:"omitempty,oneof=fba mf"`
	StoreName       *string          `json:"store_name"`
}

type StockEntryResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Unit            string          `json:"unit"`
	Supplier        string          `json:"supplier"`
	LocationCode    string          `json:"location_code"`
	ShelfNumber     string          `json:"shelf_number"`
	Barcode         string          `json:"barcode"`
	ASIN            string          `json:"asin"`
	Status          string          `json:"status"`
	DamagedItems    int             `json:"damaged_items"`
	FulfillmentType string          `json:"fulfillment_type"`
	StoreName       string          `json:"store_name"`
	LastUpdated     time.Time       `json:"last_updated"`
}

// StockSummaryRow is the read-time aggregation of all rows sharing a merge
// key: quantities sum, lastUpdated is the most recent.
type StockSummaryRow struct {
	Name         string    `json:"name"`
	ASIN         string    `json:"asin"`
	Barcode      string    `json:"barcode"`
	LocationCode string    `json:"location_code"`
	ShelfNumber  string    `json:"shelf_number"`
	Quantity     int       `json:"quantity"`
	Rows         int       `json:"rows"`
	LastUpdated  time.Time `json:"last_updated"`
}

// FieldChange is one line of the itemized edit diff. Each changed field is
// audited individually so the log reads as "price: 3.99 -> 4.49" rather than
// one opaque "updated" event.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// EditStockResult reports what EditFields did: the saved entry plus, when the
// edit asked for a quantity increase, the pending adjustment awaiting
// confirmation.
type EditStockResult struct {
	Entry             StockEntryResponse       `json:"entry"`
	Changes           []FieldChange            `json:"changes"`
	PendingAdjustment *model.StockAdjustment   `json:"pending_adjustment,omitempty"`
}

type LedgerService interface {
	AddStock(ctx context.Context, actor Actor, req AddStockRequest) (StockEntryResponse, error)
	Deduct(ctx context.Context, actor Actor, id string, quantity int, reason string) (StockEntryResponse, error)
	EditFields(ctx context.Context, actor Actor, id string, req EditStockRequest) (*EditStockResult, error)
	DeleteEntry(ctx context.Context, actor Actor, id string) error
	GetEntry(ctx context.Context, id string) (StockEntryResponse, error)
	ListStock(ctx context.Context, filter repository.StockFilter, page, limit int) ([]StockEntryResponse, int64, error)
	FindByBarcode(ctx context.Context, barcode string) ([]StockEntryResponse, error)
	LocationSummary(ctx context.Context) ([]StockSummaryRow, error)
}

type ledgerService struct {
	stockRepo    repository.StockRepository
	locationRepo repository.LocationRepository
	movementRepo repository.MovementRepository
	adjRepo      repository.AdjustmentRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          Broadcaster
}

func NewLedgerService(
	stockRepo repository.StockRepository,
	locationRepo repository.LocationRepository,
	movementRepo repository.MovementRepository,
	adjRepo repository.AdjustmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub Broadcaster,
) LedgerService {
	return &ledgerService{
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		adjRepo:      adjRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

func toStockResponse(e *model.StockEntry) StockEntryResponse {
	return StockEntryResponse{
		ID:              e.ID.String(),
		Name:            e.Name,
		Quantity:        e.Quantity,
		Price:           e.Price,
		Unit:            e.Unit,
		Supplier:        e.Supplier,
		LocationCode:    e.LocationCode,
		ShelfNumber:     e.ShelfNumber,
		Barcode:         e.Barcode,
		ASIN:            e.ASIN,
		Status:          e.Status,
		DamagedItems:    e.DamagedItems,
		FulfillmentType: e.FulfillmentType,
		StoreName:       e.StoreName,
		LastUpdated:     e.LastUpdated,
	}
}

func validateLocation(locationCode, shelfNumber string) error {
	shelves, ok := model.ShelvesPerLocation[locationCode]
	if !ok {
		return fmt.Errorf("unknown location code: %s", locationCode)
	}
	n, err := strconv.Atoi(shelfNumber)
	if err != nil || n < 0 || n >= shelves {
		return fmt.Errorf("shelf %q out of range for location %s (0-%d)", shelfNumber, locationCode, shelves-1)
	}
	return nil
}

// checkLocationWritable enforces the availability flag on stock writes. A
// location with no metadata row is treated as available.
func checkLocationWritable(ctx context.Context, locationRepo repository.LocationRepository, locationCode string) error {
	loc, err := locationRepo.Get(ctx, locationCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check location availability: %w", err)
	}
	if !loc.IsAvailable {
		return &LocationUnavailableError{LocationCode: locationCode}
	}
	return nil
}

func (s *ledgerService) AddStock(ctx context.Context, actor Actor, req AddStockRequest) (StockEntryResponse, error) {
	if req.Quantity <= 0 {
		return StockEntryResponse{}, &InvalidQuantityError{Quantity: req.Quantity, Reason: "quantity must be positive"}
	}
	if req.Price.IsNegative() {
		return StockEntryResponse{}, errors.New("price cannot be negative")
	}
	if err := validateLocation(req.LocationCode, req.ShelfNumber); err != nil {
		return StockEntryResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = model.StockStatusPending
	}
	fulfillment := req.FulfillmentType
	if fulfillment == "" {
		fulfillment = model.FulfillmentFBA
	}

	entry := model.StockEntry{
		Name:            strings.ToUpper(req.Name),
		Quantity:        req.Quantity,
		Price:           req.Price,
		Unit:            req.Unit,
		Supplier:        req.Supplier,
		LocationCode:    req.LocationCode,
		ShelfNumber:     req.ShelfNumber,
		Barcode:         req.Barcode,
		ASIN:            req.ASIN,
		Status:          status,
		DamagedItems:    req.DamagedItems,
		FulfillmentType: fulfillment,
		StoreName:       req.StoreName,
		LastUpdated:     time.Now(),
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := checkLocationWritable(txCtx, s.locationRepo, req.LocationCode); err != nil {
			return err
		}
		if err := s.stockRepo.Create(txCtx, &entry); err != nil {
			return fmt.Errorf("failed to create stock entry: %w", err)
		}

		// Clean up emptied rows hidden behind the same barcode.
		if entry.Barcode != "" {
			if err := s.stockRepo.DeleteZeroQuantityByBarcode(txCtx, entry.Barcode, entry.ID); err != nil {
				return fmt.Errorf("failed to clean up hidden products: %w", err)
			}
		}

		movement := &model.StockMovement{
			StockEntryID:   entry.ID,
			MovementType:   model.MovementIn,
			QuantityChange: entry.Quantity,
			QuantityAfter:  entry.Quantity,
			Reason:         "inbound stock",
		}
		if err := s.movementRepo.Create(txCtx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		detail := fmt.Sprintf("Added %d x %s at %s shelf %s", entry.Quantity, entry.Name, entry.LocationCode, entry.ShelfNumber)
		audit := auditEntry(actor, model.ActionAddStock, entry.ID.String(), entry.Name, detail, req)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return StockEntryResponse{}, err
	}

	s.hub.BroadcastEvent(EventStockUpdated, toStockResponse(&entry))
	return toStockResponse(&entry), nil
}

func (s *ledgerService) Deduct(ctx context.Context, actor Actor, id string, quantity int, reason string) (StockEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return StockEntryResponse{}, fmt.Errorf("invalid stock entry id: %w", err)
	}
	if quantity <= 0 {
		return StockEntryResponse{}, &InvalidQuantityError{Quantity: quantity, Reason: "deduction must be positive"}
	}

	var entry *model.StockEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var txErr error
		entry, txErr = s.stockRepo.FindByIDForUpdate(txCtx, entryID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "stock entry", Key: id}
			}
			return fmt.Errorf("failed to load stock entry: %w", txErr)
		}

		if quantity > entry.Quantity {
			return &InsufficientStockError{StockEntryID: entry.ID, Requested: quantity, Available: entry.Quantity}
		}

		entry.Quantity -= quantity
		entry.LastUpdated = time.Now()
		if txErr := s.stockRepo.UpdateQuantity(txCtx, entry.ID, entry.Quantity, entry.LastUpdated); txErr != nil {
			return fmt.Errorf("failed to update quantity: %w", txErr)
		}

		movement := &model.StockMovement{
			StockEntryID:   entry.ID,
			MovementType:   model.MovementOut,
			QuantityChange: -quantity,
			QuantityAfter:  entry.Quantity,
			Reason:         reason,
		}
		if txErr := s.movementRepo.Create(txCtx, movement); txErr != nil {
			return fmt.Errorf("failed to record stock movement: %w", txErr)
		}

		detail := fmt.Sprintf("Deducted %d x %s (%s)", quantity, entry.Name, reason)
		audit := auditEntry(actor, model.ActionDeductStock, entry.ID.String(), entry.Name, detail, map[string]interface{}{
			"quantity": quantity,
			"reason":   reason,
		})
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return StockEntryResponse{}, err
	}

	s.hub.BroadcastEvent(EventStockUpdated, toStockResponse(entry))
	return toStockResponse(entry), nil
}

func (s *ledgerService) EditFields(ctx context.Context, actor Actor, id string, req EditStockRequest) (*EditStockResult, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid stock entry id: %w", err)
	}

	var result EditStockResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, txErr := s.stockRepo.FindByIDForUpdate(txCtx, entryID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "stock entry", Key: id}
			}
			return fmt.Errorf("failed to load stock entry: %w", txErr)
		}

		var changes []FieldChange
		record := func(field, oldVal, newVal string) {
			if oldVal != newVal {
				changes = append(changes, FieldChange{Field: field, Old: oldVal, New: newVal})
			}
		}

		if req.Name != nil {
			name := strings.ToUpper(*req.Name)
			record("name", entry.Name, name)
			entry.Name = name
		}
		if req.Price != nil {
			if req.Price.IsNegative() {
				return errors.New("price cannot be negative")
			}
			record("price", entry.Price.String(), req.Price.String())
			entry.Price = *req.Price
		}
		if req.Unit != nil {
			record("unit", entry.Unit, *req.Unit)
			entry.Unit = *req.Unit
		}
		if req.Supplier != nil {
			record("supplier", entry.Supplier, *req.Supplier)
			entry.Supplier = *req.Supplier
		}
		if req.LocationCode != nil || req.ShelfNumber != nil {
			loc := entry.LocationCode
			shelf := entry.ShelfNumber
			if req.LocationCode != nil {
				loc = *req.LocationCode
			}
			if req.ShelfNumber != nil {
				shelf = *req.ShelfNumber
			}
			if txErr := validateLocation(loc, shelf); txErr != nil {
				return txErr
			}
			record("location_code", entry.LocationCode, loc)
			record("shelf_number", entry.ShelfNumber, shelf)
			entry.LocationCode = loc
			entry.ShelfNumber = shelf
		}
		if req.Barcode != nil {
			record("barcode", entry.Barcode, *req.Barcode)
			entry.Barcode = *req.Barcode
		}
		if req.ASIN != nil {
			record("asin", entry.ASIN, *req.ASIN)
			entry.ASIN = *req.ASIN
		}
		if req.Status != nil {
			record("status", entry.Status, *req.Status)
			entry.Status = *req.Status
		}
		if req.DamagedItems != nil {
			record("damaged_items", strconv.Itoa(entry.DamagedItems), strconv.Itoa(*req.DamagedItems))
			entry.DamagedItems = *req.DamagedItems
		}
		if req.FulfillmentType != nil {
			record("fulfillment_type", entry.FulfillmentType, *req.FulfillmentType)
			entry.FulfillmentType = *req.FulfillmentType
		}
		if req.StoreName != nil {
			record("store_name", entry.StoreName, *req.StoreName)
			entry.StoreName = *req.StoreName
		}

		// Quantity edits follow their own rule: a decrease commits now, an
		// increase is ambiguous (new stock vs. count correction) and is parked
		// until confirmed.
		if req.Quantity != nil {
			switch {
			case *req.Quantity < entry.Quantity:
				deducted := entry.Quantity - *req.Quantity
				record("quantity", strconv.Itoa(entry.Quantity), strconv.Itoa(*req.Quantity))
				entry.Quantity = *req.Quantity
				movement := &model.StockMovement{
					StockEntryID:   entry.ID,
					MovementType:   model.MovementOut,
					QuantityChange: -deducted,
					QuantityAfter:  entry.Quantity,
					Reason:         "quantity correction",
				}
				if txErr := s.movementRepo.Create(txCtx, movement); txErr != nil {
					return fmt.Errorf("failed to record stock movement: %w", txErr)
				}
			case *req.Quantity > entry.Quantity:
				adj := &model.StockAdjustment{
					StockEntryID: entry.ID,
					EntryName:    entry.Name,
					FromQuantity: entry.Quantity,
					ToQuantity:   *req.Quantity,
					Status:       model.AdjustmentPending,
					RequestedBy:  actor.Name,
				}
				if txErr := s.adjRepo.Create(txCtx, adj); txErr != nil {
					return fmt.Errorf("failed to create stock adjustment: %w", txErr)
				}
				detail := fmt.Sprintf("Requested quantity increase for %s: %d -> %d", entry.Name, adj.FromQuantity, adj.ToQuantity)
				audit := auditEntry(actor, model.ActionRequestAdjustment, adj.ID.String(), entry.Name, detail, adj)
				if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
					return fmt.Errorf("failed to write audit log: %w", txErr)
				}
				result.PendingAdjustment = adj
			}
		}

		if len(changes) > 0 {
			entry.LastUpdated = time.Now()
			if txErr := s.stockRepo.Update(txCtx, entry); txErr != nil {
				return fmt.Errorf("failed to update stock entry: %w", txErr)
			}

			detail := editDetail(entry.Name, changes)
			audit := auditEntry(actor, model.ActionEditStock, entry.ID.String(), entry.Name, detail, changes)
			if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
				return fmt.Errorf("failed to write audit log: %w", txErr)
			}
		}

		result.Entry = toStockResponse(entry)
		result.Changes = changes
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Changes) > 0 {
		s.hub.BroadcastEvent(EventStockUpdated, result.Entry)
	}
	if result.PendingAdjustment != nil {
		s.hub.BroadcastEvent(EventAdjustmentPending, result.PendingAdjustment)
	}
	return &result, nil
}

// editDetail renders the itemized diff as one human-readable line per field.
func editDetail(name string, changes []FieldChange) string {
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s: %q -> %q", c.Field, c.Old, c.New))
	}
	return fmt.Sprintf("Edited %s (%s)", name, strings.Join(parts, "; "))
}

func (s *ledgerService) DeleteEntry(ctx context.Context, actor Actor, id string) error {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid stock entry id: %w", err)
	}

	entry, err := s.stockRepo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "stock entry", Key: id}
		}
		return fmt.Errorf("failed to load stock entry: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.stockRepo.Delete(txCtx, entryID); err != nil {
			return fmt.Errorf("failed to delete stock entry: %w", err)
		}
		detail := fmt.Sprintf("Deleted %s (%d remaining units discarded)", entry.Name, entry.Quantity)
		audit := auditEntry(actor, model.ActionDeleteStock, id, entry.Name, detail, nil)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *ledgerService) GetEntry(ctx context.Context, id string) (StockEntryResponse, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return StockEntryResponse{}, fmt.Errorf("invalid stock entry id: %w", err)
	}
	entry, err := s.stockRepo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StockEntryResponse{}, &NotFoundError{Resource: "stock entry", Key: id}
		}
		return StockEntryResponse{}, err
	}
	return toStockResponse(entry), nil
}

func (s *ledgerService) ListStock(ctx context.Context, filter repository.StockFilter, page, limit int) ([]StockEntryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	filter.NamePrefix = strings.ToUpper(filter.NamePrefix)

	entries, total, err := s.stockRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StockEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, toStockResponse(&entries[i]))
	}
	return res, total, nil
}

func (s *ledgerService) FindByBarcode(ctx context.Context, barcode string) ([]StockEntryResponse, error) {
	entries, err := s.stockRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	res := make([]StockEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, toStockResponse(&entries[i]))
	}
	return res, nil
}

// LocationSummary aggregates independently-created rows sharing a merge key:
// quantities sum, lastUpdated is the maximum. Rows are never collapsed on
// insert; this is the read-time view display code consumes.
func (s *ledgerService) LocationSummary(ctx context.Context) ([]StockSummaryRow, error) {
	entries, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[model.MergeKey]int)
	summary := make([]StockSummaryRow, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		key := e.Key()
		if j, ok := index[key]; ok {
			summary[j].Quantity += e.Quantity
			summary[j].Rows++
			if e.LastUpdated.After(summary[j].LastUpdated) {
				summary[j].LastUpdated = e.LastUpdated
			}
			continue
		}
		index[key] = len(summary)
		summary = append(summary, StockSummaryRow{
			Name:         e.Name,
			ASIN:         e.ASIN,
			Barcode:      e.Barcode,
			LocationCode: e.LocationCode,
			ShelfNumber:  e.ShelfNumber,
			Quantity:     e.Quantity,
			Rows:         1,
			LastUpdated:  e.LastUpdated,
		})
	}
	return summary, nil
}
