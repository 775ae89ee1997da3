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

type MoveStockRequest struct {
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
	LocationCode string `json:"location_code" binding:"required"`
	ShelfNumber  string `json:"shelf_number" binding:"required"`
}

// MoveStockResult reports both sides of a move. Destination is nil for a full
// move, where the source row itself is relocated.
type MoveStockResult struct {
	Source      StockEntryResponse  `json:"source"`
	Destination *StockEntryResponse `json:"destination,omitempty"`
	FullMove    bool                `json:"full_move"`
}

type SetLocationRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

type MoveService interface {
	MoveStock(ctx context.Context, actor Actor, sourceID string, req MoveStockRequest) (*MoveStockResult, error)
	SetLocationAvailability(ctx context.Context, actor Actor, locationCode string, available bool) (*model.Location, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
}

type moveService struct {
	stockRepo    repository.StockRepository
	locationRepo repository.LocationRepository
	movementRepo repository.MovementRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          Broadcaster
}

func NewMoveService(
	stockRepo repository.StockRepository,
	locationRepo repository.LocationRepository,
	movementRepo repository.MovementRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub Broadcaster,
) MoveService {
	return &moveService{
		stockRepo:    stockRepo,
		locationRepo: locationRepo,
		movementRepo: movementRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// MoveStock relocates qty units of the source row to the destination shelf.
// Moving the full quantity mutates the source row's location in place so its
// identity survives (job items and history keep pointing at it) and no empty
// row is left behind. A partial move necessarily forks identity: the source
// shrinks and the destination either merges into an existing row with the same
// merge key or becomes a fresh clone.
func (s *moveService) MoveStock(ctx context.Context, actor Actor, sourceID string, req MoveStockRequest) (*MoveStockResult, error) {
	entryID, err := uuid.Parse(sourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid stock entry id: %w", err)
	}
	if err := validateLocation(req.LocationCode, req.ShelfNumber); err != nil {
		return nil, err
	}

	var result MoveStockResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if txErr := checkLocationWritable(txCtx, s.locationRepo, req.LocationCode); txErr != nil {
			return txErr
		}

		source, txErr := s.stockRepo.FindByIDForUpdate(txCtx, entryID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "stock entry", Key: sourceID}
			}
			return fmt.Errorf("failed to load stock entry: %w", txErr)
		}

		if req.Quantity < 1 || req.Quantity > source.Quantity {
			return &InvalidQuantityError{
				Quantity: req.Quantity,
				Reason:   fmt.Sprintf("move must be between 1 and %d", source.Quantity),
			}
		}
		if source.LocationCode == req.LocationCode && source.ShelfNumber == req.ShelfNumber {
			return errors.New("destination matches the current location")
		}

		fromLocation := source.LocationCode
		fromShelf := source.ShelfNumber
		now := time.Now()

		if req.Quantity == source.Quantity {
			// Full move: relocate the row itself.
			source.LocationCode = req.LocationCode
			source.ShelfNumber = req.ShelfNumber
			source.LastUpdated = now
			if txErr := s.stockRepo.Update(txCtx, source); txErr != nil {
				return fmt.Errorf("failed to relocate stock entry: %w", txErr)
			}

			movement := &model.StockMovement{
				StockEntryID:   source.ID,
				MovementType:   model.MovementMove,
				QuantityChange: 0,
				QuantityAfter:  source.Quantity,
				Reason:         fmt.Sprintf("moved from %s/%s to %s/%s", fromLocation, fromShelf, req.LocationCode, req.ShelfNumber),
			}
			if txErr := s.movementRepo.Create(txCtx, movement); txErr != nil {
				return fmt.Errorf("failed to record stock movement: %w", txErr)
			}

			result.Source = toStockResponse(source)
			result.FullMove = true
		} else {
			source.Quantity -= req.Quantity
			source.LastUpdated = now
			if txErr := s.stockRepo.UpdateQuantity(txCtx, source.ID, source.Quantity, now); txErr != nil {
				return fmt.Errorf("failed to update source quantity: %w", txErr)
			}

			destKey := model.MergeKey{
				Name:         source.Name,
				ASIN:         source.ASIN,
				Barcode:      source.Barcode,
				LocationCode: req.LocationCode,
				ShelfNumber:  req.ShelfNumber,
			}

			dest, findErr := s.stockRepo.FindByMergeKey(txCtx, destKey)
			switch {
			case findErr == nil:
				dest.Quantity += req.Quantity
				dest.LastUpdated = now
				if txErr := s.stockRepo.UpdateQuantity(txCtx, dest.ID, dest.Quantity, now); txErr != nil {
					return fmt.Errorf("failed to update destination quantity: %w", txErr)
				}
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				clone := *source
				clone.ID = uuid.Nil // let the database assign a fresh id
				clone.Quantity = req.Quantity
				clone.LocationCode = req.LocationCode
				clone.ShelfNumber = req.ShelfNumber
				clone.LastUpdated = now
				if txErr := s.stockRepo.Create(txCtx, &clone); txErr != nil {
					return fmt.Errorf("failed to create destination entry: %w", txErr)
				}
				dest = &clone
			default:
				return fmt.Errorf("failed to resolve destination entry: %w", findErr)
			}

			outMove := &model.StockMovement{
				StockEntryID:   source.ID,
				MovementType:   model.MovementMove,
				QuantityChange: -req.Quantity,
				QuantityAfter:  source.Quantity,
				Reason:         fmt.Sprintf("moved to %s/%s", req.LocationCode, req.ShelfNumber),
			}
			if txErr := s.movementRepo.Create(txCtx, outMove); txErr != nil {
				return fmt.Errorf("failed to record stock movement: %w", txErr)
			}
			inMove := &model.StockMovement{
				StockEntryID:   dest.ID,
				MovementType:   model.MovementMove,
				QuantityChange: req.Quantity,
				QuantityAfter:  dest.Quantity,
				Reason:         fmt.Sprintf("moved from %s/%s", fromLocation, fromShelf),
			}
			if txErr := s.movementRepo.Create(txCtx, inMove); txErr != nil {
				return fmt.Errorf("failed to record stock movement: %w", txErr)
			}

			destRes := toStockResponse(dest)
			result.Source = toStockResponse(source)
			result.Destination = &destRes
		}

		detail := fmt.Sprintf("Moved %d x %s from %s shelf %s to %s shelf %s",
			req.Quantity, source.Name, fromLocation, fromShelf, req.LocationCode, req.ShelfNumber)
		audit := auditEntry(actor, model.ActionMoveStock, source.ID.String(), source.Name, detail, map[string]interface{}{
			"quantity":      req.Quantity,
			"from_location": fromLocation,
			"from_shelf":    fromShelf,
			"to_location":   req.LocationCode,
			"to_shelf":      req.ShelfNumber,
		})
		if txErr := s.auditRepo.Log(txCtx, audit); txErr != nil {
			return fmt.Errorf("failed to write audit log: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastEvent(EventStockMoved, result)
	return &result, nil
}

func (s *moveService) SetLocationAvailability(ctx context.Context, actor Actor, locationCode string, available bool) (*model.Location, error) {
	if !model.IsValidLocationCode(locationCode) {
		return nil, fmt.Errorf("unknown location code: %s", locationCode)
	}

	loc := &model.Location{LocationCode: locationCode, IsAvailable: available, UpdatedAt: time.Now()}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.locationRepo.Upsert(txCtx, loc); err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
		state := "available"
		if !available {
			state = "unavailable"
		}
		detail := fmt.Sprintf("Marked location %s %s", locationCode, state)
		audit := auditEntry(actor, model.ActionToggleLocation, locationCode, locationCode, detail, loc)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *moveService) ListLocations(ctx context.Context) ([]model.Location, error) {
	return s.locationRepo.List(ctx)
}
