package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockEntry status constants
const (
	StockStatusPending = "pending"
	StockStatusActive  = "active"
)

// Fulfillment type constants
const (
	FulfillmentFBA = "fba"
	FulfillmentMF  = "mf"
)

// LocationAwaiting is the sentinel location for stock that has been received
// but not yet shelved.
const LocationAwaiting = "Awaiting Location"

// LocationCodes is the fixed alphabet of physical warehouse locations.
var LocationCodes = []string{
	"A1", "A2", "B1", "B2", "C1", "C2",
	"D1", "D2", "E1", "E2", "F1", "F2",
}

// ShelvesPerLocation bounds the valid shelf numbers for each location code.
// The awaiting sentinel has a single virtual shelf "0".
var ShelvesPerLocation = map[string]int{
	"A1": 10, "A2": 10, "B1": 10, "B2": 10,
	"C1": 8, "C2": 8, "D1": 8, "D2": 8,
	"E1": 6, "E2": 6, "F1": 6, "F2": 6,
	LocationAwaiting: 1,
}

// IsValidLocationCode reports whether code is a known location or the awaiting sentinel.
func IsValidLocationCode(code string) bool {
	_, ok := ShelvesPerLocation[code]
	return ok
}

// StockEntry represents one persisted quantity of a product at a specific
// location/shelf. Multiple rows may exist for the same logical product; readers
// aggregate them by merge key.
type StockEntry struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Quantity        int             `gorm:"type:int;not null;default:0;check:quantity >= 0" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"price"`
	Unit            string          `gorm:"type:varchar(50)" json:"unit"`
	Supplier        string          `gorm:"type:varchar(255)" json:"supplier"`
	LocationCode    string          `gorm:"type:varchar(30);not null;index" json:"location_code"`
	ShelfNumber     string          `gorm:"type:varchar(10);not null" json:"shelf_number"`
	Barcode         string          `gorm:"type:varchar(100);index" json:"barcode"`
	ASIN            string          `gorm:"type:varchar(255)" json:"asin"` // may hold multiple comma-separated values
	Status          string          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DamagedItems    int             `gorm:"type:int;not null;default:0" json:"damaged_items"`
	FulfillmentType string          `gorm:"type:varchar(10);not null;default:'fba'" json:"fulfillment_type"`
	StoreName       string          `gorm:"type:varchar(255)" json:"store_name"`
	LastUpdated     time.Time       `gorm:"index" json:"last_updated"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MergeKey identifies logically-equivalent ledger rows for aggregation.
// Empty ASIN/Barcode normalize to "" so rows created without either still group.
type MergeKey struct {
	Name         string
	ASIN         string
	Barcode      string
	LocationCode string
	ShelfNumber  string
}

// Key returns the merge key of the entry.
func (e *StockEntry) Key() MergeKey {
	return MergeKey{
		Name:         e.Name,
		ASIN:         e.ASIN,
		Barcode:      e.Barcode,
		LocationCode: e.LocationCode,
		ShelfNumber:  e.ShelfNumber,
	}
}

// StockMovement records every quantity change against a ledger row strictly,
// including the resulting quantity, for traceability.
type StockMovement struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StockEntryID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"stock_entry_id"`
	JobID          *uuid.UUID `gorm:"type:uuid;index" json:"job_id"` // nullable for manual moves/adjustments
	MovementType   string     `gorm:"type:varchar(10);not null" json:"movement_type"` // IN, OUT, MOVE
	QuantityChange int        `gorm:"type:int;not null" json:"quantity_change"`
	QuantityAfter  int        `gorm:"type:int;not null" json:"quantity_after"`
	Reason         string     `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StockMovement type constants
const (
	MovementIn   = "IN"
	MovementOut  = "OUT"
	MovementMove = "MOVE"
)
