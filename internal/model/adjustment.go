package model

import (
	"time"

	"github.com/google/uuid"
)

// StockAdjustment status constants
const (
	AdjustmentPending   = "PENDING"
	AdjustmentConfirmed = "CONFIRMED"
	AdjustmentRejected  = "REJECTED"
)

// StockAdjustment parks a quantity increase until an operator confirms it.
// An increase is ambiguous (newly received stock vs. count correction), so it
// never commits directly; decreases bypass this table entirely.
type StockAdjustment struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StockEntryID uuid.UUID  `gorm:"type:uuid;not null;index" json:"stock_entry_id"`
	EntryName    string     `gorm:"type:varchar(255)" json:"entry_name"`
	FromQuantity int        `gorm:"type:int;not null" json:"from_quantity"`
	ToQuantity   int        `gorm:"type:int;not null" json:"to_quantity"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy  string     `gorm:"type:varchar(255)" json:"requested_by"`
	ResolvedBy   string     `gorm:"type:varchar(255)" json:"resolved_by"`
	ResolvedAt   *time.Time `json:"resolved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
