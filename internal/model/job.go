package model

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusPicking      = "picking"
	JobStatusAwaitingPack = "awaiting_pack"
	JobStatusCompleted    = "completed"
)

// Job represents one picking/packing work order. The job row is first persisted
// at the picking -> awaiting_pack transition; before that it lives only in the
// operator's pick session.
type Job struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status      string     `gorm:"type:varchar(20);not null;default:'picking';index" json:"status"`
	CreatedBy   string     `gorm:"type:varchar(255);not null" json:"created_by"`
	Picker      *string    `gorm:"type:varchar(255)" json:"picker"`
	Packer      *string    `gorm:"type:varchar(255)" json:"packer"`
	PickingTime int        `gorm:"type:int;not null;default:0" json:"picking_time"` // elapsed seconds of the picking phase
	Items       []JobItem  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"items"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// JobItem is one line of a job. Items are their own rows rather than an
// embedded array so verification and edits patch a single record; concurrent
// updates to different items of the same job never rewrite each other.
// The same barcode at two different locations is two distinct items.
type JobItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_job_item_identity,priority:1" json:"job_id"`
	Barcode      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_job_item_identity,priority:2" json:"barcode"`
	LocationCode string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_job_item_identity,priority:3" json:"location_code"`
	ShelfNumber  string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_job_item_identity,priority:4" json:"shelf_number"`
	Name         string    `gorm:"type:varchar(255)" json:"name"` // denormalized from the ledger row for display
	ASIN         string    `gorm:"type:varchar(255)" json:"asin"`
	Quantity     int       `gorm:"type:int;not null" json:"quantity"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	Reason       string    `gorm:"type:varchar(255)" json:"reason"`
	StoreName    string    `gorm:"type:varchar(255)" json:"store_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
