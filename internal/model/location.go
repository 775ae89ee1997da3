package model

import "time"

// Location holds advisory availability metadata for a location code. The flag
// is consulted by stock writes (add/move destination); reads and deductions
// from an unavailable location remain legal.
type Location struct {
	LocationCode string    `gorm:"type:varchar(30);primaryKey" json:"location_code"`
	IsAvailable  bool      `gorm:"not null;default:true" json:"is_available"`
	UpdatedAt    time.Time `json:"updated_at"`
}
