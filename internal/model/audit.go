package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionAddStock    = "ADD_STOCK"
	ActionDeductStock = "DEDUCT_STOCK"
	ActionEditStock   = "EDIT_STOCK"
	ActionDeleteStock = "DELETE_STOCK"
	ActionMoveStock   = "MOVE_STOCK"

	ActionFinishPicking   = "FINISH_PICKING"
	ActionCompletePacking = "COMPLETE_PACKING"
	ActionDeleteJob       = "DELETE_JOB"
	ActionVerifyItem      = "VERIFY_ITEM"
	ActionUpdateJobItem   = "UPDATE_JOB_ITEM"
	ActionRemoveJobItem   = "REMOVE_JOB_ITEM"

	ActionRequestAdjustment = "REQUEST_ADJUSTMENT"
	ActionConfirmAdjustment = "CONFIRM_ADJUSTMENT"
	ActionRejectAdjustment  = "REJECT_ADJUSTMENT"

	ActionToggleLocation = "TOGGLE_LOCATION"
)

// ActivityLog is the append-only audit sink: who did what, when. Detail carries
// the human-readable summary shown in the back office; Details carries the
// structured payload (e.g. the itemized field diff of an edit).
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable for automated writers
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Role       string     `gorm:"type:varchar(50)" json:"role"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Detail     string     `gorm:"type:text" json:"detail"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
