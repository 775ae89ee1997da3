package service

import "github.com/google/uuid"

// Websocket event names pushed to connected dashboards.
const (
	EventStockUpdated      = "stock.updated"
	EventStockMoved        = "stock.moved"
	EventJobAwaitingPack   = "job.awaiting_pack"
	EventJobCompleted      = "job.completed"
	EventAdjustmentPending = "adjustment.pending"
)

// Broadcaster pushes realtime events to connected clients. Satisfied by the
// websocket hub; tests substitute a recorder.
type Broadcaster interface {
	BroadcastEvent(event string, data interface{})
}

// Actor identifies the authenticated operator performing an action, for audit
// attribution. ID is nil for automated writers.
type Actor struct {
	ID   *uuid.UUID
	Name string
	Role string
}
