package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingStockUpdate is the deferred intent to deduct a quantity from a
// specific ledger row. It exists only inside a pick session; finishing picking
// consumes and discards it. Two updates targeting the same row accumulate.
type PendingStockUpdate struct {
	StockEntryID     uuid.UUID `json:"stock_entry_id"`
	Barcode          string    `json:"barcode"`
	DeductedQuantity int       `json:"deducted_quantity"`
	Reason           string    `json:"reason"`
	StoreName        string    `json:"store_name"`
	LocationCode     string    `json:"location_code"`
	ShelfNumber      string    `json:"shelf_number"`
}

// SessionItem is one line of the in-progress job. Identity within a session is
// (barcode, locationCode, shelfNumber); adding the same identity twice
// accumulates quantity.
type SessionItem struct {
	Barcode      string `json:"barcode"`
	Name         string `json:"name"`
	ASIN         string `json:"asin"`
	Quantity     int    `json:"quantity"`
	LocationCode string `json:"location_code"`
	ShelfNumber  string `json:"shelf_number"`
	Reason       string `json:"reason"`
	StoreName    string `json:"store_name"`
}

// PickSession holds one operator's in-progress job: the item list, the
// pending deductions, and the monotonic start instant used to compute
// pickingTime. Nothing here is persisted; abandoning the session discards it
// without any ledger effect.
type PickSession struct {
	ID        uuid.UUID
	Operator  string
	StartedAt time.Time
	Items     []SessionItem
	Pending   []PendingStockUpdate
}

func (s *PickSession) itemIndex(barcode, locationCode, shelfNumber string) int {
	for i, it := range s.Items {
		if it.Barcode == barcode && it.LocationCode == locationCode && it.ShelfNumber == shelfNumber {
			return i
		}
	}
	return -1
}

// SessionManager is the in-memory registry of live pick sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*PickSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[uuid.UUID]*PickSession)}
}

// Start opens a new session for the operator and captures the picking-phase
// start instant.
func (m *SessionManager) Start(operator string) *PickSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := &PickSession{
		ID:        uuid.New(),
		Operator:  operator,
		StartedAt: time.Now(),
	}
	m.sessions[sess.ID] = sess
	return sess
}

// Get returns a copy of the session state, or false if it does not exist.
func (m *SessionManager) Get(id uuid.UUID) (PickSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return PickSession{}, false
	}
	return m.snapshot(sess), true
}

func (m *SessionManager) snapshot(sess *PickSession) PickSession {
	cp := PickSession{
		ID:        sess.ID,
		Operator:  sess.Operator,
		StartedAt: sess.StartedAt,
		Items:     make([]SessionItem, len(sess.Items)),
		Pending:   make([]PendingStockUpdate, len(sess.Pending)),
	}
	copy(cp.Items, sess.Items)
	copy(cp.Pending, sess.Pending)
	return cp
}

// AddItem appends an item and records the matching pending deduction. A second
// add with the same (barcode, location, shelf) accumulates onto the existing
// item, and a second deduction against the same ledger row sums onto the
// existing pending update.
func (m *SessionManager) AddItem(id uuid.UUID, item SessionItem, update PendingStockUpdate) (PickSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return PickSession{}, false
	}

	if i := sess.itemIndex(item.Barcode, item.LocationCode, item.ShelfNumber); i >= 0 {
		sess.Items[i].Quantity += item.Quantity
	} else {
		sess.Items = append(sess.Items, item)
	}

	merged := false
	for i := range sess.Pending {
		if sess.Pending[i].StockEntryID == update.StockEntryID {
			sess.Pending[i].DeductedQuantity += update.DeductedQuantity
			merged = true
			break
		}
	}
	if !merged {
		sess.Pending = append(sess.Pending, update)
	}

	return m.snapshot(sess), true
}

// UpdateItemQuantity overwrites the quantity of one item. It deliberately does
// not touch the pending deductions; the reconciliation sweep covers the drift
// between the two at finish time.
func (m *SessionManager) UpdateItemQuantity(id uuid.UUID, barcode, locationCode, shelfNumber string, quantity int) (PickSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return PickSession{}, false
	}
	i := sess.itemIndex(barcode, locationCode, shelfNumber)
	if i < 0 {
		return PickSession{}, false
	}
	sess.Items[i].Quantity = quantity
	return m.snapshot(sess), true
}

// RemoveItem drops an item and any pending deductions recorded for the same
// identity, so finishing picking will not deduct for a line the operator
// backed out of.
func (m *SessionManager) RemoveItem(id uuid.UUID, barcode, locationCode, shelfNumber string) (PickSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return PickSession{}, false
	}
	i := sess.itemIndex(barcode, locationCode, shelfNumber)
	if i < 0 {
		return PickSession{}, false
	}
	sess.Items = append(sess.Items[:i], sess.Items[i+1:]...)

	kept := sess.Pending[:0]
	for _, p := range sess.Pending {
		if p.Barcode == barcode && p.LocationCode == locationCode && p.ShelfNumber == shelfNumber {
			continue
		}
		kept = append(kept, p)
	}
	sess.Pending = kept
	return m.snapshot(sess), true
}

// Close removes the session from the registry. Used both for abandon (no
// ledger effect) and after a successful finish.
func (m *SessionManager) Close(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Elapsed reports whole seconds since the session started.
func (m *SessionManager) Elapsed(id uuid.UUID) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return 0, false
	}
	return int(time.Since(sess.StartedAt) / time.Second), true
}
