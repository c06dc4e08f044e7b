package session

import "sync"

// Session ID constants. SPDM session IDs are 32 bits on the wire, formed
// as RequesterSessionID (low 16 bits) concatenated with
// ResponderSessionID (high 16 bits); this table allocates and indexes by
// that combined 32-bit value.
const (
	// MinResponderSessionID is the minimum responder-half session ID this
	// table allocates. 0 is avoided so a zero Session.ID() reads as unset.
	MinResponderSessionID uint16 = 1

	// DefaultMaxSessions is the default maximum number of concurrent
	// sessions a responder tracks, matching the capacity governed by
	// policy configuration's SessionTableCapacity.
	DefaultMaxSessions = 4
)

// Table manages the set of sessions a responder currently tracks. It
// allocates responder-half session IDs, and enforces the fixed-capacity
// bound a constrained device's memory budget requires.
type Table struct {
	sessions    map[uint32]*Session
	maxSessions int
	nextID      uint16

	mu sync.RWMutex
}

// NewTable creates a session table bounded to maxSessions concurrent
// sessions (0 uses DefaultMaxSessions).
func NewTable(maxSessions int) *Table {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Table{
		sessions:    make(map[uint32]*Session),
		maxSessions: maxSessions,
		nextID:      MinResponderSessionID,
	}
}

// AllocateResponderID returns an unused 16-bit responder-half session ID,
// combines it with reqSessionID to form the full 32-bit session ID, and
// reports ErrSessionTableFull if the table is already at capacity or
// ErrSessionIDExhausted if every responder-half ID is in use.
func (t *Table) AllocateResponderID(reqSessionID uint16) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.sessions) >= t.maxSessions {
		return 0, ErrSessionTableFull
	}

	start := t.nextID
	for {
		candidate := t.nextID
		t.nextID++
		if t.nextID == 0 {
			t.nextID = MinResponderSessionID
		}

		id := uint32(candidate)<<16 | uint32(reqSessionID)
		if _, exists := t.sessions[id]; !exists {
			return id, nil
		}
		if t.nextID == start {
			return 0, ErrSessionIDExhausted
		}
	}
}

// Add inserts sess into the table, keyed by its own ID.
func (t *Table) Add(sess *Session) error {
	if sess == nil || sess.ID() == 0 {
		return ErrInvalidSessionID
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.sessions) >= t.maxSessions {
		return ErrSessionTableFull
	}
	if _, exists := t.sessions[sess.ID()]; exists {
		return ErrDuplicateSession
	}
	t.sessions[sess.ID()] = sess
	return nil
}

// Get looks up a session by its full 32-bit ID. Returns nil if absent.
func (t *Table) Get(id uint32) *Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sessions[id]
}

// Remove zeroizes and deletes the session with the given ID, if present.
func (t *Table) Remove(id uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sess, ok := t.sessions[id]; ok {
		sess.ZeroizeKeys()
		delete(t.sessions, id)
	}
}

// Count returns the number of active sessions.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// IsFull reports whether the table is at capacity.
func (t *Table) IsFull() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions) >= t.maxSessions
}

// MaxSessions returns the table's capacity.
func (t *Table) MaxSessions() int {
	return t.maxSessions
}

// ForEach calls fn for every session in the table. fn should not mutate
// the table; return false from fn to stop iterating early.
func (t *Table) ForEach(fn func(*Session) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, sess := range t.sessions {
		if !fn(sess) {
			return
		}
	}
}

// Clear zeroizes and removes every session from the table.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sess := range t.sessions {
		sess.ZeroizeKeys()
	}
	t.sessions = make(map[uint32]*Session)
}
