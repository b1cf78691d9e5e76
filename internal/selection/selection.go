// Package selection holds the per-session multi-select state that drives
// bulk place/delete operations. A Set lives for a caller session only and is
// never persisted or shared between sessions.
package selection

import (
	"sync"

	"github.com/google/uuid"
)

// Set is an insertion-ordered set of ids constrained to stay a subset of the
// currently visible id universe. Not safe for concurrent use; a session is a
// single caller.
type Set struct {
	ids   []int64
	index map[int64]struct{}
	total []int64
}

func NewSet() *Set {
	return &Set{index: make(map[int64]struct{})}
}

// SetTotal replaces the visible id universe and prunes the selection so it
// remains a subset (ids that disappeared from view are dropped).
func (s *Set) SetTotal(total []int64) {
	s.total = append(s.total[:0], total...)

	visible := make(map[int64]struct{}, len(total))
	for _, id := range total {
		visible[id] = struct{}{}
	}
	kept := s.ids[:0]
	for _, id := range s.ids {
		if _, ok := visible[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.index, id)
		}
	}
	s.ids = kept
}

// Toggle adds the id if absent and removes it if present.
func (s *Set) Toggle(id int64) {
	if _, ok := s.index[id]; ok {
		delete(s.index, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// SelectAll completes the selection against the visible universe. With an
// empty universe it is a no-op; when everything is already selected it
// clears instead, so repeated calls toggle between all and none.
func (s *Set) SelectAll() {
	if len(s.total) == 0 {
		return
	}
	if len(s.ids) == len(s.total) {
		s.Clear()
		return
	}
	for _, id := range s.total {
		if _, ok := s.index[id]; !ok {
			s.index[id] = struct{}{}
			s.ids = append(s.ids, id)
		}
	}
}

// Clear empties the selection. Callers invoke it after a bulk action
// completes.
func (s *Set) Clear() {
	s.ids = s.ids[:0]
	for id := range s.index {
		delete(s.index, id)
	}
}

func (s *Set) Contains(id int64) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Set) Len() int { return len(s.ids) }

// IDs returns the selected ids in insertion order.
func (s *Set) IDs() []int64 {
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Manager is a registry of live selection sessions keyed by opaque handles.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Set
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Set)}
}

// Open starts a fresh session and returns its handle.
func (m *Manager) Open() uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	m.sessions[id] = NewSet()
	m.mu.Unlock()
	return id
}

func (m *Manager) Get(id uuid.UUID) (*Set, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards the session state.
func (m *Manager) Close(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
