// Package memory provides in-memory implementations of the database store
// interfaces. Used for tests and for running the service without Postgres.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// EnrollmentStore is an in-memory database.EnrollmentStore.
type EnrollmentStore struct {
	mu    sync.RWMutex
	byID  map[string]database.Enrollment
	order []string // enrollment order, preserved for deterministic List

	// Error injection for tests.
	EnrollError  error
	ReplaceError error
	DeleteError  error
	ListError    error
}

// NewEnrollmentStore creates an empty in-memory enrollment store.
func NewEnrollmentStore() *EnrollmentStore {
	return &EnrollmentStore{byID: make(map[string]database.Enrollment)}
}

// Enroll adds a new identity, failing on duplicates.
func (s *EnrollmentStore) Enroll(_ context.Context, e database.Enrollment) error {
	if s.EnrollError != nil {
		return s.EnrollError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[e.IdentityID]; exists {
		return database.ErrDuplicateIdentity
	}
	s.byID[e.IdentityID] = cloneEnrollment(e)
	s.order = append(s.order, e.IdentityID)
	return nil
}

// Replace updates or creates the enrollment for an identity.
func (s *EnrollmentStore) Replace(_ context.Context, e database.Enrollment) error {
	if s.ReplaceError != nil {
		return s.ReplaceError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[e.IdentityID]; !exists {
		s.order = append(s.order, e.IdentityID)
	}
	s.byID[e.IdentityID] = cloneEnrollment(e)
	return nil
}

// Delete removes an enrollment; absent identities are a no-op.
func (s *EnrollmentStore) Delete(_ context.Context, identityID string) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[identityID]; !exists {
		return nil
	}
	delete(s.byID, identityID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == identityID })
	return nil
}

// Get retrieves an enrollment, returns nil if not found.
func (s *EnrollmentStore) Get(_ context.Context, identityID string) (*database.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[identityID]
	if !ok {
		return nil, nil
	}
	c := cloneEnrollment(e)
	return &c, nil
}

// List returns a snapshot copy of all enrollments in enrollment order.
func (s *EnrollmentStore) List(_ context.Context) ([]database.Enrollment, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]database.Enrollment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneEnrollment(s.byID[id]))
	}
	return out, nil
}

// Count returns the number of enrolled identities.
func (s *EnrollmentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func cloneEnrollment(e database.Enrollment) database.Enrollment {
	e.Embedding = slices.Clone(e.Embedding)
	return e
}

// AttendanceStore is an in-memory database.AttendanceStore.
type AttendanceStore struct {
	mu     sync.RWMutex
	events []database.AttendanceEvent

	// Error injection for tests.
	InsertError error
	LastError   error
}

// NewAttendanceStore creates an empty in-memory attendance ledger.
func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{}
}

// Insert appends one event.
func (s *AttendanceStore) Insert(_ context.Context, ev database.AttendanceEvent) error {
	if s.InsertError != nil {
		return s.InsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

// LastEventOfDay returns the latest event for the identity within the local
// calendar day of ref, or nil.
func (s *AttendanceStore) LastEventOfDay(_ context.Context, identityID string, ref time.Time) (*database.AttendanceEvent, error) {
	if s.LastError != nil {
		return nil, s.LastError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, end := database.DayBounds(ref)
	var last *database.AttendanceEvent
	for i := range s.events {
		ev := s.events[i]
		if ev.IdentityID != identityID {
			continue
		}
		if ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			continue
		}
		if last == nil || ev.Timestamp.After(last.Timestamp) {
			last = &ev
		}
	}
	if last == nil {
		return nil, nil
	}
	c := *last
	return &c, nil
}

// List returns all events ordered by timestamp descending.
func (s *AttendanceStore) List(_ context.Context) ([]database.AttendanceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.events)
	slices.SortStableFunc(out, func(a, b database.AttendanceEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out, nil
}

// Clear deletes all events.
func (s *AttendanceStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	return nil
}
