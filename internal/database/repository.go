package database

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateIdentity is returned by EnrollmentStore.Enroll when the
// identity ID is already enrolled. Re-enrollment must go through Replace.
var ErrDuplicateIdentity = errors.New("identity already enrolled")

// EnrollmentStore holds the gallery of enrolled identities.
type EnrollmentStore interface {
	// Enroll adds a new identity. Fails with ErrDuplicateIdentity if the
	// identity ID is already present.
	Enroll(ctx context.Context, e Enrollment) error
	// Replace updates the enrollment for an identity, creating it if absent.
	// This is the explicit re-enroll path that bypasses the duplicate check.
	Replace(ctx context.Context, e Enrollment) error
	// Delete removes an enrollment. Deleting an absent identity is a no-op.
	Delete(ctx context.Context, identityID string) error
	// Get retrieves a single enrollment, returns nil if not found.
	Get(ctx context.Context, identityID string) (*Enrollment, error)
	// List returns a snapshot copy of all current enrollments. The snapshot
	// is internally consistent but does not reflect concurrent mutations.
	List(ctx context.Context) ([]Enrollment, error)
	// Count returns the number of enrolled identities.
	Count(ctx context.Context) (int, error)
}

// AttendanceStore is the append-only attendance ledger. Events are immutable
// once written; there is no update or per-record delete.
type AttendanceStore interface {
	// Insert appends one event.
	Insert(ctx context.Context, ev AttendanceEvent) error
	// LastEventOfDay returns the latest event for the identity within the
	// local calendar day of ref (00:00:00.000 through 23:59:59.999 inclusive),
	// or nil if the identity has no event that day.
	LastEventOfDay(ctx context.Context, identityID string, ref time.Time) (*AttendanceEvent, error)
	// List returns all events ordered by timestamp descending.
	List(ctx context.Context) ([]AttendanceEvent, error)
	// Clear deletes all events. Test and reset flows only.
	Clear(ctx context.Context) error
}

// DayBounds returns the inclusive bounds of the local calendar day
// containing ref, truncated to millisecond precision at the upper end.
func DayBounds(ref time.Time) (start, end time.Time) {
	y, m, d := ref.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
	end = time.Date(y, m, d, 23, 59, 59, 999e6, ref.Location())
	return start, end
}
