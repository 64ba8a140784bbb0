package database

import (
	"time"
)

// EventType classifies an attendance event.
type EventType string

const (
	EventCheckIn  EventType = "CHECK_IN"
	EventCheckOut EventType = "CHECK_OUT"

	// EventNone means no attendance action applies right now.
	// It is a decision outcome, never stored in the ledger.
	EventNone EventType = "NONE"
)

// Valid reports whether the event type can be written to the ledger.
func (t EventType) Valid() bool {
	return t == EventCheckIn || t == EventCheckOut
}

// Enrollment represents one enrolled identity with its face embedding.
// There is at most one enrollment per identity ID at any time; re-enrollment
// replaces the embedding wholesale.
type Enrollment struct {
	IdentityID  string
	DisplayName string
	Embedding   []float32
	EnrolledAt  time.Time
}

// AttendanceEvent is one immutable entry in the attendance ledger.
// DisplayName is a snapshot taken at write time; later enrollment changes
// do not alter historical events.
type AttendanceEvent struct {
	ID          string
	IdentityID  string
	DisplayName string
	Timestamp   time.Time
	Type        EventType
}
