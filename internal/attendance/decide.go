package attendance

import (
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// Decide is the attendance state machine. Given the identity's last event of
// the current local day (nil if none) and the current time, it returns the
// event type to record, or EventNone when no attendance action applies.
//
//	last event | decision
//	-----------+-----------------------------------------------
//	none       | CHECK_IN if now is in the check-in window
//	CHECK_IN   | CHECK_OUT if now is in the check-out window
//	CHECK_OUT  | CHECK_IN if now is in the check-in window
//
// A CHECK_OUT may be followed by another CHECK_IN later the same day, so
// repeated in/out cycles are possible as long as the clock keeps re-entering
// the configured windows (multi-shift days).
//
// EventNone is an informational rejection, not a fault: the person was
// identified but the current time permits no transition.
func Decide(last *database.AttendanceEvent, now time.Time, checkIn, checkOut Window) database.EventType {
	switch {
	case last == nil:
		if checkIn.Contains(now) {
			return database.EventCheckIn
		}
	case last.Type == database.EventCheckIn:
		if checkOut.Contains(now) {
			return database.EventCheckOut
		}
	case last.Type == database.EventCheckOut:
		if checkIn.Contains(now) {
			return database.EventCheckIn
		}
	}
	return database.EventNone
}
