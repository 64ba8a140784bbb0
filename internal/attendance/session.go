package attendance

// SessionState tracks one capture-and-identify session. A session commits at
// most one attendance event; once committed, further probe frames from the
// same physical presentation are ignored.
type SessionState int

const (
	SessionAwaiting SessionState = iota
	SessionCommitted
	SessionCancelled
)

func (s SessionState) String() string {
	switch s {
	case SessionAwaiting:
		return "awaiting"
	case SessionCommitted:
		return "committed"
	case SessionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Session is the commit guard for a single capture loop. It replaces the
// ambient one-shot booleans of earlier implementations with an explicit
// state value threaded through the loop. It is not safe for concurrent use;
// a session belongs to exactly one capture loop.
type Session struct {
	state SessionState
}

// NewSession returns a session in the awaiting state.
func NewSession() *Session {
	return &Session{state: SessionAwaiting}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.state
}

// Active reports whether the session should keep accepting probe frames.
func (s *Session) Active() bool {
	return s.state == SessionAwaiting
}

// Commit marks the session as committed. Only an awaiting session can
// commit; repeated commits are ignored.
func (s *Session) Commit() {
	if s.state == SessionAwaiting {
		s.state = SessionCommitted
	}
}

// Cancel marks the session as cancelled. Committed sessions stay committed.
func (s *Session) Cancel() {
	if s.state == SessionAwaiting {
		s.state = SessionCancelled
	}
}
