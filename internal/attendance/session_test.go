package attendance

import "testing"

func TestSession_StartsAwaiting(t *testing.T) {
	s := NewSession()

	if s.State() != SessionAwaiting {
		t.Errorf("State() = %s, want awaiting", s.State())
	}
	if !s.Active() {
		t.Error("new session should be active")
	}
}

func TestSession_CommitIsTerminal(t *testing.T) {
	s := NewSession()

	s.Commit()

	if s.State() != SessionCommitted {
		t.Errorf("State() = %s, want committed", s.State())
	}
	if s.Active() {
		t.Error("committed session must not accept further probes")
	}

	// Cancel after commit must not change the state.
	s.Cancel()
	if s.State() != SessionCommitted {
		t.Errorf("State() after Cancel = %s, want committed", s.State())
	}
}

func TestSession_CancelIsTerminal(t *testing.T) {
	s := NewSession()

	s.Cancel()

	if s.State() != SessionCancelled {
		t.Errorf("State() = %s, want cancelled", s.State())
	}

	// Commit after cancel must not change the state.
	s.Commit()
	if s.State() != SessionCancelled {
		t.Errorf("State() after Commit = %s, want cancelled", s.State())
	}
}

func TestSessionState_String(t *testing.T) {
	tests := []struct {
		state SessionState
		want  string
	}{
		{SessionAwaiting, "awaiting"},
		{SessionCommitted, "committed"},
		{SessionCancelled, "cancelled"},
		{SessionState(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
