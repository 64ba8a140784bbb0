package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
)

// ErrCaptureDone is returned by a ProbeSource when the capture session has
// no more frames to deliver.
var ErrCaptureDone = errors.New("capture session ended")

// ProbeSource yields probe embeddings from a capture pipeline, one frame at
// a time. Implementations return ErrCaptureDone when the session ends and
// any other error for a frame that produced no usable vector.
type ProbeSource interface {
	Next(ctx context.Context) ([]float32, error)
}

// OutcomeKind classifies the result of one identify call.
type OutcomeKind int

const (
	// OutcomeNoMatch means no enrolled identity was similar enough.
	OutcomeNoMatch OutcomeKind = iota
	// OutcomeRejected means the identity was recognized but no attendance
	// action applies at the current time.
	OutcomeRejected
	// OutcomeRecorded means one attendance event was written.
	OutcomeRecorded
)

// Outcome is the result of a single probe identification.
type Outcome struct {
	Kind        OutcomeKind
	IdentityID  string
	DisplayName string
	Similarity  float64
	Event       *database.AttendanceEvent
	Message     string
}

// Config carries the decision parameters for the identification service.
type Config struct {
	// Threshold is the minimum cosine similarity (exclusive) for a match.
	Threshold float64
	CheckIn   Window
	CheckOut  Window
	// FrameTimeout bounds how long one probe frame may take to arrive.
	// Zero means no per-frame timeout.
	FrameTimeout time.Duration
}

// Service orchestrates matcher, state machine and ledger into a single
// "probe in, record-or-reject out" operation.
type Service struct {
	enrollments database.EnrollmentStore
	ledger      database.AttendanceStore
	cfg         Config

	// now is the clock used for decisions and event timestamps.
	now func() time.Time
}

// NewService creates an identification service over the given stores.
func NewService(enrollments database.EnrollmentStore, ledger database.AttendanceStore, cfg Config) *Service {
	return &Service{
		enrollments: enrollments,
		ledger:      ledger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Identify matches the probe against the gallery and, on a match, decides
// whether to record a check-in or check-out. It performs at most one ledger
// write. A non-nil error indicates a store failure; the informational
// outcomes (no match, window rejection) are reported in Outcome.Kind.
func (s *Service) Identify(ctx context.Context, probe []float32) (Outcome, error) {
	gallery, err := s.enrollments.List(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("listing enrollments: %w", err)
	}

	match, ok := recognition.BestMatch(probe, gallery, s.cfg.Threshold)
	if !ok {
		return Outcome{Kind: OutcomeNoMatch, Message: "no matching identity"}, nil
	}

	now := s.now()
	last, err := s.ledger.LastEventOfDay(ctx, match.IdentityID, now)
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up last event: %w", err)
	}

	eventType := Decide(last, now, s.cfg.CheckIn, s.cfg.CheckOut)
	if eventType == database.EventNone {
		return Outcome{
			Kind:        OutcomeRejected,
			IdentityID:  match.IdentityID,
			DisplayName: match.DisplayName,
			Similarity:  match.Similarity,
			Message:     rejectionMessage(last, s.cfg),
		}, nil
	}

	ev := database.AttendanceEvent{
		ID:          uuid.NewString(),
		IdentityID:  match.IdentityID,
		DisplayName: match.DisplayName,
		Timestamp:   now,
		Type:        eventType,
	}
	if err := s.ledger.Insert(ctx, ev); err != nil {
		// The write failed, so this must not surface as a recorded outcome.
		return Outcome{}, fmt.Errorf("recording %s for %s: %w", eventType, match.IdentityID, err)
	}

	return Outcome{
		Kind:        OutcomeRecorded,
		IdentityID:  match.IdentityID,
		DisplayName: match.DisplayName,
		Similarity:  match.Similarity,
		Event:       &ev,
	}, nil
}

// rejectionMessage explains why no attendance action applies right now.
func rejectionMessage(last *database.AttendanceEvent, cfg Config) string {
	switch {
	case last == nil:
		return fmt.Sprintf("check-in is only possible between %s", cfg.CheckIn)
	case last.Type == database.EventCheckIn:
		return fmt.Sprintf("check-out is only possible between %s", cfg.CheckOut)
	default:
		return fmt.Sprintf("already checked out; next check-in between %s", cfg.CheckIn)
	}
}

// RunSession drives one capture session: it pulls probe frames from the
// source and feeds them through Identify until an event is recorded, the
// identity is rejected by the time windows, or the source ends. Frames that
// fail to produce a vector (provider timeout or failure) are dropped and the
// loop continues with the next frame.
//
// The returned session state is SessionCommitted if and only if exactly one
// event was recorded.
func (s *Service) RunSession(ctx context.Context, source ProbeSource) (Outcome, SessionState, error) {
	session := NewSession()

	for session.Active() {
		if err := ctx.Err(); err != nil {
			session.Cancel()
			return Outcome{}, session.State(), err
		}

		probe, err := s.nextFrame(ctx, source)
		if errors.Is(err, ErrCaptureDone) {
			session.Cancel()
			return Outcome{}, session.State(), nil
		}
		if err != nil {
			// Frame dropped; no retry for this specific frame.
			log.Printf("probe frame dropped: %v", err)
			continue
		}

		outcome, err := s.Identify(ctx, probe)
		if err != nil {
			session.Cancel()
			return Outcome{}, session.State(), err
		}

		switch outcome.Kind {
		case OutcomeRecorded:
			session.Commit()
			return outcome, session.State(), nil
		case OutcomeRejected:
			// Known person, nothing to record now. Surface the message
			// instead of burning frames on the same presentation.
			session.Cancel()
			return outcome, session.State(), nil
		case OutcomeNoMatch:
			// Unknown face; keep scanning.
		}
	}

	return Outcome{}, session.State(), nil
}

func (s *Service) nextFrame(ctx context.Context, source ProbeSource) ([]float32, error) {
	if s.cfg.FrameTimeout <= 0 {
		return source.Next(ctx)
	}
	frameCtx, cancel := context.WithTimeout(ctx, s.cfg.FrameTimeout)
	defer cancel()
	return source.Next(frameCtx)
}
