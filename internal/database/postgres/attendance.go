package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed attendance ledger storage.
// Events are append-only: no update or per-record delete is exposed.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Insert appends one event.
func (r *AttendanceRepository) Insert(ctx context.Context, ev database.AttendanceEvent) error {
	query := `
		INSERT INTO attendance_events (id, identity_id, display_name, ts, event_type)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, ev.ID, ev.IdentityID, ev.DisplayName, ev.Timestamp, string(ev.Type))
	if err != nil {
		return fmt.Errorf("insert attendance event: %w", err)
	}
	return nil
}

// LastEventOfDay returns the latest event for the identity within the local
// calendar day of ref, or nil. Day bounds are computed in Go so the lookup
// follows the process's local timezone, not the server's.
func (r *AttendanceRepository) LastEventOfDay(ctx context.Context, identityID string, ref time.Time) (*database.AttendanceEvent, error) {
	start, end := database.DayBounds(ref)

	query := `
		SELECT id, identity_id, display_name, ts, event_type
		FROM attendance_events
		WHERE identity_id = $1 AND ts >= $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT 1
	`

	var ev database.AttendanceEvent
	var eventType string

	err := r.pool.QueryRow(ctx, query, identityID, start, end).Scan(
		&ev.ID,
		&ev.IdentityID,
		&ev.DisplayName,
		&ev.Timestamp,
		&eventType,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last event of day: %w", err)
	}

	ev.Type = database.EventType(eventType)
	return &ev, nil
}

// List returns all events ordered by timestamp descending.
func (r *AttendanceRepository) List(ctx context.Context) ([]database.AttendanceEvent, error) {
	query := `
		SELECT id, identity_id, display_name, ts, event_type
		FROM attendance_events
		ORDER BY ts DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query attendance events: %w", err)
	}
	defer rows.Close()

	var out []database.AttendanceEvent
	for rows.Next() {
		var ev database.AttendanceEvent
		var eventType string
		if err := rows.Scan(&ev.ID, &ev.IdentityID, &ev.DisplayName, &ev.Timestamp, &eventType); err != nil {
			return nil, fmt.Errorf("scan attendance event: %w", err)
		}
		ev.Type = database.EventType(eventType)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance events: %w", err)
	}
	return out, nil
}

// Clear deletes all events. Test and reset flows only.
func (r *AttendanceRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM attendance_events"); err != nil {
		return fmt.Errorf("clear attendance events: %w", err)
	}
	return nil
}
