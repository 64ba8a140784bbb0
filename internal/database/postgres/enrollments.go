package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/recognition"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// uniqueViolation is the PostgreSQL error code for duplicate primary keys.
const uniqueViolation = "23505"

// EnrollmentRepository provides PostgreSQL-backed enrollment storage.
// Embeddings are stored as pgvector columns.
type EnrollmentRepository struct {
	pool *Pool
}

// NewEnrollmentRepository creates a new PostgreSQL enrollment repository.
func NewEnrollmentRepository(pool *Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Enroll adds a new identity. Duplicate identity IDs surface as
// database.ErrDuplicateIdentity so callers can tell a caller error apart
// from a persistence failure.
func (r *EnrollmentRepository) Enroll(ctx context.Context, e database.Enrollment) error {
	query := `
		INSERT INTO enrollments (identity_id, display_name, embedding, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`

	vec := pgvector.NewVector(e.Embedding)
	_, err := r.pool.Exec(ctx, query, e.IdentityID, e.DisplayName, vec, e.EnrolledAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return database.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// Replace updates the enrollment for an identity, creating it if absent.
func (r *EnrollmentRepository) Replace(ctx context.Context, e database.Enrollment) error {
	query := `
		INSERT INTO enrollments (identity_id, display_name, embedding, enrolled_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (identity_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			embedding = EXCLUDED.embedding,
			enrolled_at = EXCLUDED.enrolled_at
	`

	vec := pgvector.NewVector(e.Embedding)
	if _, err := r.pool.Exec(ctx, query, e.IdentityID, e.DisplayName, vec, e.EnrolledAt); err != nil {
		return fmt.Errorf("replace enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment. Deleting an absent identity is a no-op.
func (r *EnrollmentRepository) Delete(ctx context.Context, identityID string) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM enrollments WHERE identity_id = $1", identityID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// Get retrieves a single enrollment, returns nil if not found.
func (r *EnrollmentRepository) Get(ctx context.Context, identityID string) (*database.Enrollment, error) {
	query := `
		SELECT identity_id, display_name, embedding, enrolled_at
		FROM enrollments
		WHERE identity_id = $1
	`

	var e database.Enrollment
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, query, identityID).Scan(
		&e.IdentityID,
		&e.DisplayName,
		&vec,
		&e.EnrolledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query enrollment: %w", err)
	}

	e.Embedding = vec.Slice()
	return &e, nil
}

// List returns a snapshot of all enrollments in enrollment order.
func (r *EnrollmentRepository) List(ctx context.Context) ([]database.Enrollment, error) {
	query := `
		SELECT identity_id, display_name, embedding, enrolled_at
		FROM enrollments
		ORDER BY enrolled_at, identity_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var out []database.Enrollment
	for rows.Next() {
		var e database.Enrollment
		var vec pgvector.Vector
		if err := rows.Scan(&e.IdentityID, &e.DisplayName, &vec, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		e.Embedding = vec.Slice()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return out, nil
}

// Count returns the number of enrolled identities.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM enrollments").Scan(&count); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

// FindByDisplayName returns enrollments matching the display name after
// normalization (lowercase, no diacritics, collapsed whitespace), so
// "jan novak" matches "Jan Novák". Supports the deprecated delete-by-name
// path; identity IDs are the canonical key.
func (r *EnrollmentRepository) FindByDisplayName(ctx context.Context, name string) ([]database.Enrollment, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	want := recognition.NormalizeDisplayName(name)
	var out []database.Enrollment
	for _, e := range all {
		if recognition.NormalizeDisplayName(e.DisplayName) == want {
			out = append(out, e)
		}
	}
	return out, nil
}
