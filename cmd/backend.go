package cmd

import (
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/memory"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

// backend bundles the stores for one CLI invocation. With DATABASE_URL set it
// runs on PostgreSQL, otherwise on in-memory stores (useful for smoke tests,
// not for real deployments since nothing is persisted).
type backend struct {
	enrollments database.EnrollmentStore
	ledger      database.AttendanceStore
	pool        *postgres.Pool
}

func openBackend(cfg *config.Config) (*backend, error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, using in-memory stores")
		return &backend{
			enrollments: memory.NewEnrollmentStore(),
			ledger:      memory.NewAttendanceStore(),
		}, nil
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return &backend{
		enrollments: postgres.NewEnrollmentRepository(pool),
		ledger:      postgres.NewAttendanceRepository(pool),
		pool:        pool,
	}, nil
}

func (b *backend) Close() {
	if b.pool != nil {
		_ = b.pool.Close()
	}
}

// attendanceConfig converts the loaded configuration into service parameters,
// parsing both time windows.
func attendanceConfig(cfg *config.Config) (attendance.Config, error) {
	checkIn, err := attendance.ParseWindow(cfg.Attendance.CheckInWindow)
	if err != nil {
		return attendance.Config{}, fmt.Errorf("invalid check-in window: %w", err)
	}
	checkOut, err := attendance.ParseWindow(cfg.Attendance.CheckOutWindow)
	if err != nil {
		return attendance.Config{}, fmt.Errorf("invalid check-out window: %w", err)
	}
	return attendance.Config{
		Threshold:    cfg.Attendance.SimilarityThreshold,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		FrameTimeout: time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
	}, nil
}

// newService builds the identification service over the backend stores.
func newService(cfg *config.Config, b *backend) (*attendance.Service, error) {
	svcCfg, err := attendanceConfig(cfg)
	if err != nil {
		return nil, err
	}
	return attendance.NewService(b.enrollments, b.ledger, svcCfg), nil
}

// newEmbedder builds the embedding provider client from configuration.
func newEmbedder(cfg *config.Config) *embedding.Client {
	return embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.Dim)
}
