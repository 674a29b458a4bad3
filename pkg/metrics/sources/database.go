package sources

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/carverauto/pulse/pkg/metrics"
)

// Pinger is the part of *sql.DB a DatabaseSource needs.
type Pinger interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// DatabaseSource reports availability and pool usage of a database handle.
// It is critical: availability is checked in every state.
type DatabaseSource struct {
	name string
	db   Pinger
	now  func() time.Time
}

var _ metrics.Source = (*DatabaseSource)(nil)

func NewDatabaseSource(name string, db Pinger) *DatabaseSource {
	return &DatabaseSource{name: name, db: db, now: time.Now}
}

func (s *DatabaseSource) Name() string { return s.name }

func (*DatabaseSource) Critical() bool { return true }

// Collect never fails on an unreachable database; it reports
// <name>_available=0 instead so rules can alert on it.
func (s *DatabaseSource) Collect(ctx context.Context) (map[string]float64, error) {
	start := s.now()
	available := 1.0

	if err := s.db.PingContext(ctx); err != nil {
		log.Printf("Database %s ping failed: %v", s.name, err)

		available = 0
	}

	stats := s.db.Stats()

	return map[string]float64{
		s.name + "_available":        available,
		s.name + "_ping_ms":          float64(s.now().Sub(start).Microseconds()) / 1000,
		s.name + "_open_connections": float64(stats.OpenConnections),
		s.name + "_in_use":           float64(stats.InUse),
		s.name + "_wait_count":       float64(stats.WaitCount),
	}, nil
}
