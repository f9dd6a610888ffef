package dataset

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"certmap/internal/domain"
	"certmap/internal/ports"
)

// Provenance tells where the active dataset came from.
type Provenance string

const (
	ProvenanceStatic Provenance = "static"
	ProvenanceRemote Provenance = "remote"
)

// Snapshot is an immutable view of the dataset cell. Callers must treat the
// sensor slices as read-only.
type Snapshot struct {
	Sensors     []domain.SensorCertification
	Provenance  Provenance
	Syncing     bool
	SyncError   string
	DroppedRows int
	SyncedAt    time.Time
}

// Sensor returns the sensor line with the given slug.
func (s Snapshot) Sensor(slug domain.SensorSlug) (domain.SensorCertification, bool) {
	for _, sensor := range s.Sensors {
		if sensor.Slug == slug {
			return sensor, true
		}
	}
	return domain.SensorCertification{}, false
}

// Store is the process-wide dataset cell. It starts with the bundled
// reference data and accepts at most one remote refresh. After Close no
// mutation is applied, so a response arriving after teardown is discarded.
type Store struct {
	cur    atomic.Pointer[Snapshot]
	mu     sync.Mutex
	closed bool
	once   sync.Once
	logger *slog.Logger
	now    func() time.Time
}

// NewStore returns a store holding the bundled reference dataset.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{logger: logger, now: time.Now}
	s.cur.Store(&Snapshot{
		Sensors:    domain.SortSensors(domain.ReferenceSensors()),
		Provenance: ProvenanceStatic,
	})
	return s
}

// Snapshot returns the current state without locking.
func (s *Store) Snapshot() Snapshot {
	return *s.cur.Load()
}

// Close marks the store as torn down. Pending syncs finish without effect.
// Cancelling the context passed to Sync only aborts the fetch; the failure
// is still recorded unless Close was called.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Sync performs the one-shot remote refresh. Only the first call does any
// work; failures leave the bundled data in place and are not retried.
func (s *Store) Sync(ctx context.Context, source ports.CertificationSource) (HydrateReport, error) {
	first := false
	s.once.Do(func() { first = true })
	if !first {
		return HydrateReport{}, ErrAlreadySynced
	}

	if !s.mutate(func(next *Snapshot) { next.Syncing = true }) {
		return HydrateReport{}, ErrClosed
	}

	var (
		sensors []domain.SensorCertification
		report  HydrateReport
	)
	rows, err := source.FetchCertificationRows(ctx)
	if err == nil {
		sensors, report, err = Hydrate(rows)
	}

	applied := s.mutate(func(next *Snapshot) {
		next.Syncing = false
		if err != nil {
			next.SyncError = UserMessage(err)
			return
		}
		next.Sensors = sensors
		next.Provenance = ProvenanceRemote
		next.DroppedRows = report.Dropped
		next.SyncedAt = s.now()
		next.SyncError = ""
	})
	if !applied {
		s.logger.Info("discarding remote dataset after teardown")
		return report, ErrClosed
	}
	return report, err
}

// mutate applies fn to a copy of the current snapshot and swaps it in. It
// reports false, changing nothing, once the store is closed.
func (s *Store) mutate(fn func(next *Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	next := *s.cur.Load()
	fn(&next)
	s.cur.Store(&next)
	return true
}
