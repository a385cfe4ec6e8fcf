// Package snapshot keeps the statements of the last successful build in
// a badger database so later runs can seed from them or export them
// without re-reading the workbooks.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mentalhealthdb/mhdb/internal/encoding"
	"github.com/mentalhealthdb/mhdb/internal/metrics"
	"github.com/mentalhealthdb/mhdb/internal/storage"
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/store"
)

// metaKey names the metadata entry written with every snapshot
const metaKey = "snapshot"

// ErrNoSnapshot is returned when the directory holds no committed snapshot
var ErrNoSnapshot = errors.New("no snapshot")

// Metadata describes the build a snapshot was taken from
type Metadata struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Triples   int       `json:"triples"`
	Subjects  int       `json:"subjects"`
	Passes    []string  `json:"passes,omitempty"`
}

// Store is an open snapshot directory
type Store struct {
	triples *store.TripleStore
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Open opens the snapshot at dir, creating it if needed
func Open(dir string, logger zerolog.Logger) (*Store, error) {
	backend, err := storage.NewBadgerStorage(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Store{
		triples: store.NewTripleStore(backend, encoding.NewKeyEncoder()),
		logger:  logger.With().Str("component", "snapshot").Logger(),
	}, nil
}

// WithMetrics counts commits in m
func (s *Store) WithMetrics(m *metrics.Metrics) *Store {
	s.metrics = m
	return s
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.triples.Close()
}

// Save replaces the snapshot with g. Triples and Subjects in meta are
// filled from g.
func (s *Store) Save(g *graph.Store, meta Metadata) error {
	if err := s.triples.Clear(); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	commits, err := s.triples.InsertTriples(g.Triples())
	if err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	meta.Triples = g.Len()
	meta.Subjects = g.SubjectCount()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot metadata: %w", err)
	}
	if err := s.triples.SetMeta(metaKey, data); err != nil {
		return fmt.Errorf("failed to write snapshot metadata: %w", err)
	}
	if err := s.triples.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SnapshotCommit.Inc()
	}
	s.logger.Info().
		Str("run_id", meta.RunID).
		Int("triples", meta.Triples).
		Int("commits", commits).
		Msg("snapshot saved")
	return nil
}

// Metadata returns the description of the stored snapshot
func (s *Store) Metadata() (Metadata, error) {
	data, err := s.triples.Meta(metaKey)
	if errors.Is(err, store.ErrNotFound) {
		return Metadata{}, ErrNoSnapshot
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read snapshot metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode snapshot metadata: %w", err)
	}
	return meta, nil
}

// Load reads the stored statements into memory
func (s *Store) Load() (*graph.Store, Metadata, error) {
	meta, err := s.Metadata()
	if err != nil {
		return nil, Metadata{}, err
	}

	g, err := s.triples.Graph()
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if g.Len() != meta.Triples {
		return nil, Metadata{}, fmt.Errorf("snapshot holds %d triples, metadata says %d", g.Len(), meta.Triples)
	}
	return g, meta, nil
}

// Subject returns the stored statements about one subject
func (s *Store) Subject(subject string) ([]graph.Triple, error) {
	return s.triples.Query(store.Pattern{Subject: subject})
}
