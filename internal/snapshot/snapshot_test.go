package snapshot

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalhealthdb/mhdb/internal/metrics"
	"github.com/mentalhealthdb/mhdb/pkg/graph"
)

func sampleGraph() *graph.Store {
	return graph.New().
		MergeAll("mhdb:Panic",
			graph.P("a", "owl:Class"),
			graph.P("rdfs:label", `"""panic"""@en`),
			graph.P("rdfs:subClassOf", "mhdb:Disorder"),
		).
		Merge("mhdb:Smith_2019", "a", "mhdb:BibliographicResource")
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	m := metrics.New()

	s, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	s.WithMetrics(m)

	g := sampleGraph()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(g, Metadata{RunID: "run-1", Version: "1.0.0", Timestamp: when}))
	require.NoError(t, s.Close())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SnapshotCommit))

	reopened, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	loaded, meta, err := reopened.Load()
	require.NoError(t, err)
	assert.True(t, g.Equal(loaded))
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, 4, meta.Triples)
	assert.Equal(t, 2, meta.Subjects)
	assert.True(t, when.Equal(meta.Timestamp))

	about, err := reopened.Subject("mhdb:Panic")
	require.NoError(t, err)
	assert.Len(t, about, 3)
}

func TestSaveReplacesPrevious(t *testing.T) {
	s, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(sampleGraph(), Metadata{RunID: "first"}))
	next := graph.New().Merge("mhdb:Mania", "a", "owl:Class")
	require.NoError(t, s.Save(next, Metadata{RunID: "second"}))

	loaded, meta, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "second", meta.RunID)
	assert.Equal(t, 1, loaded.Len())
	assert.False(t, meta.Timestamp.IsZero())
}

func TestLoadEmpty(t *testing.T) {
	s, err := Open("", zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}
