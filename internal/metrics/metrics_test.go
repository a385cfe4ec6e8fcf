package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.TriplesAdded.WithLabelValues("disorders").Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.TriplesAdded.WithLabelValues("disorders")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.TriplesAdded.WithLabelValues("disorders")))
}

func TestRecordUnknownPrefixes(t *testing.T) {
	m := New()
	m.RecordUnknownPrefixes(map[string]int{"foo": 2, "bar": 1})
	m.RecordUnknownPrefixes(map[string]int{"foo": 1})

	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnknownPrefix.WithLabelValues("foo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnknownPrefix.WithLabelValues("bar")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.BuildInfo.WithLabelValues("1.0.0", "run-1").Set(1)
	m.StoreTriples.Set(42)

	path := filepath.Join(t.TempDir(), "mhdb.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mhdb_store_triples 42")
	assert.Contains(t, string(data), `mhdb_build_info{run_id="run-1",version="1.0.0"} 1`)
}
