package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentalhealthdb/mhdb/internal/config"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracing_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	ctx := context.Background()

	shutdown, err := InitTracing(ctx, config.TracingConfig{Enabled: true, Exporter: "stdout", File: path}, "test")
	require.NoError(t, err)

	_, span := Tracer().Start(ctx, "pass.disorders")
	span.End()
	require.NoError(t, shutdown(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pass.disorders")
}

func TestInitTracing_UnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "otlp"}, "test")
	assert.ErrorContains(t, err, "unsupported exporter")
}
