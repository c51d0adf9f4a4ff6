package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bighogz/sentiment-features/internal/config"
)

func TestInitToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	shutdown, err := Init(config.TraceConfig{Enabled: true, File: path})
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "fetch.prices")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fetch.prices")
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(config.TraceConfig{})
	require.NoError(t, err)
	_, span := Tracer().Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
