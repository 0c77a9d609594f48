package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "reelroom-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "service", "Noop")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestRepoLogger_WritesTableAndFields(t *testing.T) {
	var buf bytes.Buffer
	prev := GlobalLogger
	SetLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { GlobalLogger = prev })

	NewRepoLogger("posts").LogCreate(context.Background(), map[string]interface{}{"post_id": 4})
	LogAsyncOperationError(context.Background(), "media.delete", errors.New("gone"), nil)

	out := buf.String()
	assert.Contains(t, out, `"table":"posts"`)
	assert.Contains(t, out, `"post_id":4`)
	assert.Contains(t, out, `"operation":"media.delete"`)
	assert.Equal(t, "error", Outcome(errors.New("x")))
	assert.Equal(t, "ok", Outcome(nil))
}

func TestNewExporter_UnknownKind(t *testing.T) {
	_, err := newExporter(TracingConfig{Exporter: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zipkin"`)

	exp, err := newExporter(TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
