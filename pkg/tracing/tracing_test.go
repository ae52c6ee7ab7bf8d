package tracing

import (
	"context"
	"testing"

	"property-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan_WithoutTracer(t *testing.T) {
	SetTracer(nil)
	ctx := context.Background()

	spanCtx, span := StartSpan(ctx, "noop")
	defer span.End()

	assert.Equal(t, ctx, spanCtx)
	assert.Empty(t, GetTraceID(spanCtx))
}

func TestInit_WithoutExporter(t *testing.T) {
	shutdown, err := Init(context.Background(), "property-service-test", config.TracingConfig{SampleRatio: 1})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = shutdown(context.Background())
		SetTracer(nil)
	})

	ctx, span := StartSpan(context.Background(), "sampled")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.Len(t, GetTraceID(ctx), 32)
}
