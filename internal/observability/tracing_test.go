package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() {
		Tracer = prev
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestStartSpanTagsUser(t *testing.T) {
	rec := recordSpans(t)

	ctx := WithUserID(context.Background(), "alice")
	_, span := StartSpan(ctx, "challenge", "accept", attribute.String("challenge_id", "c1"))
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "challenge.accept", ended[0].Name())
	attrs := attrMap(ended[0].Attributes())
	assert.Equal(t, "alice", attrs["enduser.id"])
	assert.Equal(t, "c1", attrs["challenge_id"])
}

func TestEndWithRecordsError(t *testing.T) {
	rec := recordSpans(t)

	run := func(fail bool) (err error) {
		_, span := StartSpan(context.Background(), "social", "accept_request")
		defer span.EndWith(&err)
		if fail {
			return errors.New("store down")
		}
		return nil
	}
	require.NoError(t, run(false))
	require.Error(t, run(true))

	ended := rec.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
	assert.Equal(t, "store down", ended[1].Status().Description)
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), newSampler(1).Description())
	assert.Contains(t, newSampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, newSampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "gymrace-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracingUnknownExporter(t *testing.T) {
	_, err := InitTracing(TracingConfig{ServiceName: "gymrace-test", Enabled: true, Exporter: "zipkin"})
	assert.Error(t, err)
}
