package ttree

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	metricsdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zaptest"

	"github.com/go-faster/ttree/otelttree"
)

type randomIDGenerator struct {
	sync.Mutex
	rand *rand.Rand
}

// NewSpanID returns a non-zero span ID from a randomly-chosen sequence.
func (gen *randomIDGenerator) NewSpanID(_ context.Context, _ trace.TraceID) (sid trace.SpanID) {
	gen.Lock()
	defer gen.Unlock()
	gen.rand.Read(sid[:])
	return sid
}

// NewIDs returns a non-zero trace ID and a non-zero span ID from a
// randomly-chosen sequence.
func (gen *randomIDGenerator) NewIDs(_ context.Context) (tid trace.TraceID, sid trace.SpanID) {
	gen.Lock()
	defer gen.Unlock()
	gen.rand.Read(tid[:])
	gen.rand.Read(sid[:])
	return tid, sid
}

func attr(kvs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range kvs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTree_Arrays_tracing(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()
	tp := tracesdk.NewTracerProvider(
		// Using deterministic random ids.
		tracesdk.WithIDGenerator(&randomIDGenerator{
			rand: rand.New(rand.NewSource(15)),
		}),
		tracesdk.WithSyncer(exporter),
	)
	reader := metricsdk.NewManualReader()
	mp := metricsdk.NewMeterProvider(metricsdk.WithReader(reader))

	tree, err := New(eventSource(t), Options{
		Logger:         zaptest.NewLogger(t),
		TracerProvider: tp,
		MeterProvider:  mp,
	})
	require.NoError(t, err)

	_, err = tree.Arrays(ctx, []string{"P3.Py - 50", "vec", "wonky"}, ReadOptions{})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	var (
		root    tracetest.SpanStub
		columns = map[string]tracetest.SpanStub{}
	)
	for _, s := range spans {
		switch s.Name {
		case "Arrays":
			root = s
		case "Column":
			v, ok := attr(s.Attributes, otelttree.ExpressionKey)
			require.True(t, ok)
			columns[v.AsString()] = s
		}
	}
	require.Equal(t, "Arrays", root.Name)
	require.Equal(t, codes.Error, root.Status.Code)
	v, ok := attr(root.Attributes, otelttree.ColumnsKey)
	require.True(t, ok)
	require.Equal(t, int64(3), v.AsInt64())
	require.Equal(t, otelttree.Name, root.InstrumentationScope.Name)

	require.Len(t, columns, 3)
	for _, s := range columns {
		require.Equal(t, root.SpanContext.TraceID(), s.SpanContext.TraceID())
		require.Equal(t, root.SpanContext.SpanID(), s.Parent.SpanID())
	}
	vec := columns["vec"]
	require.Equal(t, codes.Unset, vec.Status.Code)
	v, ok = attr(vec.Attributes, otelttree.BranchKey)
	require.True(t, ok)
	require.Equal(t, "vec", v.AsString())
	v, ok = attr(vec.Attributes, otelttree.InterpretationKey)
	require.True(t, ok)
	require.Equal(t, "AsJagged(AsDtype('>f8'), header_bytes=10)", v.AsString())
	_, ok = attr(columns["P3.Py - 50"].Attributes, otelttree.BranchKey)
	require.False(t, ok, "formula is not branch")
	failed := columns["wonky"]
	require.Equal(t, codes.Error, failed.Status.Code)
	kind, ok := attr(failed.Attributes, otelttree.ErrorKindKey)
	require.True(t, ok)
	require.Equal(t, "not_found", kind.AsString())
	require.NotEmpty(t, failed.Events, "error should be recorded")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(2), sums["ttree.columns.decoded"])
	require.Equal(t, int64(1), sums["ttree.errors"])
	require.Positive(t, sums["ttree.bytes.decoded"])
}
