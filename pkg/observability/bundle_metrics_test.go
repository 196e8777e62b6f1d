package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/amdshake/pkg/observability"
)

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()

	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestBundleMetrics_RecordBundle(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	bm, err := observability.NewBundleMetrics(mp.Meter("test"))
	require.NoError(t, err)

	bm.RecordBundle(context.Background(), observability.BundleStats{
		Op:            "treeshake",
		ModulesBefore: 10,
		BytesBefore:   4096,
		BytesAfter:    1024,
		PrunedImports: 3,
		RemovedByReason: map[string]int{
			"unreachable": 4,
			"duplicate":   1,
		},
	})

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(10), sumOf(t, findMetric(rm, "amdshake.bundle.modules.total")))
	assert.Equal(t, int64(5), sumOf(t, findMetric(rm, "amdshake.bundle.modules.removed.total")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(rm, "amdshake.bundle.imports.pruned.total")))
	assert.Equal(t, int64(4096), sumOf(t, findMetric(rm, "amdshake.bundle.bytes.in.total")))
	assert.Equal(t, int64(1024), sumOf(t, findMetric(rm, "amdshake.bundle.bytes.out.total")))
}

func TestBundleMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var bm *observability.BundleMetrics

	assert.NotPanics(t, func() {
		bm.RecordBundle(context.Background(), observability.BundleStats{Op: "shrink"})
	})
}
