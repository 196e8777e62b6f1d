package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricModulesTotal   = "amdshake.bundle.modules.total"
	metricModulesRemoved = "amdshake.bundle.modules.removed.total"
	metricImportsPruned  = "amdshake.bundle.imports.pruned.total"
	metricBytesIn        = "amdshake.bundle.bytes.in.total"
	metricBytesOut       = "amdshake.bundle.bytes.out.total"

	attrReason = "reason"
)

// BundleMetrics holds OTel instruments describing processed bundles.
type BundleMetrics struct {
	modulesTotal   metric.Int64Counter
	modulesRemoved metric.Int64Counter
	importsPruned  metric.Int64Counter
	bytesIn        metric.Int64Counter
	bytesOut       metric.Int64Counter
}

// BundleStats summarizes one processed bundle, decoupled from the pass types.
type BundleStats struct {
	Op            string
	ModulesBefore int
	BytesBefore   int
	BytesAfter    int
	PrunedImports int
	// RemovedByReason counts dropped modules per removal reason.
	RemovedByReason map[string]int
}

// NewBundleMetrics creates bundle metric instruments from the given meter.
func NewBundleMetrics(mt metric.Meter) (*BundleMetrics, error) {
	modules, err := mt.Int64Counter(metricModulesTotal,
		metric.WithDescription("Modules read from input bundles"),
		metric.WithUnit("{module}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricModulesTotal, err)
	}

	removed, err := mt.Int64Counter(metricModulesRemoved,
		metric.WithDescription("Modules dropped by reason"),
		metric.WithUnit("{module}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricModulesRemoved, err)
	}

	pruned, err := mt.Int64Counter(metricImportsPruned,
		metric.WithDescription("Unused factory imports pruned"),
		metric.WithUnit("{import}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricImportsPruned, err)
	}

	bytesIn, err := mt.Int64Counter(metricBytesIn,
		metric.WithDescription("Bundle bytes read"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesIn, err)
	}

	bytesOut, err := mt.Int64Counter(metricBytesOut,
		metric.WithDescription("Bundle bytes written"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricBytesOut, err)
	}

	return &BundleMetrics{
		modulesTotal:   modules,
		modulesRemoved: removed,
		importsPruned:  pruned,
		bytesIn:        bytesIn,
		bytesOut:       bytesOut,
	}, nil
}

// RecordBundle records the statistics of one processed bundle.
// Safe to call on a nil receiver (no-op).
func (bm *BundleMetrics) RecordBundle(ctx context.Context, stats BundleStats) {
	if bm == nil {
		return
	}

	opAttrs := metric.WithAttributes(attribute.String(attrOp, stats.Op))

	bm.modulesTotal.Add(ctx, int64(stats.ModulesBefore), opAttrs)
	bm.importsPruned.Add(ctx, int64(stats.PrunedImports), opAttrs)
	bm.bytesIn.Add(ctx, int64(stats.BytesBefore), opAttrs)
	bm.bytesOut.Add(ctx, int64(stats.BytesAfter), opAttrs)

	for reason, count := range stats.RemovedByReason {
		bm.modulesRemoved.Add(ctx, int64(count), metric.WithAttributes(
			attribute.String(attrOp, stats.Op),
			attribute.String(attrReason, reason),
		))
	}
}
