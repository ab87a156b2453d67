package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpu         metric.Float64Gauge
	memory      metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfGauges() (perfGauges, error) {
	meter := otel.Meter("go.perf_stats")

	var g perfGauges
	var err error
	if g.cpu, err = meter.Float64Gauge("cpu_usage", metric.WithUnit("%")); err != nil {
		return g, err
	}
	if g.memory, err = meter.Int64Gauge("allocated_mb", metric.WithUnit("MB")); err != nil {
		return g, err
	}
	if g.liveObjects, err = meter.Int64Gauge("live_objects"); err != nil {
		return g, err
	}
	if g.goroutines, err = meter.Int64Gauge("goroutine_count"); err != nil {
		return g, err
	}
	return g, nil
}

func (g perfGauges) record(ctx context.Context, sample time.Duration) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	usage, err := cpu.PercentWithContext(ctx, sample, false)
	if err == nil && len(usage) > 0 {
		g.cpu.Record(ctx, usage[0])
	} else if err != nil && ctx.Err() == nil {
		slog.Warn("failed to read cpu usage", "err", err)
	}

	g.memory.Record(ctx, int64(memStats.Alloc/1_000_000))
	g.liveObjects.Record(ctx, int64(memStats.Mallocs)-int64(memStats.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
}

// InstrumentPerfStats records process gauges every `interval` until `ctx` is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) error {
	gauges, err := newPerfGauges()
	if err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gauges.record(ctx, time.Second)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
