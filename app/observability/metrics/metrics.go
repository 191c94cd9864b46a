package metrics

import (
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	CacheHitsTotal          metric.Int64Counter
	CacheMissesTotal        metric.Int64Counter
	CacheInvalidationsTotal metric.Int64Counter
	DbQueryDurationSeconds  metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Setup installs a meter provider backed by the Prometheus exporter. Metrics
// are served by promhttp on the main router. Call once at startup, before
// InitAppMetrics.
func Setup() error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return nil
}

// InitAppMetrics initializes the global metric instruments only once.
func InitAppMetrics() error {
	var initErr error
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-todo-api")
		m := &AppMetrics{}

		m.CacheHitsTotal, initErr = meter.Int64Counter(
			"task_cache_hits_total",
			metric.WithDescription("Total number of task list reads served from cache"),
			metric.WithUnit("{read}"),
		)
		if initErr != nil {
			return
		}

		m.CacheMissesTotal, initErr = meter.Int64Counter(
			"task_cache_misses_total",
			metric.WithDescription("Total number of task list reads that fell back to persistence"),
			metric.WithUnit("{read}"),
		)
		if initErr != nil {
			return
		}

		m.CacheInvalidationsTotal, initErr = meter.Int64Counter(
			"task_cache_invalidations_total",
			metric.WithDescription("Total number of cache invalidations triggered by task mutations"),
			metric.WithUnit("{invalidation}"),
		)
		if initErr != nil {
			return
		}

		m.DbQueryDurationSeconds, initErr = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if initErr != nil {
			return
		}

		appMetrics = m
	})
	if initErr != nil {
		return fmt.Errorf("failed to create metric instruments: %w", initErr)
	}
	return nil
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
