package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// Metrics holds the instruments recorded by the HTTP middleware and the
// PostgreSQL gateway.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	DBOperationDuration   metric.Float64Histogram
	DBOperationTotal      metric.Int64Counter
}

// NewMetrics registers the service instruments on mp. The meter is scoped to
// the module path and tagged with the service name.
func NewMetrics(mp metric.MeterProvider, serviceName string) (*Metrics, error) {
	meter := mp.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(semconv.ServiceName(serviceName)),
	)

	var (
		m   Metrics
		err error
	)
	histograms := []struct {
		dst               *metric.Float64Histogram
		name, description string
	}{
		{&m.ServerRequestDuration, "http.server.request.duration", "Duration of incoming HTTP requests"},
		{&m.DBOperationDuration, "db.client.operation.duration", "Duration of todo store operations"},
	}
	for _, h := range histograms {
		*h.dst, err = meter.Float64Histogram(h.name, metric.WithDescription(h.description), metric.WithUnit("s"))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", h.name, err)
		}
	}

	counters := []struct {
		dst                     *metric.Int64Counter
		name, description, unit string
	}{
		{&m.ServerRequestTotal, "http.server.request.total", "Total number of incoming HTTP requests", "{request}"},
		{&m.DBOperationTotal, "db.client.operation.total", "Total number of todo store operations", "{operation}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", c.name, err)
		}
	}

	return &m, nil
}
