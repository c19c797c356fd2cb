package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jsamuelsen11/todo-service/internal/platform/config"
	"github.com/jsamuelsen11/todo-service/internal/platform/telemetry"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	p, err := telemetry.Setup(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Setup error = %v", err)
	}
	if p.Tracer != nil || p.Meter != nil || p.Metrics != nil {
		t.Errorf("disabled Setup = %+v, want empty Providers", p)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on empty Providers = %v, want nil", err)
	}
}

// Setup installs global providers, so these cases run sequentially.
func TestSetup_Exporters(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		endpoint string
	}{
		{name: "stdout", exporter: telemetry.ExporterStdout},
		{name: "otlp host:port", exporter: telemetry.ExporterOTLP, endpoint: "localhost:4318"},
		{name: "otlp url", exporter: telemetry.ExporterOTLP, endpoint: "http://localhost:4318"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p, err := telemetry.Setup(ctx, config.TelemetryConfig{
				Enabled:     true,
				Exporter:    tt.exporter,
				Endpoint:    tt.endpoint,
				ServiceName: "todo-service-test",
			})
			if err != nil {
				t.Fatalf("Setup error = %v", err)
			}
			t.Cleanup(func() {
				// Flushing to a missing collector may fail.
				_ = p.Shutdown(ctx)
			})

			if p.Tracer == nil || p.Meter == nil || p.Metrics == nil {
				t.Fatalf("Setup = %+v, want all providers set", p)
			}
			if otel.GetTracerProvider() != p.Tracer {
				t.Error("global tracer provider was not installed")
			}
			if len(otel.GetTextMapPropagator().Fields()) < 2 {
				t.Error("global propagator should carry trace context and baggage fields")
			}
		})
	}
}

func TestSetup_InvalidExporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.TelemetryConfig
		wantErr error
	}{
		{
			name:    "unknown exporter",
			cfg:     config.TelemetryConfig{Enabled: true, Exporter: "zipkin"},
			wantErr: telemetry.ErrUnsupportedExporter,
		},
		{
			name:    "otlp without endpoint",
			cfg:     config.TelemetryConfig{Enabled: true, Exporter: telemetry.ExporterOTLP},
			wantErr: telemetry.ErrMissingEndpoint,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := telemetry.Setup(context.Background(), tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Setup error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMetrics_RecordsToReader(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := telemetry.NewMetrics(mp, "todo-service-test")
	if err != nil {
		t.Fatalf("NewMetrics error = %v", err)
	}

	ctx := context.Background()
	metrics.ServerRequestTotal.Add(ctx, 1)
	metrics.ServerRequestDuration.Record(ctx, 0.02)
	metrics.DBOperationTotal.Add(ctx, 2)
	metrics.DBOperationDuration.Record(ctx, 0.001)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect error = %v", err)
	}

	got := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = true
		}
	}
	for _, name := range []string{
		"http.server.request.total",
		"http.server.request.duration",
		"db.client.operation.total",
		"db.client.operation.duration",
	} {
		if !got[name] {
			t.Errorf("instrument %q was not collected", name)
		}
	}
}

func TestNewMetrics_NoopProvider(t *testing.T) {
	t.Parallel()

	metrics, err := telemetry.NewMetrics(noop.NewMeterProvider(), "todo-service-test")
	if err != nil {
		t.Fatalf("NewMetrics(noop) error = %v", err)
	}

	// Recording against noop instruments must be safe.
	metrics.DBOperationTotal.Add(context.Background(), 1)
	metrics.ServerRequestDuration.Record(context.Background(), 0.01)
}
