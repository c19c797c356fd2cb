package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Supported exporter names.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

var (
	// ErrUnsupportedExporter is returned for exporter names other than
	// ExporterStdout and ExporterOTLP.
	ErrUnsupportedExporter = errors.New("unsupported telemetry exporter")

	// ErrMissingEndpoint is returned when the OTLP exporter has no endpoint.
	ErrMissingEndpoint = errors.New("otlp exporter requires an endpoint")
)

// target is a resolved exporter destination. For OTLP, host is the
// collector's host:port and insecure is set unless the endpoint is https.
type target struct {
	exporter string
	host     string
	insecure bool
}

// parseTarget accepts "otel-collector:4318" as well as full URLs such as
// "https://collector.example.com:4318".
func parseTarget(exporter, endpoint string) (target, error) {
	switch exporter {
	case ExporterStdout:
		return target{exporter: exporter}, nil
	case ExporterOTLP:
		if endpoint == "" {
			return target{}, ErrMissingEndpoint
		}
		t := target{exporter: exporter, host: endpoint, insecure: true}
		if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
			t.host = u.Host
			t.insecure = u.Scheme != "https"
		}
		return t, nil
	default:
		return target{}, fmt.Errorf("%w: %q", ErrUnsupportedExporter, exporter)
	}
}

func (t target) spanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if t.exporter == ExporterStdout {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(t.host)}
	if t.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func (t target) metricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if t.exporter == ExporterStdout {
		return stdoutmetric.New()
	}
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(t.host)}
	if t.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}
