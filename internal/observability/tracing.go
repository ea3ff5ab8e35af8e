package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceName is reported on every span resource.
const ServiceName = "litchitool"

const (
	defaultOTLPEndpoint = "localhost:4317"
	flushTimeout        = 5 * time.Second
)

// Tracing selects where spans go. An empty Exporter disables tracing.
type Tracing struct {
	Exporter    string // stdout | otlp
	Endpoint    string
	SampleRatio float64
	// Output receives stdout exporter spans, STDERR when nil.
	Output io.Writer
}

// StartTracing installs the global tracer provider and trace context
// propagation. The returned stop flushes pending spans and never fails;
// flush errors are logged.
func StartTracing(ctx context.Context, t Tracing, log *slog.Logger) (stop func(), err error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	if t.Exporter == "" {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func() {}, nil
	}

	exp, err := newExporter(ctx, t)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(t.SampleRatio)),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", ServiceName))),
	)
	otel.SetTracerProvider(tp)
	log.Debug("tracing enabled", "exporter", t.Exporter, "sample_ratio", t.SampleRatio)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("flush traces", "err", err)
		}
	}, nil
}

func newExporter(ctx context.Context, t Tracing) (sdktrace.SpanExporter, error) {
	switch t.Exporter {
	case "stdout":
		out := t.Output
		if out == nil {
			out = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithoutTimestamps())
	case "otlp":
		endpoint := t.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	}
	return nil, fmt.Errorf("unsupported tracing exporter %q", t.Exporter)
}
