package telemetry

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by Init
const (
	ExporterAuto   = ""
	ExporterNone   = "none"
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
)

// Init configures the global OpenTelemetry trace provider.
// The stdout exporter writes spans to w. ExporterNone disables tracing.
// Otherwise, if OTEL_EXPORTER_OTLP_ENDPOINT is not set, tracing is disabled
// and a noop shutdown is returned.
func Init(ctx context.Context, serviceName, exporter string, w io.Writer) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	var spanExporter sdktrace.SpanExporter
	switch strings.ToLower(strings.TrimSpace(exporter)) {
	case ExporterNone:
		return noop, nil
	case ExporterStdout:
		if w == nil {
			w = os.Stderr
		}
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, err
		}
	default:
		endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
		if endpoint == "" {
			return noop, nil
		}

		initCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		spanExporter, err = otlptracehttp.New(initCtx,
			otlptracehttp.WithEndpoint(strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")),
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithTimeout(3*time.Second),
			otlptracehttp.WithRetry(otlptracehttp.RetryConfig{Enabled: false}),
		)
		if err != nil {
			// start without tracing
			return noop, nil
		}
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
