// Package telemetry sets up OpenTelemetry tracing for a run.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/bighogz/sentiment-features/internal/config"
)

const TracerName = "github.com/bighogz/sentiment-features"

// ShutdownFunc flushes pending spans and closes the output.
type ShutdownFunc func(context.Context) error

// Init installs the global tracer provider. Disabled tracing installs a no-op
// provider. Spans go to cfg.File, or stdout when File is empty.
func Init(cfg config.TraceConfig) (ShutdownFunc, error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	var w io.Writer = os.Stdout
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("create trace file: %w", err)
		}
		w, closer = f, f
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// Tracer returns the package tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
