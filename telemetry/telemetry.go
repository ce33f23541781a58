// Package telemetry holds the tracer and the Prometheus metrics recorded
// while parsing.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "jsparse"

// Parse outcomes used as the status label.
const (
	StatusOK        = "ok"
	StatusRecovered = "recovered"
	StatusFatal     = "fatal"
	StatusSkipped   = "skipped"
	StatusError     = "error"
)

var (
	// filesTotal counts processed files.
	//
	// Labels:
	//   - media_type: "JavaScript", "TypeScript", "Tsx", ...
	//   - status: "ok", "recovered", "fatal", "skipped" or "error"
	filesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsparse",
			Name:      "files_total",
			Help:      "Total number of processed source files.",
		},
		[]string{"media_type", "status"},
	)

	parseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jsparse",
			Name:      "parse_duration_seconds",
			Help:      "Duration of a single file parse in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"media_type"},
	)

	bytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jsparse",
			Name:      "bytes_total",
			Help:      "Total number of source bytes parsed.",
		},
	)

	diagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jsparse",
			Name:      "diagnostics_total",
			Help:      "Total syntax diagnostics by severity.",
		},
		[]string{"severity"},
	)
)

// RecordFile records one processed file.
func RecordFile(mediaType, status string, size int, d time.Duration) {
	filesTotal.WithLabelValues(mediaType, status).Inc()
	if status == StatusSkipped || status == StatusError {
		return
	}
	parseDuration.WithLabelValues(mediaType).Observe(d.Seconds())
	bytesTotal.Add(float64(size))
}

func RecordDiagnostics(severity string, n int) {
	if n > 0 {
		diagnosticsTotal.WithLabelValues(severity).Add(float64(n))
	}
}

// WriteMetrics writes the default registry in the text exposition format,
// for collection by the node exporter textfile collector.
func WriteMetrics(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// SetupTracing installs a global tracer provider that writes finished
// spans to w as JSON. The returned function flushes and shuts it down.
func SetupTracing(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
