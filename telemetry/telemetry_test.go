package telemetry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestWriteMetrics(t *testing.T) {
	RecordFile("TypeScript", StatusOK, 120, 2*time.Millisecond)
	RecordFile("JavaScript", StatusSkipped, 0, 0)
	RecordDiagnostics("recoverable", 2)
	RecordDiagnostics("fatal", 0)

	path := filepath.Join(t.TempDir(), "jsparse.prom")
	require.NoError(t, WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, `jsparse_files_total{media_type="TypeScript",status="ok"}`)
	assert.Contains(t, text, `jsparse_files_total{media_type="JavaScript",status="skipped"}`)
	assert.Contains(t, text, "jsparse_parse_duration_seconds_bucket")
	assert.Contains(t, text, "jsparse_bytes_total")
	assert.Contains(t, text, `jsparse_diagnostics_total{severity="recoverable"}`)
	assert.NotContains(t, text, `severity="fatal"`)
}

func TestWriteMetricsBadPath(t *testing.T) {
	err := WriteMetrics(filepath.Join(t.TempDir(), "missing", "dir", "m.prom"))
	assert.Error(t, err)
}

func TestSetupTracing(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	var buf bytes.Buffer
	shutdown, err := SetupTracing(&buf)
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "parse")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"parse"`)
}
