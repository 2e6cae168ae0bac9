package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("setting", "lets.verbose").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "lets.verbose", line["setting"])
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lets.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	logger.Info().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{in: "trace", want: zerolog.TraceLevel},
		{in: "debug", want: zerolog.DebugLevel},
		{in: "error", want: zerolog.ErrorLevel},
		{in: "unknown", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestMetrics_RecordDispatch(t *testing.T) {
	m, err := NewMetrics(DefaultConfig().Metrics)
	require.NoError(t, err)

	m.RecordDispatch("cmake.build", engine.ExitOK, time.Millisecond)
	m.RecordDispatch("cmake.build", engine.ExitOK, time.Millisecond)
	m.RecordDispatch("cmake.build", 3, time.Millisecond)
	m.RecordDispatch("", engine.ExitFailure, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("cmake.build", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("cmake.build", OutcomeNonZero)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues(unresolvedVerb, OutcomeFailure)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.dispatchDuration))
}

func TestMetrics_RecordSettingsSaved(t *testing.T) {
	m, err := NewMetrics(DefaultConfig().Metrics)
	require.NoError(t, err)

	m.RecordSettingsSaved(nil)
	m.RecordSettingsSaved(errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsSaves.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settingsSaves.WithLabelValues(OutcomeFailure)))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	cfg := DefaultConfig().Metrics
	cfg.Textfile = filepath.Join(t.TempDir(), "lets.prom")
	m, err := NewMetrics(cfg)
	require.NoError(t, err)

	m.RecordDispatch("lets.get", engine.ExitOK, time.Millisecond)
	require.NoError(t, m.WriteTextfile())

	data, err := os.ReadFile(cfg.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lets_dispatch_total{outcome="success",verb="lets.get"} 1`)
}

func TestMetrics_WriteTextfileDisabled(t *testing.T) {
	m, err := NewMetrics(DefaultConfig().Metrics)
	require.NoError(t, err)
	assert.NoError(t, m.WriteTextfile())
}

func TestTracer_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig().Tracing
	cfg.Exporter = "stdout"
	cfg.Writer = &buf

	tracer, err := NewTracer(cfg, "lets", "test")
	require.NoError(t, err)

	ctx, span := tracer.Start(context.Background(), "lets.dispatch")
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, errors.New("boom"))
	span.End()

	require.NoError(t, tracer.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "lets.dispatch")
	assert.Contains(t, buf.String(), "boom")
}

func TestTracer_UnsupportedExporter(t *testing.T) {
	cfg := DefaultConfig().Tracing
	cfg.Exporter = "zipkin"

	_, err := NewTracer(cfg, "lets", "test")
	assert.Error(t, err)
}

func TestTelemetry_DrivesEngine(t *testing.T) {
	var logs bytes.Buffer
	cfg := DefaultConfig()
	cfg.RunID = "run-42"
	cfg.Logging.Format = "json"
	cfg.Logging.Writer = &logs
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "lets.prom")

	tel, err := NewTelemetry(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	e, err := engine.New(engine.Options{
		Out:      &out,
		Logger:   &tel.Logger,
		Tracer:   tel.Tracer,
		Recorder: tel.Metrics,
	})
	require.NoError(t, err)
	require.NoError(t, e.Start(context.Background()))

	assert.Equal(t, engine.ExitFailure, e.Process(context.Background(), []string{"nosuchverb"}))
	assert.Equal(t, engine.ExitOK, e.Process(context.Background(), []string{"get", "verbose"}))
	require.NoError(t, tel.Shutdown(context.Background()))

	assert.Contains(t, logs.String(), `"run_id":"run-42"`)
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Metrics.dispatches.WithLabelValues(unresolvedVerb, OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(tel.Metrics.dispatches.WithLabelValues("lets.get", OutcomeSuccess)))

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lets_dispatch_duration_seconds")
}
