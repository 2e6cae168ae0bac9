// Package telemetry provides the observability instrumentation for lets.
//
// It combines structured logging (zerolog), tracing (OpenTelemetry) and
// metrics (Prometheus) for a single invocation of the program.
//
// # Usage
//
// Build telemetry at startup and hand its parts to the engine:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.RunID = uuid.NewString()
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	e, err := engine.New(engine.Options{
//	    Logger:   &tel.Logger,
//	    Tracer:   tel.Tracer,
//	    Recorder: tel.Metrics,
//	})
//
// # Structured Logging
//
// Every log line carries the run_id of the invocation. Log levels: trace,
// debug, info, warn, error. The console format is meant for terminals, json
// for log collection.
//
// # Tracing
//
// The engine wraps every dispatch in a lets.dispatch span. Supported
// exporters: otlp (gRPC), stdout and none. Spans are batched and flushed
// by Shutdown.
//
// # Metrics
//
// The following metrics are kept in a private registry:
//
//	lets_dispatch_total{verb,outcome}
//	lets_dispatch_duration_seconds{verb}
//	lets_settings_saves_total{outcome}
//
// There is no long-lived process to scrape, so the registry is written to a
// node-exporter textfile on Shutdown when MetricsConfig.Textfile is set.
package telemetry
