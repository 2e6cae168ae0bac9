package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// SettingsDocument is the persisted form of the setting registry:
// context -> setting -> value, where each value is a string, a []string or a
// map[string]string when saved and whatever the decoder produced when loaded.
type SettingsDocument map[string]map[string]any

// Store persists the settings document.
// Implementations must treat a missing backing file as an empty document and
// overwrite the whole document on every save.
type Store interface {
	// Load reads the persisted document.
	Load(ctx context.Context) (SettingsDocument, error)

	// Save replaces the persisted document.
	Save(ctx context.Context, doc SettingsDocument) error
}

// Extension is a unit of third-party functionality. Init is its single entry
// point; it receives the engine and registers verbs and settings on it.
type Extension interface {
	// Name identifies the extension in diagnostics.
	Name() string

	// Init registers the extension's verbs and settings.
	Init(ctx context.Context, e *Engine) error
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc struct {
	ID   string
	Func func(ctx context.Context, e *Engine) error
}

// Name returns the extension identifier.
func (f ExtensionFunc) Name() string { return f.ID }

// Init calls the wrapped function.
func (f ExtensionFunc) Init(ctx context.Context, e *Engine) error { return f.Func(ctx, e) }

// Loader discovers extensions in the given folders. The returned order is the
// order in which their Init functions run.
type Loader interface {
	Load(ctx context.Context, folders []string) ([]Extension, error)
}

// Recorder receives operational measurements from the engine.
type Recorder interface {
	// RecordDispatch records a finished verb dispatch.
	RecordDispatch(verb string, code int, duration time.Duration)

	// RecordSettingsSaved records a write of the settings document.
	RecordSettingsSaved(err error)
}

// SpanStarter starts tracing spans. Both trace.Tracer and telemetry.Tracer
// satisfy it.
type SpanStarter interface {
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

type nopRecorder struct{}

func (nopRecorder) RecordDispatch(string, int, time.Duration) {}
func (nopRecorder) RecordSettingsSaved(error)                 {}
