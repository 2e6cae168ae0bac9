package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace/noop"
)

// ReservedContext is the framework's own context. Built-in verbs and the
// reserved settings live here.
const ReservedContext = "lets"

// Reserved setting names.
const (
	SettingVerbose       = "verbose"
	SettingPluginFolders = "plugin_folders"
)

// DefaultProgram is the program name used in usage lines.
const DefaultProgram = "lets"

// DefaultWidth is the widest column count help text is wrapped to.
const DefaultWidth = 100

var errNilHandler = errors.New("handler is nil")

// Options configures an Engine.
type Options struct {
	// Program is the name shown in usage lines.
	Program string

	// Store persists settings. Nil disables persistence.
	Store Store

	// Loader discovers extensions in plugin folders. Nil disables discovery.
	Loader Loader

	// PluginFolders are searched before the folders listed in the persisted
	// plugin_folders setting.
	PluginFolders []string

	// Extensions are initialized before any discovered extension.
	Extensions []Extension

	// Out receives user-facing output. Defaults to os.Stdout.
	Out io.Writer

	// Width is the terminal width. Values above DefaultWidth are capped.
	Width int

	// Logger receives diagnostics, warnings and errors. Defaults to a no-op
	// logger.
	Logger *zerolog.Logger

	// Tracer starts the span wrapping each dispatch.
	Tracer SpanStarter

	// Recorder receives dispatch and persistence measurements.
	Recorder Recorder
}

// Engine is the registry root. It owns the verb and setting registries for
// the lifetime of the process and dispatches the command line.
type Engine struct {
	program       string
	store         Store
	loader        Loader
	pluginFolders []string
	extensions    []Extension

	settings []*Setting
	verbs    []*Verb

	out      *Printer
	log      zerolog.Logger
	tracer   SpanStarter
	recorder Recorder
	validate *validator.Validate

	// verboseRestore holds the persisted verbose value while verbose mode is
	// forced on for a single invocation.
	verboseRestore *Value
	started        bool
}

// New creates an engine with the reserved settings declared.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		program:       opts.Program,
		store:         opts.Store,
		loader:        opts.Loader,
		pluginFolders: append([]string{}, opts.PluginFolders...),
		extensions:    append([]Extension{}, opts.Extensions...),
		tracer:        opts.Tracer,
		recorder:      opts.Recorder,
		validate:      validator.New(),
	}
	if e.program == "" {
		e.program = DefaultProgram
	}
	if e.store == nil {
		e.store = nopStore{}
	}
	if e.tracer == nil {
		e.tracer = noop.NewTracerProvider().Tracer(DefaultProgram)
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	if opts.Logger != nil {
		e.log = *opts.Logger
	} else {
		e.log = zerolog.Nop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	e.out = NewPrinter(out, opts.Width)

	if err := e.RegisterSetting(ReservedContext, SettingPluginFolders,
		"List of folders to look for plugins", nil, List()); err != nil {
		return nil, err
	}
	if err := e.RegisterSetting(ReservedContext, SettingVerbose,
		"Sets the default verbose mode", []string{"on", "off"}, Scalar("off")); err != nil {
		return nil, err
	}
	return e, nil
}

// Start runs the startup phase: it reads the settings store, initializes the
// static and discovered extensions, registers the built-in verbs and applies
// the persisted values. Afterwards no verb or setting can be registered.
// Any returned error is fatal.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return NewSealedError("engine")
	}

	doc, err := e.store.Load(ctx)
	if err != nil {
		return NewPersistenceError("load", err)
	}

	folders, err := e.discoveryFolders(doc)
	if err != nil {
		return err
	}

	extensions := append([]Extension{}, e.extensions...)
	if e.loader != nil {
		found, err := e.loader.Load(ctx, folders)
		if err != nil {
			return fmt.Errorf("failed to load extensions: %w", err)
		}
		extensions = append(extensions, found...)
	}
	for _, ext := range extensions {
		e.log.Debug().Str("extension", ext.Name()).Msg("Initializing extension")
		if err := ext.Init(ctx, e); err != nil {
			return fmt.Errorf("failed to initialize extension %s: %w", ext.Name(), err)
		}
	}

	if err := e.registerBuiltins(); err != nil {
		return err
	}
	if err := e.applyDocument(doc); err != nil {
		return err
	}

	e.started = true
	return nil
}

// discoveryFolders returns the built-in plugin folders followed by the
// persisted plugin_folders list. Other persisted values are applied only once
// every extension had the chance to declare its settings.
func (e *Engine) discoveryFolders(doc SettingsDocument) ([]string, error) {
	folders := append([]string{}, e.pluginFolders...)
	raw, ok := doc[ReservedContext][SettingPluginFolders]
	if !ok {
		return folders, nil
	}
	v, err := ValueFromRaw(raw, KindList)
	if err != nil {
		return nil, NewInvalidPersistedError(QualifiedName(ReservedContext, SettingPluginFolders), err)
	}
	return append(folders, v.List()...), nil
}

// Program returns the program name used in usage lines.
func (e *Engine) Program() string { return e.program }

// Printer returns the printer for user-facing output.
func (e *Engine) Printer() *Printer { return e.out }

// Logger returns the engine's diagnostic logger.
func (e *Engine) Logger() *zerolog.Logger { return &e.log }

// Info prints text for the user.
func (e *Engine) Info(text string) { e.out.Print(text, 0) }

// Warning reports a warning.
func (e *Engine) Warning(text string) { e.log.Warn().Msg(text) }

// Error reports an error.
func (e *Engine) Error(text string) { e.log.Error().Msg(text) }

// Verbose reports text only while verbose mode is on.
func (e *Engine) Verbose(text string) {
	if !e.VerboseEnabled() {
		return
	}
	l := e.log.Level(zerolog.DebugLevel)
	l.Debug().Msg(text)
}

// VerboseEnabled reports whether lets.verbose is on.
func (e *Engine) VerboseEnabled() bool {
	v, _ := e.Setting(ReservedContext, SettingVerbose)
	return v.Scalar() == "on"
}

// report prints a failed operation: ambiguity as a warning, everything else
// as an error.
func (e *Engine) report(err error) {
	if IsAmbiguous(err) {
		e.Warning(err.Error())
		return
	}
	e.Error(err.Error())
}

func (e *Engine) verboseSetting() *Setting {
	return e.lookupSetting(ReservedContext, SettingVerbose)
}

// forceVerbose turns verbose mode on for this invocation only. The persisted
// value is kept for any save that happens meanwhile.
func (e *Engine) forceVerbose() {
	s := e.verboseSetting()
	if s.value.Scalar() == "on" {
		return
	}
	prev := s.value.Clone()
	e.verboseRestore = &prev
	s.value = Scalar("on")
}

type nopStore struct{}

func (nopStore) Load(context.Context) (SettingsDocument, error) { return SettingsDocument{}, nil }
func (nopStore) Save(context.Context, SettingsDocument) error   { return nil }
