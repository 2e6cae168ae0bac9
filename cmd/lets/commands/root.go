package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lonesomebyte537/lets/pkg/config"
	"github.com/lonesomebyte537/lets/pkg/engine"
	"github.com/lonesomebyte537/lets/pkg/plugins"
	"github.com/lonesomebyte537/lets/pkg/stores"
	"github.com/lonesomebyte537/lets/pkg/telemetry"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Execute runs lets with args and returns the verb's exit code. An error
// means startup failed and no verb ran.
func Execute(ctx context.Context, args []string, info BuildInfo) (int, error) {
	var code int
	rootCmd := newRootCommand(info, &code)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1, err
	}
	return code, nil
}

func newRootCommand(info BuildInfo, code *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   engine.DefaultProgram + " [verb] [args...]",
		Short: "lets - a verb dispatcher for project tooling",
		Long: `lets runs verbs contributed by Starlark plugins and keeps their settings
in a single file.

Built-in verbs:
  help [topic...]            show help for verbs, contexts and settings
  get [name...]              print settings
  set name value...          replace a setting
  add name value...          extend a list or dict setting
  remove name value...       shrink a list or dict setting`,
		// Every argument belongs to the dispatched verb, including -h.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := run(cmd.Context(), cmd.OutOrStdout(), args, info)
			*code = c
			return err
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func run(ctx context.Context, out io.Writer, args []string, info BuildInfo) (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 1, err
	}

	tel, err := telemetry.NewTelemetry(cfg.Telemetry(uuid.NewString(), info.Version))
	if err != nil {
		return 1, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			tel.Logger.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	store, closer, err := stores.Open(ctx, cfg.Store, cfg.RC)
	if err != nil {
		return 1, fmt.Errorf("failed to open settings store: %w", err)
	}
	defer closer.Close()

	var folders []string
	if cfg.PluginDir != "" {
		folders = append(folders, cfg.PluginDir)
	}

	e, err := engine.New(engine.Options{
		Program:       engine.DefaultProgram,
		Store:         store,
		Loader:        plugins.NewLoader(&tel.Logger).Optional(cfg.PluginDir),
		PluginFolders: folders,
		Out:           out,
		Width:         terminalWidth(),
		Logger:        &tel.Logger,
		Tracer:        tel.Tracer,
		Recorder:      tel.Metrics,
	})
	if err != nil {
		return 1, err
	}

	startCtx, span := tel.Tracer.Start(ctx, "lets.startup")
	err = e.Start(startCtx)
	telemetry.RecordError(span, err)
	span.End()
	if err != nil {
		return 1, fmt.Errorf("startup failed: %w", err)
	}

	tel.Logger.Debug().
		Str("version", info.Version).
		Str("commit", info.Commit).
		Str("rc", cfg.RC).
		Strs("args", args).
		Msg("Dispatching")
	return e.Process(ctx, args), nil
}

// terminalWidth returns the width of the terminal on stdout, or 0 when
// stdout is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
