package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/lonesomebyte537/lets/pkg/stores"
	"github.com/lonesomebyte537/lets/pkg/telemetry"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LETS"

// Config is the process-level configuration of lets. It is read from the
// environment only; user settings live in the settings file.
type Config struct {
	// RC is the settings file path.
	RC string `mapstructure:"rc" validate:"required"`

	// PluginDir is the built-in plugin folder, searched before the folders
	// listed in lets.plugin_folders.
	PluginDir string `mapstructure:"plugin_dir"`

	// Store selects the settings backend.
	Store string `mapstructure:"store" validate:"oneof=yaml sqlite"`

	LogLevel  string `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=console json"`

	TraceExporter string `mapstructure:"trace_exporter" validate:"oneof=none stdout otlp"`
	TraceEndpoint string `mapstructure:"trace_endpoint" validate:"required_if=TraceExporter otlp"`

	// MetricsTextfile is the node-exporter textfile metrics are written to.
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Defaults returns the configuration used when no variable is set.
func Defaults() Config {
	cfg := Config{
		RC:            ".letsrc",
		Store:         stores.BackendYAML,
		LogLevel:      "info",
		LogFormat:     "console",
		TraceExporter: "none",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.RC = filepath.Join(home, ".letsrc")
	}
	if exe, err := os.Executable(); err == nil {
		cfg.PluginDir = filepath.Join(filepath.Dir(exe), "plugins")
	}
	return cfg
}

// Load reads the configuration from LETS_* environment variables and
// validates it.
func Load() (*Config, error) {
	defaults := Defaults()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("rc", defaults.RC)
	v.SetDefault("plugin_dir", defaults.PluginDir)
	v.SetDefault("store", defaults.Store)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("trace_exporter", defaults.TraceExporter)
	v.SetDefault("trace_endpoint", "")
	v.SetDefault("metrics_textfile", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration. Errors name the offending variable.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(envName)

	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// Telemetry converts the configuration into a telemetry configuration for
// the invocation identified by runID.
func (c *Config) Telemetry(runID, version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	tc.RunID = runID
	tc.Logging.Level = c.LogLevel
	tc.Logging.Format = c.LogFormat
	tc.Tracing.Exporter = c.TraceExporter
	tc.Tracing.Endpoint = c.TraceEndpoint
	tc.Metrics.Textfile = c.MetricsTextfile
	return tc
}

// envName reports struct fields by the environment variable that sets them.
func envName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
	if name == "" {
		return f.Name
	}
	return EnvPrefix + "_" + strings.ToUpper(name)
}
