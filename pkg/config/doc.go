// Package config reads the bootstrap configuration of lets.
//
// The bootstrap configuration decides where the settings file lives, where
// built-in plugins are found and how telemetry is emitted. It is read once
// per process from the environment:
//
//	LETS_RC                settings file path (default ~/.letsrc)
//	LETS_PLUGIN_DIR        built-in plugin folder (default <exe dir>/plugins)
//	LETS_STORE             yaml or sqlite (default yaml)
//	LETS_LOG_LEVEL         trace, debug, info, warn or error (default info)
//	LETS_LOG_FORMAT        console or json (default console)
//	LETS_TRACE_EXPORTER    none, stdout or otlp (default none)
//	LETS_TRACE_ENDPOINT    OTLP collector address, required for otlp
//	LETS_METRICS_TEXTFILE  Prometheus textfile path (default disabled)
//
// User-facing settings are not configuration; they are registered by
// extensions and persisted by the engine.
package config
