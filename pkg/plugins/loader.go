package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// Extension is the file suffix of plugin files.
const Extension = ".star"

// Loader finds Starlark plugin files in folders. It implements engine.Loader.
type Loader struct {
	log      zerolog.Logger
	optional map[string]bool
}

// NewLoader creates a loader. A nil logger disables diagnostics.
func NewLoader(logger *zerolog.Logger) *Loader {
	l := &Loader{log: zerolog.Nop(), optional: make(map[string]bool)}
	if logger != nil {
		l.log = logger.With().Str("component", "plugins").Logger()
	}
	return l
}

// Optional marks folders that may legitimately be absent, such as the
// built-in plugin folder. Their absence is only logged at debug level.
func (l *Loader) Optional(folders ...string) *Loader {
	for _, f := range folders {
		l.optional[expandHome(f)] = true
	}
	return l
}

// Load returns one extension per plugin file. Folders are visited in order and
// files in lexical order within a folder. A missing folder is skipped with a
// warning, or a debug message for optional folders. Files whose name is not
// a valid context (empty, or containing a dot) are skipped with a warning.
func (l *Loader) Load(ctx context.Context, folders []string) ([]engine.Extension, error) {
	var found []engine.Extension
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		folder = expandHome(folder)
		entries, err := os.ReadDir(folder)
		if errors.Is(err, fs.ErrNotExist) {
			event := l.log.Warn()
			if l.optional[folder] {
				event = l.log.Debug()
			}
			event.Str("folder", folder).Msg("Plugin folder not found")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list plugin folder %s: %w", folder, err)
		}

		for _, entry := range entries {
			if !isPluginFile(entry) {
				continue
			}
			path := filepath.Join(folder, entry.Name())
			if scope := strings.TrimSuffix(entry.Name(), Extension); scope == "" || strings.Contains(scope, engine.Separator) {
				l.log.Warn().Str("path", path).Msg("Plugin file name is not a valid context, skipped")
				continue
			}
			l.log.Debug().Str("path", path).Msg("Discovered plugin")
			found = append(found, NewScript(path))
		}
	}
	return found, nil
}

func isPluginFile(entry fs.DirEntry) bool {
	name := entry.Name()
	return !entry.IsDir() && strings.HasSuffix(name, Extension) && !strings.HasPrefix(name, "_")
}

// expandHome replaces a leading ~ with the user's home folder.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
