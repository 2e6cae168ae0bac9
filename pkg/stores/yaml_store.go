package stores

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// YAMLFileStore keeps the settings document in a YAML file, one mapping per
// context.
type YAMLFileStore struct {
	path string
}

// NewYAMLFileStore creates a store for the file at path. The file is not
// touched until the first Load or Save.
func NewYAMLFileStore(path string) *YAMLFileStore {
	return &YAMLFileStore{path: path}
}

// Path returns the settings file path.
func (s *YAMLFileStore) Path() string {
	return s.path
}

// Load reads the settings file. A missing file yields an empty document.
func (s *YAMLFileStore) Load(_ context.Context) (engine.SettingsDocument, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return engine.SettingsDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var doc engine.SettingsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", s.path, err)
	}
	if doc == nil {
		doc = engine.SettingsDocument{}
	}
	return doc, nil
}

// Save overwrites the settings file with doc. The file is written to a
// temporary sibling first and renamed into place.
func (s *YAMLFileStore) Save(_ context.Context, doc engine.SettingsDocument) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
