package stores

import (
	"context"
	"fmt"
	"io"

	"github.com/lonesomebyte537/lets/pkg/engine"
)

// Supported store backends.
const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a ready store for backend at path. The closer releases any
// resources held by the store and must be called once the process is done
// with it.
func Open(ctx context.Context, backend, path string) (engine.Store, io.Closer, error) {
	switch backend {
	case "", BackendYAML:
		return NewYAMLFileStore(path), nopCloser{}, nil
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		if err := s.Init(ctx); err != nil {
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
