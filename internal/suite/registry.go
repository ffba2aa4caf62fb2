package suite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/expectation-labs/gxctl/internal/project"
)

const fileExt = ".json"

// ErrNotFound is returned by Get for a key with no stored suite.
var ErrNotFound = errors.New("expectation suite not found")

// DuplicateSuiteError is returned by Create when the key is taken.
type DuplicateSuiteError struct {
	Key Key
}

func (e *DuplicateSuiteError) Error() string {
	return fmt.Sprintf("expectation suite %s already exists", e.Key)
}

// CreateOptions controls Create.
type CreateOptions struct {
	Overwrite bool
}

// Registry reads and writes suites below one base directory.
type Registry struct {
	baseDir string
}

// NewRegistry returns a registry over the expectations store configured in
// store.
func NewRegistry(store *project.ConfigStore) *Registry {
	return &Registry{baseDir: store.ExpectationsDir()}
}

// NewRegistryAt returns a registry rooted at baseDir.
func NewRegistryAt(baseDir string) *Registry {
	return &Registry{baseDir: baseDir}
}

// BaseDir returns the store's base directory.
func (r *Registry) BaseDir() string {
	return r.baseDir
}

// ListKeys returns every stored suite key, sorted by path.
func (r *Registry) ListKeys(ctx context.Context) ([]Key, error) {
	var keys []Key
	err := filepath.WalkDir(r.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == r.baseDir {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), fileExt) {
			return nil
		}

		rel, err := filepath.Rel(r.baseDir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 4 {
			return nil // not a suite file
		}
		keys = append(keys, Key{
			Datasource: parts[0],
			Generator:  parts[1],
			Asset:      parts[2],
			Suite:      strings.TrimSuffix(parts[3], fileExt),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing expectation suites: %w", err)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys, nil
}

// ExistsAnyFor reports whether any suite belongs to datasource.
func (r *Registry) ExistsAnyFor(ctx context.Context, datasource string) (bool, error) {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if k.Datasource == datasource {
			return true, nil
		}
	}
	return false, nil
}

// Create writes s under its key. The file is written atomically.
func (r *Registry) Create(ctx context.Context, s *Suite, opts CreateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Key.Validate(); err != nil {
		return err
	}

	path := r.path(s.Key)
	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		return &DuplicateSuiteError{Key: s.Key}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding suite %s: %w", s.Key, err)
	}
	if err := project.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return &project.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Get reads the suite stored under key.
func (r *Registry) Get(ctx context.Context, key Key) (*Suite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, &project.PersistenceError{Op: "read", Path: path, Err: err}
	}

	var s Suite
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding suite %s: %w", key, err)
	}
	s.Key = key
	return &s, nil
}

func (r *Registry) path(key Key) string {
	return filepath.Join(r.baseDir, key.RelPath()+fileExt)
}
