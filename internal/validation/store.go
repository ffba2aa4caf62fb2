package validation

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
	"github.com/expectation-labs/gxctl/internal/suite"
)

// Record locates one stored result.
type Record struct {
	RunID string
	Key   suite.Key
	Path  string
}

// Store reads and writes results below one base directory.
type Store struct {
	baseDir string
}

// NewStore returns the validations store configured in cfg.
func NewStore(cfg *project.ConfigStore) *Store {
	return &Store{baseDir: cfg.ValidationsDir()}
}

// NewStoreAt returns a store rooted at baseDir.
func NewStoreAt(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes r for key under its run id and returns the file path.
func (s *Store) Save(ctx context.Context, key suite.Key, r *Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Meta.RunID == "" {
		return "", fmt.Errorf("validation result for %s has no run id", key)
	}
	if err := key.Validate(); err != nil {
		return "", err
	}

	path := filepath.Join(s.baseDir, r.Meta.RunID, key.RelPath()+".json")
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding validation result: %w", err)
	}
	if err := project.WriteFileAtomic(path, append(data, '\n'), 0o644); err != nil {
		return "", &project.PersistenceError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// List returns every stored result, newest run first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var records []Record
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.baseDir {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 5 {
			return nil
		}
		records = append(records, Record{
			RunID: parts[0],
			Key: suite.Key{
				Datasource: parts[1],
				Generator:  parts[2],
				Asset:      parts[3],
				Suite:      strings.TrimSuffix(parts[4], ".json"),
			},
			Path: path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing validation results: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RunID != records[j].RunID {
			return records[i].RunID > records[j].RunID
		}
		return records[i].Key.String() < records[j].Key.String()
	})
	return records, nil
}

// Load reads the result at rec.Path.
func (s *Store) Load(rec Record) (*Result, error) {
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, &project.PersistenceError{Op: "read", Path: rec.Path, Err: err}
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rec.Path, err)
	}
	return &r, nil
}
