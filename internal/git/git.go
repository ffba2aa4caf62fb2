// Package git inspects the git repository enclosing a project directory. It is
// read-only: gxctl never creates repositories, stages files, or commits. The
// init command uses it to tell users whether the scaffolded project will be
// picked up by version control and whether its uncommitted/ directory is
// ignored as intended.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Repository is an opened repository together with its worktree root.
type Repository struct {
	Root string
	repo *git.Repository
}

// Detect opens the repository enclosing path, walking up the directory tree
// like git itself does. It returns (nil, nil) when path is not inside a
// repository.
func Detect(path string, logger *slog.Logger) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if logger != nil {
			logger.Debug("no enclosing git repository", "path", abs)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", abs, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to commit project files from.
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	root := worktree.Filesystem.Root()
	if logger != nil {
		logger.Debug("detected git repository", "root", root)
	}
	return &Repository{Root: root, repo: repo}, nil
}

// IsIgnored reports whether path would be excluded by the repository's
// .gitignore files (including nested ones) and info/exclude.
func (r *Repository) IsIgnored(path string, isDir bool) (bool, error) {
	rel, err := r.relative(path)
	if err != nil {
		return false, err
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	patterns, err := gitignore.ReadPatterns(worktree.Filesystem, nil)
	if err != nil {
		return false, fmt.Errorf("reading ignore patterns: %w", err)
	}
	patterns = append(patterns, worktree.Excludes...)

	matcher := gitignore.NewMatcher(patterns)
	return matcher.Match(strings.Split(rel, "/"), isDir), nil
}

func (r *Repository) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	rootAbs, err := filepath.EvalSymlinks(r.Root)
	if err != nil {
		rootAbs = r.Root
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, r.Root)
	}
	return filepath.ToSlash(rel), nil
}
