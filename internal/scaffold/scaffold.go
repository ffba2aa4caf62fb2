// Package scaffold creates the directory tree of a new project. The tree is
// built in a staging directory next to the target and renamed into place,
// so a failed build never leaves a partial project behind.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/project"
)

// StyleSheetPath is the custom data docs stylesheet, relative to the
// project directory.
const StyleSheetPath = "plugins/custom_data_docs/styles/data_docs_custom_styles.css"

// Directories lists every directory of a new project, relative to the
// project directory.
var Directories = []string{
	"datasources",
	"expectations",
	"notebooks/pandas",
	"notebooks/spark",
	"notebooks/sql",
	"plugins/custom_data_docs/renderers",
	"plugins/custom_data_docs/styles",
	"plugins/custom_data_docs/views",
	"uncommitted/data_docs",
	"uncommitted/samples",
	"uncommitted/validations",
}

// AlreadyExistsError is returned when the target project directory exists.
type AlreadyExistsError struct {
	Path string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Path)
}

// Result describes a created tree.
type Result struct {
	// ProjectDir is the created project directory.
	ProjectDir string
	// Files lists the created files relative to ProjectDir.
	Files []string
}

// Builder creates project trees on a billy filesystem.
type Builder struct {
	fs     billy.Filesystem
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder returns a builder over fsys. Roots passed to Create are paths
// within fsys.
func NewBuilder(fsys billy.Filesystem, logger *slog.Logger) *Builder {
	return &Builder{fs: fsys, logger: logging.OrDiscard(logger), now: time.Now}
}

// NewOSBuilder returns a builder over the host filesystem. Roots passed to
// Create must be absolute.
func NewOSBuilder(logger *slog.Logger) *Builder {
	return NewBuilder(osfs.New("/"), logger)
}

// Create builds the project tree under root/great_expectations.
func (b *Builder) Create(ctx context.Context, root string) (result *Result, err error) {
	target := path.Join(root, project.DirName)
	if _, statErr := b.fs.Lstat(target); statErr == nil {
		return nil, &AlreadyExistsError{Path: target}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking %s: %w", target, statErr)
	}

	staging := path.Join(root, "."+project.DirName+".staging-"+strconv.FormatInt(b.now().UnixNano(), 36))
	defer func() {
		if err != nil {
			if rmErr := util.RemoveAll(b.fs, staging); rmErr != nil {
				b.logger.Warn("removing staging directory", "path", staging, "error", rmErr)
			}
		}
	}()

	created, err := b.populate(ctx, staging)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.fs.Rename(staging, target); err != nil {
		return nil, fmt.Errorf("moving project into place: %w", err)
	}

	b.logger.Info("project scaffolded", "path", target, "files", len(created))
	return &Result{ProjectDir: target, Files: created}, nil
}

func (b *Builder) populate(ctx context.Context, dir string) ([]string, error) {
	if err := b.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	for _, d := range Directories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.fs.MkdirAll(path.Join(dir, d), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", d, err)
		}
	}

	plan, err := filePlan()
	if err != nil {
		return nil, err
	}

	created := make([]string, 0, len(plan))
	for _, f := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := Template(f.template)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", f.template, err)
		}
		perm := os.FileMode(0o644)
		if f.dest == project.ConfigVariablesPath {
			perm = 0o600
		}
		if err := util.WriteFile(b.fs, path.Join(dir, f.dest), data, perm); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.dest, err)
		}
		created = append(created, f.dest)
	}
	return created, nil
}

type plannedFile struct {
	dest     string
	template string
}

// filePlan returns every file of the tree in a stable order.
func filePlan() ([]plannedFile, error) {
	plan := []plannedFile{
		{dest: ".gitignore", template: "gitignore"},
		{dest: project.ConfigFileName, template: project.ConfigFileName},
		{dest: project.ConfigVariablesPath, template: "config_variables.yml"},
		{dest: StyleSheetPath, template: "data_docs_custom_styles.css"},
	}

	notebooks, err := notebookFiles()
	if err != nil {
		return nil, fmt.Errorf("listing notebook templates: %w", err)
	}
	for _, nb := range notebooks {
		plan = append(plan, plannedFile{dest: nb, template: nb})
	}
	return plan, nil
}
