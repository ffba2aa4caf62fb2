package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/project"
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// AddOptions controls Add.
type AddOptions struct {
	// Overwrite replaces an existing datasource of the same name.
	Overwrite bool
}

// Registry lists, reads and adds datasources of one project.
type Registry struct {
	store    *project.ConfigStore
	prober   Prober
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRegistry returns a registry backed by store. Descriptors are probed
// with prober before they are written.
func NewRegistry(store *project.ConfigStore, prober Prober, logger *slog.Logger) *Registry {
	return &Registry{
		store:    store,
		prober:   prober,
		validate: newValidator(),
		logger:   logging.OrDiscard(logger),
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("datasource_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
	return v
}

// List returns the configured datasource names, sorted.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.DatasourceNames(), nil
}

// Get returns the named datasource. SQL credentials are resolved from the
// config variables file.
func (r *Registry) Get(ctx context.Context, name string) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}

	var rec record
	found, err := r.store.Datasource(name, &rec)
	if err != nil {
		return Descriptor{}, err
	}
	if !found {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fromRecord(name, rec, r.store)
}

// Exists reports whether name is already configured.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	names, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Add validates, probes and then persists d. Nothing is written when any
// step fails.
func (r *Registry) Add(ctx context.Context, d Descriptor, opts AddOptions) error {
	if err := r.Validate(d); err != nil {
		return err
	}

	exists, err := r.Exists(ctx, d.Name)
	if err != nil {
		return err
	}
	if exists && !opts.Overwrite {
		return &DuplicateNameError{Name: d.Name}
	}

	if err := r.prober.Probe(ctx, d); err != nil {
		return err
	}

	rollback, err := r.store.Checkpoint()
	if err != nil {
		return err
	}
	restoreCredentials := func() {}
	if d.Kind == KindSQL {
		if restoreCredentials, err = r.stageCredentials(d.Name, d.SQL.URL); err != nil {
			return err
		}
	}
	if err := r.store.SetDatasource(d.Name, toRecord(d, r.store.Dir())); err != nil {
		rollback()
		restoreCredentials()
		return err
	}
	if err := r.store.Save(); err != nil {
		rollback()
		restoreCredentials()
		return err
	}

	r.logger.Info("datasource added", "name", d.Name, "kind", d.Kind.String(), "overwrite", exists)
	return nil
}

// stageCredentials writes url to the config variables file and returns a
// function that puts the previous entry back.
func (r *Registry) stageCredentials(name, url string) (func(), error) {
	prev, had, err := r.store.Variable(name)
	if err != nil {
		return nil, err
	}
	if err := r.store.SetVariable(name, url); err != nil {
		return nil, err
	}
	return func() {
		var err error
		if had {
			err = r.store.SetVariable(name, prev)
		} else {
			err = r.store.DeleteVariable(name)
		}
		if err != nil {
			r.logger.Warn("restoring config variable failed", "name", name, "error", err)
		}
	}, nil
}

// Validate checks d's name and the params payload of its kind.
func (r *Registry) Validate(d Descriptor) error {
	if err := r.validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return toValidationError(fieldErrs[0])
		}
		return &ValidationError{Field: "datasource", Message: err.Error()}
	}

	switch d.Kind {
	case KindFilesystem:
		if d.Filesystem == nil {
			return &ValidationError{Field: "base_directory", Message: "is required"}
		}
	case KindSpark:
		if d.Spark == nil {
			return &ValidationError{Field: "base_directory", Message: "is required"}
		}
	case KindSQL:
		if d.SQL == nil {
			return &ValidationError{Field: "url", Message: "is required"}
		}
	default:
		return &ValidationError{Field: "kind", Message: fmt.Sprintf("is not supported: %s", d.Kind)}
	}
	return nil
}

func toValidationError(fe validator.FieldError) *ValidationError {
	field := fieldName(fe.StructField())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "max":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	case "datasource_name":
		return &ValidationError{Field: field, Message: "may only contain letters, digits, '_', '.' and '-'"}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("failed %s validation", fe.Tag())}
	}
}

func fieldName(structField string) string {
	switch structField {
	case "BaseDirectory":
		return "base_directory"
	case "Master":
		return "spark_master"
	case "URL":
		return "url"
	case "Name":
		return "name"
	case "Kind":
		return "kind"
	default:
		return structField
	}
}
