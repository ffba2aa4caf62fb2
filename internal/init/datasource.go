package initpkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/output"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/prompt"
)

const (
	defaultFilesName      = "files_datasource"
	defaultSparkFilesName = "files_spark_datasource"
)

// asset is the data asset chosen for profiling. Path is set for file-backed
// datasources, Table for SQL.
type asset struct {
	Name  string
	Path  string
	Table string
}

// dataPath is an existing file or directory given by the user.
type dataPath struct {
	Abs   string
	IsDir bool
}

// setupDatasource asks for a new datasource and registers it. For
// file-backed kinds the path the user gave is returned as well.
func (o *Orchestrator) setupDatasource(ctx context.Context, store *project.ConfigStore) (datasource.Descriptor, dataPath, error) {
	ans, err := o.ask(ctx, prompt.Choose("What data would you like Great Expectations to connect to?", []string{
		"Files on a filesystem (for processing with Pandas or Spark)",
		"Relational database (SQL)",
	}, 1))
	if err != nil {
		return datasource.Descriptor{}, dataPath{}, err
	}

	reg := datasource.NewRegistry(store, o.prober, o.logger)
	if ans.Choice == 2 {
		d, err := o.setupSQL(ctx, reg)
		return d, dataPath{}, err
	}
	return o.setupFiles(ctx, reg)
}

func (o *Orchestrator) setupFiles(ctx context.Context, reg *datasource.Registry) (datasource.Descriptor, dataPath, error) {
	ans, err := o.ask(ctx, prompt.Choose("What are you processing your files with?", []string{"Pandas", "PySpark"}, 1))
	if err != nil {
		return datasource.Descriptor{}, dataPath{}, err
	}
	spark := ans.Choice == 2

	src, err := o.askDataPath(ctx, "Enter the path (relative or absolute) of a data file or directory", "")
	if err != nil {
		return datasource.Descriptor{}, dataPath{}, err
	}
	baseDir := src.Abs
	if !src.IsDir {
		baseDir = filepath.Dir(src.Abs)
	}

	defaultName := defaultFilesName
	var master string
	if spark {
		defaultName = defaultSparkFilesName
		ans, err := o.ask(ctx, prompt.Input("Which Spark master should the datasource use?", datasource.DefaultSparkMaster))
		if err != nil {
			return datasource.Descriptor{}, dataPath{}, err
		}
		master = strings.TrimSpace(ans.Text)
	}

	for {
		ans, err := o.ask(ctx, prompt.Input("Give your new data source a short name", defaultName))
		if err != nil {
			return datasource.Descriptor{}, dataPath{}, err
		}
		name := strings.TrimSpace(ans.Text)

		d := datasource.NewFilesystem(name, baseDir)
		if spark {
			d = datasource.NewSpark(name, baseDir, master)
		}

		err = o.addDatasource(ctx, reg, d)
		var verr *datasource.ValidationError
		if errors.As(err, &verr) && verr.Field == "name" {
			output.PrintWarning(o.out, verr.Error())
			continue
		}
		if err != nil {
			return datasource.Descriptor{}, dataPath{}, o.datasourceError(ctx, err)
		}
		return d, src, nil
	}
}

func (o *Orchestrator) setupSQL(ctx context.Context, reg *datasource.Registry) (datasource.Descriptor, error) {
	options := make([]string, len(datasource.SQLBackends))
	for i, b := range datasource.SQLBackends {
		options[i] = b.String()
	}
	ans, err := o.ask(ctx, prompt.Choose("Which database backend are you using?", options, 0))
	if err != nil {
		return datasource.Descriptor{}, err
	}
	backend := datasource.SQLBackends[ans.Choice-1]

	var name string
	for {
		if name == "" {
			ans, err := o.ask(ctx, prompt.Input("Give your new data source a short name", backend.DefaultName()))
			if err != nil {
				return datasource.Descriptor{}, err
			}
			name = strings.TrimSpace(ans.Text)
		}

		fmt.Fprintf(o.out, "\nThe connection URL looks like %s\n", backend.ExampleURL())
		ans, err := o.ask(ctx, prompt.Input("What is the url/connection string for the sqlalchemy connection?", ""))
		if err != nil {
			return datasource.Descriptor{}, err
		}

		d := datasource.NewSQL(name, strings.TrimSpace(ans.Text))
		err = o.addDatasource(ctx, reg, d)

		var (
			verr *datasource.ValidationError
			cerr *datasource.ConnectionError
		)
		switch {
		case err == nil:
			return d, nil
		case errors.As(err, &verr):
			output.PrintWarning(o.out, verr.Error())
			if verr.Field == "name" {
				name = ""
			}
		case errors.As(err, &cerr):
			output.PrintWarning(o.out, fmt.Sprintf("Cannot connect to the database: %s", cerr.Reason))
			o.logger.Debug("datasource probe failed", "datasource", name, "error", cerr.Err)
			retry, err := o.ask(ctx, prompt.YesNo("Would you like to enter the connection details again?", true))
			if err != nil {
				return datasource.Descriptor{}, err
			}
			if !retry.Confirmed {
				return datasource.Descriptor{}, &StepError{Step: StepDatasource, Err: cerr}
			}
		default:
			return datasource.Descriptor{}, o.datasourceError(ctx, err)
		}
	}
}

// addDatasource registers d, asking before it replaces a datasource of the
// same name.
func (o *Orchestrator) addDatasource(ctx context.Context, reg *datasource.Registry, d datasource.Descriptor) error {
	err := reg.Add(ctx, d, datasource.AddOptions{})

	var dup *datasource.DuplicateNameError
	if errors.As(err, &dup) {
		ans, askErr := o.ask(ctx, prompt.YesNo(fmt.Sprintf("A datasource named '%s' already exists. Overwrite it?", d.Name), false))
		if askErr != nil {
			return askErr
		}
		if !ans.Confirmed {
			return errAborted
		}
		err = reg.Add(ctx, d, datasource.AddOptions{Overwrite: true})
	}
	if err != nil {
		return err
	}

	output.PrintSuccess(o.out, fmt.Sprintf("A new datasource '%s' was added to your project.", d.Name))
	return nil
}

func (o *Orchestrator) datasourceError(ctx context.Context, err error) error {
	if isAbort(err) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &StepError{Step: StepDatasource, Err: err}
}

// askDataPath asks until the user names an existing file or directory.
// Relative paths are resolved against the working directory.
func (o *Orchestrator) askDataPath(ctx context.Context, message, def string) (dataPath, error) {
	for {
		ans, err := o.ask(ctx, prompt.Input(message, def))
		if err != nil {
			return dataPath{}, err
		}
		raw := strings.TrimSpace(ans.Text)

		abs, err := filepath.Abs(raw)
		if err != nil {
			output.PrintWarning(o.out, (&datasource.ValidationError{Field: "path", Message: err.Error()}).Error())
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			output.PrintWarning(o.out, (&datasource.ValidationError{Field: "path", Message: fmt.Sprintf("%s does not exist", raw)}).Error())
			continue
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			output.PrintWarning(o.out, (&datasource.ValidationError{Field: "path", Message: fmt.Sprintf("%s is not a file or directory", raw)}).Error())
			continue
		}
		return dataPath{Abs: abs, IsDir: info.IsDir()}, nil
	}
}

// chooseFile picks the data file to profile and names the asset. A
// directory offers its data files in a menu. It returns nil when the
// directory holds none.
func (o *Orchestrator) chooseFile(ctx context.Context, src dataPath) (*asset, error) {
	file := src.Abs
	if src.IsDir {
		files, err := datasource.ListDataFiles(src.Abs)
		if err != nil {
			return nil, &StepError{Step: StepListAssets, Err: err}
		}
		if len(files) == 0 {
			return nil, nil
		}
		ans, err := o.ask(ctx, prompt.Choose("Which data file would you like to profile?", files, 1))
		if err != nil {
			return nil, err
		}
		file = filepath.Join(src.Abs, files[ans.Choice-1])
	}

	for {
		ans, err := o.ask(ctx, prompt.Input("Give your new data asset a short name", datasource.AssetName(file)))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(ans.Text)
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			output.PrintWarning(o.out, "The data asset name must not be empty or contain path separators.")
			continue
		}
		return &asset{Name: name, Path: file}, nil
	}
}

// chooseTable offers the tables of a SQL datasource. It returns nil when
// the database has none.
func (o *Orchestrator) chooseTable(ctx context.Context, d datasource.Descriptor) (*asset, error) {
	tables, err := o.prober.ListAssets(ctx, d)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &StepError{Step: StepListAssets, Err: err}
	}
	if len(tables) == 0 {
		return nil, nil
	}

	ans, err := o.ask(ctx, prompt.Choose("Which table would you like to use?", tables, 1))
	if err != nil {
		return nil, err
	}
	table := tables[ans.Choice-1]
	return &asset{Name: table, Table: table}, nil
}
