package initpkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/expectation-labs/gxctl/internal/config"
	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/docs"
	"github.com/expectation-labs/gxctl/internal/git"
	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/output"
	"github.com/expectation-labs/gxctl/internal/profiler"
	"github.com/expectation-labs/gxctl/internal/progress"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/prompt"
	"github.com/expectation-labs/gxctl/internal/scaffold"
)

const defaultSuiteName = "warning"

const newProjectIntro = `Let's configure a new Data Context.

First, Great Expectations will create a new directory:

    great_expectations
    |-- great_expectations.yml
    |-- expectations
    |-- notebooks
    |-- plugins
    |-- .gitignore
    |-- uncommitted
        |-- config_variables.yml
        |-- data_docs
        |-- validations
`

// Scaffolder creates the project tree.
type Scaffolder interface {
	Create(ctx context.Context, root string) (*scaffold.Result, error)
}

// Options are the collaborators of an Orchestrator.
type Options struct {
	// OpenStore opens a project's config. Defaults to project.Open.
	OpenStore StoreOpener
	Scaffold  Scaffolder
	Profiler  profiler.Profiler
	Sites     docs.SiteBuilder
	// Viewer opens built sites when Run is asked to view them. Optional.
	Viewer   docs.Viewer
	Asker    prompt.Asker
	Prober   datasource.Prober
	Logger   *slog.Logger
	Out      io.Writer
	Settings *config.Configuration
}

// Orchestrator runs the init flow.
type Orchestrator struct {
	openStore StoreOpener
	scaffold  Scaffolder
	profiler  profiler.Profiler
	sites     docs.SiteBuilder
	viewer    docs.Viewer
	asker     prompt.Asker
	prober    datasource.Prober
	logger    *slog.Logger
	out       io.Writer
	spinner   *progress.Spinner
	suiteName string
}

// New returns an orchestrator. Scaffold, Profiler, Sites, Asker and Prober
// are required.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Scaffold == nil:
		return nil, errors.New("initpkg: Options.Scaffold is required")
	case opts.Profiler == nil:
		return nil, errors.New("initpkg: Options.Profiler is required")
	case opts.Sites == nil:
		return nil, errors.New("initpkg: Options.Sites is required")
	case opts.Asker == nil:
		return nil, errors.New("initpkg: Options.Asker is required")
	case opts.Prober == nil:
		return nil, errors.New("initpkg: Options.Prober is required")
	}

	o := &Orchestrator{
		openStore: opts.OpenStore,
		scaffold:  opts.Scaffold,
		profiler:  opts.Profiler,
		sites:     opts.Sites,
		viewer:    opts.Viewer,
		asker:     opts.Asker,
		prober:    opts.Prober,
		logger:    logging.OrDiscard(opts.Logger),
		out:       opts.Out,
		suiteName: defaultSuiteName,
	}
	if o.openStore == nil {
		o.openStore = project.Open
	}
	if o.out == nil {
		o.out = io.Discard
	}
	if opts.Settings != nil && opts.Settings.DefaultSuiteName != "" {
		o.suiteName = opts.Settings.DefaultSuiteName
	}
	o.spinner = progress.NewSpinner(o.out, progress.DetectCapabilities(o.out))
	return o, nil
}

// Run classifies the project under root and drives the remaining steps.
// When view is set, built Data Docs sites are opened with the Viewer.
//
// Declining a prompt, closing input and cancelling ctx all end the run
// with Aborted and a nil error. Steps committed before that are kept.
func (o *Orchestrator) Run(ctx context.Context, root string, view bool) (Outcome, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", root, err)
	}

	output.PrintBanner(o.out, "Welcome to Great Expectations!")

	outcome, err := o.run(ctx, abs, view)
	if isAbort(err) {
		o.logger.Info("init aborted", "root", abs, "reason", err)
		fmt.Fprintln(o.out, "\nOK - run gxctl init again when you are ready. Exiting...")
		return Aborted, nil
	}
	if err != nil {
		return 0, err
	}

	o.logger.Info("init finished", "root", abs, "outcome", outcome.String())
	return outcome, nil
}

func isAbort(err error) bool {
	return errors.Is(err, errAborted) ||
		errors.Is(err, prompt.ErrInputClosed) ||
		errors.Is(err, context.Canceled)
}

func (o *Orchestrator) run(ctx context.Context, root string, view bool) (Outcome, error) {
	state, store, err := Classify(ctx, root, o.openStore)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &StepError{Step: StepReadConfig, Err: err}
	}
	o.logger.Info("project classified", "root", root, "state", state.String())

	switch state {
	case NoProject:
		return o.runNewProject(ctx, root, view)
	case HasZeroDatasources:
		fmt.Fprintln(o.out, "\nThis looks like an existing project that does not have a datasource yet. Let's add one.")
		return o.runFromDatasource(ctx, store, view)
	case HasUnprofiledDatasource:
		fmt.Fprintln(o.out, "\nThis looks like an existing project with datasources that have not been profiled yet.")
		return o.runUnprofiled(ctx, store, view)
	case HasCompleteProject:
		fmt.Fprintln(o.out, "\nThis looks like an existing project that appears complete! You are ready to roll.")
		if err := o.offerDocs(ctx, store, view); err != nil {
			return 0, err
		}
		return AlreadyComplete, nil
	default:
		return 0, fmt.Errorf("unexpected project state %s", state)
	}
}

func (o *Orchestrator) runNewProject(ctx context.Context, root string, view bool) (Outcome, error) {
	fmt.Fprintln(o.out)
	fmt.Fprint(o.out, newProjectIntro)

	// Nothing is written unless the user actually answers.
	proceed := prompt.YesNo("OK to proceed?", true)
	proceed.RequireAnswer = true
	ans, err := o.ask(ctx, proceed)
	if err != nil {
		return 0, err
	}
	if !ans.Confirmed {
		return 0, errAborted
	}

	res, err := o.scaffold.Create(ctx, root)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &StepError{Step: StepScaffold, Err: err}
	}
	output.PrintSuccess(o.out, fmt.Sprintf("Created the project directory %s", output.Highlight(res.ProjectDir)))
	o.printGitHint(res.ProjectDir)
	o.logger.Info("project classified", "root", root, "state", NewEmptyProject.String())

	store, err := o.openStore(res.ProjectDir)
	if err != nil {
		return 0, &StepError{Step: StepReadConfig, Err: err}
	}
	return o.runFromDatasource(ctx, store, view)
}

// runFromDatasource adds the project's first datasource, then profiles one
// of its assets.
func (o *Orchestrator) runFromDatasource(ctx context.Context, store *project.ConfigStore, view bool) (Outcome, error) {
	d, src, err := o.setupDatasource(ctx, store)
	if err != nil {
		return 0, err
	}

	var a *asset
	if d.Kind == datasource.KindSQL {
		a, err = o.chooseTable(ctx, d)
	} else {
		a, err = o.chooseFile(ctx, src)
	}
	if err != nil {
		return 0, err
	}
	return o.finish(ctx, store, d, a, view)
}

func (o *Orchestrator) runUnprofiled(ctx context.Context, store *project.ConfigStore, view bool) (Outcome, error) {
	names := store.DatasourceNames()
	name := names[0]
	if len(names) > 1 {
		ans, err := o.ask(ctx, prompt.Choose("Which datasource would you like to profile?", names, 1))
		if err != nil {
			return 0, err
		}
		name = names[ans.Choice-1]
	}

	reg := datasource.NewRegistry(store, o.prober, o.logger)
	d, err := reg.Get(ctx, name)
	if err != nil {
		return 0, &StepError{Step: StepReadConfig, Err: err}
	}

	var a *asset
	switch d.Kind {
	case datasource.KindSQL:
		a, err = o.chooseTable(ctx, d)
	default:
		var def string
		if files, listErr := datasource.ListDataFiles(d.BaseDirectory()); listErr == nil && len(files) > 0 {
			def = filepath.Join(d.BaseDirectory(), files[0])
		}
		var src dataPath
		src, err = o.askDataPath(ctx, "Enter the path (relative or absolute) of a data file", def)
		if err == nil {
			a, err = o.chooseFile(ctx, src)
		}
	}
	if err != nil {
		return 0, err
	}
	return o.finish(ctx, store, d, a, view)
}

// finish profiles a (when there is one), offers Data Docs and reports
// success.
func (o *Orchestrator) finish(ctx context.Context, store *project.ConfigStore, d datasource.Descriptor, a *asset, view bool) (Outcome, error) {
	if a == nil {
		output.PrintWarning(o.out, fmt.Sprintf(
			"No data assets were found for datasource '%s', skipping profiling. Add data and run gxctl init again to create an expectation suite.", d.Name))
		o.logger.Warn("profiling skipped", "datasource", d.Name, "reason", "no assets")
	} else if err := o.profile(ctx, store, d, a); err != nil {
		return 0, err
	}

	if err := o.offerDocs(ctx, store, view); err != nil {
		return 0, err
	}
	fmt.Fprintln(o.out)
	output.PrintSuccess(o.out, "Great Expectations is now set up.")
	return Success, nil
}

func (o *Orchestrator) ask(ctx context.Context, p prompt.Prompt) (prompt.Answer, error) {
	ans, err := o.asker.Ask(ctx, p)
	if err != nil {
		return prompt.Answer{}, err
	}
	o.logger.Debug("prompt answered", "prompt", p.Message, "kind", p.Kind.String())
	return ans, nil
}

// printGitHint tells the user how the new project relates to an enclosing
// git repository. Detection problems are only logged.
func (o *Orchestrator) printGitHint(projectDir string) {
	repo, err := git.Detect(projectDir, o.logger)
	if err != nil {
		o.logger.Debug("git detection failed", "error", err)
		return
	}
	if repo == nil {
		return
	}

	ignored, err := repo.IsIgnored(filepath.Join(projectDir, "uncommitted"), true)
	if err != nil {
		o.logger.Debug("checking git ignore rules failed", "error", err)
		return
	}
	if ignored {
		output.PrintInfo(o.out, fmt.Sprintf("The project is inside the git repository at %s. Commit %s/ to share it; uncommitted/ stays out of version control.", repo.Root, project.DirName))
		return
	}
	output.PrintWarning(o.out, "uncommitted/ is not ignored by git and will hold credentials. Keep the project's .gitignore in place.")
}
