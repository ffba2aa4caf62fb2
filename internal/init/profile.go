package initpkg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/output"
	"github.com/expectation-labs/gxctl/internal/profiler"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/prompt"
	"github.com/expectation-labs/gxctl/internal/suite"
	"github.com/expectation-labs/gxctl/internal/validation"
)

const profilingIntro = `
Great Expectations will choose a couple of columns and generate expectations about them
to demonstrate some examples of assertions you can make about your data.
`

// profile names a suite, runs the profiler on a and stores the suite and
// its validation result. The suite must then be discoverable through a
// freshly opened project config.
func (o *Orchestrator) profile(ctx context.Context, store *project.ConfigStore, d datasource.Descriptor, a *asset) error {
	key, err := o.askSuiteKey(ctx, d.Name, a.Name)
	if err != nil {
		return err
	}

	fmt.Fprint(o.out, profilingIntro)
	output.PrintStep(o.out, fmt.Sprintf("Profiling %s...", a.Name))

	o.spinner.Start(fmt.Sprintf("Profiling %s", a.Name))
	out, err := o.profiler.Profile(ctx, profiler.Request{
		Datasource: d,
		Asset:      a.Name,
		SuiteName:  key.Suite,
		Path:       a.Path,
		Table:      a.Table,
	})
	if err == nil && (out == nil || out.Suite == nil) {
		err = &profiler.Failure{Asset: a.Name, Reason: "the profiler returned no suite"}
	}
	if err != nil {
		o.spinner.Fail("")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Debug("profiling failed", "asset", a.Name, "error", err)
		return &StepError{Step: StepProfile, Err: err}
	}
	o.spinner.Succeed("")
	out.Suite.Key = key

	if err := o.saveSuite(ctx, store, out.Suite); err != nil {
		return err
	}
	if out.Validation != nil {
		path, err := validation.NewStore(store).Save(ctx, key, out.Validation)
		if err != nil {
			return &StepError{Step: StepSaveValidation, Err: err}
		}
		o.logger.Info("validation result saved", "path", path, "success", out.Validation.Success)
	}

	if err := o.verifySuite(ctx, store.Dir(), key); err != nil {
		return err
	}

	output.PrintSuccess(o.out, fmt.Sprintf("A new Expectation suite '%s' was added to your project", key.Suite))
	o.logger.Info("expectation suite created", "key", key.String(), "expectations", len(out.Suite.Expectations))
	return nil
}

func (o *Orchestrator) askSuiteKey(ctx context.Context, datasourceName, assetName string) (suite.Key, error) {
	for {
		ans, err := o.ask(ctx, prompt.Input("Name the new expectation suite", o.suiteName))
		if err != nil {
			return suite.Key{}, err
		}
		key := suite.NewKey(datasourceName, assetName, strings.TrimSpace(ans.Text))
		if err := key.Validate(); err != nil {
			output.PrintWarning(o.out, "The expectation suite name must not be empty or contain path separators.")
			continue
		}
		return key, nil
	}
}

// saveSuite creates s, asking before it replaces an existing suite.
func (o *Orchestrator) saveSuite(ctx context.Context, store *project.ConfigStore, s *suite.Suite) error {
	reg := suite.NewRegistry(store)
	err := reg.Create(ctx, s, suite.CreateOptions{})

	var dup *suite.DuplicateSuiteError
	if errors.As(err, &dup) {
		ans, askErr := o.ask(ctx, prompt.YesNo(fmt.Sprintf("Expectation suite %s already exists. Overwrite it?", s.Key), false))
		if askErr != nil {
			return askErr
		}
		if !ans.Confirmed {
			return errAborted
		}
		err = reg.Create(ctx, s, suite.CreateOptions{Overwrite: true})
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &StepError{Step: StepSaveSuite, Err: err}
	}
	return nil
}

// verifySuite re-reads the project config from disk and checks that key
// is listed by the expectations store it names.
func (o *Orchestrator) verifySuite(ctx context.Context, projectDir string, key suite.Key) error {
	fresh, err := o.openStore(projectDir)
	if err != nil {
		return &StepError{Step: StepVerifySuite, Err: err}
	}
	keys, err := suite.NewRegistry(fresh).ListKeys(ctx)
	if err != nil {
		return &StepError{Step: StepVerifySuite, Err: err}
	}
	for _, k := range keys {
		if k == key {
			return nil
		}
	}
	return &StepError{Step: StepVerifySuite, Err: &SuiteNotFoundError{Key: key}}
}
