package cli

import (
	"errors"

	"github.com/expectation-labs/gxctl/internal/datasource"
	clierrors "github.com/expectation-labs/gxctl/internal/errors"
	initpkg "github.com/expectation-labs/gxctl/internal/init"
	"github.com/expectation-labs/gxctl/internal/profiler"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/scaffold"
	"github.com/expectation-labs/gxctl/internal/suite"
)

// toCLIError maps an error from a command to the message shown to the
// user. Raw collaborator text (driver and filesystem errors) stays in the
// cause and only reaches the debug log.
func toCLIError(err error) *clierrors.CLIError {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		return cliErr
	}

	step := "running gxctl"
	var stepErr *initpkg.StepError
	if errors.As(err, &stepErr) {
		step = stepErr.Step
	}

	var (
		exists     *scaffold.AlreadyExistsError
		connErr    *datasource.ConnectionError
		dupName    *datasource.DuplicateNameError
		dupSuite   *suite.DuplicateSuiteError
		failure    *profiler.Failure
		missing    *initpkg.SuiteNotFoundError
		configErr  *project.ConfigError
		persistErr *project.PersistenceError
	)

	var cliErr *clierrors.CLIError
	switch {
	case errors.As(err, &exists):
		cliErr = clierrors.ScaffoldConflict(exists.Path)
	case errors.As(err, &connErr):
		cliErr = clierrors.ConnectionFailed(connErr.Name)
		cliErr.Message += ": " + connErr.Reason
	case errors.As(err, &dupName):
		cliErr = clierrors.DuplicateDatasource(dupName.Name)
	case errors.As(err, &dupSuite):
		cliErr = clierrors.DuplicateSuite(dupSuite.Key.String())
	case errors.As(err, &failure):
		cliErr = clierrors.ProfilingFailed(failure.Asset)
		cliErr.Message += ": " + failure.Reason
	case errors.As(err, &missing):
		cliErr = clierrors.SuiteNotDiscoverable(missing.Key.String())
	case errors.As(err, &configErr):
		cliErr = clierrors.ProjectConfigUnreadable(configErr.Path)
	case errors.As(err, &persistErr):
		cliErr = clierrors.PersistenceFailed(step)
	case step == initpkg.StepBuildDocs:
		cliErr = clierrors.DocsBuildFailed()
	case stepErr != nil:
		cliErr = clierrors.Internal(step)
	default:
		// Errors from cobra itself, such as an unknown command.
		cliErr = clierrors.NewRuntimeError(err.Error(), "Run 'gxctl --help' for usage")
	}
	return cliErr.WithCause(err)
}
