// Package cli implements the gxctl command line: the root command, 'init'
// and 'version'.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/expectation-labs/gxctl/internal/build"
	clierrors "github.com/expectation-labs/gxctl/internal/errors"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// usageError marks failures of flag or argument parsing.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// noArgs is cobra.NoArgs reporting a usageError.
func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &usageError{err: err}
	}
	return nil
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gxctl",
		Short: "Set up Great Expectations data-context projects",
		Long: `gxctl creates and completes Great Expectations projects interactively.

'gxctl init' inspects the great_expectations/ directory under the current
directory (or --directory) and walks you through whatever is missing:
scaffolding the project, connecting a datasource, profiling a data asset
into a first expectation suite and building Data Docs.`,
		Example: `  # Set up a project in the current directory
  gxctl init

  # Set up a project elsewhere without opening a browser
  gxctl init --directory ./analytics --no-view`,
		Version:       build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a gxctl settings file (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug details to stderr")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.AddCommand(newInitCmd(opts), newVersionCmd())
	return cmd
}

// Execute runs gxctl with the process arguments and returns the exit code.
// SIGINT and SIGTERM cancel the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, NewRootCmd(), os.Args[1:], os.Stderr)
}

// Run executes cmd with args, reports any error on errOut and returns the
// exit code.
func Run(ctx context.Context, cmd *cobra.Command, args []string, errOut io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var usage *usageError
	if errors.As(err, &usage) {
		clierrors.FprintError(errOut, clierrors.NewArgumentError(usage.Error(), "Run 'gxctl --help' for usage"))
		return ExitInvalidArguments
	}

	clierrors.FprintError(errOut, toCLIError(err))
	return ExitFailure
}
