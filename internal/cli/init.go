package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/expectation-labs/gxctl/internal/build"
	"github.com/expectation-labs/gxctl/internal/config"
	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/docs"
	clierrors "github.com/expectation-labs/gxctl/internal/errors"
	initpkg "github.com/expectation-labs/gxctl/internal/init"
	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/profiler"
	"github.com/expectation-labs/gxctl/internal/prompt"
	"github.com/expectation-labs/gxctl/internal/scaffold"
)

type initOptions struct {
	directory string
	view      bool
	noView    bool
}

func newInitCmd(global *globalOptions) *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project or finish setting one up",
		Long: `Initialize a Great Expectations project interactively.

Depending on what already exists under the directory, this command:
  1. Creates the great_expectations/ project tree
  2. Connects a datasource (files with Pandas or Spark, or a SQL database)
  3. Profiles a data asset into a first expectation suite
  4. Builds and optionally opens Data Docs

Running it again on a finished project changes nothing.`,
		Example: `  gxctl init
  gxctl init -d ./analytics
  gxctl init --no-view`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.directory, "directory", "d", ".", "Directory to create or complete the project in")
	cmd.Flags().BoolVar(&opts.view, "view", true, "Open Data Docs in a browser after building them")
	cmd.Flags().BoolVar(&opts.noView, "no-view", false, "Do not open Data Docs in a browser")
	cmd.MarkFlagsMutuallyExclusive("view", "no-view")

	return cmd
}

func runInit(cmd *cobra.Command, global *globalOptions, opts *initOptions) error {
	settings, err := config.LoadWithOptions(config.LoadOptions{UserConfigPath: global.configPath})
	if err != nil {
		path := global.configPath
		if path == "" {
			path, _ = config.UserConfigPath()
		}
		return clierrors.SettingsInvalid(path).WithCause(err)
	}
	if settings.NoColor {
		color.NoColor = true
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		level = logging.LevelWarn
	}
	if global.verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Writer: cmd.ErrOrStderr(), Service: "init"})

	root, err := resolveDirectory(opts.directory)
	if err != nil {
		logger.Debug("invalid directory", "directory", opts.directory, "error", err)
		return clierrors.InvalidDirectory(opts.directory).WithCause(err)
	}

	out := cmd.OutOrStdout()
	orch, err := initpkg.New(initpkg.Options{
		Scaffold: scaffold.NewOSBuilder(logger),
		Profiler: profiler.NewBasic(settings.Profiler.MaxColumns, settings.Profiler.SampleRows, build.Version, logger),
		Sites:    docs.NewHTMLBuilder("gxctl "+build.Version, logger),
		Viewer:   docs.NewBrowserViewer(settings.DataDocs.OpenCommand),
		Asker:    prompt.NewTerminal(cmd.InOrStdin(), out),
		Prober:   datasource.NewProber(settings.Datasource.ProbeTimeout, logger),
		Logger:   logger,
		Out:      out,
		Settings: settings,
	})
	if err != nil {
		return clierrors.Internal("starting init").WithCause(err)
	}

	outcome, err := orch.Run(cmd.Context(), root, opts.view && !opts.noView)
	if err != nil {
		logger.Debug("init failed", "error", err)
		return err
	}
	logger.Debug("init done", "outcome", outcome.String())
	return nil
}

// resolveDirectory returns dir as an absolute path to an existing directory.
func resolveDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
