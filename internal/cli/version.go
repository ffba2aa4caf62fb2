package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/expectation-labs/gxctl/internal/build"
)

func newVersionCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for gxctl",
		Example: `  # Show version info
  gxctl version

  # Plain output (for scripts)
  gxctl version --plain`,
		Args: noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if plain {
				fmt.Fprintln(out, build.Version)
				return
			}
			fmt.Fprintln(out, build.String())
			fmt.Fprintf(out, "go: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print only the version number")
	return cmd
}
