package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/testutil"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// runInitCmd runs 'gxctl init' on root with input on stdin. Settings come
// only from defaults.
func runInitCmd(t *testing.T, root, input string, extra ...string) (int, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	args := append([]string{"init", "-d", root, "--no-view", "--config", filepath.Join(t.TempDir(), "none.yml")}, extra...)
	code := Run(context.Background(), cmd, args, &errOut)
	return code, out.String(), errOut.String()
}

func TestInit_CSVScenario(t *testing.T) {
	root := t.TempDir()
	csvPath := testutil.WriteTitanicCSV(t, filepath.Join(root, "data"))

	code, out, errOut := runInitCmd(t, root, "Y\n1\n1\n"+csvPath+"\n\n\n\n\n")
	require.Equal(t, ExitSuccess, code, errOut)

	assert.FileExists(t, project.ConfigPath(root))
	cfg, err := os.ReadFile(project.ConfigPath(root))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "files_datasource:")
	assert.Contains(t, string(cfg), "class_name: PandasDatasource")

	matches, err := filepath.Glob(filepath.Join(project.Dir(root), "expectations", "*", "*", "*", "warning.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	assert.Contains(t, out, "Always know what to expect from your data")
	assert.Contains(t, out, "Name the new expectation suite [warning]")
	assert.Contains(t, out, "Great Expectations is now set up")
	assert.NotContains(t, out, "goroutine")
	assert.NotContains(t, errOut, "goroutine")
}

func TestInit_CompleteProjectSecondRun(t *testing.T) {
	root := t.TempDir()
	csvPath := testutil.WriteTitanicCSV(t, root)

	code, _, errOut := runInitCmd(t, root, "Y\n1\n1\n"+csvPath+"\n\n\n\nn\n")
	require.Equal(t, ExitSuccess, code, errOut)

	code, out, errOut := runInitCmd(t, root, "n\n")
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "This looks like an existing project that appears complete")
}

func TestInit_DeclineExitsZero(t *testing.T) {
	root := t.TempDir()

	code, out, _ := runInitCmd(t, root, "n\n")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Exiting")
	assert.NoDirExists(t, project.Dir(root))
}

func TestInit_EmptyStdinLeavesDirectoryUnchanged(t *testing.T) {
	root := t.TempDir()

	code, out, errOut := runInitCmd(t, root, "")
	assert.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "Exiting")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInit_ReportsHandledErrors(t *testing.T) {
	tests := map[string]struct {
		setup   func(t *testing.T) (root, input string)
		wantErr []string
	}{
		"missing directory": {
			setup: func(t *testing.T) (string, string) {
				return filepath.Join(t.TempDir(), "missing"), ""
			},
			wantErr: []string{"Argument Error", "cannot use"},
		},
		"broken project config": {
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(project.Dir(root), 0o755))
				require.NoError(t, os.WriteFile(project.ConfigPath(root), []byte("datasources: [\n"), 0o644))
				return root, ""
			},
			wantErr: []string{"Configuration Error", "great_expectations.yml"},
		},
		"unsupported database": {
			setup: func(t *testing.T) (string, string) {
				return t.TempDir(), "Y\n2\n6\n\noracle://scott@db/orcl\nn\n"
			},
			wantErr: []string{"Connection Error", "my_database", "not supported"},
		},
		"project directory without config": {
			setup: func(t *testing.T) (string, string) {
				root := t.TempDir()
				require.NoError(t, os.MkdirAll(project.Dir(root), 0o755))
				return root, "Y\n"
			},
			wantErr: []string{"Scaffold Conflict", "already exists"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			root, input := tt.setup(t)

			code, _, errOut := runInitCmd(t, root, input)
			assert.Equal(t, ExitFailure, code)
			for _, want := range tt.wantErr {
				assert.Contains(t, errOut, want)
			}
			assert.NotContains(t, errOut, "goroutine")
		})
	}
}
