package initpkg

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/docs"
	"github.com/expectation-labs/gxctl/internal/profiler"
	"github.com/expectation-labs/gxctl/internal/project"
	"github.com/expectation-labs/gxctl/internal/prompt"
	"github.com/expectation-labs/gxctl/internal/scaffold"
	"github.com/expectation-labs/gxctl/internal/suite"
	"github.com/expectation-labs/gxctl/internal/testutil"
)

type harness struct {
	root  string
	out   *bytes.Buffer
	asker *prompt.Scripted
	orch  *Orchestrator
}

// newHarness wires real collaborators around a scripted asker. modify may
// replace any of them.
func newHarness(t *testing.T, root string, modify func(*Options), inputs ...string) *harness {
	t.Helper()
	h := &harness{root: root, out: &bytes.Buffer{}, asker: prompt.NewScripted(inputs...)}

	opts := Options{
		Scaffold: scaffold.NewOSBuilder(nil),
		Profiler: profiler.NewBasic(0, 0, "test", nil),
		Sites:    docs.NewHTMLBuilder("gxctl test", nil),
		Asker:    h.asker,
		Prober:   datasource.NewProber(0, nil),
		Out:      h.out,
	}
	if modify != nil {
		modify(&opts)
	}

	orch, err := New(opts)
	require.NoError(t, err)
	h.orch = orch
	return h
}

func (h *harness) run(t *testing.T) (Outcome, error) {
	t.Helper()
	return h.orch.Run(context.Background(), h.root, false)
}

// writeTitanic writes data/Titanic.csv under root and returns its path.
func writeTitanic(t *testing.T, root string) string {
	t.Helper()
	return testutil.WriteTitanicCSV(t, filepath.Join(root, "data"))
}

func writeTitanicDB(t *testing.T, root string) string {
	t.Helper()
	return testutil.WriteTitanicDB(t, root)
}

// scaffoldProject creates an empty project under root.
func scaffoldProject(t *testing.T, root string) {
	t.Helper()
	_, err := scaffold.NewOSBuilder(nil).Create(context.Background(), root)
	require.NoError(t, err)
}

func openStore(t *testing.T, root string) *project.ConfigStore {
	t.Helper()
	store, err := project.OpenRoot(root)
	require.NoError(t, err)
	return store
}

func suiteKeys(t *testing.T, root string) []suite.Key {
	t.Helper()
	keys, err := suite.NewRegistry(openStore(t, root)).ListKeys(context.Background())
	require.NoError(t, err)
	return keys
}

// snapshot maps every path below root to its content ("" for directories).
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			files[rel] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

type failingProfiler struct{}

func (failingProfiler) Profile(ctx context.Context, req profiler.Request) (*profiler.Output, error) {
	return nil, &profiler.Failure{Asset: req.Asset, Reason: "the data file is empty"}
}

type recordingViewer struct {
	urls []string
}

func (v *recordingViewer) Open(ctx context.Context, url string) error {
	v.urls = append(v.urls, url)
	return nil
}
