package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `# Welcome to Great Expectations!
config_version: 1.0

datasources:
  zeta:
    class_name: PandasDatasource
    base_directory: ../data
  alpha:
    class_name: SqlAlchemyDatasource
    credentials: ${alpha}

config_variables_file_path: uncommitted/config_variables.yml

# Custom plugins live here.
plugins_directory: plugins/

expectations_store_name: expectations_store
validations_store_name: validations_store

stores:
  expectations_store:
    class_name: ExpectationsStore
    store_backend:
      class_name: TupleFilesystemStoreBackend
      base_directory: expectations/
  validations_store:
    class_name: ValidationsStore
    store_backend:
      class_name: TupleFilesystemStoreBackend
      base_directory: uncommitted/validations/

data_docs_sites:
  local_site:
    class_name: SiteBuilder
    store_backend:
      class_name: TupleFilesystemStoreBackend
      base_directory: uncommitted/data_docs/local_site/
    site_index_builder:
      class_name: DefaultSiteIndexBuilder
`

type testDatasource struct {
	ClassName     string `yaml:"class_name"`
	BaseDirectory string `yaml:"base_directory,omitempty"`
	Credentials   string `yaml:"credentials,omitempty"`
}

// writeProject creates <root>/great_expectations/great_expectations.yml.
func writeProject(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Dir(root), 0o755))
	require.NoError(t, os.WriteFile(ConfigPath(root), []byte(content), 0o644))
	return root
}

func TestExists(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		setup func(t *testing.T, root string)
		want  bool
	}{
		"empty directory": {
			setup: func(t *testing.T, root string) {},
			want:  false,
		},
		"project directory without config": {
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(Dir(root), 0o755))
			},
			want: false,
		},
		"initialized project": {
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(Dir(root), 0o755))
				require.NoError(t, os.WriteFile(ConfigPath(root), []byte("config_version: 1.0\n"), 0o644))
			},
			want: true,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			tt.setup(t, root)

			got, err := Exists(root)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()
		_, err := OpenRoot(t.TempDir())
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		root := writeProject(t, "config_version: 1.0\ndatasources: [a, b\n")
		_, err := OpenRoot(root)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ConfigPath(root), cfgErr.Path)
	})

	t.Run("top level list", func(t *testing.T) {
		t.Parallel()
		root := writeProject(t, "- a\n- b\n")
		_, err := OpenRoot(root)

		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestDatasourceNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		want    []string
	}{
		"sorted names": {
			content: testConfig,
			want:    []string{"alpha", "zeta"},
		},
		"empty flow mapping": {
			content: "config_version: 1.0\ndatasources: {}\n",
			want:    []string{},
		},
		"missing section": {
			content: "config_version: 1.0\n",
			want:    nil,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store, err := OpenRoot(writeProject(t, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.DatasourceNames())
		})
	}
}

func TestSetDatasource_PreservesUntouchedKeys(t *testing.T) {
	t.Parallel()

	root := writeProject(t, testConfig)
	store, err := OpenRoot(root)
	require.NoError(t, err)

	require.NoError(t, store.SetDatasource("mid", testDatasource{
		ClassName:     "PandasDatasource",
		BaseDirectory: "../files",
	}))
	require.NoError(t, store.Save())

	data, err := os.ReadFile(ConfigPath(root))
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "# Welcome to Great Expectations!")
	assert.Contains(t, text, "# Custom plugins live here.")
	assert.Contains(t, text, "credentials: ${alpha}")
	assert.Less(t, strings.Index(text, "zeta:"), strings.Index(text, "alpha:"), "existing order is kept")
	assert.Less(t, strings.Index(text, "alpha:"), strings.Index(text, "mid:"), "new entries are appended")

	reopened, err := OpenRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reopened.DatasourceNames())

	var got testDatasource
	found, err := reopened.Datasource("mid", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "../files", got.BaseDirectory)
}

func TestSetDatasource_Overwrite(t *testing.T) {
	t.Parallel()

	root := writeProject(t, testConfig)
	store, err := OpenRoot(root)
	require.NoError(t, err)

	require.NoError(t, store.SetDatasource("zeta", testDatasource{ClassName: "SparkDFDatasource"}))
	require.NoError(t, store.Save())

	reopened, err := OpenRoot(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, reopened.DatasourceNames())

	var got testDatasource
	_, err = reopened.Datasource("zeta", &got)
	require.NoError(t, err)
	assert.Equal(t, "SparkDFDatasource", got.ClassName)
	assert.Empty(t, got.BaseDirectory)
}

func TestDatasource_Missing(t *testing.T) {
	t.Parallel()

	store, err := OpenRoot(writeProject(t, testConfig))
	require.NoError(t, err)

	var got testDatasource
	found, err := store.Datasource("nope", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreDirectories(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content          string
		wantExpectations string
		wantValidations  string
	}{
		"configured stores": {
			content:          testConfig,
			wantExpectations: "expectations",
			wantValidations:  filepath.Join("uncommitted", "validations"),
		},
		"custom expectations directory": {
			content: `expectations_store_name: mine
stores:
  mine:
    class_name: ExpectationsStore
    store_backend:
      base_directory: suites/
`,
			wantExpectations: "suites",
			wantValidations:  filepath.Join("uncommitted", "validations"),
		},
		"no stores section": {
			content:          "config_version: 1.0\n",
			wantExpectations: "expectations",
			wantValidations:  filepath.Join("uncommitted", "validations"),
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			root := writeProject(t, tt.content)
			store, err := OpenRoot(root)
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(Dir(root), tt.wantExpectations), store.ExpectationsDir())
			assert.Equal(t, filepath.Join(Dir(root), tt.wantValidations), store.ValidationsDir())
		})
	}
}

func TestDataDocsSites(t *testing.T) {
	t.Parallel()

	root := writeProject(t, testConfig)
	store, err := OpenRoot(root)
	require.NoError(t, err)

	sites, err := store.DataDocsSites()
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "local_site", sites[0].Name)
	assert.Equal(t, filepath.Join(Dir(root), "uncommitted", "data_docs", "local_site"), sites[0].StoreBackend.BaseDirectory)
	assert.Equal(t, "DefaultSiteIndexBuilder", sites[0].SiteIndexBuilder["class_name"])
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.yml")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestPersistenceError(t *testing.T) {
	inner := os.ErrPermission
	err := &PersistenceError{Op: "write", Path: "/x/great_expectations.yml", Err: inner}

	assert.Equal(t, "write /x/great_expectations.yml: permission denied", err.Error())
	assert.ErrorIs(t, err, os.ErrPermission)
}
