package suite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuite(ds, asset, name string) *Suite {
	s := New(NewKey(ds, asset, name), "PandasDataset", "0.1.0")
	s.Add("expect_table_row_count_to_be_between", map[string]interface{}{"min_value": 1, "max_value": 10})
	return s
}

func TestRegistry_CreateAndGet(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := NewRegistryAt(base)
	ctx := context.Background()

	s := newSuite("files_datasource", "Titanic", "warning")
	require.NoError(t, reg.Create(ctx, s, CreateOptions{}))

	path := filepath.Join(base, "files_datasource", "default", "Titanic", "warning.json")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "warning", raw["expectation_suite_name"])
	assert.Equal(t, "files_datasource/default/Titanic", raw["data_asset_name"])

	got, err := reg.Get(ctx, s.Key)
	require.NoError(t, err)
	assert.Equal(t, s.Key, got.Key)
	require.Len(t, got.Expectations, 1)
	assert.Equal(t, "expect_table_row_count_to_be_between", got.Expectations[0].ExpectationType)
}

func TestRegistry_CreateDuplicate(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		opts    CreateOptions
		wantErr bool
	}{
		"without overwrite": {wantErr: true},
		"with overwrite":    {opts: CreateOptions{Overwrite: true}},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			reg := NewRegistryAt(t.TempDir())
			ctx := context.Background()
			require.NoError(t, reg.Create(ctx, newSuite("ds", "a", "warning"), CreateOptions{}))

			err := reg.Create(ctx, newSuite("ds", "a", "warning"), tt.opts)
			if tt.wantErr {
				var dup *DuplicateSuiteError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "ds/default/a/warning", dup.Key.String())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRegistry_ListKeys(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	reg := NewRegistryAt(base)
	ctx := context.Background()

	require.NoError(t, reg.Create(ctx, newSuite("zeta", "orders", "warning"), CreateOptions{}))
	require.NoError(t, reg.Create(ctx, newSuite("alpha", "main.titanic", "warning"), CreateOptions{}))
	require.NoError(t, reg.Create(ctx, newSuite("alpha", "main.titanic", "strict"), CreateOptions{}))
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(base, "README.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "alpha", "default", "main.titanic", "notes.txt"), nil, 0o644))

	keys, err := reg.ListKeys(ctx)
	require.NoError(t, err)

	var got []string
	for _, k := range keys {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{
		"alpha/default/main.titanic/strict",
		"alpha/default/main.titanic/warning",
		"zeta/default/orders/warning",
	}, got)

	exists, err := reg.ExistsAnyFor(ctx, "alpha")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = reg.ExistsAnyFor(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegistry_MissingBaseDir(t *testing.T) {
	t.Parallel()

	reg := NewRegistryAt(filepath.Join(t.TempDir(), "expectations"))
	keys, err := reg.ListKeys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = reg.Get(context.Background(), NewKey("ds", "a", "warning"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKey_Validate(t *testing.T) {
	tests := map[string]struct {
		key     Key
		wantErr bool
	}{
		"valid":            {key: NewKey("ds", "main.titanic", "warning")},
		"empty suite":      {key: NewKey("ds", "a", ""), wantErr: true},
		"separator":        {key: NewKey("ds", "a/b", "warning"), wantErr: true},
		"parent reference": {key: NewKey("..", "a", "warning"), wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.key.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
