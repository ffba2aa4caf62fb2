package datasource

import (
	"context"
	"database/sql"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteDB creates a sqlite file with a titanic table.
func newSQLiteDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "titanic.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE titanic (name TEXT, age REAL, survived INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO titanic VALUES ('Allen', 29, 1), ('Braund', 22, 0)`)
	require.NoError(t, err)
	return path
}

func TestDefaultProber_Filesystem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "Titanic.csv")
	require.NoError(t, os.WriteFile(file, []byte("a,b\n1,2\n"), 0o644))

	tests := map[string]struct {
		descriptor Descriptor
		wantErr    bool
	}{
		"existing directory": {
			descriptor: NewFilesystem("fs", dir),
		},
		"missing directory": {
			descriptor: NewFilesystem("fs", filepath.Join(dir, "nope")),
			wantErr:    true,
		},
		"file instead of directory": {
			descriptor: NewFilesystem("fs", file),
			wantErr:    true,
		},
		"spark with local master": {
			descriptor: NewSpark("spark", dir, ""),
		},
		"spark with missing directory": {
			descriptor: NewSpark("spark", filepath.Join(dir, "nope"), "local[2]"),
			wantErr:    true,
		},
	}

	prober := NewProber(time.Second, nil)
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := prober.Probe(context.Background(), tt.descriptor)
			if tt.wantErr {
				var connErr *ConnectionError
				assert.ErrorAs(t, err, &connErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDefaultProber_SparkMaster(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	closed, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedAddr := closed.Addr().String()
	require.NoError(t, closed.Close())

	dir := t.TempDir()
	prober := NewProber(time.Second, nil)

	err = prober.Probe(context.Background(), NewSpark("up", dir, "spark://"+ln.Addr().String()))
	assert.NoError(t, err)

	err = prober.Probe(context.Background(), NewSpark("down", dir, "spark://"+closedAddr))
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "down", connErr.Name)
}

func TestDefaultProber_SQLite(t *testing.T) {
	t.Parallel()

	path := newSQLiteDB(t)
	prober := NewProber(5*time.Second, nil)
	d := NewSQL("titanic", "sqlite:///"+path)

	require.NoError(t, prober.Probe(context.Background(), d))

	tables, err := prober.ListAssets(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.titanic"}, tables)
}

func TestDefaultProber_SQLErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url        string
		wantReason string
	}{
		"unsupported scheme": {
			url:        "snowflake://user:pw@account/db",
			wantReason: `"snowflake" databases are not supported`,
		},
		"not a url": {
			url:        "just text",
			wantReason: "could not be used",
		},
		"unreachable postgres": {
			url:        "postgresql://user:pw@127.0.0.1:1/db?connect_timeout=1",
			wantReason: "did not answer",
		},
	}

	prober := NewProber(2*time.Second, nil)
	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := prober.Probe(context.Background(), NewSQL("db", tt.url))

			var connErr *ConnectionError
			require.ErrorAs(t, err, &connErr)
			assert.Contains(t, connErr.Reason, tt.wantReason)
		})
	}
}

func TestListDataFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.tsv", "notes.md", ".hidden.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	files, err := ListDataFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tsv", "b.csv"}, files)
}

func TestAssetName(t *testing.T) {
	tests := map[string]struct {
		path string
		want string
	}{
		"csv file":       {path: "data/Titanic.csv", want: "Titanic"},
		"no extension":   {path: "/tmp/records", want: "records"},
		"two extensions": {path: "x/archive.tar.gz", want: "archive.tar"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssetName(tt.path))
		})
	}
}
