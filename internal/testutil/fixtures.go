package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// TitanicCSV is a small slice of the Titanic passenger list.
const TitanicCSV = `Name,PClass,Age,Sex,Survived
"Allen, Miss Elisabeth Walton",1st,29,female,1
"Allison, Miss Helen Loraine",1st,2,female,0
"Allison, Mr Hudson Joshua Creighton",1st,30,male,0
"Allison, Mrs Hudson JC (Bessie Waldo Daniels)",1st,25,female,0
"Allison, Master Hudson Trevor",1st,0.92,male,1
`

// WriteTitanicCSV writes Titanic.csv into dir, creating dir when needed,
// and returns the file path.
func WriteTitanicCSV(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "Titanic.csv")
	require.NoError(t, os.WriteFile(path, []byte(TitanicCSV), 0o644))
	return path
}

// WriteTitanicDB creates dir/titanic.db holding a titanic table and returns
// the database path.
func WriteTitanicDB(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "titanic.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE titanic (name TEXT, pclass TEXT, age REAL, survived INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO titanic VALUES
		('Allen, Miss Elisabeth Walton', '1st', 29, 1),
		('Allison, Miss Helen Loraine', '1st', 2, 0),
		('Allison, Mr Hudson Joshua Creighton', '1st', 30, 0)`)
	require.NoError(t, err)
	return path
}
