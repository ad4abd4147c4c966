package selq

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func SetupTestDatabase(t *testing.T, setupQueries ...string) *sql.DB {
	t.Helper()

	// Create a temp file so that the sqlite file is not populating random directories.
	f, err := os.CreateTemp(t.TempDir(), "selq-test-data")
	require.NoError(t, err, "could not create database temp file")
	require.NoError(t, f.Close())

	db, err := sql.Open("sqlite3", f.Name())
	require.NoError(t, err, "could not connect to sqlite3")
	t.Cleanup(func() { _ = db.Close() })

	// Run the provided queries as a setup step.
	for _, query := range setupQueries {
		_, err = db.Exec(query)
		require.NoError(t, err, "failed to run setup queries")
	}

	return db
}

func bunnyDatabase(t *testing.T) *sql.DB {
	return SetupTestDatabase(
		t,
		`CREATE TABLE bunnies (id INTEGER PRIMARY KEY, name TEXT, ear_length FLOAT, is_mortal BOOLEAN, burrow_id INTEGER)`,
		`CREATE TABLE burrows (id INTEGER PRIMARY KEY, location TEXT)`,
		`INSERT INTO burrows VALUES (1, 'hill'), (2, 'meadow')`,
		`INSERT INTO bunnies VALUES (1, 'ollie', 15, TRUE, 1)`,
		`INSERT INTO bunnies VALUES (2, 'oliver', 20, TRUE, 2)`,
		`INSERT INTO bunnies VALUES (3, 'king ollie', 30.57, TRUE, 1)`,
		`INSERT INTO bunnies VALUES (4, 'ollie the omniscient', 25000, FALSE, NULL)`,
	)
}
