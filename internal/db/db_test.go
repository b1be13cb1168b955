package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")
	conn, err := Open(path)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Migrate(conn))
	require.NoError(t, Migrate(conn), "second run is a no-op")

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)

	for _, table := range []string{"users", "games", "daily_results"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var fk int
	require.NoError(t, conn.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrateOrderAndFailure(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer conn.Close()

	fsys := fstest.MapFS{
		"m/002_b.sql": {Data: []byte(`INSERT INTO t(v) VALUES ('b');`)},
		"m/001_a.sql": {Data: []byte(`CREATE TABLE t (v TEXT);`)},
	}
	require.NoError(t, migrate(conn, fsys, "m"))

	var v string
	require.NoError(t, conn.QueryRow(`SELECT v FROM t`).Scan(&v))
	assert.Equal(t, "b", v)

	bad := fstest.MapFS{"m/003_bad.sql": {Data: []byte(`NOT SQL;`)}}
	assert.Error(t, migrate(conn, bad, "m"))

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE name='003_bad.sql'`).Scan(&n))
	assert.Equal(t, 0, n, "failed migration is not recorded")
}

func TestMigrateSelfManaged(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer conn.Close()

	fsys := fstest.MapFS{
		"m/001_a.sql": {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"m/002_rebuild.sql": {Data: []byte(`
PRAGMA foreign_keys = OFF;
BEGIN TRANSACTION;
CREATE TABLE t_new (v TEXT NOT NULL, n INTEGER NOT NULL DEFAULT 0);
INSERT INTO t_new(v) SELECT v FROM t;
DROP TABLE t;
ALTER TABLE t_new RENAME TO t;
COMMIT;
PRAGMA foreign_keys = ON;`)},
	}
	require.NoError(t, migrate(conn, fsys, "m"))
	require.NoError(t, migrate(conn, fsys, "m"), "second run is a no-op")

	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM _migrations WHERE name='002_rebuild.sql'`).Scan(&n))
	assert.Equal(t, 1, n)

	_, err = conn.Exec(`INSERT INTO t(v) VALUES ('x')`)
	require.NoError(t, err)
	require.NoError(t, conn.QueryRow(`SELECT n FROM t WHERE v='x'`).Scan(&n))
	assert.Equal(t, 0, n)
}
