//go:build sqlite_vtable
// +build sqlite_vtable

package sqlengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostquery/hostquery/config"
	"github.com/hostquery/hostquery/providers"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	registry, cache, err := providers.NewStandardRegistry(
		config.GetDefaultConfig())
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	engine, err := NewEngine(registry)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return engine
}

func TestOSVersion(t *testing.T) {
	rows, err := newTestEngine(t).Query(context.Background(),
		"SELECT * FROM os_version")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	major, _ := rows[0].GetString("major")
	assert.NotEmpty(t, major)

	name, _ := rows[0].GetString("name")
	assert.NotEmpty(t, name)
}

func TestHostname(t *testing.T) {
	rows, err := newTestEngine(t).Query(context.Background(),
		"SELECT hostname FROM system_info")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	hostname, _ := rows[0].GetString("hostname")
	assert.NotEmpty(t, hostname)
}

func TestProcesses(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Query(context.Background(),
		"SELECT pid, name FROM processes LIMIT 1")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	pid, _ := rows[0].GetString("pid")
	assert.NotEmpty(t, pid)

	// An invalid pid within the query constraint returns no rows.
	rows, err = engine.Query(context.Background(),
		"SELECT pid, name FROM processes WHERE pid = -1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAgentProcessJoin(t *testing.T) {
	rows, err := newTestEngine(t).Query(context.Background(),
		"SELECT * FROM agent_info JOIN processes USING (pid)")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	uid, _ := rows[0].GetString("uid")
	assert.NotEqual(t, "-1", uid)

	parent, _ := rows[0].GetString("parent")
	assert.NotEqual(t, "-1", parent)
}

// The abstract join shapes the table layer must support: inner and
// left joins chained through a shared path key.
func TestAbstractJoins(t *testing.T) {
	engine := newTestEngine(t)
	preamble := "SELECT * FROM (SELECT processes.path AS path " +
		"FROM agent_info JOIN processes USING (pid)) p "

	for _, suffix := range []string{
		"JOIN file USING (path)",
		"LEFT JOIN file USING (path)",
		"JOIN file USING (path) JOIN hash USING (path)",
		"LEFT JOIN file USING (path) LEFT JOIN hash USING (path)",
	} {
		rows, err := engine.Query(context.Background(), preamble+suffix)
		require.NoError(t, err, suffix)
		assert.Len(t, rows, 1, suffix)
	}
}

// A WHERE clause carrying several constraints on the same table must
// still narrow correctly once the post-filter runs, including across a
// file to hash join keyed on path.
func TestMultiConstraintJoin(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"keep.txt", "keep.log", "skip.txt"} {
		require.NoError(t, os.WriteFile(
			filepath.Join(root, name), []byte("31337 hax0r"), 0600))
	}

	rows, err := newTestEngine(t).Query(context.Background(),
		fmt.Sprintf("SELECT file.path, hash.md5 FROM file "+
			"JOIN hash USING (path) "+
			"WHERE file.path LIKE '%s/keep%%' AND file.filename LIKE '%%.txt'",
			root))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	path, _ := rows[0].GetString("path")
	assert.Equal(t, filepath.Join(root, "keep.txt"), path)

	md5_sum, _ := rows[0].GetString("md5")
	assert.Equal(t, "2adfc0fd337a144cb2f8abd7cb0bf98e", md5_sum)
}

func TestFileLikeSQL(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(
			filepath.Join(root, name), []byte(name), 0600))
	}

	rows, err := newTestEngine(t).Query(context.Background(),
		fmt.Sprintf("SELECT path FROM file WHERE path LIKE '%s/%%'", root))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestHashSQL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample")
	require.NoError(t, os.WriteFile(path, []byte("31337 hax0r"), 0600))

	rows, err := newTestEngine(t).Query(context.Background(),
		fmt.Sprintf(
			"SELECT md5, sha1, sha256 FROM hash WHERE path = '%s'", path))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	md5_sum, _ := rows[0].GetString("md5")
	assert.Equal(t, "2adfc0fd337a144cb2f8abd7cb0bf98e", md5_sum)

	sha1_sum, _ := rows[0].GetString("sha1")
	assert.Equal(t, "21bd89f4580ef635e87f655fab5807a01e0ff2e9", sha1_sum)

	sha256_sum, _ := rows[0].GetString("sha256")
	assert.Equal(t,
		"6f1c16ac918f64721d14ff4bb3c51fe25ffde92f795ce6dbeb45722ce9d6e05c",
		sha256_sum)
}

func TestUsersSQL(t *testing.T) {
	engine := newTestEngine(t)

	rows, err := engine.Query(context.Background(),
		"SELECT uid, username FROM users WHERE uid = 0")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	username, _ := rows[0].GetString("username")
	assert.Equal(t, "root", username)

	rows, err = engine.Query(context.Background(),
		"SELECT username FROM users WHERE uid = -1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
