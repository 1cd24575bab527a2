package providers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostquery/hostquery/config"
	"github.com/hostquery/hostquery/hashcache"
	"github.com/hostquery/hostquery/tables"
)

func newHashProvider(t *testing.T) *HashProvider {
	t.Helper()
	cache := hashcache.NewCache(config.GetDefaultConfig())
	t.Cleanup(cache.Close)
	return NewHashProvider(cache)
}

func TestHashEqualsPin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample")
	require.NoError(t, os.WriteFile(path, []byte("31337 hax0r"), 0600))

	rows, err := newHashProvider(t).Generate(context.Background(),
		tables.NewConstraintSet().Add("path", tables.EQUALS, path))
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

// One unresolvable candidate must not abort the others.
func TestHashPartialFailureIsolation(t *testing.T) {
	root := t.TempDir()

	good_a := filepath.Join(root, "good_a")
	good_b := filepath.Join(root, "good_b")
	require.NoError(t, os.WriteFile(good_a, []byte("31337 hax0r"), 0600))
	require.NoError(t, os.WriteFile(good_b, []byte("random n00b"), 0600))

	// A dangling symlink enumerates but cannot be hashed.
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), broken))

	rows, err := newHashProvider(t).Generate(context.Background(),
		tables.NewConstraintSet().Add("path", tables.LIKE, root+"/%"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	digests := make(map[string]string)
	for _, row := range rows {
		path, _ := row.GetString("path")
		md5_sum, _ := row.GetString("md5")
		digests[path] = md5_sum
	}

	assert.Equal(t, "2adfc0fd337a144cb2f8abd7cb0bf98e", digests[good_a])
	assert.Equal(t, "e1cd6c58b0d4d9d7bcbfc0ec2b55ce94", digests[good_b])
}

func TestHashNonexistentPath(t *testing.T) {
	rows, err := newHashProvider(t).Generate(context.Background(),
		tables.NewConstraintSet().Add("path", tables.EQUALS,
			filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// Directories enumerate through LIKE expansion but have no content to
// hash.
func TestHashSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0700))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "sub", "inner"), []byte("x"), 0600))

	rows, err := newHashProvider(t).Generate(context.Background(),
		tables.NewConstraintSet().Add("path", tables.LIKE, root+"/%"))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	path, _ := rows[0].GetString("path")
	assert.Equal(t, filepath.Join(root, "sub", "inner"), path)
}
