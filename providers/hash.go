package providers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Velocidex/ordereddict"

	"github.com/hostquery/hostquery/hashcache"
	"github.com/hostquery/hostquery/logging"
	"github.com/hostquery/hostquery/tables"
)

// HashProvider backs the hash table. Path constraints expand through
// the same rules as the file table, then each candidate resolves
// through the digest cache independently - one unreadable path never
// aborts the rest of the query.
type HashProvider struct {
	cache *hashcache.Cache
	files FileProvider
}

// NewHashProvider binds the provider to a digest cache instance. The
// cache is passed in rather than reached for globally so tests and
// correctness sensitive callers can supply a disabled one.
func NewHashProvider(cache *hashcache.Cache) *HashProvider {
	return &HashProvider{cache: cache}
}

func (self *HashProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	var result []*ordereddict.Dict
	for _, path := range self.files.CandidatePaths(ctx, constraints) {
		select {
		case <-ctx.Done():
			return result, nil
		default:
		}

		stat, err := os.Stat(path)
		if err != nil || !stat.Mode().IsRegular() {
			// Only regular files have content to digest.
			continue
		}

		digests, err := self.cache.Resolve(path)
		if err != nil {
			logging.GetLogger("hash").Warnf(
				"hash: skipping %s: %v", path, err)
			continue
		}

		result = append(result, ordereddict.NewDict().
			Set("path", path).
			Set("directory", filepath.Dir(path)).
			Set("md5", digests.MD5).
			Set("sha1", digests.SHA1).
			Set("sha256", digests.SHA256))
	}

	return result, nil
}
