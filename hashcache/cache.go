/*
Hostquery - SQL visibility into live operating system state.
Copyright (C) 2026 Hostquery Authors.

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package hashcache avoids recomputing cryptographic digests for
// unchanged files. Entries are keyed by file identity (device+inode
// where available) and validated against live modification time and
// size on every resolve.
//
// Known limitation: a file rewritten with identical size within the
// modification time granularity is indistinguishable from an unchanged
// file and will return the previous digests. This is the accepted cost
// of metadata based invalidation; callers that cannot tolerate it run
// with the cache disabled.
package hashcache

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Velocidex/ttlcache/v2"
	"github.com/go-errors/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hostquery/hostquery/config"
	"github.com/hostquery/hostquery/tables"
)

var (
	hashCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hash_cache_hits_total",
		Help: "Number of digest lookups served from the cache.",
	})

	hashCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hash_cache_misses_total",
		Help: "Number of digest lookups that required hashing the file.",
	})
)

type Digests struct {
	MD5    string
	SHA1   string
	SHA256 string
}

type entry struct {
	identity Identity
	mtime    time.Time
	size     int64
	digests  Digests
}

// Cache is process wide shared state. The backing store serializes
// access internally so independent queries may resolve concurrently.
// Entries are never expired by time - only by observed metadata drift
// or LRU pressure. The cache lives for the process lifetime.
type Cache struct {
	enabled bool
	lru     *ttlcache.Cache
}

func NewCache(config_obj *config.Config) *Cache {
	lru := ttlcache.NewCache()
	lru.SetCacheSizeLimit(config_obj.HashCacheMax)

	return &Cache{
		enabled: config_obj.EnableHashCache,
		lru:     lru,
	}
}

func (self *Cache) Close() {
	self.lru.Close()
}

// Lookup retrieves the stored digests for an identity without any
// validation against live metadata. Most callers want Resolve.
func (self *Cache) Lookup(identity Identity) (Digests, bool) {
	value, err := self.lru.Get(identity.Key())
	if err != nil {
		return Digests{}, false
	}
	cached, ok := value.(*entry)
	if !ok {
		return Digests{}, false
	}
	return cached.digests, true
}

// Resolve returns the md5, sha1 and sha256 digests for the file at
// path. The cached digests are reused only when the stored identity,
// modification time and size all match the live stat; any drift
// recomputes and replaces the entry in place. With the cache disabled
// every call hashes the file and the store is never read or written.
func (self *Cache) Resolve(path string) (Digests, error) {
	if !self.enabled {
		return HashFile(path)
	}

	identity, mtime, size, err := statIdentity(path)
	if err != nil {
		return Digests{}, errors.WrapPrefix(tables.ErrIO,
			fmt.Sprintf("%s: %v", path, err), 0)
	}

	key := identity.Key()
	value, lookup_err := self.lru.Get(key)
	if lookup_err == nil {
		cached, ok := value.(*entry)
		if ok && cached.identity == identity &&
			cached.mtime.Equal(mtime) &&
			cached.size == size {
			hashCacheHits.Inc()
			return cached.digests, nil
		}
	}

	hashCacheMisses.Inc()
	digests, err := HashFile(path)
	if err != nil {
		return Digests{}, err
	}

	_ = self.lru.Set(key, &entry{
		identity: identity,
		mtime:    mtime,
		size:     size,
		digests:  digests,
	})

	return digests, nil
}

// FileIdentity returns the stable cache identity for the file at
// path.
func FileIdentity(path string) (Identity, error) {
	identity, _, _, err := statIdentity(path)
	return identity, err
}

// HashFile computes all three digests in a single streamed read.
func HashFile(path string) (Digests, error) {
	fd, err := os.Open(path)
	if err != nil {
		return Digests{}, errors.WrapPrefix(tables.ErrIO,
			fmt.Sprintf("%s: %v", path, err), 0)
	}
	defer fd.Close()

	md5_sum := md5.New()
	sha1_sum := sha1.New()
	sha256_sum := sha256.New()

	_, err = io.Copy(io.MultiWriter(md5_sum, sha1_sum, sha256_sum), fd)
	if err != nil {
		return Digests{}, errors.WrapPrefix(tables.ErrIO,
			fmt.Sprintf("%s: %v", path, err), 0)
	}

	return Digests{
		MD5:    hex.EncodeToString(md5_sum.Sum(nil)),
		SHA1:   hex.EncodeToString(sha1_sum.Sum(nil)),
		SHA256: hex.EncodeToString(sha256_sum.Sum(nil)),
	}, nil
}
