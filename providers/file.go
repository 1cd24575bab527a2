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
package providers

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Velocidex/ordereddict"

	"github.com/hostquery/hostquery/tables"
)

// FileProvider materializes metadata rows for addressed paths. The
// file relation is infinite, so rows only exist for paths the query
// names: an EQUALS pin on path, an EQUALS pin on directory (one level
// of children) or a LIKE pattern scoped by its literal prefix. With no
// such constraint the table is empty - there is no full filesystem
// walk.
type FileProvider struct{}

func (self FileProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	var result []*ordereddict.Dict
	for _, path := range self.CandidatePaths(ctx, constraints) {
		row, err := fileRow(path)
		if err != nil {
			// A named path that does not exist or cannot be
			// stat-ed contributes nothing.
			continue
		}
		result = append(result, row)
	}
	return result, nil
}

// CandidatePaths expands the constraint set into concrete paths. The
// hash provider reuses the same expansion so both tables agree on
// which paths a constraint addresses. The expansion may over-produce
// relative to conjunctive semantics; the table adapter post-filters.
func (self FileProvider) CandidatePaths(ctx context.Context,
	constraints *tables.ConstraintSet) []string {

	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		if path != "" && !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, path := range constraints.PinnedValues("path") {
		add(filepath.Clean(path))
	}

	for _, dir := range constraints.PinnedValues("directory") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			add(filepath.Join(dir, entry.Name()))
		}
	}

	prefix, pres := constraints.LikePrefix("path")
	if pres && prefix != "" {
		self.expandLike(ctx, prefix, constraints, add)
	}

	return result
}

// expandLike walks the subtree rooted at the deepest directory the
// pattern's literal prefix names, keeping paths the pattern accepts.
// The prefix bounds the walk so "path LIKE '/dev/%'" enumerates /dev
// rather than the whole filesystem.
func (self FileProvider) expandLike(ctx context.Context, prefix string,
	constraints *tables.ConstraintSet, add func(string)) {

	root := prefix
	if !strings.HasSuffix(prefix, "/") {
		root = filepath.Dir(prefix)
	}
	root = filepath.Clean(root)

	_ = filepath.WalkDir(root, func(
		path string, entry fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return fs.SkipAll
		default:
		}

		if err != nil {
			// Unreadable subtree - nothing to enumerate there.
			return nil
		}

		if constraints.Match("path", path) {
			add(path)
		}
		return nil
	})
}

func fileRow(path string) (*ordereddict.Dict, error) {
	stat, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	inode, device, uid, gid := statNumbers(stat)

	symlink := 0
	if stat.Mode()&os.ModeSymlink != 0 {
		symlink = 1
	}

	return ordereddict.NewDict().
		Set("path", path).
		Set("directory", filepath.Dir(path)).
		Set("filename", filepath.Base(path)).
		Set("inode", inode).
		Set("device", device).
		Set("uid", uid).
		Set("gid", gid).
		Set("mode", fmt.Sprintf("%04o", stat.Mode().Perm())).
		Set("size", stat.Size()).
		Set("mtime", stat.ModTime().Unix()).
		Set("type", fileType(stat.Mode())).
		Set("symlink", symlink), nil
}

func fileType(mode os.FileMode) string {
	switch {
	case mode.IsRegular():
		return "regular"
	case mode.IsDir():
		return "directory"
	case mode&os.ModeSymlink != 0:
		return "symlink"
	case mode&os.ModeSocket != 0:
		return "socket"
	case mode&os.ModeNamedPipe != 0:
		return "fifo"
	case mode&os.ModeCharDevice != 0:
		return "character"
	case mode&os.ModeDevice != 0:
		return "block"
	default:
		return "unknown"
	}
}
