//go:build linux || freebsd
// +build linux freebsd

package providers

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"

	"github.com/hostquery/hostquery/tables"
)

const group_path = "/etc/group"

// GroupProvider enumerates local groups from the group database.
type GroupProvider struct{}

func (self GroupProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	fd, err := os.Open(group_path)
	if err != nil {
		return nil, errors.WrapPrefix(tables.ErrUnavailable, err.Error(), 0)
	}
	defer fd.Close()

	return parseGroups(fd, constraints)
}

func parseGroups(reader io.Reader,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	var result []*ordereddict.Dict

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// groupname:password:gid:members
		fields := strings.SplitN(line, ":", 4)
		if len(fields) < 4 {
			continue
		}

		if !constraints.Match("gid", fields[2]) ||
			!constraints.Match("groupname", fields[0]) {
			continue
		}

		result = append(result, ordereddict.NewDict().
			Set("gid", fields[2]).
			Set("groupname", fields[0]))
	}

	return result, scanner.Err()
}
