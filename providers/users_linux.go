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

const passwd_path = "/etc/passwd"

// UserProvider enumerates local accounts from the passwd database. A
// uid or username pin narrows the scan to matching lines; the file is
// read fresh on every invocation.
type UserProvider struct{}

func (self UserProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	fd, err := os.Open(passwd_path)
	if err != nil {
		return nil, errors.WrapPrefix(tables.ErrUnavailable, err.Error(), 0)
	}
	defer fd.Close()

	return parsePasswd(fd, constraints)
}

func parsePasswd(reader io.Reader,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	var result []*ordereddict.Dict

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// username:password:uid:gid:gecos:directory:shell
		fields := strings.SplitN(line, ":", 7)
		if len(fields) < 7 {
			continue
		}

		if !constraints.Match("uid", fields[2]) ||
			!constraints.Match("username", fields[0]) {
			continue
		}

		result = append(result, ordereddict.NewDict().
			Set("uid", fields[2]).
			Set("gid", fields[3]).
			Set("uuid", "").
			Set("username", fields[0]).
			Set("description", fields[4]).
			Set("directory", fields[5]).
			Set("shell", fields[6]))
	}

	return result, scanner.Err()
}
