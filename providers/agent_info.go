package providers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Velocidex/ordereddict"

	"github.com/hostquery/hostquery/tables"
)

const Version = "0.1.0"

// AgentInfoProvider describes the running agent itself: one row with
// our own pid and executable path. It exists so queries can anchor
// joins on a key that is guaranteed live, e.g.
//
//	SELECT * FROM agent_info JOIN processes USING (pid)
type AgentInfoProvider struct {
	Version string
}

func (self AgentInfoProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	path, err := os.Executable()
	if err != nil {
		path = ""
	} else {
		// The processes table reports resolved executable paths, so
		// report the same shape here or path joins will miss.
		resolved, err := filepath.EvalSymlinks(path)
		if err == nil {
			path = resolved
		}
	}

	row := ordereddict.NewDict().
		Set("pid", os.Getpid()).
		Set("name", "hostquery").
		Set("path", path).
		Set("version", self.Version)

	return []*ordereddict.Dict{row}, nil
}
