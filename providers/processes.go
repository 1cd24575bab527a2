package providers

import (
	"context"
	"strconv"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/hostquery/hostquery/tables"
)

// ProcessProvider enumerates live processes. An EQUALS constraint on
// pid takes the single process path instead of walking the full
// process table.
type ProcessProvider struct{}

func (self ProcessProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	pid_expr, pinned := constraints.Pinned("pid")
	if pinned {
		pid, err := strconv.ParseInt(pid_expr, 10, 32)
		if err != nil {
			return nil, errors.WrapPrefix(
				tables.ErrInvalidConstraint, "pid "+pid_expr, 0)
		}

		proc, err := process.NewProcessWithContext(ctx, int32(pid))
		if err != nil {
			// Nonexistent pid is an empty result, not a failure.
			return nil, nil
		}
		return []*ordereddict.Dict{processRow(ctx, proc)}, nil
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.WrapPrefix(tables.ErrUnavailable, err.Error(), 0)
	}

	result := make([]*ordereddict.Dict, 0, len(procs))
	for _, proc := range procs {
		select {
		case <-ctx.Done():
			return result, nil
		default:
		}
		result = append(result, processRow(ctx, proc))
	}
	return result, nil
}

// Only collect the fields the table declares - each accessor is a
// separate /proc read so extra lookups are pure cost.
func processRow(ctx context.Context, proc *process.Process) *ordereddict.Dict {
	row := ordereddict.NewDict().
		Set("pid", proc.Pid)

	name, _ := proc.NameWithContext(ctx)
	row.Set("name", name)

	exe, _ := proc.ExeWithContext(ctx)
	row.Set("path", exe)

	cmdline, _ := proc.CmdlineWithContext(ctx)
	row.Set("cmdline", cmdline)

	ppid, err := proc.PpidWithContext(ctx)
	if err != nil {
		ppid = -1
	}
	row.Set("parent", ppid)

	cwd, _ := proc.CwdWithContext(ctx)
	row.Set("cwd", cwd)

	uid := int64(-1)
	uids, err := proc.UidsWithContext(ctx)
	if err == nil && len(uids) > 0 {
		uid = int64(uids[0])
	}
	row.Set("uid", uid)

	gid := int64(-1)
	gids, err := proc.GidsWithContext(ctx)
	if err == nil && len(gids) > 0 {
		gid = int64(gids[0])
	}
	row.Set("gid", gid)

	memory, err := proc.MemoryInfoWithContext(ctx)
	if err == nil {
		row.Set("resident_size", memory.RSS)
		row.Set("total_size", memory.VMS)
	} else {
		row.Set("resident_size", -1)
		row.Set("total_size", -1)
	}

	times, err := proc.TimesWithContext(ctx)
	if err == nil {
		row.Set("user_time", int64(times.User))
		row.Set("system_time", int64(times.System))
	} else {
		row.Set("user_time", -1)
		row.Set("system_time", -1)
	}

	create_time, err := proc.CreateTimeWithContext(ctx)
	if err == nil {
		row.Set("start_time", create_time/1000)
	} else {
		row.Set("start_time", -1)
	}

	return row
}
