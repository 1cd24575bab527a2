package providers

import (
	"context"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hostquery/hostquery/tables"
)

// SystemInfoProvider produces one row of hardware and hostname facts.
type SystemInfoProvider struct{}

func (self SystemInfoProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.WrapPrefix(tables.ErrUnavailable, err.Error(), 0)
	}

	row := ordereddict.NewDict().
		Set("hostname", info.Hostname).
		Set("uuid", info.HostID)

	cpu_brand := ""
	cpu_info, err := cpu.InfoWithContext(ctx)
	if err == nil && len(cpu_info) > 0 {
		cpu_brand = cpu_info[0].ModelName
	}
	row.Set("cpu_brand", cpu_brand)

	logical_cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		logical_cores = -1
	}
	row.Set("cpu_logical_cores", logical_cores)

	physical_memory := int64(-1)
	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err == nil {
		physical_memory = int64(memory.Total)
	}
	row.Set("physical_memory", physical_memory)

	return []*ordereddict.Dict{row}, nil
}
