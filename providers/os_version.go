package providers

import (
	"context"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/hostquery/hostquery/tables"
)

// OSVersionProvider produces exactly one row describing the running
// operating system release.
type OSVersionProvider struct{}

func (self OSVersionProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, errors.WrapPrefix(tables.ErrUnavailable, err.Error(), 0)
	}

	major, minor, patch := splitVersion(info.PlatformVersion)

	row := ordereddict.NewDict().
		Set("name", info.Platform).
		Set("version", info.PlatformVersion).
		Set("major", major).
		Set("minor", minor).
		Set("patch", patch).
		Set("build", info.KernelVersion).
		Set("platform", info.OS).
		Set("arch", info.KernelArch)

	return []*ordereddict.Dict{row}, nil
}

// splitVersion breaks "12.04.5" style strings into components. A
// missing component reports "0" - a missing value must never be
// rendered as an empty cell since consumers treat empty major as an
// error.
func splitVersion(version string) (major, minor, patch string) {
	major, minor, patch = "0", "0", "0"

	parts := strings.SplitN(version, ".", 3)
	if len(parts) > 0 && parts[0] != "" {
		major = parts[0]
	}
	if len(parts) > 1 && parts[1] != "" {
		minor = parts[1]
	}
	if len(parts) > 2 && parts[2] != "" {
		patch = parts[2]
	}
	return major, minor, patch
}
