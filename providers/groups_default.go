//go:build !linux && !freebsd
// +build !linux,!freebsd

package providers

import (
	"context"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"

	"github.com/hostquery/hostquery/tables"
)

type GroupProvider struct{}

func (self GroupProvider) Generate(ctx context.Context,
	constraints *tables.ConstraintSet) ([]*ordereddict.Dict, error) {
	return nil, errors.WrapPrefix(tables.ErrUnavailable,
		"groups: no group database on this platform", 0)
}
