package tables

import (
	"context"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGenerator struct {
	rows  []*ordereddict.Dict
	err   error
	calls int
}

func (self *testGenerator) Generate(ctx context.Context,
	constraints *ConstraintSet) ([]*ordereddict.Dict, error) {
	self.calls++
	return self.rows, self.err
}

var testColumns = []Column{
	{Name: "pid", Type: BIGINT},
	{Name: "name", Type: TEXT},
}

func TestRegistrationValidation(t *testing.T) {
	_, err := NewTable("", testColumns, &testGenerator{})
	assert.Error(t, err)

	_, err = NewTable("processes", testColumns, nil)
	assert.Error(t, err)

	_, err = NewTable("processes", nil, &testGenerator{})
	assert.Error(t, err)

	_, err = NewTable("processes", []Column{
		{Name: "pid", Type: BIGINT},
		{Name: "pid", Type: TEXT},
	}, &testGenerator{})
	assert.Error(t, err)
}

func TestRegistryDuplicate(t *testing.T) {
	registry := NewRegistry()

	table, err := NewTable("processes", testColumns, &testGenerator{})
	require.NoError(t, err)

	assert.NoError(t, registry.Register(table))
	assert.Error(t, registry.Register(table))

	found, pres := registry.Get("processes")
	assert.True(t, pres)
	assert.Equal(t, table, found)

	assert.Equal(t, []string{"processes"}, registry.Names())
}

func TestRowRendering(t *testing.T) {
	generator := &testGenerator{
		rows: []*ordereddict.Dict{
			ordereddict.NewDict().
				Set("pid", int32(42)).
				Set("extra", "dropped"),
		},
	}
	table, err := NewTable("processes", testColumns, generator)
	require.NoError(t, err)

	rows := table.Generate(context.Background(), nil)
	require.Len(t, rows, 1)

	// Declared columns only, in declared order, all string cells.
	assert.Equal(t, []string{"pid", "name"}, rows[0].Keys())

	pid, _ := rows[0].GetString("pid")
	assert.Equal(t, "42", pid)

	// Missing columns render as empty strings.
	name, _ := rows[0].GetString("name")
	assert.Equal(t, "", name)
}

// A failing provider contributes zero rows instead of aborting the
// query.
func TestProviderFailureContained(t *testing.T) {
	for _, failure := range []error{
		errors.WrapPrefix(ErrUnavailable, "permission denied", 0),
		errors.New("unexpected provider bug"),
	} {
		table, err := NewTable("processes", testColumns,
			&testGenerator{err: failure})
		require.NoError(t, err)

		rows := table.Generate(context.Background(), NewConstraintSet())
		assert.Empty(t, rows)
	}
}

// The adapter restores conjunctive semantics even when the provider
// over-produces.
func TestAdapterPostFilter(t *testing.T) {
	generator := &testGenerator{
		rows: []*ordereddict.Dict{
			ordereddict.NewDict().Set("pid", 1).Set("name", "init"),
			ordereddict.NewDict().Set("pid", 42).Set("name", "bash"),
		},
	}
	table, err := NewTable("processes", testColumns, generator)
	require.NoError(t, err)

	rows := table.Generate(context.Background(),
		NewConstraintSet().Add("pid", EQUALS, "42"))
	require.Len(t, rows, 1)

	name, _ := rows[0].GetString("name")
	assert.Equal(t, "bash", name)
}

// The join orchestrator re-invokes tables with constraint sets derived
// from the join context. Repeated generation under identical
// constraints must yield identical rows and always hit the provider
// fresh.
func TestGenerateIdempotent(t *testing.T) {
	generator := &testGenerator{
		rows: []*ordereddict.Dict{
			ordereddict.NewDict().Set("pid", 1).Set("name", "init"),
		},
	}
	table, err := NewTable("processes", testColumns, generator)
	require.NoError(t, err)

	cs := NewConstraintSet().Add("pid", EQUALS, "1")
	first := table.Generate(context.Background(), cs)
	second := table.Generate(context.Background(), cs)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, generator.calls)
}
