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
package tables

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"

	"github.com/hostquery/hostquery/logging"
)

type ColumnType string

const (
	TEXT    ColumnType = "TEXT"
	INTEGER ColumnType = "INTEGER"
	BIGINT  ColumnType = "BIGINT"
	DOUBLE  ColumnType = "DOUBLE"
)

type Column struct {
	Name string
	Type ColumnType
}

// Generator is the contract every OS data provider satisfies: produce
// rows, optionally narrowed by the constraint set. Each call is a
// fresh enumeration - providers hold no state between queries. A
// provider may over-produce (ignore constraints it cannot push down)
// because the adapter post-filters; it must never drop a row that
// satisfies the constraints.
type Generator interface {
	Generate(ctx context.Context, constraints *ConstraintSet) (
		[]*ordereddict.Dict, error)
}

// Table binds a named virtual table to exactly one Generator and
// mediates between it and the SQL engine: it renders provider rows to
// the declared column set (string cells), restores conjunctive
// constraint semantics by post-filtering, and contains provider
// failures so one broken table never aborts a whole query.
type Table struct {
	name      string
	columns   []Column
	generator Generator
}

// NewTable validates the binding up front. A table with no generator
// or a broken schema is a configuration error and must surface before
// any query runs.
func NewTable(name string, columns []Column, generator Generator) (*Table, error) {
	if name == "" {
		return nil, errors.New("table registered with empty name")
	}
	if generator == nil {
		return nil, errors.Errorf("table %s registered without a provider", name)
	}
	if len(columns) == 0 {
		return nil, errors.Errorf("table %s registered without columns", name)
	}

	seen := make(map[string]bool)
	for _, column := range columns {
		if column.Name == "" || seen[column.Name] {
			return nil, errors.Errorf(
				"table %s has empty or duplicate column %q", name, column.Name)
		}
		seen[column.Name] = true
	}

	return &Table{
		name:      name,
		columns:   columns,
		generator: generator,
	}, nil
}

func (self *Table) Name() string {
	return self.name
}

// Columns is the static declared schema, fixed at registration.
func (self *Table) Columns() []Column {
	result := make([]Column, len(self.columns))
	copy(result, self.columns)
	return result
}

// Generate materializes the table for one query invocation. Provider
// failures are contained: the table contributes zero rows and a
// warning is logged, matching SQL's ability to return partial joins.
// Under identical constraints the call is idempotent, so the engine
// may re-invoke it freely from any join shape.
func (self *Table) Generate(ctx context.Context,
	constraints *ConstraintSet) []*ordereddict.Dict {

	if constraints == nil {
		constraints = NewConstraintSet()
	}

	raw_rows, err := self.generator.Generate(ctx, constraints)
	if err != nil {
		logging.GetLogger("tables").Warnf(
			"table %s: provider failed, returning no rows: %v",
			self.name, err)
		return nil
	}

	result := make([]*ordereddict.Dict, 0, len(raw_rows))
	for _, raw := range raw_rows {
		row := self.renderRow(raw)
		if !constraints.MatchAll(row) {
			continue
		}
		result = append(result, row)
	}
	return result
}

// renderRow projects a provider row onto the declared schema. Every
// cell is rendered as a string - the engine converts typed values at
// its own boundary. Missing columns become empty strings, extra
// provider columns are dropped.
func (self *Table) renderRow(raw *ordereddict.Dict) *ordereddict.Dict {
	row := ordereddict.NewDict()
	for _, column := range self.columns {
		value, pres := raw.Get(column.Name)
		if !pres {
			row.Set(column.Name, "")
			continue
		}
		row.Set(column.Name, renderCell(value))
	}
	return row
}

func renderCell(value interface{}) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return strconv.FormatInt(t.Unix(), 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
