//go:build sqlite_vtable
// +build sqlite_vtable

package sqlengine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
	"github.com/mattn/go-sqlite3"

	"github.com/hostquery/hostquery/tables"
)

// tableModule adapts one registered virtual table to the sqlite3
// module interface. Modules are eponymous: the table is queryable by
// name without CREATE VIRTUAL TABLE.
type tableModule struct {
	table *tables.Table
}

func (self *tableModule) EponymousOnlyModule() {}

func (self *tableModule) Create(conn *sqlite3.SQLiteConn, args []string) (
	sqlite3.VTab, error) {
	return self.Connect(conn, args)
}

func (self *tableModule) Connect(conn *sqlite3.SQLiteConn, args []string) (
	sqlite3.VTab, error) {

	columns := self.table.Columns()
	declarations := make([]string, 0, len(columns))
	for _, column := range columns {
		declarations = append(declarations,
			fmt.Sprintf("%s %s", column.Name, column.Type))
	}

	err := conn.DeclareVTab(fmt.Sprintf("CREATE TABLE %s (%s)",
		self.table.Name(), strings.Join(declarations, ", ")))
	if err != nil {
		return nil, err
	}

	return &virtualTable{table: self.table}, nil
}

func (self *tableModule) DestroyModule() {}

type virtualTable struct {
	table *tables.Table
}

// BestIndex tells the planner which constraints we will consume. Every
// usable constraint whose operator the table layer understands is
// forwarded; the rest stay with sqlite as post-filters. Constraint
// push-down only ever narrows to a superset of the true result so
// letting sqlite re-check everything is always safe.
func (self *virtualTable) BestIndex(
	csts []sqlite3.InfoConstraint, ob []sqlite3.InfoOrderBy) (
	*sqlite3.IndexResult, error) {

	columns := self.table.Columns()
	used := make([]bool, len(csts))
	var parts []string

	cost := 1000.0
	for i, cst := range csts {
		if !cst.Usable || cst.Column < 0 ||
			cst.Column >= len(columns) {
			continue
		}

		op := tables.Operator(cst.Op)
		switch op {
		case tables.EQUALS, tables.GREATER_THAN, tables.LESS_THAN,
			tables.GREATER_THAN_OR_EQUALS,
			tables.LESS_THAN_OR_EQUALS, tables.LIKE:
			used[i] = true
			parts = append(parts,
				fmt.Sprintf("%d:%d", cst.Column, int(op)))
			if op == tables.EQUALS {
				cost = 10.0
			}
		}
	}

	return &sqlite3.IndexResult{
		IdxNum:        0,
		IdxStr:        strings.Join(parts, ";"),
		Used:          used,
		EstimatedCost: cost,
	}, nil
}

func (self *virtualTable) Open() (sqlite3.VTabCursor, error) {
	return &tableCursor{table: self.table}, nil
}

func (self *virtualTable) Disconnect() error { return nil }
func (self *virtualTable) Destroy() error    { return nil }

type tableCursor struct {
	table *tables.Table
	rows  []*ordereddict.Dict
	index int
}

// Filter rebuilds the constraint set from the encoded index string and
// materializes the table. sqlite calls this once per scan, which for a
// join means once per candidate key from the preceding table.
func (self *tableCursor) Filter(
	idxNum int, idxStr string, vals []interface{}) error {

	columns := self.table.Columns()
	constraints := tables.NewConstraintSet()

	if idxStr != "" {
		for i, part := range strings.Split(idxStr, ";") {
			if i >= len(vals) {
				break
			}
			fields := strings.SplitN(part, ":", 2)
			if len(fields) != 2 {
				continue
			}
			column, err1 := strconv.Atoi(fields[0])
			op, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil ||
				column < 0 || column >= len(columns) {
				continue
			}
			constraints.Add(columns[column].Name,
				tables.Operator(op), renderValue(vals[i]))
		}
	}

	self.rows = self.table.Generate(context.Background(), constraints)
	self.index = 0
	return nil
}

func (self *tableCursor) Next() error {
	self.index++
	return nil
}

func (self *tableCursor) EOF() bool {
	return self.index >= len(self.rows)
}

func (self *tableCursor) Rowid() (int64, error) {
	return int64(self.index), nil
}

func (self *tableCursor) Column(context *sqlite3.SQLiteContext, col int) error {
	columns := self.table.Columns()
	if col < 0 || col >= len(columns) {
		context.ResultNull()
		return nil
	}

	column := columns[col]
	value, _ := self.rows[self.index].GetString(column.Name)

	// Report typed cells where the declaration promises numbers so
	// joins and comparisons use numeric affinity.
	switch column.Type {
	case tables.INTEGER, tables.BIGINT:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			context.ResultInt64(parsed)
			return nil
		}
	case tables.DOUBLE:
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			context.ResultDouble(parsed)
			return nil
		}
	}

	context.ResultText(value)
	return nil
}

func (self *tableCursor) Close() error {
	self.rows = nil
	return nil
}

func renderValue(value interface{}) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", t)
	}
}
