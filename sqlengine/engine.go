//go:build sqlite_vtable
// +build sqlite_vtable

// Package sqlengine exposes the registered virtual tables to an
// embedded sqlite engine. sqlite owns SQL parsing, join planning and
// post-filtering; this package only supplies data through the table
// adapters. Built with -tags sqlite_vtable, which the underlying
// driver requires for virtual table support.
package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/Velocidex/ordereddict"
	"github.com/go-errors/errors"
	"github.com/mattn/go-sqlite3"

	"github.com/hostquery/hostquery/tables"
)

// database/sql drivers register globally, so every engine gets its own
// driver name.
var driver_serial int64

type Engine struct {
	db *sql.DB
}

func NewEngine(registry *tables.Registry) (*Engine, error) {
	driver_name := fmt.Sprintf("sqlite3_hostquery_%d",
		atomic.AddInt64(&driver_serial, 1))

	sql.Register(driver_name, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, name := range registry.Names() {
				table, pres := registry.Get(name)
				if !pres {
					continue
				}
				err := conn.CreateModule(name, &tableModule{table: table})
				if err != nil {
					return err
				}
			}
			return nil
		},
	})

	db, err := sql.Open(driver_name, ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	// One connection: each sqlite connection is a separate :memory:
	// database and the modules hook runs per connection anyway, but a
	// single connection keeps temp state predictable.
	db.SetMaxOpenConns(1)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, 0)
	}

	return &Engine{db: db}, nil
}

// Query runs one SQL statement and materializes the full result set as
// string-rendered rows, in engine order.
func (self *Engine) Query(ctx context.Context, query string,
	args ...interface{}) ([]*ordereddict.Dict, error) {

	rows, err := self.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	var result []*ordereddict.Dict
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		err = rows.Scan(pointers...)
		if err != nil {
			return nil, errors.Wrap(err, 0)
		}

		row := ordereddict.NewDict()
		for i, column := range columns {
			row.Set(column, renderValue(values[i]))
		}
		result = append(result, row)
	}

	err = rows.Err()
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return result, nil
}

func (self *Engine) Close() error {
	return self.db.Close()
}
