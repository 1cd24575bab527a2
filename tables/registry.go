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
	"sort"
	"sync"

	"github.com/go-errors/errors"
)

// Registry holds the named virtual tables exposed to the SQL engine.
// Registration happens once at startup; lookups are concurrent with
// query execution.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
}

func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[string]*Table),
	}
}

func (self *Registry) Register(table *Table) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	_, pres := self.tables[table.Name()]
	if pres {
		return errors.Errorf("table %s registered twice", table.Name())
	}
	self.tables[table.Name()] = table
	return nil
}

func (self *Registry) Get(name string) (*Table, bool) {
	self.mu.Lock()
	defer self.mu.Unlock()

	table, pres := self.tables[name]
	return table, pres
}

func (self *Registry) Names() []string {
	self.mu.Lock()
	defer self.mu.Unlock()

	result := make([]string, 0, len(self.tables))
	for name := range self.tables {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
