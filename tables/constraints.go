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
	"regexp"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
)

type Operator int

// Operator codes mirror the sqlite3 index constraint codes so the SQL
// bridge can forward them without translation.
const (
	UNIQUE                 Operator = 1
	EQUALS                 Operator = 2
	GREATER_THAN           Operator = 4
	LESS_THAN_OR_EQUALS    Operator = 8
	LESS_THAN              Operator = 16
	GREATER_THAN_OR_EQUALS Operator = 32
	MATCH                  Operator = 64
	LIKE                   Operator = 65
	GLOB                   Operator = 66
	REGEXP                 Operator = 67
)

// A single predicate term applicable to one column, e.g.
// path LIKE '/dev/%'.
type Constraint struct {
	Column string
	Op     Operator
	Expr   string
}

// ConstraintSet is the part of a query's WHERE clause that applies to
// one virtual table. Multiple constraints on the same column are
// conjunctive. The set is built per query invocation and is not shared
// between goroutines.
type ConstraintSet struct {
	constraints map[string][]Constraint

	// LIKE patterns compiled on first use.
	like_cache map[string]*regexp.Regexp
}

func NewConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		constraints: make(map[string][]Constraint),
		like_cache:  make(map[string]*regexp.Regexp),
	}
}

func (self *ConstraintSet) Add(column string, op Operator, expr string) *ConstraintSet {
	self.constraints[column] = append(self.constraints[column],
		Constraint{Column: column, Op: op, Expr: expr})
	return self
}

// Constraints returns all predicate terms declared against a column.
func (self *ConstraintSet) Constraints(column string) []Constraint {
	return self.constraints[column]
}

func (self *ConstraintSet) IsEmpty() bool {
	return len(self.constraints) == 0
}

// Pinned detects an EQUALS constraint that fixes a column to a single
// literal. Providers use this to take a direct lookup path instead of
// enumerating their full domain.
func (self *ConstraintSet) Pinned(column string) (string, bool) {
	for _, c := range self.constraints[column] {
		if c.Op == EQUALS {
			return c.Expr, true
		}
	}
	return "", false
}

// PinnedValues returns the literals of all EQUALS constraints on a
// column. The SQL engine issues IN-list lookups as repeated single
// EQUALS invocations, but a provider handed several literals at once
// may treat their union as its candidate set - the adapter post-filter
// restores conjunctive semantics, so a union is always a safe superset.
func (self *ConstraintSet) PinnedValues(column string) []string {
	var result []string
	for _, c := range self.constraints[column] {
		if c.Op == EQUALS {
			result = append(result, c.Expr)
		}
	}
	return result
}

// LikePrefix returns the literal prefix of the first LIKE pattern on a
// column - the part before any wildcard. File-like providers use it to
// scope enumeration to a directory instead of walking everything.
func (self *ConstraintSet) LikePrefix(column string) (string, bool) {
	for _, c := range self.constraints[column] {
		if c.Op != LIKE {
			continue
		}
		idx := strings.IndexAny(c.Expr, "%_")
		if idx < 0 {
			return c.Expr, true
		}
		return c.Expr[:idx], true
	}
	return "", false
}

// Match evaluates every constraint declared on a column against a
// candidate value. Operators we do not implement (MATCH, GLOB, REGEXP,
// UNIQUE) are treated as satisfied: the engine applies them as a post
// filter, and push-down must never narrow below the true result set.
func (self *ConstraintSet) Match(column, value string) bool {
	for _, c := range self.constraints[column] {
		if !self.matchOne(c, value) {
			return false
		}
	}
	return true
}

// MatchAll applies Match for every constrained column present in the
// row. Columns the row does not carry are ignored - the engine filters
// on the rendered result anyway.
func (self *ConstraintSet) MatchAll(row *ordereddict.Dict) bool {
	for column := range self.constraints {
		value, pres := row.GetString(column)
		if !pres {
			continue
		}
		if !self.Match(column, value) {
			return false
		}
	}
	return true
}

func (self *ConstraintSet) matchOne(c Constraint, value string) bool {
	switch c.Op {
	case EQUALS:
		return compareValues(value, c.Expr) == 0

	case GREATER_THAN:
		return compareValues(value, c.Expr) > 0

	case GREATER_THAN_OR_EQUALS:
		return compareValues(value, c.Expr) >= 0

	case LESS_THAN:
		return compareValues(value, c.Expr) < 0

	case LESS_THAN_OR_EQUALS:
		return compareValues(value, c.Expr) <= 0

	case LIKE:
		re, err := self.compileLike(c.Expr)
		if err != nil {
			return true
		}
		return re.MatchString(value)

	default:
		// Not push-down material - the engine post-filters.
		return true
	}
}

// compileLike translates a SQL LIKE pattern into an anchored regexp.
// LIKE is case insensitive and % crosses path separators.
func (self *ConstraintSet) compileLike(pattern string) (*regexp.Regexp, error) {
	re, pres := self.like_cache[pattern]
	if pres {
		return re, nil
	}

	var sb strings.Builder
	sb.WriteString("(?is)^")
	for _, ch := range pattern {
		switch ch {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, err
	}
	self.like_cache[pattern] = re
	return re, nil
}

// Comparisons are numeric when both sides parse as numbers, otherwise
// plain string ordering. Column values are rendered as strings at the
// table boundary so this is the only place ordering semantics live.
func compareValues(a, b string) int {
	a_num, a_err := strconv.ParseFloat(a, 64)
	b_num, b_err := strconv.ParseFloat(b, 64)
	if a_err == nil && b_err == nil {
		switch {
		case a_num < b_num:
			return -1
		case a_num > b_num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}
