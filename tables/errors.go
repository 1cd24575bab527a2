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

import "errors"

// Failure taxonomy for the table layer. Providers wrap these sentinels
// (usually via go-errors for context) so adapters can decide what is
// containable. Anything derived from ErrUnavailable or ErrIO is
// downgraded to zero rows at the adapter boundary; only registration
// time misconfiguration is fatal.
var (
	// The underlying OS facility cannot be accessed at all
	// (permission denied, missing platform API).
	ErrUnavailable = errors.New("provider unavailable")

	// A file could not be opened, read or stat-ed.
	ErrIO = errors.New("io error")

	// The engine passed a predicate shape we cannot interpret.
	// Defensive - should not happen in a correct integration.
	ErrInvalidConstraint = errors.New("invalid constraint")
)
