// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package schema

import "golang.org/x/exp/maps"

// StaticTable is an in-memory Table backed by a plain map, used by
// Static and directly by tests that want to register a single table.
type StaticTable map[string]Column

func (t StaticTable) ColumnByName(name string) (Column, bool) {
	c, ok := t[name]
	return c, ok
}

func (t StaticTable) Columns() map[string]Column {
	return t
}

// Static is a Provider backed by pre-registered tables, the "mock
// that returns pre-registered tables" called for in spec §9. Table
// names are reported by TableNames in the order they were
// registered via Put.
type Static struct {
	order  []string
	tables map[string]StaticTable
}

// NewStatic returns an empty Static provider.
func NewStatic() *Static {
	return &Static{tables: make(map[string]StaticTable)}
}

// Put registers (or replaces) a table. Replacing an existing table
// keeps its original position in TableNames order.
func (s *Static) Put(name string, table StaticTable) {
	if _, exists := s.tables[name]; !exists {
		s.order = append(s.order, name)
	}
	s.tables[name] = table
}

func (s *Static) TableExists(name string) bool {
	_, ok := s.tables[name]
	return ok
}

func (s *Static) TableNames() []string {
	return append([]string(nil), s.order...)
}

func (s *Static) TableSchema(name string) (Table, bool) {
	t, ok := s.tables[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// Clone returns a deep-enough copy of s suitable for handing to a
// concurrent caller; Static itself is not safe for concurrent Put
// calls, but once built it is safe for concurrent reads (the reads
// SchemaProvider callers are expected to perform, per spec §5).
func (s *Static) Clone() *Static {
	out := NewStatic()
	out.order = append([]string(nil), s.order...)
	out.tables = make(map[string]StaticTable, len(s.tables))
	for name, t := range s.tables {
		out.tables[name] = StaticTable(maps.Clone(map[string]Column(t)))
	}
	return out
}
