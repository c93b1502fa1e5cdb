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

// Package schema defines the SchemaProvider capability consumed by
// the rewrite and check packages (component C1), plus a couple of
// concrete providers: an in-memory Static map for tests, and a
// YAML-backed loader for fixtures and the CLI.
package schema

import "github.com/kayagokalp/influxql-rewriter/influxql"

// ColumnKind distinguishes a tag column from a field column.
type ColumnKind int

const (
	FieldColumn ColumnKind = iota
	TagColumn
)

// Column describes a single column of a measurement. Type is only
// meaningful when Kind is FieldColumn; tags are always string-typed
// and report influxql.Tag wherever a type is needed.
type Column struct {
	Kind ColumnKind
	Type influxql.VarRefType
}

// Table exposes the columns of a single measurement.
type Table interface {
	// ColumnByName returns the column named name, if it exists.
	ColumnByName(name string) (Column, bool)
	// Columns returns every column of the table, keyed by name. The
	// returned map must not be mutated by the caller.
	Columns() map[string]Column
}

// Provider is the capability this package consumes to resolve
// measurement and column references against a catalog. Its calls
// must be side-effect free and idempotent within a single rewrite:
// the same name queried twice must return the same result (spec §5).
type Provider interface {
	TableExists(name string) bool
	TableNames() []string
	TableSchema(name string) (Table, bool)
}

// FieldsAndTags is the derived field_and_dimensions(name) operation
// named in spec §4.1(C1): the field-typed and tag-typed columns of a
// single table, split into a name->type map and a name set.
func FieldsAndTags(p Provider, table string) (fields map[string]influxql.VarRefType, tags map[string]struct{}, ok bool) {
	t, ok := p.TableSchema(table)
	if !ok {
		return nil, nil, false
	}
	cols := t.Columns()
	fields = make(map[string]influxql.VarRefType, len(cols))
	tags = make(map[string]struct{})
	for name, col := range cols {
		switch col.Kind {
		case TagColumn:
			tags[name] = struct{}{}
		default:
			fields[name] = col.Type
		}
	}
	return fields, tags, true
}
