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

package influxql

// DataSource is a single entry of a resolved FROM clause: either a
// concrete table or a nested, already-rewritten subquery. It
// replaces the parser's MeasurementSelection once C3 has run.
type DataSource interface {
	Node
	dataSourceNode()
}

func (*Table) dataSourceNode()              {}
func (*SubqueryDataSource) dataSourceNode() {}

// Table is a resolved reference to a concrete measurement.
type Table struct{ Name string }

func (t *Table) String() string { return quoteIdent(t.Name) }
func (t *Table) walk(Visitor)   {}

// SubqueryDataSource wraps a nested SELECT that has itself already
// been pushed through the full rewrite pipeline.
type SubqueryDataSource struct{ Select *Select }

func (s *SubqueryDataSource) String() string { return "(" + s.Select.String() + ")" }

func (s *SubqueryDataSource) walk(v Visitor) {
	Walk(v, s.Select)
}

// MeasurementSelection is a single entry of the parser's FROM clause,
// prior to resolution against the schema.
type MeasurementSelection interface {
	Node
	measurementSelectionNode()
}

func (*MeasurementName) measurementSelectionNode()   {}
func (*MeasurementRegex) measurementSelectionNode()  {}
func (*SubqueryMeasurement) measurementSelectionNode() {}

// MeasurementName is a plain `FROM <name>` entry.
type MeasurementName struct{ Name string }

func (m *MeasurementName) String() string { return quoteIdent(m.Name) }
func (m *MeasurementName) walk(Visitor)   {}

// MeasurementRegex is a `FROM /regex/` entry.
type MeasurementRegex struct{ Val string }

func (m *MeasurementRegex) String() string { return "/" + m.Val + "/" }
func (m *MeasurementRegex) walk(Visitor)   {}

// SubqueryMeasurement is a `FROM (SELECT ...)` entry as produced by
// the parser, not yet resolved into a SubqueryDataSource.
type SubqueryMeasurement struct{ Stmt *SelectStatement }

func (m *SubqueryMeasurement) String() string { return "(" + m.Stmt.String() + ")" }
func (m *SubqueryMeasurement) walk(v Visitor) {
	Walk(v, m.Stmt)
}
