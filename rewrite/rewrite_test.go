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

package rewrite

import (
	"testing"

	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
	"github.com/kayagokalp/influxql-rewriter/schema"
)

func testSchema() *schema.Static {
	s := schema.NewStatic()
	s.Put("cpu", schema.StaticTable{
		"cpu":          {Kind: schema.TagColumn},
		"host":         {Kind: schema.TagColumn},
		"region":       {Kind: schema.TagColumn},
		"usage_idle":   {Kind: schema.FieldColumn, Type: influxql.Float},
		"usage_system": {Kind: schema.FieldColumn, Type: influxql.Float},
		"usage_user":   {Kind: schema.FieldColumn, Type: influxql.Float},
	})
	s.Put("disk", schema.StaticTable{
		"device":     {Kind: schema.TagColumn},
		"host":       {Kind: schema.TagColumn},
		"bytes_free": {Kind: schema.FieldColumn, Type: influxql.Integer},
		"bytes_used": {Kind: schema.FieldColumn, Type: influxql.Integer},
	})
	return s
}

func varRefField(name string) *influxql.Field {
	return &influxql.Field{Expr: &influxql.VarRef{Name: name}}
}

func fromName(name string) []influxql.MeasurementSelection {
	return []influxql.MeasurementSelection{&influxql.MeasurementName{Name: name}}
}

// Scenario 1: SELECT usage_user FROM cpu.
func TestStatement_SimpleProjection(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_user")},
		From:   fromName("cpu"),
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Select.Fields) != 2 {
		t.Fatalf("expected time + usage_user, got %d fields", len(q.Select.Fields))
	}
	tf := q.Select.Fields[0]
	vr, ok := tf.Expr.(*influxql.VarRef)
	if !ok || vr.Name != "time" || vr.Type != influxql.Timestamp || tf.Alias != "time" {
		t.Fatalf("field[0] = %+v, want time::timestamp AS time", tf)
	}
	uf := q.Select.Fields[1]
	vr2 := uf.Expr.(*influxql.VarRef)
	if vr2.Name != "usage_user" || vr2.Type != influxql.Float || uf.Alias != "usage_user" {
		t.Fatalf("field[1] = %+v, want usage_user::float AS usage_user", uf)
	}
}

// Scenario 2: duplicate projection aliases are uniquified.
func TestStatement_DuplicateAliases(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_user"), varRefField("usage_user")},
		From:   fromName("cpu"),
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := q.Select.Fields[1].Alias, "usage_user"; got != want {
		t.Fatalf("field[1].Alias = %q, want %q", got, want)
	}
	if got, want := q.Select.Fields[2].Alias, "usage_user_1"; got != want {
		t.Fatalf("field[2].Alias = %q, want %q", got, want)
	}
}

// Scenario 3: a FROM entry lacking the projected field is pruned.
func TestStatement_PrunesSourcesWithoutProjectedField(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_idle")},
		From:   []influxql.MeasurementSelection{&influxql.MeasurementName{Name: "cpu"}, &influxql.MeasurementName{Name: "disk"}},
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Select.From) != 1 {
		t.Fatalf("expected a single surviving FROM entry, got %d", len(q.Select.From))
	}
	tbl := q.Select.From[0].(*influxql.Table)
	if tbl.Name != "cpu" {
		t.Fatalf("surviving FROM entry = %q, want cpu", tbl.Name)
	}
}

// Scenario 4: SELECT * expands sorted, tags after fields.
func TestStatement_WildcardExpansion(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{{Expr: &influxql.Wildcard{}}},
		From:   fromName("cpu"),
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, f := range q.Select.Fields {
		names = append(names, f.Name())
	}
	want := []string{"time", "usage_idle", "usage_system", "usage_user", "cpu", "host", "region"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

// Scenario 5: COUNT(*) expands to one count() per field.
func TestStatement_CountWildcardExpansion(t *testing.T) {
	s := schema.NewStatic()
	s.Put("temp_01", schema.StaticTable{
		"f_f64":  {Kind: schema.FieldColumn, Type: influxql.Float},
		"f_i64":  {Kind: schema.FieldColumn, Type: influxql.Integer},
		"f_str":  {Kind: schema.FieldColumn, Type: influxql.String},
		"f_u64":  {Kind: schema.FieldColumn, Type: influxql.Unsigned},
		"shared": {Kind: schema.FieldColumn, Type: influxql.Float},
	})
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{{Expr: &influxql.Call{Name: "count", Args: []influxql.Expr{&influxql.Wildcard{}}}}},
		From:   fromName("temp_01"),
	}
	q, err := Statement(s, stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make(map[string]bool)
	for _, f := range q.Select.Fields[1:] {
		got[f.Alias] = true
	}
	for _, name := range []string{"f_f64", "f_i64", "f_str", "f_u64", "shared"} {
		if !got["count_"+name] {
			t.Fatalf("missing count_%s in %v", name, got)
		}
	}
}

// Scenario 7: SLIMIT is rejected as not implemented.
func TestStatement_SLIMITNotImplemented(t *testing.T) {
	one := 1
	stmt := &influxql.SelectStatement{
		Fields:      []*influxql.Field{varRefField("usage_idle")},
		From:        fromName("cpu"),
		SeriesLimit: &one,
	}
	_, err := Statement(testSchema(), stmt)
	if _, ok := err.(*rwerr.NotImplementedError); !ok {
		t.Fatalf("err = %v (%T), want *rwerr.NotImplementedError", err, err)
	}
	if err.Error() != "not implemented: SLIMIT or SOFFSET" {
		t.Fatalf("err text = %q", err.Error())
	}
}

// The feature gate (C2) must also reject a subquery-level SLIMIT: a
// subquery is mapped by invoking the entire C2-C7 pipeline again
// (spec.md §4.2), not just resolved for its FROM clause.
func TestStatement_SLIMITNotImplementedInSubquery(t *testing.T) {
	one := 1
	inner := &influxql.SelectStatement{
		Fields:      []*influxql.Field{varRefField("usage_idle")},
		From:        fromName("cpu"),
		SeriesLimit: &one,
	}
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_idle")},
		From:   []influxql.MeasurementSelection{&influxql.SubqueryMeasurement{Stmt: inner}},
	}
	_, err := Statement(testSchema(), stmt)
	if _, ok := err.(*rwerr.NotImplementedError); !ok {
		t.Fatalf("err = %v (%T), want *rwerr.NotImplementedError", err, err)
	}
	if err.Error() != "not implemented: SLIMIT or SOFFSET" {
		t.Fatalf("err text = %q", err.Error())
	}
}

// Invariant 6: rewriting an already-rewritten query is stable.
func TestStatement_Idempotent(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_user"), varRefField("usage_idle")},
		From:   fromName("cpu"),
	}
	q1, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("first rewrite: %v", err)
	}
	stmt2 := &influxql.SelectStatement{
		Fields: q1.Select.Fields,
		From:   []influxql.MeasurementSelection{&influxql.MeasurementName{Name: "cpu"}},
	}
	q2, err := Statement(testSchema(), stmt2)
	if err != nil {
		t.Fatalf("second rewrite: %v", err)
	}
	if len(q1.Select.Fields) != len(q2.Select.Fields) {
		t.Fatalf("field count changed across rewrite: %d vs %d", len(q1.Select.Fields), len(q2.Select.Fields))
	}
	for i := range q1.Select.Fields {
		if q1.Select.Fields[i].Alias != q2.Select.Fields[i].Alias {
			t.Fatalf("field[%d] alias changed: %q vs %q", i, q1.Select.Fields[i].Alias, q2.Select.Fields[i].Alias)
		}
	}
}

func TestStatement_HasMultipleMeasurements(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_idle"), varRefField("bytes_free")},
		From:   []influxql.MeasurementSelection{&influxql.MeasurementName{Name: "cpu"}, &influxql.MeasurementName{Name: "disk"}},
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.HasMultipleMeasurements {
		t.Fatalf("HasMultipleMeasurements = false, want true")
	}
}

func TestStatement_UnknownMeasurementDropped(t *testing.T) {
	stmt := &influxql.SelectStatement{
		Fields: []*influxql.Field{varRefField("usage_idle")},
		From:   fromName("does_not_exist"),
	}
	q, err := Statement(testSchema(), stmt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Select.From) != 0 {
		t.Fatalf("expected no surviving FROM entries, got %v", q.Select.From)
	}
}
