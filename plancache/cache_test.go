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

package plancache

import (
	"testing"
	"time"

	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/schema"
	"github.com/stretchr/testify/require"
)

func testProvider() *schema.Static {
	s := schema.NewStatic()
	s.Put("cpu", schema.StaticTable{
		"host":       {Kind: schema.TagColumn},
		"usage_idle": {Kind: schema.FieldColumn, Type: influxql.Float},
	})
	return s
}

func testQuery() *influxql.SelectQuery {
	return &influxql.SelectQuery{
		Select: &influxql.Select{
			Fields: []*influxql.Field{
				{Expr: &influxql.VarRef{Name: "time", Type: influxql.Timestamp}, Alias: "time"},
				{Expr: &influxql.VarRef{Name: "usage_idle", Type: influxql.Float}, Alias: "usage_idle"},
			},
			From: []influxql.DataSource{&influxql.Table{Name: "cpu"}},
		},
	}
}

func TestCache_PutThenGet(t *testing.T) {
	c, err := Open(t.TempDir(), 1, 2, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	p := testProvider()
	q := testQuery()

	require.NoError(t, c.Put(p, "SELECT usage_idle FROM cpu", q))

	got, ok, err := c.Get(p, "SELECT usage_idle FROM cpu")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, q.HasMultipleMeasurements, got.HasMultipleMeasurements)
	require.Len(t, got.Select.Fields, 2)
	require.Equal(t, "usage_idle", got.Select.Fields[1].Alias)
}

func TestCache_MissOnDifferentText(t *testing.T) {
	c, err := Open(t.TempDir(), 1, 2, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	p := testProvider()
	require.NoError(t, c.Put(p, "SELECT usage_idle FROM cpu", testQuery()))

	_, ok, err := c.Get(p, "SELECT usage_user FROM cpu")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCache_MissAfterSchemaChange(t *testing.T) {
	c, err := Open(t.TempDir(), 1, 2, time.Hour)
	require.NoError(t, err)
	defer c.Close()

	p := testProvider()
	require.NoError(t, c.Put(p, "SELECT usage_idle FROM cpu", testQuery()))

	changed := schema.NewStatic()
	changed.Put("cpu", schema.StaticTable{
		"host":       {Kind: schema.TagColumn},
		"usage_idle": {Kind: schema.FieldColumn, Type: influxql.Integer},
	})

	_, ok, err := c.Get(changed, "SELECT usage_idle FROM cpu")
	require.NoError(t, err)
	require.False(t, ok)
}
