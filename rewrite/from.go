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
	"regexp"

	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
	"github.com/kayagokalp/influxql-rewriter/schema"
)

// resolveFrom expands a parsed FROM clause against p, producing the
// resolved DataSource list consumed by the rest of the pipeline.
// Subqueries are mapped by recursively normalizing them through the
// entire C2-C7 pipeline.
func resolveFrom(p schema.Provider, ms []influxql.MeasurementSelection) ([]influxql.DataSource, error) {
	var out []influxql.DataSource
	for _, m := range ms {
		switch m := m.(type) {
		case *influxql.MeasurementName:
			if p.TableExists(m.Name) {
				out = append(out, &influxql.Table{Name: m.Name})
			}
		case *influxql.MeasurementRegex:
			re, err := regexp.Compile(m.Val)
			if err != nil {
				return nil, rwerr.Planf(m, "invalid regular expression: %s", err)
			}
			for _, name := range p.TableNames() {
				if re.MatchString(name) {
					out = append(out, &influxql.Table{Name: name})
				}
			}
		case *influxql.SubqueryMeasurement:
			sub, err := normalizeSelect(p, m.Stmt, true)
			if err != nil {
				return nil, err
			}
			out = append(out, &influxql.SubqueryDataSource{Select: sub})
		default:
			return nil, rwerr.Internalf("unrecognized measurement selection %T", m)
		}
	}
	return out, nil
}

// normalizeDistinct rewrites the unary `DISTINCT ident` form to
// `distinct(VarRef)` so downstream passes only ever see Call nodes.
func normalizeDistinct(fields []*influxql.Field) []*influxql.Field {
	out := make([]*influxql.Field, len(fields))
	for i, f := range fields {
		if d, ok := f.Expr.(*influxql.Distinct); ok {
			out[i] = &influxql.Field{
				Expr:  &influxql.Call{Name: "distinct", Args: []influxql.Expr{&influxql.VarRef{Name: d.Name}}},
				Alias: f.Alias,
			}
			continue
		}
		out[i] = f
	}
	return out
}
