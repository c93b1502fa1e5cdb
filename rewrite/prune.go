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
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/schema"
)

// prune is the empty-source pruner (C6). It drops FROM entries that
// contribute no projected field, recursing into subqueries first so a
// subquery's own emptiness can in turn empty out its parent.
func prune(p schema.Provider, sel *influxql.Select) {
	projected := make(map[string]bool)
	for _, f := range sel.Fields {
		influxql.Inspect(f.Expr, func(n influxql.Node) bool {
			if v, ok := n.(*influxql.VarRef); ok {
				projected[v.Name] = true
			}
			return true
		})
	}

	var kept []influxql.DataSource
	for _, ds := range sel.From {
		switch ds := ds.(type) {
		case *influxql.Table:
			fields, _, ok := schema.FieldsAndTags(p, ds.Name)
			if !ok {
				continue
			}
			used := false
			for name := range projected {
				if _, isField := fields[name]; isField {
					used = true
					break
				}
			}
			if used {
				kept = append(kept, ds)
			}
		case *influxql.SubqueryDataSource:
			prune(p, ds.Select)
			if len(ds.Select.From) == 0 {
				continue
			}
			used := false
			for _, sf := range ds.Select.Fields {
				if projected[sf.Name()] {
					used = true
					break
				}
			}
			if used {
				kept = append(kept, ds)
			}
		default:
			kept = append(kept, ds)
		}
	}
	sel.From = kept
}
