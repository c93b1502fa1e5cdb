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

import "github.com/kayagokalp/influxql-rewriter/influxql"

// normalizeTimeColumn is the time normalizer (C7): it guarantees a
// leading time column with a resolved Timestamp type, aliased "time"
// on every subquery and, absent a user alias, on the outer statement.
func normalizeTimeColumn(sel *influxql.Select, isSubquery bool) {
	idx := -1
	for i, f := range sel.Fields {
		if v, ok := f.Expr.(*influxql.VarRef); ok && v.Name == "time" {
			idx = i
			break
		}
	}

	var timeField *influxql.Field
	switch {
	case idx == 0:
		timeField = sel.Fields[0]
	case idx > 0:
		timeField = sel.Fields[idx]
		sel.Fields = append(sel.Fields[:idx], sel.Fields[idx+1:]...)
	default:
		timeField = &influxql.Field{Expr: &influxql.VarRef{Name: "time"}}
	}

	if isSubquery || timeField.Alias == "" {
		timeField.Alias = "time"
	}
	timeField.Expr.(*influxql.VarRef).Type = influxql.Timestamp

	if idx == 0 {
		return
	}
	sel.Fields = append([]*influxql.Field{timeField}, sel.Fields...)
}
