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
	"encoding/gob"

	"github.com/kayagokalp/influxql-rewriter/influxql"
)

// init registers every concrete Expr/DataSource/Dimension variant so
// gob can encode the interface-typed fields of a *influxql.SelectQuery.
func init() {
	gob.Register(&influxql.VarRef{})
	gob.Register(&influxql.IntegerLiteral{})
	gob.Register(&influxql.FloatLiteral{})
	gob.Register(&influxql.StringLiteral{})
	gob.Register(&influxql.BooleanLiteral{})
	gob.Register(&influxql.DurationLiteral{})
	gob.Register(&influxql.RegexLiteral{})
	gob.Register(&influxql.Call{})
	gob.Register(&influxql.BinaryExpr{})
	gob.Register(&influxql.ParenExpr{})
	gob.Register(&influxql.Wildcard{})
	gob.Register(&influxql.Distinct{})
	gob.Register(&influxql.BindParameter{})
	gob.Register(&influxql.Table{})
	gob.Register(&influxql.SubqueryDataSource{})
	gob.Register(&influxql.TimeDimension{})
	gob.Register(&influxql.TagDimension{})
	gob.Register(&influxql.RegexDimension{})
	gob.Register(&influxql.WildcardDimension{})
}
