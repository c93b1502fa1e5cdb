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

// operandType returns the type that identity-preserving functions
// (first, last, min, max, percentile, distinct, top, bottom, sum)
// take on given their first argument's evaluated type.
func operandType(p schema.Provider, from []influxql.DataSource, c *influxql.Call) influxql.VarRefType {
	if len(c.Args) == 0 {
		return influxql.Unknown
	}
	return evalType(p, c.Args[0], from)
}

// callTypeTable implements the per-function result-type table named in
// spec §4.4: count widens to Integer, mean/median/stddev/spread widen
// to Float, the identity-like selectors/sum/distinct/top/bottom keep
// their operand's type, and the window/scalar-math families yield
// Float.
var callTypeTable = map[string]func(p schema.Provider, from []influxql.DataSource, c *influxql.Call) influxql.VarRefType{
	"count": func(schema.Provider, []influxql.DataSource, *influxql.Call) influxql.VarRefType {
		return influxql.Integer
	},
	"sum":      operandType,
	"first":    operandType,
	"last":     operandType,
	"min":      operandType,
	"max":      operandType,
	"percentile": operandType,
	"distinct": operandType,
	"top":      operandType,
	"bottom":   operandType,
	"sum_hll": func(schema.Provider, []influxql.DataSource, *influxql.Call) influxql.VarRefType {
		return influxql.Integer
	},
}

// floatFns always yield Float: the mean-family widenings and every
// window/math function, none of which preserve operand type.
var floatFns = map[string]bool{
	"mean": true, "median": true, "stddev": true, "spread": true,
	"derivative": true, "non_negative_derivative": true,
	"difference": true, "non_negative_difference": true,
	"cumulative_sum": true, "moving_average": true, "elapsed": true,
	"integral": true, "holt_winters": true, "holt_winters_with_fit": true,
	"exponential_moving_average": true, "double_exponential_moving_average": true,
	"triple_exponential_moving_average": true, "triple_exponential_derivative": true,
	"relative_strength_index": true,
	"kaufmans_efficiency_ratio": true, "kaufmans_adaptive_moving_average": true,
	"chande_momentum_oscillator": true, "sample": true,
	"abs": true, "sin": true, "cos": true, "tan": true, "asin": true,
	"acos": true, "atan": true, "atan2": true, "exp": true, "log": true,
	"log2": true, "log10": true, "pow": true, "sqrt": true,
	"floor": true, "ceil": true, "round": true,
}

// evalType is the type evaluator (C4): the effective type of an
// expression given a resolved FROM set.
func evalType(p schema.Provider, e influxql.Expr, from []influxql.DataSource) influxql.VarRefType {
	switch e := e.(type) {
	case *influxql.VarRef:
		if e.Name == "time" {
			return influxql.Timestamp
		}
		return varRefType(p, e.Name, from)
	case *influxql.IntegerLiteral:
		return influxql.Integer
	case *influxql.FloatLiteral:
		return influxql.Float
	case *influxql.StringLiteral:
		return influxql.String
	case *influxql.BooleanLiteral:
		return influxql.Boolean
	case *influxql.Call:
		if fn, ok := callTypeTable[e.Name]; ok {
			return fn(p, from, e)
		}
		if floatFns[e.Name] {
			return influxql.Float
		}
		return influxql.Unknown
	case *influxql.BinaryExpr:
		return influxql.MinType(evalType(p, e.LHS, from), evalType(p, e.RHS, from))
	case *influxql.ParenExpr:
		return evalType(p, e.Expr, from)
	default:
		return influxql.Unknown
	}
}

// varRefType resolves a bare column name against every DataSource in
// from, merging contributions from multiple sources with MinType.
func varRefType(p schema.Provider, name string, from []influxql.DataSource) influxql.VarRefType {
	result := influxql.Unknown
	for _, ds := range from {
		switch ds := ds.(type) {
		case *influxql.Table:
			fields, tags, ok := schema.FieldsAndTags(p, ds.Name)
			if !ok {
				continue
			}
			if t, ok := fields[name]; ok {
				result = influxql.MinType(result, t)
			} else if _, ok := tags[name]; ok {
				result = influxql.MinType(result, influxql.Tag)
			}
		case *influxql.SubqueryDataSource:
			for _, f := range ds.Select.Fields {
				if f.Name() == name {
					result = influxql.MinType(result, evalType(p, f.Expr, ds.Select.From))
					break
				}
			}
		}
	}
	return result
}
