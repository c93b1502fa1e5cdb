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

// Package check implements the field checker (C9): semantic
// validation of a normalized projection list, yielding its
// ProjectionType. Grounded on expr/check.go's TypeError-driven walk.
package check

import (
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
)

// fieldChecker accumulates the per-statement counters named in spec
// §4.9 while walking a normalized projection list. inheritedGroupByTime
// is always false: this mirrors the source's actual behavior rather
// than its aspirational doc comment (see DESIGN.md).
type fieldChecker struct {
	hasGroupByTime        bool
	inheritedGroupByTime  bool
	hasTopBottom          bool
	hasNonAggregateFields bool
	hasDistinct           bool
	aggregateCount        int
	selectorCount         int
}

// Info is select_statement_info: it walks sel's normalized
// projections and classifies the resulting ProjectionType.
func Info(sel *influxql.Select) (influxql.SelectStatementInfo, error) {
	fc := &fieldChecker{
		hasGroupByTime: sel.TimeDimensionOf() != nil,
	}

	for _, f := range sel.Fields {
		if err := checkExpr(fc, f.Expr); err != nil {
			return influxql.SelectStatementInfo{}, err
		}
	}

	functionCount := fc.aggregateCount + fc.selectorCount

	if functionCount == 0 {
		if sel.Fill != nil {
			return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "%s must be used with an aggregate function", sel.Fill.String())
		}
		if fc.hasGroupByTime && !fc.inheritedGroupByTime {
			return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "GROUP BY requires at least one aggregate function")
		}
	}
	if functionCount >= 2 && fc.hasTopBottom {
		return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "selector functions top and bottom cannot be combined with other functions")
	}
	if fc.hasDistinct && (functionCount != 1 || fc.hasNonAggregateFields) {
		return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "aggregate function distinct() cannot be combined with other functions or fields")
	}
	if fc.hasNonAggregateFields {
		if fc.aggregateCount > 0 {
			return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "mixing aggregate and non-aggregate columns is not supported")
		}
		if fc.selectorCount > 1 {
			return influxql.SelectStatementInfo{}, rwerr.Planf(nil, "mixing multiple selector functions with tags or fields is not supported")
		}
	}

	return influxql.SelectStatementInfo{ProjectionType: decideProjectionType(fc)}, nil
}

func decideProjectionType(fc *fieldChecker) influxql.ProjectionType {
	switch {
	case fc.hasTopBottom:
		return influxql.ProjectionType{Kind: influxql.TopBottomSelector}
	case fc.hasGroupByTime:
		return influxql.ProjectionType{Kind: influxql.Aggregate}
	case fc.hasDistinct:
		return influxql.ProjectionType{Kind: influxql.RawDistinct}
	case fc.selectorCount == 1 && fc.aggregateCount == 0:
		return influxql.ProjectionType{Kind: influxql.Selector, HasFields: fc.hasNonAggregateFields}
	case fc.selectorCount > 1 || fc.aggregateCount > 0:
		return influxql.ProjectionType{Kind: influxql.Aggregate}
	default:
		return influxql.ProjectionType{Kind: influxql.Raw}
	}
}

// checkExpr implements the per-expression rules of spec §4.9.
func checkExpr(fc *fieldChecker, e influxql.Expr) error {
	switch e := e.(type) {
	case *influxql.VarRef:
		if e.Name == "time" {
			return nil
		}
		fc.hasNonAggregateFields = true
		return nil
	case *influxql.BinaryExpr:
		lLit, rLit := isLiteral(e.LHS), isLiteral(e.RHS)
		switch {
		case lLit && rLit:
			return rwerr.Planf(e, "cannot perform a binary expression on two literals")
		case lLit:
			return checkExpr(fc, e.RHS)
		case rLit:
			return checkExpr(fc, e.LHS)
		default:
			if err := checkExpr(fc, e.LHS); err != nil {
				return err
			}
			return checkExpr(fc, e.RHS)
		}
	case *influxql.ParenExpr:
		return checkExpr(fc, e.Expr)
	case *influxql.Call:
		return checkCall(fc, e)
	case *influxql.IntegerLiteral, *influxql.FloatLiteral, *influxql.StringLiteral,
		*influxql.BooleanLiteral, *influxql.DurationLiteral:
		return rwerr.Planf(e, "field must contain at least one variable")
	case *influxql.RegexLiteral:
		return rwerr.Internalf("unexpected regex")
	case *influxql.BindParameter:
		return rwerr.Internalf("bind parameter reached field checker")
	case *influxql.Wildcard:
		return rwerr.Internalf("wildcard reached field checker")
	case *influxql.Distinct:
		return rwerr.Internalf("unrewritten DISTINCT reached field checker")
	default:
		return rwerr.Internalf("unrecognized expression %T reached field checker", e)
	}
}

func isLiteral(e influxql.Expr) bool {
	e = unwrapParen(e)
	switch e.(type) {
	case *influxql.IntegerLiteral, *influxql.FloatLiteral, *influxql.StringLiteral,
		*influxql.BooleanLiteral, *influxql.DurationLiteral, *influxql.RegexLiteral:
		return true
	default:
		return false
	}
}

func unwrapParen(e influxql.Expr) influxql.Expr {
	for {
		p, ok := e.(*influxql.ParenExpr)
		if !ok {
			return e
		}
		e = p.Expr
	}
}

// checkSymbol is the "symbol rule": operand must be a VarRef. A
// Wildcard or Regex operand should never reach here (expand/C5 always
// runs before the checker), hence the internal rather than plan error.
func checkSymbol(c *influxql.Call, e influxql.Expr) error {
	e = unwrapParen(e)
	switch e.(type) {
	case *influxql.VarRef:
		return nil
	case *influxql.Wildcard, *influxql.RegexLiteral:
		return rwerr.Internalf("unexpected wildcard or regex")
	default:
		return rwerr.Planf(c, "expected field argument in %s(), got %s", c.Name, debugExpr(e))
	}
}

// checkNestedSymbol is the "nested-symbol rule" of spec §4.9: a
// window function's operand may be a nested aggregate call only when
// a GROUP BY interval is present, and otherwise must be a bare
// VarRef when no (non-inherited) GROUP BY interval is present.
func checkNestedSymbol(fc *fieldChecker, c *influxql.Call, e influxql.Expr) error {
	e = unwrapParen(e)
	if nested, ok := e.(*influxql.Call); ok {
		if !fc.hasGroupByTime {
			return rwerr.Planf(c, "%s aggregate requires a GROUP BY interval", c.Name)
		}
		return checkNestedExpr(fc, nested)
	}
	if fc.hasGroupByTime && !fc.inheritedGroupByTime {
		return rwerr.Planf(c, "aggregate function required inside the call to %s", c.Name)
	}
	return checkSymbol(c, e)
}

// checkNestedExpr validates a call argument that sits underneath a
// window function: a nested distinct() keeps its nested (non-flag-
// setting) semantics, anything else is a normal expression check.
func checkNestedExpr(fc *fieldChecker, e influxql.Expr) error {
	if c, ok := e.(*influxql.Call); ok && c.Name == "distinct" {
		return checkDistinct(fc, c, true)
	}
	return checkExpr(fc, e)
}

// debugExpr approximates the Rust source's {:?} derive-Debug operand
// rendering: influxdb_influxql_parser's Expr isn't in the example
// pack, so each Expr's own String() is the closest available stand-in
// (see DESIGN.md).
func debugExpr(e influxql.Expr) string {
	return e.String()
}
