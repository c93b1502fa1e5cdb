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

package check

import (
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
)

var scalarMathArity = map[string]int{
	"abs": 1, "sin": 1, "cos": 1, "tan": 1, "asin": 1, "acos": 1, "atan": 1,
	"exp": 1, "log2": 1, "log10": 1, "sqrt": 1, "floor": 1, "ceil": 1, "round": 1,
	"pow": 2, "log": 2, "atan2": 2,
}

var exponentialMovingAverageFamily = map[string]bool{
	"exponential_moving_average":        true,
	"double_exponential_moving_average": true,
	"triple_exponential_moving_average": true,
	"relative_strength_index":           true,
	"triple_exponential_derivative":     true,
}

var kaufmansFamily = map[string]bool{
	"kaufmans_efficiency_ratio":        true,
	"kaufmans_adaptive_moving_average": true,
}

// checkCall dispatches a Call to its per-function contract, per the
// authoritative table in spec §4.9.
func checkCall(fc *fieldChecker, c *influxql.Call) error {
	switch {
	case c.Name == "percentile":
		return checkArity(c, 2, 2, func() error {
			fc.selectorCount++
			if !isNumericLiteral(c.Args[1]) {
				return rwerr.Planf(c, "expected number for percentile(), got %s", debugExpr(c.Args[1]))
			}
			return checkSymbol(c, c.Args[0])
		})
	case c.Name == "sample":
		return checkArity(c, 2, 2, func() error {
			fc.selectorCount++
			v, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			// NOTE: this is a deviation from InfluxQL, which incorrectly
			// performs the check for <= 0.
			if v <= 1 {
				return rwerr.Planf(c, "sample window must be greater than 1, got %d", v)
			}
			return checkSymbol(c, c.Args[0])
		})
	case c.Name == "distinct":
		return checkDistinct(fc, c, false)
	case c.Name == "top" || c.Name == "bottom":
		if fc.hasTopBottom {
			return rwerr.Planf(c, "selector function %s() cannot be combined with other functions", c.Name)
		}
		return checkTopBottom(fc, c)
	case c.Name == "derivative" || c.Name == "non_negative_derivative":
		return checkArity(c, 1, 2, func() error {
			fc.aggregateCount++
			if err := checkDuration(c, c.Args, 1); err != nil {
				return err
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "elapsed":
		return checkArity(c, 1, 2, func() error {
			fc.aggregateCount++
			if err := checkDuration(c, c.Args, 1); err != nil {
				return err
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "difference" || c.Name == "non_negative_difference":
		return checkArity(c, 1, 1, func() error {
			fc.aggregateCount++
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "cumulative_sum":
		return checkArity(c, 1, 1, func() error {
			fc.aggregateCount++
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "moving_average":
		return checkArity(c, 2, 2, func() error {
			fc.aggregateCount++
			v, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			if v <= 1 {
				return rwerr.Planf(c, "moving_average window must be greater than 1, got %d", v)
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case exponentialMovingAverageFamily[c.Name]:
		return checkArity(c, 2, 4, func() error {
			fc.aggregateCount++
			v, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			if v < 1 {
				return rwerr.Planf(c, "%s period must be greater than 1, got %d", c.Name, v)
			}
			hold, err := litIntegerOpt(c, c.Args, 2)
			if err != nil {
				return err
			}
			if hold != nil {
				switch {
				case c.Name == "triple_exponential_derivative" && *hold < 1 && *hold != -1:
					return rwerr.Planf(c, "%s hold period must be greater than or equal to 1", c.Name)
				case c.Name != "triple_exponential_derivative" && *hold < 0 && *hold != -1:
					return rwerr.Planf(c, "%s hold period must be greater than or equal to 0", c.Name)
				}
			}
			warmup, err := litStringOpt(c, c.Args, 3)
			if err != nil {
				return err
			}
			if warmup != nil && *warmup != "exponential" && *warmup != "simple" {
				return rwerr.Planf(c, "%s warmup type must be one of: 'exponential', 'simple', got %s", c.Name, *warmup)
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case kaufmansFamily[c.Name]:
		return checkArity(c, 2, 3, func() error {
			fc.aggregateCount++
			v, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			if v < 1 {
				return rwerr.Planf(c, "%s period must be greater than 1, got %d", c.Name, v)
			}
			hold, err := litIntegerOpt(c, c.Args, 2)
			if err != nil {
				return err
			}
			if hold != nil && *hold < 0 && *hold != -1 {
				return rwerr.Planf(c, "%s hold period must be greater than or equal to 0", c.Name)
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "chande_momentum_oscillator":
		return checkArity(c, 2, 4, func() error {
			fc.aggregateCount++
			v, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			if v < 1 {
				return rwerr.Planf(c, "%s period must be greater than 1, got %d", c.Name, v)
			}
			hold, err := litIntegerOpt(c, c.Args, 2)
			if err != nil {
				return err
			}
			if hold != nil && *hold < 0 && *hold != -1 {
				return rwerr.Planf(c, "%s hold period must be greater than or equal to 0", c.Name)
			}
			warmup, err := litStringOpt(c, c.Args, 3)
			if err != nil {
				return err
			}
			if warmup != nil {
				switch *warmup {
				case "none", "exponential", "simple":
				default:
					return rwerr.Planf(c, "%s warmup type must be one of: 'none', 'exponential' or 'simple', got %s", c.Name, *warmup)
				}
			}
			return checkNestedSymbol(fc, c, c.Args[0])
		})
	case c.Name == "integral":
		return checkArity(c, 1, 2, func() error {
			fc.aggregateCount++
			if err := checkDuration(c, c.Args, 1); err != nil {
				return err
			}
			return checkSymbol(c, c.Args[0])
		})
	case c.Name == "count_hll":
		fc.aggregateCount++
		return rwerr.NotImplemented("count_hll")
	case c.Name == "holt_winters" || c.Name == "holt_winters_with_fit":
		return checkArity(c, 3, 3, func() error {
			fc.aggregateCount++
			n, err := litInteger(c, c.Args[1])
			if err != nil {
				return err
			}
			if n < 1 {
				return rwerr.Planf(c, "%s N argument must be greater than 0, got %d", c.Name, n)
			}
			s, err := litInteger(c, c.Args[2])
			if err != nil {
				return err
			}
			if s < 0 {
				return rwerr.Planf(c, "%s S argument cannot be negative, got %d", c.Name, s)
			}
			inner, ok := c.Args[0].(*influxql.Call)
			if !ok {
				return rwerr.Planf(c, "must use aggregate function with %s", c.Name)
			}
			if !fc.hasGroupByTime {
				return rwerr.Planf(c, "%s aggregate requires a GROUP BY interval", c.Name)
			}
			return checkNestedExpr(fc, inner)
		})
	case c.Name == "max" || c.Name == "min" || c.Name == "first" || c.Name == "last":
		return checkArity(c, 1, 1, func() error {
			fc.selectorCount++
			return checkSymbol(c, c.Args[0])
		})
	case c.Name == "count":
		return checkCount(fc, c)
	case c.Name == "sum" || c.Name == "mean" || c.Name == "median" || c.Name == "mode" ||
		c.Name == "stddev" || c.Name == "spread" || c.Name == "sum_hll":
		return checkArity(c, 1, 1, func() error {
			fc.aggregateCount++
			return checkSymbol(c, c.Args[0])
		})
	default:
		if arity, ok := scalarMathArity[c.Name]; ok {
			return checkScalarMath(fc, c, arity)
		}
		return rwerr.Planf(c, "unsupported function %s()", c.Name)
	}
}

// checkArity reproduces the check_exp_args! macro's two forms: an
// exact count (min == max) or an inclusive range.
func checkArity(c *influxql.Call, min, max int, body func() error) error {
	n := len(c.Args)
	switch {
	case min == max && n != min:
		return rwerr.Planf(c, "invalid number of arguments for %s, expected %d, got %d", c.Name, min, n)
	case min != max && (n < min || n > max):
		return rwerr.Planf(c, "invalid number of arguments for %s, expected at least %d but no more than %d, got %d", c.Name, min, max, n)
	}
	return body()
}

// litInteger reproduces the lit_integer! macro: e must be an integer
// literal, or this is the diagnostic.
func litInteger(c *influxql.Call, e influxql.Expr) (int64, error) {
	lit, ok := e.(*influxql.IntegerLiteral)
	if !ok {
		return 0, rwerr.Planf(c, "expected integer argument in %s()", c.Name)
	}
	return lit.Val, nil
}

// litIntegerOpt is lit_integer!'s optional-position form: absent is
// fine, present-but-wrong-type is litInteger's diagnostic.
func litIntegerOpt(c *influxql.Call, args []influxql.Expr, pos int) (*int64, error) {
	if pos >= len(args) {
		return nil, nil
	}
	v, err := litInteger(c, args[pos])
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// litStringOpt is lit_string!'s optional-position form.
func litStringOpt(c *influxql.Call, args []influxql.Expr, pos int) (*string, error) {
	if pos >= len(args) {
		return nil, nil
	}
	lit, ok := args[pos].(*influxql.StringLiteral)
	if !ok {
		return nil, rwerr.Planf(c, "expected string argument in %s()", c.Name)
	}
	return &lit.Val, nil
}

// checkDuration validates the optional duration argument shared by
// derivative, non_negative_derivative, elapsed and integral: absent
// or a positive DurationLiteral are fine.
func checkDuration(c *influxql.Call, args []influxql.Expr, pos int) error {
	if pos >= len(args) {
		return nil
	}
	lit, ok := args[pos].(*influxql.DurationLiteral)
	if !ok {
		return rwerr.Planf(c, "second argument to %s must be a duration, got %s", c.Name, debugExpr(args[pos]))
	}
	if lit.Val <= 0 {
		return rwerr.Planf(c, "duration argument must be positive, got %s", lit.Val)
	}
	return nil
}

// checkCount handles count()'s special-cased nested distinct form:
// count(distinct(x)) validates x as a VarRef without setting
// hasDistinct, via the same checkDistinct path a bare distinct() uses.
func checkCount(fc *fieldChecker, c *influxql.Call) error {
	return checkArity(c, 1, 1, func() error {
		fc.aggregateCount++
		switch arg := c.Args[0].(type) {
		case *influxql.Call:
			if arg.Name == "distinct" {
				return checkDistinct(fc, arg, true)
			}
		case *influxql.Distinct:
			return rwerr.Internalf("unexpected distinct clause in count")
		}
		return checkSymbol(c, c.Args[0])
	})
}

// checkDistinct validates distinct()'s single VarRef argument. nested
// is true for the count(distinct(x)) special case, in which case
// hasDistinct is not set.
func checkDistinct(fc *fieldChecker, c *influxql.Call, nested bool) error {
	return checkArity(c, 1, 1, func() error {
		fc.aggregateCount++
		if _, ok := c.Args[0].(*influxql.VarRef); !ok {
			return rwerr.Planf(c, "expected field argument in distinct()")
		}
		if !nested {
			fc.hasDistinct = true
		}
		return nil
	})
}

func checkTopBottom(fc *fieldChecker, c *influxql.Call) error {
	fc.selectorCount++
	fc.hasTopBottom = true

	if len(c.Args) < 2 {
		return rwerr.Planf(c, "invalid number of arguments for %s, expected at least 2, got %d", c.Name, len(c.Args))
	}

	last := len(c.Args) - 1
	switch lit := c.Args[last].(type) {
	case *influxql.IntegerLiteral:
		if lit.Val <= 0 {
			return rwerr.Planf(c, "limit (%d) for %s must be greater than 0", lit.Val, c.Name)
		}
	default:
		return rwerr.Planf(c, "expected integer as last argument for %s, got %s", c.Name, debugExpr(c.Args[last]))
	}

	if _, ok := c.Args[0].(*influxql.VarRef); !ok {
		return rwerr.Planf(c, "expected first argument to be a field for %s", c.Name)
	}

	rest := c.Args[1:last]
	for _, a := range rest {
		if _, ok := a.(*influxql.VarRef); !ok {
			return rwerr.Planf(c, "only fields or tags are allow for %s(), got %s", c.Name, debugExpr(a))
		}
	}
	if len(rest) > 0 {
		fc.hasNonAggregateFields = true
	}
	return nil
}

func checkScalarMath(fc *fieldChecker, c *influxql.Call, arity int) error {
	return checkArity(c, arity, arity, func() error {
		for _, a := range c.Args {
			if isNumericLiteral(a) {
				continue
			}
			if err := checkExpr(fc, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func isNumericLiteral(e influxql.Expr) bool {
	e = unwrapParen(e)
	switch e.(type) {
	case *influxql.IntegerLiteral, *influxql.FloatLiteral:
		return true
	default:
		return false
	}
}
