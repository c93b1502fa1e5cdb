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
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// seqEntry is one member of the combined field/tag expansion sequence
// built in expand's Phase C.
type seqEntry struct {
	Name  string
	Type  influxql.VarRefType
	IsTag bool
}

// expand is the projection and GROUP BY expander (C5). It mutates
// sel.Fields and sel.GroupBy in place.
func expand(p schema.Provider, sel *influxql.Select) error {
	// Phase A: type every VarRef reachable from the projection list.
	for _, f := range sel.Fields {
		annotateTypes(p, f.Expr, sel.From)
	}

	// Phase B: detect wildcard flavors.
	hasFieldWildcard := false
	for _, f := range sel.Fields {
		if containsWildcardOrRegex(f.Expr) {
			hasFieldWildcard = true
			break
		}
	}
	hasGroupByWildcard := false
	for _, d := range sel.GroupBy {
		switch d.(type) {
		case *influxql.WildcardDimension, *influxql.RegexDimension:
			hasGroupByWildcard = true
		}
	}

	var seq []seqEntry
	var allTags map[string]struct{}
	if hasFieldWildcard || hasGroupByWildcard {
		mergedFields := make(map[string]influxql.VarRefType)
		allTags = make(map[string]struct{})
		for _, ds := range sel.From {
			switch ds := ds.(type) {
			case *influxql.Table:
				fields, tags, ok := schema.FieldsAndTags(p, ds.Name)
				if !ok {
					continue
				}
				for name, t := range fields {
					if prev, exists := mergedFields[name]; exists {
						mergedFields[name] = influxql.MinType(prev, t)
					} else {
						mergedFields[name] = t
					}
				}
				for name := range tags {
					allTags[name] = struct{}{}
				}
			case *influxql.SubqueryDataSource:
				for _, f := range ds.Select.Fields {
					name := f.Name()
					t := evalType(p, f.Expr, ds.Select.From)
					if prev, exists := mergedFields[name]; exists {
						mergedFields[name] = influxql.MinType(prev, t)
					} else {
						mergedFields[name] = t
					}
				}
				for _, d := range ds.Select.GroupBy {
					if td, ok := d.(*influxql.TagDimension); ok {
						allTags[td.Name] = struct{}{}
					}
				}
			}
		}

		seqTags := maps.Clone(allTags)
		if hasFieldWildcard && !hasGroupByWildcard {
			for _, d := range sel.GroupBy {
				if td, ok := d.(*influxql.TagDimension); ok {
					delete(seqTags, td.Name)
				}
			}
		}

		fieldNames := maps.Keys(mergedFields)
		slices.Sort(fieldNames)
		for _, name := range fieldNames {
			seq = append(seq, seqEntry{Name: name, Type: mergedFields[name]})
		}
		if !hasGroupByWildcard {
			tagNames := maps.Keys(seqTags)
			slices.Sort(tagNames)
			for _, name := range tagNames {
				seq = append(seq, seqEntry{Name: name, Type: influxql.Tag, IsTag: true})
			}
		}
	}

	var out []*influxql.Field
	for _, f := range sel.Fields {
		switch expr := f.Expr.(type) {
		case *influxql.Wildcard:
			out = append(out, expandWildcardField(expr, seq)...)
		case *influxql.RegexLiteral:
			fields, err := expandRegexField(expr, seq)
			if err != nil {
				return err
			}
			out = append(out, fields...)
		case *influxql.Call:
			if target, fnName, ok := findWildcardTarget(expr); ok {
				fields, err := expandCallWildcard(expr, target, fnName, seq)
				if err != nil {
					return err
				}
				out = append(out, fields...)
				continue
			}
			if containsWildcardOrRegex(expr) {
				return rwerr.Planf(expr, "unsupported expression: contains a wildcard or regular expression")
			}
			out = append(out, f)
		default:
			if containsWildcardOrRegex(expr) {
				return rwerr.Planf(expr, "unsupported expression: contains a wildcard or regular expression")
			}
			out = append(out, f)
		}
	}
	sel.Fields = out

	if hasGroupByWildcard {
		tagNames := maps.Keys(allTags)
		slices.Sort(tagNames)
		var newGB []influxql.Dimension
		for _, d := range sel.GroupBy {
			switch d := d.(type) {
			case *influxql.WildcardDimension:
				for _, name := range tagNames {
					newGB = append(newGB, &influxql.TagDimension{Name: name})
				}
			case *influxql.RegexDimension:
				re, err := regexp.Compile(d.Val)
				if err != nil {
					return rwerr.Planf(d, "invalid regular expression: %s", err)
				}
				for _, name := range tagNames {
					if re.MatchString(name) {
						newGB = append(newGB, &influxql.TagDimension{Name: name})
					}
				}
			default:
				newGB = append(newGB, d)
			}
		}
		sel.GroupBy = newGB
	}

	return nil
}

func annotateTypes(p schema.Provider, e influxql.Expr, from []influxql.DataSource) {
	switch e := e.(type) {
	case *influxql.VarRef:
		if e.Type == influxql.Unknown {
			if e.Name == "time" {
				e.Type = influxql.Timestamp
			} else {
				e.Type = varRefType(p, e.Name, from)
			}
		}
	case *influxql.Call:
		for _, a := range e.Args {
			annotateTypes(p, a, from)
		}
	case *influxql.BinaryExpr:
		annotateTypes(p, e.LHS, from)
		annotateTypes(p, e.RHS, from)
	case *influxql.ParenExpr:
		annotateTypes(p, e.Expr, from)
	}
}

func isWildcardOrRegexNode(n influxql.Node) bool {
	switch n.(type) {
	case *influxql.Wildcard, *influxql.RegexLiteral:
		return true
	default:
		return false
	}
}

func containsWildcardOrRegex(e influxql.Expr) bool {
	return influxql.Contains(e, isWildcardOrRegexNode)
}

func expandWildcardField(w *influxql.Wildcard, seq []seqEntry) []*influxql.Field {
	var out []*influxql.Field
	for _, ent := range seq {
		switch w.Kind {
		case influxql.WildcardTag:
			if !ent.IsTag {
				continue
			}
		case influxql.WildcardField:
			if ent.IsTag {
				continue
			}
		}
		out = append(out, &influxql.Field{Expr: &influxql.VarRef{Name: ent.Name, Type: ent.Type}})
	}
	return out
}

func expandRegexField(r *influxql.RegexLiteral, seq []seqEntry) ([]*influxql.Field, error) {
	re, err := regexp.Compile(r.Val)
	if err != nil {
		return nil, rwerr.Planf(r, "invalid regular expression: %s", err)
	}
	var out []*influxql.Field
	for _, ent := range seq {
		if re.MatchString(ent.Name) {
			out = append(out, &influxql.Field{Expr: &influxql.VarRef{Name: ent.Name, Type: ent.Type}})
		}
	}
	return out, nil
}

// findWildcardTarget descends through a chain of single-argument
// calls looking for a Wildcard or RegexLiteral in the innermost
// call's operand position, returning that node, the innermost call's
// name (which governs the admissible operand types), and whether one
// was found.
func findWildcardTarget(c *influxql.Call) (target influxql.Expr, fnName string, ok bool) {
	if len(c.Args) != 1 {
		return nil, "", false
	}
	switch arg := c.Args[0].(type) {
	case *influxql.Call:
		return findWildcardTarget(arg)
	case *influxql.Wildcard:
		return arg, c.Name, true
	case *influxql.RegexLiteral:
		return arg, c.Name, true
	default:
		return nil, "", false
	}
}

var numericOnly = buildTypeSet(influxql.Float, influxql.Integer, influxql.Unsigned)
var numericPlusStringBool = buildTypeSet(influxql.Float, influxql.Integer, influxql.Unsigned, influxql.String, influxql.Boolean)
var numericPlusBool = buildTypeSet(influxql.Float, influxql.Integer, influxql.Unsigned, influxql.Boolean)
var holtWintersTypes = buildTypeSet(influxql.Float, influxql.Integer)

func buildTypeSet(ts ...influxql.VarRefType) map[influxql.VarRefType]bool {
	m := make(map[influxql.VarRefType]bool, len(ts))
	for _, t := range ts {
		m[t] = true
	}
	return m
}

func admissibleTypes(fn string) map[influxql.VarRefType]bool {
	switch fn {
	case "count", "first", "last", "distinct", "elapsed", "mode", "sample":
		return numericPlusStringBool
	case "min", "max":
		return numericPlusBool
	case "holt_winters", "holt_winters_with_fit":
		return holtWintersTypes
	default:
		return numericOnly
	}
}

// substituteRewriter replaces exactly one node (by pointer identity)
// with repl via influxql.Rewrite, which rebuilds every non-leaf node
// on the way; leaf nodes other than the target are shared, not copied.
type substituteRewriter struct {
	target influxql.Node
	repl   influxql.Expr
}

func (s substituteRewriter) Walk(influxql.Node) influxql.Rewriter { return s }

func (s substituteRewriter) Rewrite(n influxql.Node) influxql.Node {
	if n == s.target {
		return s.repl
	}
	return n
}

func expandCallWildcard(c *influxql.Call, target influxql.Expr, fnName string, seq []seqEntry) ([]*influxql.Field, error) {
	if w, ok := target.(*influxql.Wildcard); ok && w.Kind == influxql.WildcardTag {
		return nil, rwerr.Planf(c, "unable to use tag as wildcard in %s()", fnName)
	}

	var re *regexp.Regexp
	if r, ok := target.(*influxql.RegexLiteral); ok {
		compiled, err := regexp.Compile(r.Val)
		if err != nil {
			return nil, rwerr.Planf(r, "invalid regular expression: %s", err)
		}
		re = compiled
	}

	admit := admissibleTypes(fnName)
	outputName := influxql.ExprName(c)

	var out []*influxql.Field
	for _, ent := range seq {
		if ent.IsTag || !admit[ent.Type] {
			continue
		}
		if re != nil && !re.MatchString(ent.Name) {
			continue
		}
		operand := &influxql.VarRef{Name: ent.Name, Type: ent.Type}
		rw := substituteRewriter{target: target, repl: operand}
		newExpr := influxql.Rewrite(rw, c).(influxql.Expr)
		out = append(out, &influxql.Field{
			Expr:  newExpr,
			Alias: outputName + "_" + ent.Name,
		})
	}
	return out, nil
}
