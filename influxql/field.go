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

package influxql

// Field is a single projected column: an expression plus its output
// alias. Alias is empty unless the user, the wildcard expander (C5)
// or the time normalizer (C7) set it; the alias uniquifier (C8) then
// assigns one to every field of the outer statement.
type Field struct {
	Expr  Expr
	Alias string
}

func (f *Field) String() string {
	if f.Alias == "" {
		return f.Expr.String()
	}
	return f.Expr.String() + " AS " + quoteIdent(f.Alias)
}

func (f *Field) walk(v Visitor) { Walk(v, f.Expr) }

func (f *Field) rewrite(r Rewriter) Node {
	return &Field{Expr: Rewrite(r, f.Expr).(Expr), Alias: f.Alias}
}

// Name returns the default output name of f: for a VarRef this is
// the referent name, for a Call it is the function name, for a
// BinaryExpr it is "lhs_rhs", and otherwise the expression's printed
// form. Field.Alias overrides this when present.
func (f *Field) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return ExprName(f.Expr)
}

// ExprName computes the default column name an expression would
// project under, absent an explicit alias.
func ExprName(e Expr) string {
	switch e := e.(type) {
	case *VarRef:
		return e.Name
	case *Call:
		return e.Name
	case *BinaryExpr:
		return ExprName(e.LHS) + "_" + ExprName(e.RHS)
	case *ParenExpr:
		return ExprName(e.Expr)
	case *Distinct:
		return e.Name
	default:
		return e.String()
	}
}
