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

import (
	"fmt"
	"time"
)

func (*VarRef) exprNode()        {}
func (*IntegerLiteral) exprNode() {}
func (*FloatLiteral) exprNode()   {}
func (*StringLiteral) exprNode()  {}
func (*BooleanLiteral) exprNode() {}
func (*DurationLiteral) exprNode() {}
func (*RegexLiteral) exprNode()   {}
func (*Call) exprNode()          {}
func (*BinaryExpr) exprNode()    {}
func (*ParenExpr) exprNode()     {}
func (*Wildcard) exprNode()      {}
func (*Distinct) exprNode()      {}
func (*BindParameter) exprNode() {}

// VarRef is a reference to a column name, optionally annotated with
// its resolved type once the schema has been consulted.
type VarRef struct {
	Name string
	Type VarRefType
}

func (v *VarRef) String() string {
	if v.Type == Unknown {
		return quoteIdent(v.Name)
	}
	return fmt.Sprintf("%s::%s", quoteIdent(v.Name), v.Type)
}

func (v *VarRef) walk(Visitor) {}

// IntegerLiteral is a signed 64-bit integer literal.
type IntegerLiteral struct{ Val int64 }

func (l *IntegerLiteral) String() string { return fmt.Sprintf("%d", l.Val) }
func (l *IntegerLiteral) walk(Visitor)   {}

// FloatLiteral is a 64-bit floating point literal.
type FloatLiteral struct{ Val float64 }

func (l *FloatLiteral) String() string { return fmt.Sprintf("%g", l.Val) }
func (l *FloatLiteral) walk(Visitor)   {}

// StringLiteral is a quoted string literal.
type StringLiteral struct{ Val string }

func (l *StringLiteral) String() string { return fmt.Sprintf("%q", l.Val) }
func (l *StringLiteral) walk(Visitor)   {}

// BooleanLiteral is a TRUE/FALSE literal.
type BooleanLiteral struct{ Val bool }

func (l *BooleanLiteral) String() string {
	if l.Val {
		return "true"
	}
	return "false"
}
func (l *BooleanLiteral) walk(Visitor) {}

// DurationLiteral is a time.Duration literal, e.g. 5m, 1h30s.
type DurationLiteral struct{ Val time.Duration }

func (l *DurationLiteral) String() string { return l.Val.String() }
func (l *DurationLiteral) walk(Visitor)   {}

// RegexLiteral is a /regex/ literal used for measurement, tag and
// field-name matching.
type RegexLiteral struct{ Val string }

func (l *RegexLiteral) String() string { return "/" + l.Val + "/" }
func (l *RegexLiteral) walk(Visitor)   {}

// WildcardKind distinguishes a bare `*` from `*::tag` and `*::field`.
type WildcardKind int

const (
	WildcardAny WildcardKind = iota
	WildcardTag
	WildcardField
)

// Wildcard is `*`, `*::tag` or `*::field` appearing in a projection
// or GROUP BY list prior to expansion.
type Wildcard struct{ Kind WildcardKind }

func (w *Wildcard) String() string {
	switch w.Kind {
	case WildcardTag:
		return "*::tag"
	case WildcardField:
		return "*::field"
	default:
		return "*"
	}
}
func (w *Wildcard) walk(Visitor) {}

// Distinct is the unary `DISTINCT <ident>` form, rewritten to
// Call{"distinct", [VarRef]} before any further processing.
type Distinct struct{ Name string }

func (d *Distinct) String() string { return "DISTINCT " + quoteIdent(d.Name) }
func (d *Distinct) walk(Visitor)   {}

// BindParameter is a `$name` placeholder. It is illegal by the time
// this package's pipeline runs; bind parameter substitution is
// assumed to have happened upstream.
type BindParameter struct{ Name string }

func (b *BindParameter) String() string { return "$" + b.Name }
func (b *BindParameter) walk(Visitor)   {}
