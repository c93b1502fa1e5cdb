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

import "testing"

func TestVarRefType_TotalOrder(t *testing.T) {
	order := []VarRefType{Float, Integer, Unsigned, String, Boolean, Tag, Timestamp}
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			if !order[i].Less(order[j]) {
				t.Errorf("%v.Less(%v) = false, want true", order[i], order[j])
			}
			if order[j].Less(order[i]) {
				t.Errorf("%v.Less(%v) = true, want false", order[j], order[i])
			}
		}
	}
}

func TestMinType(t *testing.T) {
	testcases := []struct {
		a, b, want VarRefType
	}{
		{Float, Integer, Float},
		{Integer, Float, Float},
		{Unknown, Float, Float},
		{Float, Unknown, Float},
		{Tag, Timestamp, Tag},
		{String, Boolean, String},
	}
	for _, tc := range testcases {
		if got := MinType(tc.a, tc.b); got != tc.want {
			t.Errorf("MinType(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestContains_FindsWildcard(t *testing.T) {
	c := &Call{Name: "mean", Args: []Expr{&Wildcard{}}}
	if !Contains(c, func(n Node) bool { _, ok := n.(*Wildcard); return ok }) {
		t.Fatalf("Contains did not find the wildcard nested in %v", c)
	}
}

func TestContains_NoMatch(t *testing.T) {
	c := &Call{Name: "mean", Args: []Expr{&VarRef{Name: "x"}}}
	if Contains(c, func(n Node) bool { _, ok := n.(*Wildcard); return ok }) {
		t.Fatalf("Contains reported a match where none exists")
	}
}

// replaceVarRef is a Rewriter that replaces every VarRef named `from`
// with a VarRef named `to`, used to exercise the nonleaf.rewrite path.
type replaceVarRef struct{ from, to string }

func (r replaceVarRef) Walk(Node) Rewriter { return r }

func (r replaceVarRef) Rewrite(n Node) Node {
	if vr, ok := n.(*VarRef); ok && vr.Name == r.from {
		return &VarRef{Name: r.to, Type: vr.Type}
	}
	return n
}

func TestRewrite_ReplacesNestedNode(t *testing.T) {
	c := &Call{Name: "mean", Args: []Expr{&VarRef{Name: "foo"}}}
	out := Rewrite(replaceVarRef{from: "foo", to: "bar"}, c).(*Call)
	vr, ok := out.Args[0].(*VarRef)
	if !ok || vr.Name != "bar" {
		t.Fatalf("Rewrite produced %v, want a VarRef named bar", out.Args[0])
	}
}

func TestExprName(t *testing.T) {
	testcases := []struct {
		e    Expr
		want string
	}{
		{&VarRef{Name: "usage_idle"}, "usage_idle"},
		{&Call{Name: "mean", Args: []Expr{&VarRef{Name: "x"}}}, "mean"},
		{&BinaryExpr{LHS: &VarRef{Name: "a"}, Op: ADD, RHS: &VarRef{Name: "b"}}, "a_b"},
	}
	for _, tc := range testcases {
		if got := ExprName(tc.e); got != tc.want {
			t.Errorf("ExprName(%v) = %q, want %q", tc.e, got, tc.want)
		}
	}
}

func TestField_NameUsesAliasWhenSet(t *testing.T) {
	f := &Field{Expr: &VarRef{Name: "usage_idle"}, Alias: "ui"}
	if got := f.Name(); got != "ui" {
		t.Fatalf("Name() = %q, want %q", got, "ui")
	}
}
