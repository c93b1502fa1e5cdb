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

// Node is the interface satisfied by every element of a SELECT
// statement's syntax tree that a Visitor or Rewriter can traverse:
// expressions, fields and dimensions.
type Node interface {
	String() string
	walk(v Visitor)
}

// Expr is the interface satisfied by every projection/condition
// expression variant named in the data model: VarRef, the literal
// kinds, Call, BinaryExpr, ParenExpr, Wildcard, Distinct and
// BindParameter.
type Expr interface {
	Node
	exprNode()
}

// Visitor is invoked for every Node encountered by Walk. If the
// returned Visitor is non-nil, Walk proceeds into the node's
// children using it; a nil result stops the descent.
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter rewrites nodes in depth-first order. Walk controls
// descent the same way Visitor.Visit does; Rewrite is then applied
// to the (possibly already-rewritten) node itself.
type Rewriter interface {
	Rewrite(Node) Node
	Walk(Node) Rewriter
}

// nonleaf is implemented by nodes with children that can be
// rewritten in place.
type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Walk traverses n in depth-first order, calling v.Visit for n and
// every descendant.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if w := v.Visit(n); w != nil {
		n.walk(w)
	}
}

// Rewrite applies r to n and its children in depth-first order,
// returning the (possibly new) node that should replace n.
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	if nl, ok := n.(nonleaf); ok {
		if rc := r.Walk(n); rc != nil {
			n = nl.rewrite(rc)
		}
	}
	return r.Rewrite(n)
}

// visitfn adapts a plain function into a Visitor that recurses into
// every child for as long as the function keeps returning true.
type visitfn func(Node) bool

func (f visitfn) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect walks n calling f for every node until f returns false for
// a node or its subtree is exhausted.
func Inspect(n Node, f func(Node) bool) {
	Walk(visitfn(f), n)
}

// Contains reports whether any node in the subtree rooted at n
// satisfies pred.
func Contains(n Node, pred func(Node) bool) bool {
	found := false
	Inspect(n, func(x Node) bool {
		if found {
			return false
		}
		if pred(x) {
			found = true
			return false
		}
		return true
	})
	return found
}
