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

import "time"

// Dimension is a single entry of a GROUP BY clause.
type Dimension interface {
	Node
	dimensionNode()
}

func (*TimeDimension) dimensionNode()     {}
func (*TagDimension) dimensionNode()      {}
func (*RegexDimension) dimensionNode()    {}
func (*WildcardDimension) dimensionNode() {}

// TimeDimension is `GROUP BY time(interval[, offset])`. Time
// dimensions are never expanded by wildcard/regex processing.
type TimeDimension struct {
	Interval time.Duration
	Offset   time.Duration
}

func (t *TimeDimension) String() string {
	if t.Offset == 0 {
		return "time(" + t.Interval.String() + ")"
	}
	return "time(" + t.Interval.String() + ", " + t.Offset.String() + ")"
}
func (t *TimeDimension) walk(Visitor) {}

// TagDimension is a named tag in the GROUP BY clause.
type TagDimension struct{ Name string }

func (t *TagDimension) String() string { return quoteIdent(t.Name) }
func (t *TagDimension) walk(Visitor)   {}

// RegexDimension groups by every tag matching a regular expression.
type RegexDimension struct{ Val string }

func (r *RegexDimension) String() string { return "/" + r.Val + "/" }
func (r *RegexDimension) walk(Visitor)   {}

// WildcardDimension is GROUP BY *, grouping by every tag in scope.
type WildcardDimension struct{}

func (*WildcardDimension) String() string { return "*" }
func (*WildcardDimension) walk(Visitor)   {}
