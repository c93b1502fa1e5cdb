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
	"strings"
)

// FillKind selects the gap-filling strategy named by a FILL clause.
type FillKind int

const (
	FillNull FillKind = iota
	FillNone
	FillPrevious
	FillLinear
	FillNumber
)

// FillOption is a parsed FILL(...) clause. It is never evaluated by
// this package (gap filling is a planner/execution concern) but its
// mere presence interacts with the field checker's rules (C9).
type FillOption struct {
	Kind  FillKind
	Value float64
}

func (f *FillOption) String() string {
	switch f.Kind {
	case FillNone:
		return "fill(none)"
	case FillPrevious:
		return "fill(previous)"
	case FillLinear:
		return "fill(linear)"
	case FillNumber:
		return fmt.Sprintf("fill(%g)", f.Value)
	default:
		return "fill(null)"
	}
}

// SelectStatement is the shape produced by the InfluxQL parser,
// prior to any resolution against a schema. It is the input to
// rewrite.Statement.
type SelectStatement struct {
	Fields       []*Field
	From         []MeasurementSelection
	Condition    Expr
	GroupBy      []Dimension
	Fill         *FillOption
	Ascending    bool
	Limit        *int
	Offset       *int
	SeriesLimit  *int
	SeriesOffset *int
	Timezone     string
}

func (s *SelectStatement) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, m := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(m.String())
		}
	}
	return b.String()
}

func (s *SelectStatement) walk(v Visitor) {
	for _, f := range s.Fields {
		Walk(v, f)
	}
	for _, m := range s.From {
		Walk(v, m)
	}
	if s.Condition != nil {
		Walk(v, s.Condition)
	}
	for _, d := range s.GroupBy {
		Walk(v, d)
	}
}

// Select is the normalized, type-annotated intermediate
// representation produced by the rewrite pipeline (C2-C8).
type Select struct {
	Fields    []*Field
	From      []DataSource
	Condition Expr
	GroupBy   []Dimension
	Fill      *FillOption
	Ascending bool
	Limit     *int
	Offset    *int
	Timezone  string
}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.String())
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, d := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.String())
		}
	}
	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, d := range s.GroupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.String())
		}
	}
	return b.String()
}

func (s *Select) walk(v Visitor) {
	for _, f := range s.Fields {
		Walk(v, f)
	}
	for _, d := range s.From {
		Walk(v, d)
	}
	if s.Condition != nil {
		Walk(v, s.Condition)
	}
	for _, d := range s.GroupBy {
		Walk(v, d)
	}
}

// TimeDimensionOf returns the GROUP BY time(...) dimension of s, if
// any.
func (s *Select) TimeDimensionOf() *TimeDimension {
	for _, d := range s.GroupBy {
		if td, ok := d.(*TimeDimension); ok {
			return td
		}
	}
	return nil
}

// SelectQuery is the public result of rewrite.Statement: the
// normalized Select plus whether it reaches more than one distinct
// measurement transitively through its FROM (and any subqueries).
type SelectQuery struct {
	Select                  *Select
	HasMultipleMeasurements bool
}

// ProjectionKind classifies the shape of a normalized projection
// list, as determined by the field checker (C9).
type ProjectionKind int

const (
	// Raw projects no aggregate or selector functions.
	Raw ProjectionKind = iota
	// RawDistinct projects a single DISTINCT(field).
	RawDistinct
	// Aggregate projects one or more aggregate functions, or two or
	// more selector functions.
	Aggregate
	// Selector projects a single selector function such as last or
	// first, optionally alongside non-aggregate fields/tags.
	Selector
	// TopBottomSelector projects top() or bottom().
	TopBottomSelector
)

func (k ProjectionKind) String() string {
	switch k {
	case RawDistinct:
		return "raw_distinct"
	case Aggregate:
		return "aggregate"
	case Selector:
		return "selector"
	case TopBottomSelector:
		return "top_bottom_selector"
	default:
		return "raw"
	}
}

// ProjectionType is the result of the field checker's classification.
// HasFields carries the Selector variant's payload (whether the
// selector is accompanied by non-aggregate fields/tags) and is
// meaningless for every other Kind; this is Go's realization of the
// source's Selector{has_fields: bool} enum variant, since a plain Go
// enum cannot carry a per-variant payload.
type ProjectionType struct {
	Kind      ProjectionKind
	HasFields bool
}

func (p ProjectionType) String() string {
	if p.Kind == Selector {
		return fmt.Sprintf("selector(has_fields=%v)", p.HasFields)
	}
	return p.Kind.String()
}

// SelectStatementInfo holds the result of check.Info: the
// classification of a normalized Select's projection shape. It
// carries only ProjectionType, matching the source struct exactly.
type SelectStatementInfo struct {
	ProjectionType ProjectionType
}
