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

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kayagokalp/influxql-rewriter/influxql"
)

// The InfluxQL parser is out of scope for this module (spec
// Non-goals): it is assumed to have already run upstream. The CLI
// instead reads a JSON-encoded SelectStatement, a small tagged-union
// wire format decoded here into the influxql package's own AST types.

type wireStatement struct {
	Fields       []wireField `json:"fields"`
	From         []wireFrom  `json:"from"`
	Condition    *wireExpr   `json:"condition,omitempty"`
	GroupBy      []wireDim   `json:"groupBy,omitempty"`
	Fill         *wireFill   `json:"fill,omitempty"`
	Ascending    bool        `json:"ascending,omitempty"`
	Limit        *int        `json:"limit,omitempty"`
	Offset       *int        `json:"offset,omitempty"`
	SeriesLimit  *int        `json:"seriesLimit,omitempty"`
	SeriesOffset *int        `json:"seriesOffset,omitempty"`
	Timezone     string      `json:"timezone,omitempty"`
}

type wireField struct {
	Expr  wireExpr `json:"expr"`
	Alias string   `json:"alias,omitempty"`
}

type wireFrom struct {
	Type  string         `json:"type"` // "name" | "regex" | "subquery"
	Name  string         `json:"name,omitempty"`
	Value string         `json:"value,omitempty"`
	Stmt  *wireStatement `json:"stmt,omitempty"`
}

type wireDim struct {
	Type     string `json:"type"` // "time" | "tag" | "regex" | "wildcard"
	Name     string `json:"name,omitempty"`
	Value    string `json:"value,omitempty"`
	Interval string `json:"interval,omitempty"`
	Offset   string `json:"offset,omitempty"`
}

type wireFill struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
}

type wireExpr struct {
	Type  string      `json:"type"`
	Name  string      `json:"name,omitempty"`
	Value json.Number `json:"value,omitempty"`
	Str   string      `json:"str,omitempty"`
	Bool  bool        `json:"bool,omitempty"`
	Args  []wireExpr  `json:"args,omitempty"`
	LHS   *wireExpr   `json:"lhs,omitempty"`
	RHS   *wireExpr   `json:"rhs,omitempty"`
	Op    string      `json:"op,omitempty"`
	Inner *wireExpr   `json:"inner,omitempty"`
	Kind  string      `json:"kind,omitempty"` // wildcard kind: "any" | "tag" | "field"
}

// decodeStatement parses raw JSON into an *influxql.SelectStatement.
func decodeStatement(raw []byte) (*influxql.SelectStatement, error) {
	var w wireStatement
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("decoding query: %w", err)
	}
	return w.toStatement()
}

func (w *wireStatement) toStatement() (*influxql.SelectStatement, error) {
	stmt := &influxql.SelectStatement{
		Ascending:    w.Ascending,
		Limit:        w.Limit,
		Offset:       w.Offset,
		SeriesLimit:  w.SeriesLimit,
		SeriesOffset: w.SeriesOffset,
		Timezone:     w.Timezone,
	}
	for _, f := range w.Fields {
		e, err := f.Expr.toExpr()
		if err != nil {
			return nil, err
		}
		stmt.Fields = append(stmt.Fields, &influxql.Field{Expr: e, Alias: f.Alias})
	}
	for _, f := range w.From {
		m, err := f.toMeasurementSelection()
		if err != nil {
			return nil, err
		}
		stmt.From = append(stmt.From, m)
	}
	if w.Condition != nil {
		e, err := w.Condition.toExpr()
		if err != nil {
			return nil, err
		}
		stmt.Condition = e
	}
	for _, d := range w.GroupBy {
		dim, err := d.toDimension()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = append(stmt.GroupBy, dim)
	}
	if w.Fill != nil {
		fill, err := w.Fill.toFillOption()
		if err != nil {
			return nil, err
		}
		stmt.Fill = fill
	}
	return stmt, nil
}

func (f *wireFrom) toMeasurementSelection() (influxql.MeasurementSelection, error) {
	switch f.Type {
	case "name":
		return &influxql.MeasurementName{Name: f.Name}, nil
	case "regex":
		return &influxql.MeasurementRegex{Val: f.Value}, nil
	case "subquery":
		if f.Stmt == nil {
			return nil, fmt.Errorf("subquery FROM entry missing stmt")
		}
		sub, err := f.Stmt.toStatement()
		if err != nil {
			return nil, err
		}
		return &influxql.SubqueryMeasurement{Stmt: sub}, nil
	default:
		return nil, fmt.Errorf("unknown FROM entry type %q", f.Type)
	}
}

func (d *wireDim) toDimension() (influxql.Dimension, error) {
	switch d.Type {
	case "time":
		interval, err := time.ParseDuration(d.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing time() interval: %w", err)
		}
		var offset time.Duration
		if d.Offset != "" {
			offset, err = time.ParseDuration(d.Offset)
			if err != nil {
				return nil, fmt.Errorf("parsing time() offset: %w", err)
			}
		}
		return &influxql.TimeDimension{Interval: interval, Offset: offset}, nil
	case "tag":
		return &influxql.TagDimension{Name: d.Name}, nil
	case "regex":
		return &influxql.RegexDimension{Val: d.Value}, nil
	case "wildcard":
		return &influxql.WildcardDimension{}, nil
	default:
		return nil, fmt.Errorf("unknown GROUP BY entry type %q", d.Type)
	}
}

func (f *wireFill) toFillOption() (*influxql.FillOption, error) {
	switch f.Kind {
	case "null", "":
		return &influxql.FillOption{Kind: influxql.FillNull}, nil
	case "none":
		return &influxql.FillOption{Kind: influxql.FillNone}, nil
	case "previous":
		return &influxql.FillOption{Kind: influxql.FillPrevious}, nil
	case "linear":
		return &influxql.FillOption{Kind: influxql.FillLinear}, nil
	case "number":
		return &influxql.FillOption{Kind: influxql.FillNumber, Value: f.Value}, nil
	default:
		return nil, fmt.Errorf("unknown fill kind %q", f.Kind)
	}
}

func (e *wireExpr) toExpr() (influxql.Expr, error) {
	switch e.Type {
	case "varref":
		return &influxql.VarRef{Name: e.Name}, nil
	case "integer":
		n, err := e.Value.Int64()
		if err != nil {
			return nil, fmt.Errorf("parsing integer literal: %w", err)
		}
		return &influxql.IntegerLiteral{Val: n}, nil
	case "float":
		f, err := e.Value.Float64()
		if err != nil {
			return nil, fmt.Errorf("parsing float literal: %w", err)
		}
		return &influxql.FloatLiteral{Val: f}, nil
	case "string":
		return &influxql.StringLiteral{Val: e.Str}, nil
	case "boolean":
		return &influxql.BooleanLiteral{Val: e.Bool}, nil
	case "duration":
		d, err := time.ParseDuration(e.Str)
		if err != nil {
			return nil, fmt.Errorf("parsing duration literal: %w", err)
		}
		return &influxql.DurationLiteral{Val: d}, nil
	case "regex":
		return &influxql.RegexLiteral{Val: e.Str}, nil
	case "wildcard":
		switch e.Kind {
		case "tag":
			return &influxql.Wildcard{Kind: influxql.WildcardTag}, nil
		case "field":
			return &influxql.Wildcard{Kind: influxql.WildcardField}, nil
		default:
			return &influxql.Wildcard{}, nil
		}
	case "distinct":
		return &influxql.Distinct{Name: e.Name}, nil
	case "bindparam":
		return &influxql.BindParameter{Name: e.Name}, nil
	case "call":
		args := make([]influxql.Expr, 0, len(e.Args))
		for _, a := range e.Args {
			ae, err := a.toExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, ae)
		}
		return &influxql.Call{Name: e.Name, Args: args}, nil
	case "binary":
		if e.LHS == nil || e.RHS == nil {
			return nil, fmt.Errorf("binary expression missing lhs/rhs")
		}
		lhs, err := e.LHS.toExpr()
		if err != nil {
			return nil, err
		}
		rhs, err := e.RHS.toExpr()
		if err != nil {
			return nil, err
		}
		op, ok := binaryOpsByText[e.Op]
		if !ok {
			return nil, fmt.Errorf("unknown binary operator %q", e.Op)
		}
		return &influxql.BinaryExpr{LHS: lhs, Op: op, RHS: rhs}, nil
	case "paren":
		if e.Inner == nil {
			return nil, fmt.Errorf("paren expression missing inner")
		}
		inner, err := e.Inner.toExpr()
		if err != nil {
			return nil, err
		}
		return &influxql.ParenExpr{Expr: inner}, nil
	default:
		return nil, fmt.Errorf("unknown expression type %q", e.Type)
	}
}

var binaryOpsByText = map[string]influxql.BinaryOp{
	"+": influxql.ADD, "-": influxql.SUB, "*": influxql.MUL, "/": influxql.DIV, "%": influxql.MOD,
	"&": influxql.BitwiseAnd, "|": influxql.BitwiseOr, "^": influxql.BitwiseXor,
	"AND": influxql.AND, "OR": influxql.OR,
	"=": influxql.EQ, "!=": influxql.NEQ, "<": influxql.LT, "<=": influxql.LTE, ">": influxql.GT, ">=": influxql.GTE,
}
