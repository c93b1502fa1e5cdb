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
	"testing"

	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
)

func varRef(name string) *influxql.VarRef { return &influxql.VarRef{Name: name} }

func call(name string, args ...influxql.Expr) *influxql.Call {
	return &influxql.Call{Name: name, Args: args}
}

func field(e influxql.Expr) *influxql.Field { return &influxql.Field{Expr: e} }

func TestInfo_Errors(t *testing.T) {
	testcases := []struct {
		name    string
		sel     *influxql.Select
		wantErr string // "plan", "internal"
		wantMsg string // exact text, empty means don't check
	}{
		{
			name: "top and bottom combined with other functions",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("top", varRef("foo"), &influxql.IntegerLiteral{Val: 2})),
					field(call("mean", varRef("bar"))),
				},
			},
			wantErr: "plan",
			wantMsg: "selector functions top and bottom cannot be combined with other functions",
		},
		{
			name: "holt_winters without GROUP BY time",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("holt_winters", call("sum", varRef("foo")), &influxql.IntegerLiteral{Val: 2}, &influxql.IntegerLiteral{Val: 3})),
				},
			},
			wantErr: "plan",
			wantMsg: "holt_winters aggregate requires a GROUP BY interval",
		},
		{
			name: "sample rejects a window of one",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("sample", varRef("foo"), &influxql.IntegerLiteral{Val: 1}))},
			},
			wantErr: "plan",
			wantMsg: "sample window must be greater than 1, got 1",
		},
		{
			name: "distinct combined with other fields",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("distinct", varRef("foo"))),
					field(varRef("bar")),
				},
			},
			wantErr: "plan",
			wantMsg: "aggregate function distinct() cannot be combined with other functions or fields",
		},
		{
			name: "GROUP BY time requires an aggregate",
			sel: &influxql.Select{
				Fields:  []*influxql.Field{field(varRef("foo"))},
				GroupBy: []influxql.Dimension{&influxql.TimeDimension{}},
			},
			wantErr: "plan",
			wantMsg: "GROUP BY requires at least one aggregate function",
		},
		{
			name: "FILL without an aggregate",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(varRef("foo"))},
				Fill:   &influxql.FillOption{Kind: influxql.FillNull},
			},
			wantErr: "plan",
		},
		{
			name: "bind parameters are unresolved by this stage",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(&influxql.BindParameter{Name: "x"})},
			},
			wantErr: "internal",
		},
		{
			name: "percentile rejects a non-numeric second argument",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("percentile", varRef("foo"), &influxql.StringLiteral{Val: "x"}))},
			},
			wantErr: "plan",
			wantMsg: `expected number for percentile(), got "x"`,
		},
		{
			name: "top requires at least two arguments",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("top", varRef("foo")))},
			},
			wantErr: "plan",
			wantMsg: "invalid number of arguments for top, expected at least 2, got 1",
		},
		{
			name: "top rejects a non-positive limit",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("top", varRef("foo"), &influxql.IntegerLiteral{Val: 0}))},
			},
			wantErr: "plan",
			wantMsg: "limit (0) for top must be greater than 0",
		},
		{
			name: "top rejects a non-integer last argument",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("top", varRef("foo"), varRef("bar")))},
			},
			wantErr: "plan",
			wantMsg: "expected integer as last argument for top, got bar",
		},
		{
			name: "holt_winters rejects a non-positive N argument",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("holt_winters", call("sum", varRef("foo")), &influxql.IntegerLiteral{Val: 0}, &influxql.IntegerLiteral{Val: 1})),
				},
				GroupBy: []influxql.Dimension{&influxql.TimeDimension{}},
			},
			wantErr: "plan",
			wantMsg: "holt_winters N argument must be greater than 0, got 0",
		},
		{
			name: "holt_winters rejects a negative S argument",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("holt_winters", call("sum", varRef("foo")), &influxql.IntegerLiteral{Val: 2}, &influxql.IntegerLiteral{Val: -1})),
				},
				GroupBy: []influxql.Dimension{&influxql.TimeDimension{}},
			},
			wantErr: "plan",
			wantMsg: "holt_winters S argument cannot be negative, got -1",
		},
		{
			name: "moving_average rejects a window of one",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("moving_average", varRef("foo"), &influxql.IntegerLiteral{Val: 1}))},
			},
			wantErr: "plan",
			wantMsg: "moving_average window must be greater than 1, got 1",
		},
		{
			name: "exponential_moving_average rejects an unknown warmup type",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("exponential_moving_average", varRef("foo"), &influxql.IntegerLiteral{Val: 2}, &influxql.IntegerLiteral{Val: 0}, &influxql.StringLiteral{Val: "bogus"})),
				},
			},
			wantErr: "plan",
			wantMsg: "exponential_moving_average warmup type must be one of: 'exponential', 'simple', got bogus",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Info(tc.sel)
			switch tc.wantErr {
			case "plan":
				pe, ok := err.(*rwerr.PlanError)
				if !ok {
					t.Fatalf("err = %v (%T), want *rwerr.PlanError", err, err)
				}
				if tc.wantMsg != "" && pe.Error() != tc.wantMsg {
					t.Fatalf("err text = %q, want %q", pe.Error(), tc.wantMsg)
				}
			case "internal":
				if _, ok := err.(*rwerr.InternalError); !ok {
					t.Fatalf("err = %v (%T), want *rwerr.InternalError", err, err)
				}
			}
		})
	}
}

func TestInfo_ProjectionKinds(t *testing.T) {
	testcases := []struct {
		name          string
		sel           *influxql.Select
		wantKind      influxql.ProjectionKind
		wantHasFields bool
	}{
		{
			name: "holt_winters with GROUP BY time is an aggregate",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("holt_winters", call("sum", varRef("foo")), &influxql.IntegerLiteral{Val: 2}, &influxql.IntegerLiteral{Val: 3})),
				},
				GroupBy: []influxql.Dimension{&influxql.TimeDimension{}},
			},
			wantKind: influxql.Aggregate,
		},
		{
			name: "a single selector alongside plain fields carries has_fields",
			sel: &influxql.Select{
				Fields: []*influxql.Field{
					field(call("last", varRef("foo"))),
					field(varRef("host")),
				},
			},
			wantKind:      influxql.Selector,
			wantHasFields: true,
		},
		{
			name: "plain VarRefs are a raw projection",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(varRef("foo")), field(varRef("bar"))},
			},
			wantKind: influxql.Raw,
		},
		{
			name: "count(distinct(x)) is an aggregate",
			sel: &influxql.Select{
				Fields: []*influxql.Field{field(call("count", call("distinct", varRef("foo"))))},
			},
			wantKind: influxql.Aggregate,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Info(tc.sel)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if info.ProjectionType.Kind != tc.wantKind || info.ProjectionType.HasFields != tc.wantHasFields {
				t.Fatalf("ProjectionType = %+v, want kind=%v has_fields=%v", info.ProjectionType, tc.wantKind, tc.wantHasFields)
			}
		})
	}
}
