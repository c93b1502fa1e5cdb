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

// Package rewrite implements the semantic rewrite pipeline (C2-C8):
// it resolves a parsed SelectStatement's FROM clause against a
// schema, expands wildcard and regex projections, prunes empty
// sources, and normalizes the time column and projection aliases.
// Components are grounded on plan/pir/build.go's Trace-driven,
// fail-fast builder shape.
package rewrite

import (
	"log"

	"github.com/google/uuid"
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/schema"
)

// Logger is the minimal logging capability rewrite consumes, matched
// against the stdlib *log.Logger so callers can pass one directly.
type Logger interface {
	Printf(format string, args ...any)
}

type options struct {
	logger Logger
}

// Option configures Statement's ambient behavior.
type Option func(*options)

// WithLogger attaches a logger that receives a start line and a done
// (or failed) line per top-level rewrite, tagged with a per-call
// trace id.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

var discard = log.New(nilWriter{}, "", 0)

type nilWriter struct{}

func (nilWriter) Write(p []byte) (int, error) { return len(p), nil }

// Statement runs the full C2-C8 pipeline over stmt against p,
// producing the normalized SelectQuery (rewrite_statement in spec
// terms).
func Statement(p schema.Provider, stmt *influxql.SelectStatement, opts ...Option) (*influxql.SelectQuery, error) {
	cfg := options{logger: discard}
	for _, o := range opts {
		o(&cfg)
	}
	traceID := uuid.New().String()
	cfg.logger.Printf("rewrite[%s]: start fields=%d from=%d", traceID, len(stmt.Fields), len(stmt.From))

	sel, err := normalizeSelect(p, stmt, false)
	if err != nil {
		cfg.logger.Printf("rewrite[%s]: failed: %v", traceID, err)
		return nil, err
	}
	uniquifyAliases(sel.Fields)

	q := &influxql.SelectQuery{
		Select:                  sel,
		HasMultipleMeasurements: hasMultipleMeasurements(sel),
	}
	cfg.logger.Printf("rewrite[%s]: done fields=%d from=%d multi=%v", traceID, len(sel.Fields), len(sel.From), q.HasMultipleMeasurements)
	return q, nil
}

// normalizeSelect runs C2 (the feature gate, re-checked at every
// recursion level since a subquery is mapped by invoking this entire
// function again), C3 (FROM resolution, recursing into subqueries),
// the DISTINCT normalization of §4.3, C4/C5 (type evaluation and
// expansion), C6 (pruning) and C7 (time normalization) on a single
// statement level. C8 is deliberately not applied here: only
// Statement's outer call uniquifies aliases.
func normalizeSelect(p schema.Provider, stmt *influxql.SelectStatement, isSubquery bool) (*influxql.Select, error) {
	if err := checkFeatures(stmt); err != nil {
		return nil, err
	}

	from, err := resolveFrom(p, stmt.From)
	if err != nil {
		return nil, err
	}

	sel := &influxql.Select{
		Fields:    normalizeDistinct(stmt.Fields),
		From:      from,
		Condition: stmt.Condition,
		GroupBy:   stmt.GroupBy,
		Fill:      stmt.Fill,
		Ascending: stmt.Ascending,
		Limit:     stmt.Limit,
		Offset:    stmt.Offset,
		Timezone:  stmt.Timezone,
	}

	if err := expand(p, sel); err != nil {
		return nil, err
	}
	prune(p, sel)
	normalizeTimeColumn(sel, isSubquery)
	return sel, nil
}

// hasMultipleMeasurements reports whether sel reaches two or more
// distinct table names transitively through its FROM, descending
// into subqueries.
func hasMultipleMeasurements(sel *influxql.Select) bool {
	names := make(map[string]struct{})
	var walk func(*influxql.Select)
	walk = func(s *influxql.Select) {
		for _, ds := range s.From {
			switch ds := ds.(type) {
			case *influxql.Table:
				names[ds.Name] = struct{}{}
			case *influxql.SubqueryDataSource:
				walk(ds.Select)
			}
		}
	}
	walk(sel)
	return len(names) >= 2
}
