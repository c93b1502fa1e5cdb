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

// Command influxrw loads a YAML schema fixture and an already-parsed
// InfluxQL SELECT (the text parser is out of scope, see spec
// Non-goals), runs it through the rewrite and check pipeline, and
// prints the normalized projection list.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/kayagokalp/influxql-rewriter/check"
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/rewrite"
	"github.com/kayagokalp/influxql-rewriter/rwerr"
	"github.com/kayagokalp/influxql-rewriter/schema"
)

var (
	dashv      bool
	dashh      bool
	schemaPath string
	queryPath  string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&schemaPath, "schema", "", "path to a YAML schema fixture")
	flag.StringVar(&queryPath, "query", "", "path to a JSON-encoded, already-parsed SELECT statement")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: influxrw -schema <fixture.yaml> -query <query.json>\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()
	if dashh || schemaPath == "" || queryPath == "" {
		usage()
		if dashh {
			return
		}
		os.Exit(1)
	}

	traceID := uuid.New().String()
	logger := log.New(os.Stderr, fmt.Sprintf("influxrw[%s] ", traceID), log.LstdFlags)

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		exitf("%s\n", err)
	}
	provider, err := schema.FromYAML(schemaBytes)
	if err != nil {
		exitf("%s\n", err)
	}

	queryBytes, err := os.ReadFile(queryPath)
	if err != nil {
		exitf("%s\n", err)
	}
	stmt, err := decodeStatement(queryBytes)
	if err != nil {
		exitf("%s\n", err)
	}

	var opts []rewrite.Option
	if dashv {
		opts = append(opts, rewrite.WithLogger(logger))
	}

	q, err := rewrite.Statement(provider, stmt, opts...)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	info, err := check.Info(q.Select)
	if err != nil {
		reportError(err)
		os.Exit(1)
	}

	printProjection(q, info)
}

// reportError prints err to stderr, colored by its rwerr category:
// red for a planning error, yellow for not-implemented, magenta for
// an internal error (which should never be user-caused).
func reportError(err error) {
	switch err.(type) {
	case *rwerr.PlanError:
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", err)
	case *rwerr.NotImplementedError:
		color.New(color.FgYellow).Fprintf(os.Stderr, "error: %s\n", err)
	case *rwerr.InternalError:
		color.New(color.FgMagenta).Fprintf(os.Stderr, "error: %s\n", err)
	default:
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
	}
}

func printProjection(q *influxql.SelectQuery, info influxql.SelectStatementInfo) {
	fmt.Printf("projection type: %s\n", info.ProjectionType)
	fmt.Printf("multiple measurements: %v\n", q.HasMultipleMeasurements)

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header([]string{"name", "alias", "type"})
	for _, f := range q.Select.Fields {
		name := f.Name()
		alias := f.Alias
		if alias == "" {
			alias = name
		}
		table.Append([]string{name, alias, fieldType(f)})
	}
	table.Render()
}

// fieldType reports the VarRef type annotated during C4/C5 onto a
// field's top-level VarRef, or onto a top-level call's first argument
// when that is a VarRef, falling back to "unknown" for other shapes
// (e.g. binary expressions).
func fieldType(f *influxql.Field) string {
	if vr, ok := f.Expr.(*influxql.VarRef); ok {
		return vr.Type.String()
	}
	if c, ok := f.Expr.(*influxql.Call); ok && len(c.Args) > 0 {
		if vr, ok := c.Args[0].(*influxql.VarRef); ok {
			return vr.Type.String()
		}
	}
	return "unknown"
}
