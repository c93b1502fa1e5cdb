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

// Package rwerr defines the error taxonomy surfaced by the rewrite
// and check packages: planning errors (user input is semantically
// invalid), not-implemented errors (a recognized but unsupported
// construct) and internal errors (an upstream invariant was
// violated). See spec §7.
package rwerr

import (
	"fmt"

	"github.com/kayagokalp/influxql-rewriter/influxql"
)

// PlanError is returned when a user's query is semantically invalid.
// Its Error() text is stable and pinned by tests; callers should not
// reformat it.
type PlanError struct {
	In  influxql.Node
	Msg string
}

func (e *PlanError) Error() string { return e.Msg }

// NotImplementedError is returned for a recognized but unsupported
// InfluxQL construct, such as SLIMIT/SOFFSET or count_hll().
type NotImplementedError struct {
	Feature string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s", e.Feature)
}

// InternalError signals that an upstream invariant was violated
// (e.g. a bind parameter or a stray wildcard reaching the field
// checker). It should not be reachable on well-formed input.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Msg)
}

// Planf builds a *PlanError with a formatted message, optionally
// associated with the offending node.
func Planf(in influxql.Node, format string, args ...any) error {
	return &PlanError{In: in, Msg: fmt.Sprintf(format, args...)}
}

// NotImplemented builds a *NotImplementedError naming feature.
func NotImplemented(feature string) error {
	return &NotImplementedError{Feature: feature}
}

// Internalf builds an *InternalError with a formatted message.
func Internalf(format string, args ...any) error {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
