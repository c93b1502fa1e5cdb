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

package rewrite

import (
	"fmt"

	"github.com/kayagokalp/influxql-rewriter/influxql"
)

// uniquifyAliases is the alias uniquifier (C8). It assigns every
// field a unique output alias, deterministically, based only on the
// left-to-right order of the projection list. Only the outer
// statement's fields are uniquified; subqueries are left untouched
// once built (spec §4.2).
func uniquifyAliases(fields []*influxql.Field) {
	next := make(map[string]int, len(fields))
	used := make(map[string]bool, len(fields))
	for _, f := range fields {
		if _, ok := next[f.Name()]; !ok {
			next[f.Name()] = 0
		}
	}

	for _, f := range fields {
		name := f.Name()
		if !used[name] && next[name] == 0 {
			f.Alias = name
			used[name] = true
			next[name] = 1
			continue
		}
		suf := next[name]
		for {
			candidate := fmt.Sprintf("%s_%d", name, suf)
			if !used[candidate] {
				f.Alias = candidate
				used[candidate] = true
				next[name] = suf + 1
				break
			}
			suf++
		}
	}
}
