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

package schema

import (
	"fmt"

	"github.com/kayagokalp/influxql-rewriter/influxql"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/exp/slices"
)

// Fingerprint is a content hash of every table/column/type triple a
// Provider currently exposes. The plancache package uses it as part
// of a cache key so that a schema change invalidates stale cache
// entries without requiring an explicit bust.
type Fingerprint [blake2b.Size256]byte

func (f Fingerprint) String() string {
	return fmt.Sprintf("%x", f[:8])
}

// FingerprintOf computes a deterministic content hash over p's current
// tables, columns and column types. Two providers with the same
// tables/columns/types produce the same Fingerprint regardless of
// TableNames order, since the triples are sorted before hashing.
func FingerprintOf(p Provider) (Fingerprint, error) {
	type triple struct {
		table, column string
		kind          ColumnKind
		typ           influxql.VarRefType
	}
	var triples []triple
	for _, name := range p.TableNames() {
		t, ok := p.TableSchema(name)
		if !ok {
			continue
		}
		for col, c := range t.Columns() {
			triples = append(triples, triple{name, col, c.Kind, c.Type})
		}
	}
	slices.SortFunc(triples, func(a, b triple) bool {
		if a.table != b.table {
			return a.table < b.table
		}
		return a.column < b.column
	})

	h, err := blake2b.New256(nil)
	if err != nil {
		return Fingerprint{}, err
	}
	for _, t := range triples {
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d\x00", t.table, t.column, t.kind, t.typ)
	}

	var out Fingerprint
	copy(out[:], h.Sum(nil))
	return out, nil
}
