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
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"
)

// yamlDocument is the on-disk shape of a schema fixture:
//
//	cpu:
//	  tags: [host, region]
//	  fields:
//	    usage_idle: float
//	    usage_user: float
type yamlDocument map[string]yamlTable

type yamlTable struct {
	Tags   []string          `json:"tags"`
	Fields map[string]string `json:"fields"`
}

var fieldTypeNames = map[string]influxql.VarRefType{
	"float":    influxql.Float,
	"integer":  influxql.Integer,
	"int":      influxql.Integer,
	"unsigned": influxql.Unsigned,
	"string":   influxql.String,
	"boolean":  influxql.Boolean,
	"bool":     influxql.Boolean,
}

// FromYAML parses a schema fixture document (see yamlDocument) into a
// Static provider. The document's own key order is not preserved by
// the YAML/JSON round-trip, so TableNames reports measurements in
// lexical order instead; this
// is documented here because it is the one place FromYAML's output
// differs observably from a hand-built Static.
func FromYAML(data []byte) (*Static, error) {
	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parsing fixture: %w", err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	slices.Sort(names)

	s := NewStatic()
	for _, name := range names {
		tbl := doc[name]
		table := make(StaticTable, len(tbl.Tags)+len(tbl.Fields))
		for _, tag := range tbl.Tags {
			table[tag] = Column{Kind: TagColumn}
		}
		for field, typeName := range tbl.Fields {
			vt, ok := fieldTypeNames[typeName]
			if !ok {
				return nil, fmt.Errorf("schema: measurement %q: unknown field type %q", name, typeName)
			}
			table[field] = Column{Kind: FieldColumn, Type: vt}
		}
		s.Put(name, table)
	}
	return s, nil
}
