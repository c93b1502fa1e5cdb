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

// VarRefType is the resolved type of a VarRef once it has been
// matched against a schema. The zero value, Unknown, means the
// reference could not be resolved against any source in scope.
type VarRefType int

const (
	Unknown VarRefType = iota
	Float
	Integer
	Unsigned
	String
	Boolean
	Tag
	Timestamp
)

func (t VarRefType) String() string {
	switch t {
	case Float:
		return "float"
	case Integer:
		return "integer"
	case Unsigned:
		return "unsigned"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Tag:
		return "tag"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// IsFieldType reports whether t is one of the field (as opposed to
// tag) data types.
func (t VarRefType) IsFieldType() bool {
	switch t {
	case Float, Integer, Unsigned, String, Boolean:
		return true
	default:
		return false
	}
}

// IsTagType reports whether t is the tag data type.
func (t VarRefType) IsTagType() bool {
	return t == Tag
}

// rank defines the total order Float < Integer < Unsigned < String <
// Boolean < Tag < Timestamp used by cross-measurement type merges.
// Unknown sorts after everything so that a known type always wins
// a merge against an unresolved one.
func (t VarRefType) rank() int {
	switch t {
	case Float:
		return 0
	case Integer:
		return 1
	case Unsigned:
		return 2
	case String:
		return 3
	case Boolean:
		return 4
	case Tag:
		return 5
	case Timestamp:
		return 6
	default:
		return 7
	}
}

// Less reports whether t sorts before o in the type merge order.
func (t VarRefType) Less(o VarRefType) bool {
	return t.rank() < o.rank()
}

// MinType returns the "smaller" of a and b under the merge order
// defined above. This reproduces the source behavior exactly,
// including the surprising case where Float wins over Integer.
func MinType(a, b VarRefType) VarRefType {
	if a == Unknown {
		return b
	}
	if b == Unknown {
		return a
	}
	if b.Less(a) {
		return b
	}
	return a
}
