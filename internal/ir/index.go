package ir

import "strings"

// PrimaryIndexName is the name MySQL gives the primary key index
const PrimaryIndexName = "PRIMARY"

// IndexKind is the structural kind of an index
type IndexKind string

const (
	IndexKindIndex    IndexKind = "INDEX"
	IndexKindUnique   IndexKind = "UNIQUE"
	IndexKindFulltext IndexKind = "FULLTEXT"
	IndexKindSpatial  IndexKind = "SPATIAL"
	IndexKindPrimary  IndexKind = "PRIMARY"
)

// IndexDefinition is a primary, unique, fulltext, spatial or plain index
type IndexDefinition struct {
	Name       string    `json:"name"`
	Columns    []string  `json:"columns"` // unquoted, with prefix length and DESC when present
	Kind       IndexKind `json:"kind"`
	Method     string    `json:"method,omitempty"` // BTREE, HASH or empty
	Definition string    `json:"definition"`
}

// SameStructure reports whether two indexes have the same kind and column list.
// The storage method is deliberately not part of the comparison.
func (i *IndexDefinition) SameStructure(other *IndexDefinition) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.Kind != other.Kind || len(i.Columns) != len(other.Columns) {
		return false
	}
	for n := range i.Columns {
		if !strings.EqualFold(i.Columns[n], other.Columns[n]) {
			return false
		}
	}
	return true
}
