package ir

import "strings"

// ColumnDefinition is one column of a table
type ColumnDefinition struct {
	Name       string `json:"name"`
	Definition string `json:"definition"` // everything after the column name, comments removed and whitespace outside literals collapsed
}

// TableOptions holds the table options that follow the column list.
// They are parsed for reporting only and never produce diff operations.
type TableOptions struct {
	Engine    string   `json:"engine,omitempty"`
	Charset   string   `json:"charset,omitempty"`
	Collation string   `json:"collation,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	Checks    []string `json:"checks,omitempty"` // CHECK constraints, as written
	Raw       string   `json:"raw,omitempty"`
}

// TableDefinition is the parsed form of one CREATE TABLE statement
type TableDefinition struct {
	Name                 string                  `json:"name"`
	Columns              []*ColumnDefinition     `json:"columns"`
	PrimaryKey           []string                `json:"primary_key,omitempty"`
	PrimaryKeyDefinition string                  `json:"primary_key_definition,omitempty"`
	Indexes              []*IndexDefinition      `json:"indexes"` // never contains PRIMARY
	ForeignKeys          []*ForeignKeyDefinition `json:"foreign_keys"`
	Options              TableOptions            `json:"options"`
	Definition           string                  `json:"definition"` // the CREATE TABLE statement
}

// Column returns the column with the given name, or nil. Column names are case-insensitive.
func (t *TableDefinition) Column(name string) *ColumnDefinition {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// Index returns the secondary index with the given name, or nil. Index names are case-insensitive.
func (t *TableDefinition) Index(name string) *IndexDefinition {
	for _, idx := range t.Indexes {
		if strings.EqualFold(idx.Name, name) {
			return idx
		}
	}
	return nil
}

// ForeignKey returns the foreign key with the given name, or nil
func (t *TableDefinition) ForeignKey(name string) *ForeignKeyDefinition {
	for _, fk := range t.ForeignKeys {
		if fk.Name == name {
			return fk
		}
	}
	return nil
}

// ColumnNames returns column names in declaration order
func (t *TableDefinition) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// PrimaryIndex returns the primary key as an index named PRIMARY, or nil when the table has none
func (t *TableDefinition) PrimaryIndex() *IndexDefinition {
	if len(t.PrimaryKey) == 0 {
		return nil
	}
	def := t.PrimaryKeyDefinition
	if def == "" {
		def = "PRIMARY KEY (" + quoteColumnList(t.PrimaryKey) + ")"
	}
	return &IndexDefinition{
		Name:       PrimaryIndexName,
		Columns:    append([]string(nil), t.PrimaryKey...),
		Kind:       IndexKindPrimary,
		Definition: def,
	}
}

// AllIndexes returns the primary index (when present) followed by the secondary indexes
func (t *TableDefinition) AllIndexes() []*IndexDefinition {
	var result []*IndexDefinition
	if pk := t.PrimaryIndex(); pk != nil {
		result = append(result, pk)
	}
	return append(result, t.Indexes...)
}

// ReferencedTables returns the distinct tables referenced by foreign keys, in declaration order
func (t *TableDefinition) ReferencedTables() []string {
	seen := make(map[string]bool)
	var result []string
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == "" || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		result = append(result, fk.RefTable)
	}
	return result
}

func (t *TableDefinition) setColumn(name, definition string) {
	if c := t.Column(name); c != nil {
		c.Definition = definition
		return
	}
	t.Columns = append(t.Columns, &ColumnDefinition{Name: name, Definition: definition})
}
