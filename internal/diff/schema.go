package diff

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TableDiff is the ordered list of operations that turns one table into another
type TableDiff struct {
	TableName  string
	Operations []Operation
}

// HasChanges reports whether the diff contains any operation
func (d *TableDiff) HasChanges() bool {
	return d != nil && len(d.Operations) > 0
}

type tableDiffJSON struct {
	TableName  string      `json:"tableName"`
	HasChanges bool        `json:"hasChanges"`
	Operations []Operation `json:"operations"`
}

func (d TableDiff) MarshalJSON() ([]byte, error) {
	ops := d.Operations
	if ops == nil {
		ops = []Operation{}
	}
	return json.Marshal(tableDiffJSON{
		TableName:  d.TableName,
		HasChanges: len(ops) > 0,
		Operations: ops,
	})
}

func (d *TableDiff) UnmarshalJSON(data []byte) error {
	var raw tableDiffJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.TableName = raw.TableName
	d.Operations = raw.Operations
	return nil
}

// CreatedTable is a table that only exists in the desired schema
type CreatedTable struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Summary counts the changes in a schema diff
type Summary struct {
	TotalChanges   int `json:"totalChanges"`
	TablesChanged  int `json:"tablesChanged"`
	ObjectsChanged int `json:"objectsChanged"`
}

// SchemaDiff is the complete difference between two schemas
type SchemaDiff struct {
	Summary       Summary
	Tables        []*TableDiff // tables present on both sides that changed, in desired order
	DroppedTables []string
	CreatedTables []CreatedTable
	Objects       []ObjectDiff
}

// Table returns the diff for the named table, or nil
func (d *SchemaDiff) Table(name string) *TableDiff {
	for _, t := range d.Tables {
		if t.TableName == name {
			return t
		}
	}
	return nil
}

// HasChanges reports whether applying the diff would change anything
func (d *SchemaDiff) HasChanges() bool {
	return d.computeSummary().TotalChanges > 0
}

// UpdateSummary recomputes Summary from the diff contents
func (d *SchemaDiff) UpdateSummary() {
	d.Summary = d.computeSummary()
}

func (d *SchemaDiff) computeSummary() Summary {
	var s Summary
	for _, t := range d.Tables {
		if t.HasChanges() {
			s.TablesChanged++
			s.TotalChanges += len(t.Operations)
		}
	}
	s.TablesChanged += len(d.DroppedTables) + len(d.CreatedTables)
	s.ObjectsChanged = len(d.Objects)
	s.TotalChanges += len(d.DroppedTables) + len(d.CreatedTables) + len(d.Objects)
	return s
}

// MarshalJSON encodes tables as an object keyed by table name, keeping diff order
func (d SchemaDiff) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"summary":`)
	if err := writeJSON(&buf, d.Summary); err != nil {
		return nil, err
	}

	buf.WriteString(`,"tables":{`)
	for i, t := range d.Tables {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, t.TableName); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, t); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	fields := []struct {
		key   string
		value any
	}{
		{"droppedTables", nonNil(d.DroppedTables)},
		{"createdTables", nonNil(d.CreatedTables)},
		{"objects", nonNil(d.Objects)},
	}
	for _, f := range fields {
		fmt.Fprintf(&buf, `,%q:`, f.key)
		if err := writeJSON(&buf, f.value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a schema diff, preserving the order of the tables object
func (d *SchemaDiff) UnmarshalJSON(data []byte) error {
	var raw struct {
		Summary       Summary         `json:"summary"`
		Tables        json.RawMessage `json:"tables"`
		DroppedTables []string        `json:"droppedTables"`
		CreatedTables []CreatedTable  `json:"createdTables"`
		Objects       []ObjectDiff    `json:"objects"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	tables, err := decodeOrderedTables(raw.Tables)
	if err != nil {
		return fmt.Errorf("failed to decode tables: %w", err)
	}

	*d = SchemaDiff{
		Summary:       raw.Summary,
		Tables:        tables,
		DroppedTables: raw.DroppedTables,
		CreatedTables: raw.CreatedTables,
		Objects:       raw.Objects,
	}
	return nil
}

func decodeOrderedTables(data json.RawMessage) ([]*TableDiff, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var tables []*TableDiff
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		td := &TableDiff{}
		if err := dec.Decode(td); err != nil {
			return nil, err
		}
		if td.TableName == "" {
			td.TableName = key
		}
		tables = append(tables, td)
	}
	return tables, nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
