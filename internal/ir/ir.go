package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateObject is returned when a DDL blob declares the same table or object twice
var ErrDuplicateObject = errors.New("duplicate object definition")

// ObjectType identifies a non-table schema object
type ObjectType string

const (
	ObjectTypeView      ObjectType = "VIEW"
	ObjectTypeProcedure ObjectType = "PROCEDURE"
	ObjectTypeFunction  ObjectType = "FUNCTION"
	ObjectTypeTrigger   ObjectType = "TRIGGER"
	ObjectTypeEvent     ObjectType = "EVENT"
)

// ObjectTypes lists the object types in the order they are dumped and introspected
func ObjectTypes() []ObjectType {
	return []ObjectType{
		ObjectTypeView,
		ObjectTypeProcedure,
		ObjectTypeFunction,
		ObjectTypeTrigger,
		ObjectTypeEvent,
	}
}

// ParseObjectType converts a user supplied type name (any case) to an ObjectType
func ParseObjectType(s string) (ObjectType, bool) {
	t := ObjectType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ObjectTypes() {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// IsRoutine reports whether objects of this type carry a BEGIN...END style body
func (t ObjectType) IsRoutine() bool {
	switch t {
	case ObjectTypeProcedure, ObjectTypeFunction, ObjectTypeTrigger, ObjectTypeEvent:
		return true
	}
	return false
}

// ObjectDefinition is a view, routine, trigger or event as written in DDL
type ObjectDefinition struct {
	Type       ObjectType `json:"type"`
	Name       string     `json:"name"`
	Definition string     `json:"definition"` // full CREATE statement without the terminator
}

// Schema holds every table and object parsed from one DDL source, in declaration order
type Schema struct {
	Tables  []*TableDefinition  `json:"tables"`
	Objects []*ObjectDefinition `json:"objects"`
}

// NewSchema creates an empty schema
func NewSchema() *Schema {
	return &Schema{
		Tables:  []*TableDefinition{},
		Objects: []*ObjectDefinition{},
	}
}

// Table returns the table with the given name, or nil
func (s *Schema) Table(name string) *TableDefinition {
	if s == nil {
		return nil
	}
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Object returns the object with the given type and name, or nil
func (s *Schema) Object(objType ObjectType, name string) *ObjectDefinition {
	if s == nil {
		return nil
	}
	for _, o := range s.Objects {
		if o.Type == objType && o.Name == name {
			return o
		}
	}
	return nil
}

// ObjectsOfType returns the objects of one type in declaration order
func (s *Schema) ObjectsOfType(objType ObjectType) []*ObjectDefinition {
	var result []*ObjectDefinition
	for _, o := range s.Objects {
		if o.Type == objType {
			result = append(result, o)
		}
	}
	return result
}

// AddTable appends a table, rejecting duplicate names
func (s *Schema) AddTable(t *TableDefinition) error {
	if s.Table(t.Name) != nil {
		return fmt.Errorf("table %s: %w", t.Name, ErrDuplicateObject)
	}
	s.Tables = append(s.Tables, t)
	return nil
}

// AddObject appends an object, rejecting duplicate (type, name) pairs
func (s *Schema) AddObject(o *ObjectDefinition) error {
	if s.Object(o.Type, o.Name) != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(string(o.Type)), o.Name, ErrDuplicateObject)
	}
	s.Objects = append(s.Objects, o)
	return nil
}
