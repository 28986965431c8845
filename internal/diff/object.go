package diff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidObjectDiff is returned when an object diff's fields violate its invariants
var ErrInvalidObjectDiff = errors.New("invalid object diff")

// ObjectType is the kind of non-table object
type ObjectType string

const (
	ObjectView      ObjectType = "VIEW"
	ObjectProcedure ObjectType = "PROCEDURE"
	ObjectFunction  ObjectType = "FUNCTION"
	ObjectTrigger   ObjectType = "TRIGGER"
	ObjectEvent     ObjectType = "EVENT"
)

// ObjectOperation is what happens to a non-table object
type ObjectOperation string

const (
	ObjectCreate  ObjectOperation = "CREATE"
	ObjectDrop    ObjectOperation = "DROP"
	ObjectReplace ObjectOperation = "REPLACE"
)

// ObjectDiff is a change to a view, procedure, function, trigger or event.
// CREATE and REPLACE carry the desired definition, DROP carries none.
type ObjectDiff struct {
	objType    ObjectType
	name       string
	operation  ObjectOperation
	definition string
}

// NewObjectDiff validates and builds an object diff
func NewObjectDiff(objType ObjectType, name string, operation ObjectOperation, definition string) (ObjectDiff, error) {
	switch objType {
	case ObjectView, ObjectProcedure, ObjectFunction, ObjectTrigger, ObjectEvent:
	default:
		return ObjectDiff{}, fmt.Errorf("unknown object type %q: %w", objType, ErrInvalidObjectDiff)
	}
	if name == "" {
		return ObjectDiff{}, fmt.Errorf("%s %s without a name: %w", operation, objType, ErrInvalidObjectDiff)
	}
	switch operation {
	case ObjectCreate, ObjectReplace:
		if definition == "" {
			return ObjectDiff{}, fmt.Errorf("%s %s %s requires a definition: %w", operation, objType, name, ErrInvalidObjectDiff)
		}
	case ObjectDrop:
		if definition != "" {
			return ObjectDiff{}, fmt.Errorf("DROP %s %s must not carry a definition: %w", objType, name, ErrInvalidObjectDiff)
		}
	default:
		return ObjectDiff{}, fmt.Errorf("unknown object operation %q: %w", operation, ErrInvalidObjectDiff)
	}
	return ObjectDiff{objType: objType, name: name, operation: operation, definition: definition}, nil
}

func mustObjectDiff(objType ObjectType, name string, operation ObjectOperation, definition string) ObjectDiff {
	od, err := NewObjectDiff(objType, name, operation, definition)
	if err != nil {
		panic(err)
	}
	return od
}

// CreateObject builds a CREATE diff
func CreateObject(objType ObjectType, name, definition string) ObjectDiff {
	return mustObjectDiff(objType, name, ObjectCreate, definition)
}

// DropObject builds a DROP diff
func DropObject(objType ObjectType, name string) ObjectDiff {
	return mustObjectDiff(objType, name, ObjectDrop, "")
}

// ReplaceObject builds a REPLACE diff
func ReplaceObject(objType ObjectType, name, definition string) ObjectDiff {
	return mustObjectDiff(objType, name, ObjectReplace, definition)
}

func (d ObjectDiff) Type() ObjectType           { return d.objType }
func (d ObjectDiff) Name() string               { return d.name }
func (d ObjectDiff) Operation() ObjectOperation { return d.operation }
func (d ObjectDiff) Definition() string         { return d.definition }

type objectDiffJSON struct {
	Type       ObjectType      `json:"type"`
	Name       string          `json:"name"`
	Operation  ObjectOperation `json:"operation"`
	Definition string          `json:"definition,omitempty"`
}

func (d ObjectDiff) MarshalJSON() ([]byte, error) {
	return json.Marshal(objectDiffJSON{
		Type:       d.objType,
		Name:       d.name,
		Operation:  d.operation,
		Definition: d.definition,
	})
}

func (d *ObjectDiff) UnmarshalJSON(data []byte) error {
	var raw objectDiffJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	od, err := NewObjectDiff(raw.Type, raw.Name, raw.Operation, raw.Definition)
	if err != nil {
		return err
	}
	*d = od
	return nil
}
