package diff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidOperation is returned when an operation's fields violate its invariants
var ErrInvalidOperation = errors.New("invalid operation")

// OperationType is the kind of change made to a table element
type OperationType string

const (
	OperationAdd    OperationType = "ADD"
	OperationDrop   OperationType = "DROP"
	OperationModify OperationType = "MODIFY"
)

// Target is the table element an operation applies to
type Target string

const (
	TargetColumn     Target = "COLUMN"
	TargetIndex      Target = "INDEX"
	TargetForeignKey Target = "FOREIGN_KEY"
)

// Operation is a single change to a column, index or foreign key of one table.
//
// Operations are immutable and can only be built through NewOperation or the typed
// constructors, which guarantee that ADD and MODIFY carry a definition, DROP does not,
// and MODIFY only applies to columns.
type Operation struct {
	opType     OperationType
	target     Target
	name       string
	tableName  string
	definition string
}

// NewOperation validates and builds an operation
func NewOperation(opType OperationType, target Target, tableName, name, definition string) (Operation, error) {
	switch target {
	case TargetColumn, TargetIndex, TargetForeignKey:
	default:
		return Operation{}, fmt.Errorf("unknown target %q: %w", target, ErrInvalidOperation)
	}
	if name == "" {
		return Operation{}, fmt.Errorf("%s %s without a name: %w", opType, target, ErrInvalidOperation)
	}
	switch opType {
	case OperationAdd:
		if definition == "" {
			return Operation{}, fmt.Errorf("ADD %s %s requires a definition: %w", target, name, ErrInvalidOperation)
		}
	case OperationModify:
		if target != TargetColumn {
			return Operation{}, fmt.Errorf("MODIFY is only valid for columns, got %s %s: %w", target, name, ErrInvalidOperation)
		}
		if definition == "" {
			return Operation{}, fmt.Errorf("MODIFY %s %s requires a definition: %w", target, name, ErrInvalidOperation)
		}
	case OperationDrop:
		if definition != "" {
			return Operation{}, fmt.Errorf("DROP %s %s must not carry a definition: %w", target, name, ErrInvalidOperation)
		}
	default:
		return Operation{}, fmt.Errorf("unknown operation type %q: %w", opType, ErrInvalidOperation)
	}
	return Operation{
		opType:     opType,
		target:     target,
		name:       name,
		tableName:  tableName,
		definition: definition,
	}, nil
}

func mustOperation(opType OperationType, target Target, tableName, name, definition string) Operation {
	op, err := NewOperation(opType, target, tableName, name, definition)
	if err != nil {
		panic(err)
	}
	return op
}

// AddColumn builds ADD COLUMN. It panics on an empty name or definition.
func AddColumn(tableName, name, definition string) Operation {
	return mustOperation(OperationAdd, TargetColumn, tableName, name, definition)
}

// DropColumn builds DROP COLUMN
func DropColumn(tableName, name string) Operation {
	return mustOperation(OperationDrop, TargetColumn, tableName, name, "")
}

// ModifyColumn builds MODIFY COLUMN
func ModifyColumn(tableName, name, definition string) Operation {
	return mustOperation(OperationModify, TargetColumn, tableName, name, definition)
}

// AddIndex builds ADD INDEX; definition is the full declaration such as KEY `idx` (`col`)
func AddIndex(tableName, name, definition string) Operation {
	return mustOperation(OperationAdd, TargetIndex, tableName, name, definition)
}

// DropIndex builds DROP INDEX
func DropIndex(tableName, name string) Operation {
	return mustOperation(OperationDrop, TargetIndex, tableName, name, "")
}

// AddForeignKey builds ADD FOREIGN_KEY; definition is the CONSTRAINT ... FOREIGN KEY text
func AddForeignKey(tableName, name, definition string) Operation {
	return mustOperation(OperationAdd, TargetForeignKey, tableName, name, definition)
}

// DropForeignKey builds DROP FOREIGN_KEY
func DropForeignKey(tableName, name string) Operation {
	return mustOperation(OperationDrop, TargetForeignKey, tableName, name, "")
}

func (o Operation) Type() OperationType { return o.opType }
func (o Operation) Target() Target      { return o.target }
func (o Operation) Name() string        { return o.name }
func (o Operation) TableName() string   { return o.tableName }

// Definition returns the element definition; it is empty for DROP
func (o Operation) Definition() string { return o.definition }

// String renders the operation for logs and plan output
func (o Operation) String() string {
	if o.tableName == "" {
		return fmt.Sprintf("%s %s %s", o.opType, o.target, o.name)
	}
	return fmt.Sprintf("%s %s %s.%s", o.opType, o.target, o.tableName, o.name)
}

type operationJSON struct {
	Type       OperationType `json:"type"`
	Target     Target        `json:"target"`
	Name       string        `json:"name"`
	TableName  string        `json:"tableName,omitempty"`
	Definition string        `json:"definition,omitempty"`
}

// MarshalJSON encodes the operation as {type, target, name, tableName?, definition?}
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(operationJSON{
		Type:       o.opType,
		Target:     o.target,
		Name:       o.name,
		TableName:  o.tableName,
		Definition: o.definition,
	})
}

// UnmarshalJSON decodes and re-validates an operation
func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw operationJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	op, err := NewOperation(raw.Type, raw.Target, raw.TableName, raw.Name, raw.Definition)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
