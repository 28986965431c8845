package fingerprint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mysqlschema/mysqlschema/internal/ir"
)

// SchemaFingerprint identifies the state of a database schema at plan time
type SchemaFingerprint struct {
	Hash string `json:"hash"` // SHA256 of the canonical schema
}

// canonicalSchema is what gets hashed: declaration order and definer noise removed
type canonicalSchema struct {
	Tables  []*ir.TableDefinition `json:"tables"`
	Objects []canonicalObject     `json:"objects"`
}

type canonicalObject struct {
	Type       ir.ObjectType `json:"type"`
	Name       string        `json:"name"`
	Definition string        `json:"definition"`
}

// ComputeFingerprint hashes a schema. Two schemas that differ only in the order
// tables and objects were listed, or in DEFINER clauses, share a fingerprint.
func ComputeFingerprint(schema *ir.Schema) (*SchemaFingerprint, error) {
	if schema == nil {
		schema = ir.NewSchema()
	}

	canonical := canonicalSchema{
		Tables:  append([]*ir.TableDefinition(nil), schema.Tables...),
		Objects: make([]canonicalObject, 0, len(schema.Objects)),
	}
	sort.Slice(canonical.Tables, func(i, j int) bool {
		return canonical.Tables[i].Name < canonical.Tables[j].Name
	})
	for _, obj := range schema.Objects {
		canonical.Objects = append(canonical.Objects, canonicalObject{
			Type:       obj.Type,
			Name:       obj.Name,
			Definition: ir.NormalizeObjectDefinition(obj.Definition),
		})
	}
	sort.Slice(canonical.Objects, func(i, j int) bool {
		a, b := canonical.Objects[i], canonical.Objects[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Name < b.Name
	})

	hash, err := hashObject(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to compute schema hash: %w", err)
	}
	return &SchemaFingerprint{Hash: hash}, nil
}

// hashObject computes a SHA256 hash of any object
func hashObject(obj any) (string, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// String returns a human-readable representation of the fingerprint
func (f *SchemaFingerprint) String() string {
	if len(f.Hash) >= 8 {
		return fmt.Sprintf("Schema fingerprint: %s", f.Hash[:8])
	}
	return fmt.Sprintf("Schema fingerprint: %s", f.Hash)
}
