package util

import (
	"fmt"
	"path/filepath"

	"github.com/mysqlschema/mysqlschema/internal/ignore"
	"github.com/mysqlschema/mysqlschema/internal/include"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

// LoadIgnoreConfig loads .mysqlschemaignore from the working directory. A missing file yields nil.
func LoadIgnoreConfig() (*ir.IgnoreConfig, error) {
	config, err := ignore.LoadIgnoreFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", ignore.IgnoreFileName, err)
	}
	return config, nil
}

// ReadSchemaFile reads a schema file with its SOURCE includes expanded
func ReadSchemaFile(path string) (string, error) {
	processor := include.NewProcessor(filepath.Dir(path))
	content, err := processor.ProcessFile(path)
	if err != nil {
		return "", err
	}
	return content, nil
}

// LoadSchemaFile reads and parses a schema file, then drops ignored tables and objects
func LoadSchemaFile(path string, ignoreConfig *ir.IgnoreConfig) (*ir.Schema, error) {
	content, err := ReadSchemaFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := ir.ParseSchema(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return ignoreConfig.Filter(schema), nil
}
