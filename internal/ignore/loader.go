package ignore

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

const (
	// IgnoreFileName is the default name of the ignore file
	IgnoreFileName = ".mysqlschemaignore"
)

// TomlConfig is the on-disk layout of the ignore file:
//
//	[tables]
//	patterns = ["tmp_*", "!tmp_keep"]
//
//	[triggers]
//	patterns = ["audit_*"]
type TomlConfig struct {
	Tables     PatternConfig `toml:"tables,omitempty"`
	Views      PatternConfig `toml:"views,omitempty"`
	Procedures PatternConfig `toml:"procedures,omitempty"`
	Functions  PatternConfig `toml:"functions,omitempty"`
	Triggers   PatternConfig `toml:"triggers,omitempty"`
	Events     PatternConfig `toml:"events,omitempty"`
}

// PatternConfig holds the glob patterns for one object type
type PatternConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// LoadIgnoreFile loads the .mysqlschemaignore file from the current directory.
// Returns nil if the file doesn't exist (ignore functionality is optional).
func LoadIgnoreFile() (*ir.IgnoreConfig, error) {
	return LoadIgnoreFileFromPath(IgnoreFileName)
}

// LoadIgnoreFileFromPath loads an ignore file from the specified path.
// Returns nil if the file doesn't exist.
func LoadIgnoreFileFromPath(filePath string) (*ir.IgnoreConfig, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var tomlConfig TomlConfig
	meta, err := toml.DecodeFile(filePath, &tomlConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undecoded[0].String(), filePath)
	}

	return tomlConfig.IgnoreConfig(), nil
}

// IgnoreConfig converts the file layout to the matcher used by the comparator
func (c TomlConfig) IgnoreConfig() *ir.IgnoreConfig {
	return &ir.IgnoreConfig{
		Tables:     c.Tables.Patterns,
		Views:      c.Views.Patterns,
		Procedures: c.Procedures.Patterns,
		Functions:  c.Functions.Patterns,
		Triggers:   c.Triggers.Patterns,
		Events:     c.Events.Patterns,
	}
}
