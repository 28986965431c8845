package ir

// ForeignKeyDefinition is a FOREIGN KEY constraint
type ForeignKeyDefinition struct {
	Name       string   `json:"name"`
	Columns    []string `json:"columns"`
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
	OnDelete   string   `json:"on_delete,omitempty"`
	OnUpdate   string   `json:"on_update,omitempty"`
	Definition string   `json:"definition"` // CONSTRAINT `name` FOREIGN KEY ... as written
}
