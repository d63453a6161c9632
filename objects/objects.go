// Package objects holds the descriptor blob payloads referenced from tree
// nodes by path: the lakehouse, namespace, and table definitions. Their
// physical serialization format is explicitly out of scope for the tree
// engine itself (spec §1); this package supplies a minimal JSON
// representation so the engine has something concrete to write and read
// while leaving the door open for a richer external format later.
package objects

import (
	"encoding/json"
	"time"

	"github.com/trinitylake/trinitylake-go/errors"
)

// Default key-encoding parameters, carried on the lakehouse descriptor so
// the Key Encoder is parameterized by it rather than by a global constant.
const (
	DefaultNamespaceSeparator = "\x1f"
	DefaultTablePrefix        = "t\x1f"
	DefaultReservedPrefix     = "\x00"
)

// LakehouseDef is the immutable, once-written descriptor for a lakehouse
// instance. The Key Encoder is parameterized by its separator/prefix
// fields.
type LakehouseDef struct {
	Name               string    `json:"name"`
	NamespaceSeparator string    `json:"namespace_separator"`
	TablePrefix        string    `json:"table_prefix"`
	ReservedPrefix     string    `json:"reserved_prefix"`
	CreatedAt          time.Time `json:"created_at"`
}

// NamespaceDef is the descriptor for a single namespace.
type NamespaceDef struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// TableDef is the descriptor for a single table. DataPath is a pointer to
// physical data managed entirely outside the tree engine (Non-goal: the
// core does not manage table data files).
type TableDef struct {
	Namespace  string            `json:"namespace"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
	DataPath   string            `json:"data_path,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewLakehouseDef builds a descriptor with the module's default
// key-encoding parameters.
func NewLakehouseDef(name string, createdAt time.Time) *LakehouseDef {
	return &LakehouseDef{
		Name:               name,
		NamespaceSeparator: DefaultNamespaceSeparator,
		TablePrefix:        DefaultTablePrefix,
		ReservedPrefix:     DefaultReservedPrefix,
		CreatedAt:          createdAt,
	}
}

// Marshal encodes any descriptor type to its stored byte form.
func Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.StorageUnavailable("failed to marshal descriptor", err)
	}
	return data, nil
}

// UnmarshalLakehouseDef decodes a stored lakehouse descriptor blob.
func UnmarshalLakehouseDef(data []byte) (*LakehouseDef, error) {
	var def LakehouseDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.CorruptNode("failed to unmarshal lakehouse descriptor")
	}
	return &def, nil
}

// UnmarshalNamespaceDef decodes a stored namespace descriptor blob.
func UnmarshalNamespaceDef(data []byte) (*NamespaceDef, error) {
	var def NamespaceDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.CorruptNode("failed to unmarshal namespace descriptor")
	}
	return &def, nil
}

// UnmarshalTableDef decodes a stored table descriptor blob.
func UnmarshalTableDef(data []byte) (*TableDef, error) {
	var def TableDef
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.CorruptNode("failed to unmarshal table descriptor")
	}
	return &def, nil
}
