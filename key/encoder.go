// Package key implements the deterministic mapping between domain names
// (namespace, table) and node keys, parameterized by the lakehouse
// descriptor's separator/prefix choices, and the reserved-key set that can
// never collide with an encoded user name.
package key

import (
	"strings"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/objects"
)

const namespacePrefix = "n"

// Params are the name-encoding parameters pulled off a lakehouse
// descriptor at Encoder construction time.
type Params struct {
	NamespaceSeparator string
	TablePrefix        string
	ReservedPrefix     string
}

// Encoder implements namespaceKey/tableKey and their inverses, classifying
// and decoding keys per spec's key-encoding contract.
type Encoder struct {
	params   Params
	reserved Reserved
}

// NewEncoder builds an Encoder parameterized by def.
func NewEncoder(def *objects.LakehouseDef) *Encoder {
	params := Params{
		NamespaceSeparator: def.NamespaceSeparator,
		TablePrefix:        def.TablePrefix,
		ReservedPrefix:     def.ReservedPrefix,
	}
	return &Encoder{params: params, reserved: NewReserved(params.ReservedPrefix)}
}

// Reserved exposes the encoder's reserved-key set.
func (e *Encoder) Reserved() Reserved {
	return e.reserved
}

// NamespaceKey encodes a namespace name into its node key. Injective:
// distinct validated names always produce distinct keys, since the
// separator cannot appear inside a validated name.
func (e *Encoder) NamespaceKey(name string) (string, error) {
	if err := e.ValidateName(name); err != nil {
		return "", err
	}
	return namespacePrefix + e.params.NamespaceSeparator + name, nil
}

// TableKey encodes a (namespace, table) pair into its node key. Injective
// and disjoint from namespace keys and reserved keys by construction (the
// prefix byte differs from both).
func (e *Encoder) TableKey(namespace, table string) (string, error) {
	if err := e.ValidateName(namespace); err != nil {
		return "", err
	}
	if err := e.ValidateName(table); err != nil {
		return "", err
	}
	return e.params.TablePrefix + namespace + e.params.NamespaceSeparator + table, nil
}

// IsNamespaceKey reports whether k was produced by NamespaceKey.
func (e *Encoder) IsNamespaceKey(k string) bool {
	prefix := namespacePrefix + e.params.NamespaceSeparator
	return strings.HasPrefix(k, prefix) && !e.reserved.IsReserved(k)
}

// IsTableKey reports whether k was produced by TableKey.
func (e *Encoder) IsTableKey(k string) bool {
	return strings.HasPrefix(k, e.params.TablePrefix) && !e.reserved.IsReserved(k)
}

// NamespaceNameFromKey inverts NamespaceKey, failing with
// errors.KindMalformedKey if k is not a namespace key.
func (e *Encoder) NamespaceNameFromKey(k string) (string, error) {
	if !e.IsNamespaceKey(k) {
		return "", errors.MalformedKey(k, "not a namespace key")
	}
	prefix := namespacePrefix + e.params.NamespaceSeparator
	return strings.TrimPrefix(k, prefix), nil
}

// TableNameFromKey inverts TableKey, failing with errors.KindMalformedKey
// if k is not a table key or is missing its namespace/table separator.
func (e *Encoder) TableNameFromKey(k string) (namespace, table string, err error) {
	if !e.IsTableKey(k) {
		return "", "", errors.MalformedKey(k, "not a table key")
	}
	rest := strings.TrimPrefix(k, e.params.TablePrefix)
	idx := strings.Index(rest, e.params.NamespaceSeparator)
	if idx < 0 {
		return "", "", errors.MalformedKey(k, "missing namespace separator")
	}
	return rest[:idx], rest[idx+len(e.params.NamespaceSeparator):], nil
}

// ValidateName rejects names that would make the encoding ambiguous: the
// empty name, and any name containing the namespace separator or the
// reserved prefix byte, since either would let a user name collide with a
// reserved key or break the namespace/table split.
func (e *Encoder) ValidateName(name string) error {
	if name == "" {
		return errors.InvalidName(name, "name cannot be empty")
	}
	if strings.Contains(name, e.params.NamespaceSeparator) {
		return errors.InvalidName(name, "name cannot contain the reserved separator byte")
	}
	if e.params.ReservedPrefix != "" && strings.Contains(name, e.params.ReservedPrefix) {
		return errors.InvalidName(name, "name cannot contain the reserved prefix byte")
	}
	for _, r := range name {
		if r == 0 {
			return errors.InvalidName(name, "name cannot contain null bytes")
		}
	}
	return nil
}
