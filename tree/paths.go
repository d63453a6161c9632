package tree

import (
	"fmt"

	"github.com/google/uuid"
)

const rootPrefix = "root/"

const versionWidth = 20

// RootPath returns the deterministic path a root node at version is
// published under. Fixed-width zero-padding makes lexicographic listing
// order equal numeric order.
func RootPath(version int64) string {
	return fmt.Sprintf("%s%0*d", rootPrefix, versionWidth, version)
}

// RootPrefix returns the prefix every root path shares, for use with
// storage.Adapter.List.
func RootPrefix() string {
	return rootPrefix
}

// LakehouseDefPath returns a fresh, unique path for a lakehouse descriptor
// blob.
func LakehouseDefPath() string {
	return "lakehouse/" + uuid.New().String()
}

// NamespaceDefPath returns a fresh, unique path for a namespace descriptor
// blob.
func NamespaceDefPath(namespace string) string {
	return "ns/" + namespace + "/" + uuid.New().String()
}

// TableDefPath returns a fresh, unique path for a table descriptor blob.
func TableDefPath(namespace, table string) string {
	return "tbl/" + namespace + "/" + table + "/" + uuid.New().String()
}
