// Package errors defines the typed error taxonomy surfaced by every layer
// of the tree engine: storage adapters, the node codec, the key encoder,
// and the transaction engine all return errors built from this package so
// that callers can branch on Kind rather than parse messages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error. Callers should branch on Kind via Is or
// KindOf, never on Message, which is free-form and may change.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindAlreadyExists      ErrorKind = "already_exists"
	KindCommitConflict     ErrorKind = "commit_conflict"
	KindNothingToCommit    ErrorKind = "nothing_to_commit"
	KindUninitialized      ErrorKind = "uninitialized"
	KindCorruptNode        ErrorKind = "corrupt_node"
	KindMalformedKey       ErrorKind = "malformed_key"
	KindInvalidName        ErrorKind = "invalid_name"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
)

// Error is the concrete type produced by every constructor in this package.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind. Most callers should prefer one of
// the convenience constructors below.
func New(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Details: map[string]interface{}{}, Cause: cause}
}

// WithDetail attaches a diagnostic key/value pair and returns the receiver
// for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}

// KindOf extracts the ErrorKind from err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

func NotFound(resource, name string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found: %s", resource, name), nil).
		WithDetail("resource", resource).
		WithDetail("name", name)
}

func AlreadyExists(resource, name string) *Error {
	return New(KindAlreadyExists, fmt.Sprintf("%s already exists: %s", resource, name), nil).
		WithDetail("resource", resource).
		WithDetail("name", name)
}

func CommitConflict(version uint64) *Error {
	return New(KindCommitConflict, fmt.Sprintf("root version %d already published", version), nil).
		WithDetail("version", version)
}

func NothingToCommit(txnID string) *Error {
	return New(KindNothingToCommit, fmt.Sprintf("transaction %s has no pending mutations", txnID), nil).
		WithDetail("txn_id", txnID)
}

func Uninitialized() *Error {
	return New(KindUninitialized, "no root found at version 0", nil)
}

func CorruptNode(reason string) *Error {
	return New(KindCorruptNode, reason, nil)
}

func MalformedKey(key, reason string) *Error {
	return New(KindMalformedKey, fmt.Sprintf("malformed key %q: %s", key, reason), nil).
		WithDetail("key", key)
}

func InvalidName(name, reason string) *Error {
	return New(KindInvalidName, fmt.Sprintf("invalid name %q: %s", name, reason), nil).
		WithDetail("name", name)
}

func StorageUnavailable(message string, cause error) *Error {
	return New(KindStorageUnavailable, message, cause)
}
