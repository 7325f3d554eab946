// Package runtime defines the error vocabulary shared by every magicorm layer.
//
// Compilers return these errors synchronously; adapters translate backend-native
// errors into them before they escape to callers.
package runtime

import (
	"errors"
	"fmt"
)

// Schema errors.
var (
	// ErrSchema is the parent of every schema error.
	ErrSchema = errors.New("schema error")

	// ErrDuplicatePrimaryKey is returned when a table declares two primary keys.
	ErrDuplicatePrimaryKey = errors.New("duplicate primary key")

	// ErrAutoincWithoutPrimary is returned when an auto-increment column is not the primary key.
	ErrAutoincWithoutPrimary = errors.New("auto increment column must be the primary key")

	// ErrInvalidType is returned for an unparseable or unknown column type spec.
	ErrInvalidType = errors.New("invalid prop type")

	// ErrInvalidSize is returned for a size token that is not a number or not allowed.
	ErrInvalidSize = errors.New("invalid prop size")

	// ErrPropertyDefined is returned when a descriptor property is set twice.
	ErrPropertyDefined = errors.New("property is already defined")
)

// Backend resolution errors.
var (
	ErrDriverNotFound    = errors.New("driver is not found")
	ErrInvalidDriverName = errors.New("driver name must be a string")
)

// Connection errors.
var (
	ErrUnknownDatabase = errors.New("unknown database")

	// ErrUnconnected is returned when a closed or never-opened connection is used.
	ErrUnconnected = errors.New("the database is not connected, please check the connection status between the machine and the database")
)

// Constraint and usage errors.
var (
	ErrDuplicateKey = errors.New("duplicate value for key")

	ErrInvalidQuery = errors.New("invalid query")

	// ErrKeyMismatch is returned when the keys reported by the backend cannot
	// be matched to the records of an insert batch.
	ErrKeyMismatch = errors.New("inserted keys do not match the batch")

	// ErrEmptyFilter is returned by delete and update when no criteria are given.
	ErrEmptyFilter = errors.New("filter is empty")
)

// SchemaError describes a schema problem on a table or column.
type SchemaError struct {
	Table  string
	Column string
	Cause  error
	Detail string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := e.Cause.Error()
	switch {
	case e.Table != "" && e.Column != "":
		msg = fmt.Sprintf("%s: %s.%s", msg, e.Table, e.Column)
	case e.Table != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Table)
	case e.Column != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Column)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports ErrSchema for every schema error.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// DriverError is returned when a backend identifier cannot be resolved.
type DriverError struct {
	Name  any
	Cause error
}

func (e *DriverError) Error() string {
	if e.Cause == ErrInvalidDriverName {
		return e.Cause.Error()
	}
	return fmt.Sprintf("driver %v is not found", e.Name)
}

func (e *DriverError) Unwrap() error {
	return e.Cause
}

// UnknownDatabaseError carries the database name the backend rejected.
type UnknownDatabaseError struct {
	Database string
}

// Error implements the error interface.
func (e *UnknownDatabaseError) Error() string {
	return fmt.Sprintf("unknown database '%s'", e.Database)
}

// Is checks if the error is ErrUnknownDatabase.
func (e *UnknownDatabaseError) Is(target error) bool {
	return target == ErrUnknownDatabase
}

// DuplicateKeyError is returned when a unique or primary key is violated.
type DuplicateKeyError struct {
	Key   string
	Value any
	Cause error
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("duplicate value for key '%s'", e.Key)
	}
	return fmt.Sprintf("duplicate value '%v' for key '%s'", e.Value, e.Key)
}

// Unwrap returns the backend error that was translated.
func (e *DuplicateKeyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is ErrDuplicateKey.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// UsageError reports a malformed query tree or an unsupported value.
type UsageError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid query: %s", e.Reason)
	}
	return fmt.Sprintf("invalid query at %s: %s", e.Path, e.Reason)
}

// Is checks if the error is ErrInvalidQuery.
func (e *UsageError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// NewUsageError creates a new UsageError.
func NewUsageError(path, format string, args ...any) *UsageError {
	return &UsageError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// IsSchema checks if an error is a schema error.
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsDuplicateKey checks if an error is a duplicate key violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

// IsUnconnected checks if an error reports use of a closed connection.
func IsUnconnected(err error) bool {
	return errors.Is(err, ErrUnconnected)
}

// IsUsage checks if an error is a malformed query error.
func IsUsage(err error) bool {
	return errors.Is(err, ErrInvalidQuery)
}
