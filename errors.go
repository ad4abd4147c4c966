package selq

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTableName = errors.New("table name is empty")
	ErrEmptyColumn    = errors.New("column name is empty")
	ErrInvalidColumn  = errors.New("column is not a valid identifier")
	ErrInvalidAlias   = errors.New("alias is not a valid identifier")
	ErrSelectParam    = errors.New("select expressions cannot contain placeholders")

	ErrUnknownOperator  = errors.New("operator is not in the comparison safelist")
	ErrInvalidDirection = errors.New("order direction must be ASC or DESC")
	ErrNegativeLimit    = errors.New("limit must not be negative")
	ErrEmptyInList      = errors.New("IN requires at least one value")

	ErrUnknownTable  = errors.New("table not found in schema")
	ErrUnknownColumn = errors.New("column not found in schema")

	ErrNoRows = errors.New("fetch resulted in no rows")
)

// ErrInvalidTableName occurs when a string provided cannot be used as a table name.
type ErrInvalidTableName struct {
	Name string
}

func (e ErrInvalidTableName) Error() string {
	return fmt.Sprintf(`"%s" is not a valid table name`, e.Name)
}

// ValidationError is recorded by the setter that received bad input. The offending clause is
// never applied, so no SQL is generated from it.
type ValidationError struct {
	Clause string
	Value  any
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Clause, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(clause string, value any, err error) *ValidationError {
	return &ValidationError{Clause: clause, Value: value, Err: err}
}

// CompilationError means the clause state could not be rendered.
type CompilationError struct {
	Reason string
}

func (e *CompilationError) Error() string {
	return "cannot compile query: " + e.Reason
}

// ExecutionError carries a failure reported by an Executor together with the statement that
// caused it. Unwrap returns the driver error unmodified.
type ExecutionError struct {
	Query string
	Args  []any
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %q: %v", e.Query, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ScanError occurs when a row value cannot be assigned to the destination struct field.
type ScanError struct {
	Column string
	Field  string
	Value  any
}

func (e ScanError) Error() string {
	return fmt.Sprintf(`column "%s" value of type %T cannot be assigned to field %s`, e.Column, e.Value, e.Field)
}
