// Package relerr defines the typed error kinds surfaced by schema inference
// and SQL lowering (§7). Every compilation failure is one of these; none is
// retried or partially recovered from within the core: one struct per kind,
// an Error() method, and a formatted constructor.
package relerr

import "fmt"

// UnknownTableError reports a table name absent from the TableInfoMap.
type UnknownTableError struct{ Message string }

func (e *UnknownTableError) Error() string { return e.Message }

// NewUnknownTable builds an UnknownTableError for table name.
func NewUnknownTable(name string) *UnknownTableError {
	return &UnknownTableError{Message: fmt.Sprintf("unknown table %q", name)}
}

// UnknownColumnError reports a column name absent from an inferred schema.
type UnknownColumnError struct{ Message string }

func (e *UnknownColumnError) Error() string { return e.Message }

// NewUnknownColumn builds an UnknownColumnError naming both the column and
// the operator/context that referenced it.
func NewUnknownColumn(name, context string) *UnknownColumnError {
	return &UnknownColumnError{Message: fmt.Sprintf("unknown column %q in %s", name, context)}
}

// DuplicateColumnError reports an extend or mapColumns id collision.
type DuplicateColumnError struct{ Message string }

func (e *DuplicateColumnError) Error() string { return e.Message }

// NewDuplicateColumn builds a DuplicateColumnError for column id name.
func NewDuplicateColumn(name string) *DuplicateColumnError {
	return &DuplicateColumnError{Message: fmt.Sprintf("duplicate column %q", name)}
}

// SchemaMismatchError reports a concat whose operand schemas disagree.
type SchemaMismatchError struct{ Message string }

func (e *SchemaMismatchError) Error() string { return e.Message }

// NewSchemaMismatch builds a SchemaMismatchError with a free-form reason.
func NewSchemaMismatch(reason string) *SchemaMismatchError {
	return &SchemaMismatchError{Message: fmt.Sprintf("schema mismatch: %s", reason)}
}

// UnsupportedJoinError reports a joinType other than LeftOuter.
type UnsupportedJoinError struct{ Message string }

func (e *UnsupportedJoinError) Error() string { return e.Message }

// NewUnsupportedJoin builds an UnsupportedJoinError for joinType.
func NewUnsupportedJoin(joinType string) *UnsupportedJoinError {
	return &UnsupportedJoinError{Message: fmt.Sprintf("unsupported join type %q", joinType)}
}

// TypeInferenceFailedError reports an extend expression with no explicit
// type and no handled inference form.
type TypeInferenceFailedError struct{ Message string }

func (e *TypeInferenceFailedError) Error() string { return e.Message }

// NewTypeInferenceFailed builds a TypeInferenceFailedError describing expr.
func NewTypeInferenceFailed(expr string) *TypeInferenceFailedError {
	return &TypeInferenceFailedError{Message: fmt.Sprintf("cannot infer type for extend expression: %s", expr)}
}

// InvalidOperatorError is the defensive catch-all for an operator tag with
// no inference or lowering branch. Unreachable if the IR is well-formed.
type InvalidOperatorError struct{ Message string }

func (e *InvalidOperatorError) Error() string { return e.Message }

// NewInvalidOperator builds an InvalidOperatorError for tag.
func NewInvalidOperator(tag string) *InvalidOperatorError {
	return &InvalidOperatorError{Message: fmt.Sprintf("invalid operator %q", tag)}
}
