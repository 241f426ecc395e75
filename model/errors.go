package model

import (
	"errors"
	"fmt"
)

// Sentinel errors, every typed error below unwraps to one of them
var (
	ErrGrammar      = errors.New("grammar error")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrNotFound     = errors.New("not found")
	ErrTypeMismatch = errors.New("type mismatch")
)

// GrammarError is returned when a line cannot be parsed by any record grammar
// or a grammar's required fields are missing or malformed.
type GrammarError struct {
	Line    string // Offending line content
	LineNo  int    // 1-based line number, 0 when unknown
	Message string
	Err     error  // Underlying error, if any
}

func (e *GrammarError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("cannot parse line %d %q: %s", e.LineNo, e.Line, e.Message)
	}
	return fmt.Sprintf("cannot parse line %q: %s", e.Line, e.Message)
}

func (e *GrammarError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGrammar, e.Err}
	}
	return []error{ErrGrammar}
}

// DuplicateIDError is returned when a record with an existing id is inserted
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("already have %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

// NotFoundError is returned when an id does not resolve to a record
type NotFoundError struct {
	ID string
	// Referrer is the id of the record holding the dangling reference, if any.
	Referrer string
}

func (e *NotFoundError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("%s references unknown id %s", e.Referrer, e.ID)
	}
	return fmt.Sprintf("don't contain %s", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// TypeMismatchError is returned when a typed accessor hits another variant
type TypeMismatchError struct {
	ID       string
	Expected Kind
	Actual   Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s is not %s but %s", e.ID, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
