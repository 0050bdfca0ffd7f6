package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Sentinels for errors.Is; each typed error below matches one of them.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("order already completed")
	ErrInvalidState     = errors.New("invalid order state")
	ErrAtomicity        = errors.New("atomic write failed")
)

// ValidationError is returned before any write when input is missing or
// malformed. Fields maps field names to the failed rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Entity, e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyCompletedError reports a duplicate completion. State is unchanged and
// callers may treat it as a no-op.
type AlreadyCompletedError struct {
	OrderID uuid.UUID
}

func (e *AlreadyCompletedError) Error() string {
	return fmt.Sprintf("order %s already completed", e.OrderID)
}

func (e *AlreadyCompletedError) Is(target error) bool { return target == ErrAlreadyCompleted }

// InvalidStateError reports an operation not allowed from the order's status.
type InvalidStateError struct {
	OrderID uuid.UUID
	Status  string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("order %s is %s", e.OrderID, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// AtomicityError wraps a store failure while applying a batch. Nothing from
// the batch is visible; it is the only retryable error.
type AtomicityError struct {
	Op  string
	Err error
}

func (e *AtomicityError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *AtomicityError) Unwrap() error { return e.Err }

func (e *AtomicityError) Is(target error) bool { return target == ErrAtomicity }

// fieldErrors accumulates validation failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field, rule string) {
	if _, ok := f[field]; !ok {
		f[field] = rule
	}
}

func (f fieldErrors) merge(other map[string]string) {
	for k, v := range other {
		f.add(k, v)
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
