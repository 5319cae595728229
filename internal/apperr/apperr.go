// Package apperr defines the error taxonomy shared by the inventory, order and
// ledger services. Every error carries a machine-readable Kind and a message
// that can be shown to the operator as-is.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for transport status mapping.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindInsufficientStock      Kind = "insufficient_stock"
	KindDuplicateOrInvalidCode Kind = "duplicate_or_invalid_code"
	KindBatchComplete          Kind = "batch_complete"
	KindDefectUnavailable      Kind = "defect_unavailable"
	KindNotFound               Kind = "not_found"
	KindConflict               Kind = "conflict"
	KindPersistence            Kind = "persistence"
	KindInternal               Kind = "internal"
)

// Error is a classified error. Two Errors match under errors.Is when their
// kinds are equal, so the package sentinels can be used as kind probes.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}

	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrInsufficientStock      = &Error{Kind: KindInsufficientStock}
	ErrDuplicateOrInvalidCode = &Error{Kind: KindDuplicateOrInvalidCode}
	ErrBatchComplete          = &Error{Kind: KindBatchComplete}
	ErrDefectUnavailable      = &Error{Kind: KindDefectUnavailable}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrConflict               = &Error{Kind: KindConflict}
	ErrPersistence            = &Error{Kind: KindPersistence}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func DuplicateOrInvalidCode(code string) error {
	return &Error{
		Kind:    KindDuplicateOrInvalidCode,
		Message: fmt.Sprintf("Barcode %q is not expected for this batch or was already admitted", code),
	}
}

func BatchComplete(batchID string) error {
	return &Error{
		Kind:    KindBatchComplete,
		Message: fmt.Sprintf("Batch %s is already fully admitted", batchID),
	}
}

func DefectUnavailable(defectID string) error {
	return &Error{
		Kind:    KindDefectUnavailable,
		Message: fmt.Sprintf("Defective item %s is not available for sale", defectID),
	}
}

// Conflict reports a lost compare-and-swap on the named collection.
func Conflict(collection string) error {
	return &Error{
		Kind:    KindConflict,
		Message: fmt.Sprintf("%s were modified concurrently, retry the operation", collection),
	}
}

// Persistence wraps an I/O or serialization failure of a collection.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return err
	}

	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// InsufficientStock is returned when a line item asks for more units than
// the product has available.
type InsufficientStock struct {
	ProductID string
	Required  int
	Available int
}

func (e *InsufficientStock) Error() string {
	return fmt.Sprintf("Not enough inventory for product %s. Required: %d, Available: %d",
		e.ProductID, e.Required, e.Available)
}

func (e *InsufficientStock) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindInsufficientStock
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var stock *InsufficientStock
	if errors.As(err, &stock) {
		return KindInsufficientStock
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}

	return KindInternal
}

// Message returns the operator-facing text of err.
func Message(err error) string {
	var stock *InsufficientStock
	if errors.As(err, &stock) {
		return stock.Error()
	}

	var ae *Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
	}

	return err.Error()
}
