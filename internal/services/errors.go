// internal/services/errors.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/javajoker/inventory-backend/internal/repository"
	"github.com/javajoker/inventory-backend/internal/utils"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindInsufficientStock  ErrorKind = "insufficient_stock"
	KindConflict           ErrorKind = "conflict"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindInternal           ErrorKind = "internal"
)

// ServiceError is the typed failure returned by every service operation.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Details interface{}
	Err     error
}

// Sentinels for errors.Is; they match any ServiceError of the same kind.
var (
	ErrValidation         = &ServiceError{Kind: KindValidation}
	ErrNotFound           = &ServiceError{Kind: KindNotFound}
	ErrInsufficientStock  = &ServiceError{Kind: KindInsufficientStock}
	ErrConflict           = &ServiceError{Kind: KindConflict}
	ErrStorageUnavailable = &ServiceError{Kind: KindStorageUnavailable}
)

func (e *ServiceError) Error() string {
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

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether repeating the same call may succeed.
func (e *ServiceError) Retryable() bool {
	return e.Kind == KindConflict || e.Kind == KindStorageUnavailable
}

func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable()
}

func validationError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func insufficientStockError(format string, args ...interface{}) error {
	return &ServiceError{Kind: KindInsufficientStock, Message: fmt.Sprintf(format, args...)}
}

// validateRequest runs struct validation and reports field errors as details.
func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return &ServiceError{
			Kind:    KindValidation,
			Message: "validation failed",
			Details: utils.GetValidationErrors(err),
			Err:     err,
		}
	}
	return nil
}

// storeError translates a repository failure; what names the missing entity.
func storeError(err error, what string) error {
	var se *ServiceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return &ServiceError{Kind: KindNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &ServiceError{Kind: KindConflict, Message: what + " was modified concurrently", Err: err}
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return &ServiceError{Kind: KindStorageUnavailable, Message: "storage unavailable", Err: err}
	case errors.Is(err, repository.ErrDuplicate):
		return &ServiceError{Kind: KindValidation, Message: what + " already exists", Err: err}
	}
	return &ServiceError{Kind: KindInternal, Message: "unexpected storage failure", Err: err}
}
