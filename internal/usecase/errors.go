package usecase

import (
	"errors"
	"fmt"
	"strings"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/utils"
)

var (
	ErrValidation                 = errors.New("validation failed")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrForbidden                  = errors.New("forbidden")
	ErrConflict                   = errors.New("conflict")
	ErrUserNotFound               = errors.New("user not found")
	ErrListingNotFound            = errors.New("listing not found")
	ErrBookingNotFound            = errors.New("booking not found")
	ErrDocumentNotFound           = errors.New("document not found")
	ErrDocumentsRequired          = errors.New("documents required")
	ErrInvalidState               = errors.New("invalid state")
	ErrHoldUnavailable            = errors.New("payment hold already resolved")
	ErrBookingBusy                = errors.New("booking is being resolved")
	ErrPaymentAuthorizationFailed = errors.New("payment authorization failed")
	ErrPaymentOperationFailed     = errors.New("payment operation failed")
)

// ValidationError carries per-field messages
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", utils.FormatValidationErrors(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DocumentsRequiredError lists the document types blocking a transition
type DocumentsRequiredError struct {
	Phase   entity.DeadlinePhase
	Missing []string
}

func (e *DocumentsRequiredError) Error() string {
	return fmt.Sprintf("documents required (%s): %s", e.Phase, strings.Join(e.Missing, ", "))
}

func (e *DocumentsRequiredError) Unwrap() error {
	return ErrDocumentsRequired
}
