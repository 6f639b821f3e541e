package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every BusinessError wraps exactly one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConsistencyFault = errors.New("consistency fault")
	ErrDatabase         = errors.New("database error")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodePaymentNotFound   = "PAYMENT_NOT_FOUND"
	ErrCodeEvidenceNotFound  = "EVIDENCE_NOT_FOUND"
	ErrCodeConsistencyFault  = "CONSISTENCY_FAULT"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeEvidenceRequired  = "EVIDENCE_REQUIRED"
	ErrCodeInvalidFileType   = "INVALID_FILE_TYPE"
	ErrCodeBatchRejected     = "BATCH_REJECTED"
	ErrCodeFileTooLarge      = "FILE_TOO_LARGE"
	ErrCodeInvalidListParams = "INVALID_LIST_PARAMS"
)

// kindError carries a detail error while still matching its kind with errors.Is.
type kindError struct {
	kind   error
	detail error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%v: %v", e.kind, e.detail)
}

func (e *kindError) Unwrap() []error {
	return []error{e.kind, e.detail}
}

func withKind(kind, detail error) error {
	if detail == nil {
		return kind
	}
	return &kindError{kind: kind, detail: detail}
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapValidationCode(code, message string) *BusinessError {
	return NewBusinessError(code, message, ErrValidation)
}

func WrapInvalidID(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidID,
		fmt.Sprintf("Invalid ID format: %q", id),
		ErrValidation,
	)
}

func WrapEvidenceRequired(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEvidenceRequired,
		fmt.Sprintf("Cannot mark payment %s as completed without evidence", paymentID),
		ErrValidation,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrNotFound,
	)
}

func WrapEvidenceNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEvidenceNotFound,
		fmt.Sprintf("Evidence for payment %s not found", paymentID),
		ErrNotFound,
	)
}

// WrapConsistencyFault reports a multi-step operation that stopped half way.
// Nothing has been rolled back when this is returned.
func WrapConsistencyFault(message string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConsistencyFault,
		message,
		withKind(ErrConsistencyFault, err),
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		withKind(ErrDatabase, err),
	)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConsistencyFault(err error) bool {
	return errors.Is(err, ErrConsistencyFault)
}

// Code returns the code of the first BusinessError in err's chain, or "".
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
