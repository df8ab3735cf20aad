package apperror

import (
	"errors"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target carries the same reason. Errors without a
// reason only match themselves.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	if e.Reason == "" || t.Reason == "" {
		return e == t
	}
	return e.Reason == t.Reason
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithField returns a copy of e with a field error attached.
func (e *AppError) WithField(field, message string) *AppError {
	cp := *e
	cp.Errors = append(append([]FieldError(nil), e.Errors...), FieldError{Field: field, Message: message})
	return &cp
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Message: "Resource not found", Reason: "not_found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized", Reason: "unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Message: "Forbidden", Reason: "forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Message: "Bad request", Reason: "bad_request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error", Reason: "internal"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Message: "Resource already exists", Reason: "conflict"}
	ErrUnprocessable  = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity", Reason: "unprocessable"}
)

// Billing errors. All of them are recoverable validation failures.
var (
	ErrInsufficientStock       = &AppError{Code: http.StatusConflict, Message: "Quantity exceeds available stock", Reason: "insufficient_stock"}
	ErrDiscountExceedsPolicy   = &AppError{Code: http.StatusUnprocessableEntity, Message: "Discount exceeds the maximum allowed percentage", Reason: "discount_exceeds_policy"}
	ErrDiscountExceedsSubtotal = &AppError{Code: http.StatusUnprocessableEntity, Message: "Discount exceeds the bill subtotal", Reason: "discount_exceeds_subtotal"}
	ErrInsufficientPayment     = &AppError{Code: http.StatusUnprocessableEntity, Message: "Amount tendered is less than the bill total", Reason: "insufficient_payment"}
	ErrEmptyBill               = &AppError{Code: http.StatusUnprocessableEntity, Message: "Bill has no items", Reason: "empty_bill"}
	ErrBillNotEmpty            = &AppError{Code: http.StatusConflict, Message: "Active bill must be empty before resuming a held bill", Reason: "bill_not_empty"}
	ErrInvalidQuantity         = &AppError{Code: http.StatusUnprocessableEntity, Message: "Quantity must be a positive number", Reason: "invalid_quantity"}
	ErrInvalidPrice            = &AppError{Code: http.StatusUnprocessableEntity, Message: "Price must not be negative", Reason: "invalid_price"}
	ErrInvalidDiscount         = &AppError{Code: http.StatusUnprocessableEntity, Message: "Discount must not be negative", Reason: "invalid_discount"}
	ErrBillFinalized           = &AppError{Code: http.StatusConflict, Message: "Bill has already been checked out", Reason: "bill_finalized"}
	ErrProductExpired          = &AppError{Code: http.StatusUnprocessableEntity, Message: "Batch is past its expiry date", Reason: "product_expired"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Reason:  "validation",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return ErrNotFound.WithMessage(resource + " not found")
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return ErrConflict.WithMessage(message)
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
