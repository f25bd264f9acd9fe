package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"
	ErrorTypeRateLimited      ErrorType = "RATE_LIMITED"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordTooShort ErrorCode = "PASSWORD_TOO_SHORT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidFilter    ErrorCode = "INVALID_FILTER"
	ErrCodeUnknownPerm      ErrorCode = "UNKNOWN_PERMISSION"
	ErrCodeUnknownRole      ErrorCode = "UNKNOWN_ROLE"
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"

	ErrCodeMissingToken       ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeExpiredToken       ErrorCode = "EXPIRED_TOKEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"

	ErrCodeInsufficientPrivilege ErrorCode = "INSUFFICIENT_PRIVILEGE"

	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeRoleNotFound     ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeRegistrationShut ErrorCode = "REGISTRATION_CLOSED"

	ErrCodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Message keys resolved by pkg/i18n when an error is written to a client.
const (
	MsgValidationError       = "COMMON.VALIDATION_ERROR"
	MsgInvalidBody           = "COMMON.INVALID_BODY"
	MsgAlreadyExist          = "COMMON.ALREADY_EXIST"
	MsgUnknownError          = "COMMON.UNKNOWN_ERROR"
	MsgStoreUnavailable      = "COMMON.STORE_UNAVAILABLE"
	MsgTooManyRequests       = "COMMON.TOO_MANY_REQUESTS"
	MsgFieldMustBeFilled     = "COMMON.FIELD_MUST_BE_FILLED"
	MsgFieldMustBeType       = "COMMON.FIELD_MUST_BE_TYPE"
	MsgFieldMinLength        = "COMMON.FIELD_MIN_LENGTH"
	MsgFieldMaxLength        = "COMMON.FIELD_MAX_LENGTH"
	MsgFieldInvalid          = "COMMON.FIELD_INVALID"
	MsgAuthError             = "USERS.AUTH_ERROR"
	MsgEmailFormatError      = "USERS.EMAIL_FORMAT_ERROR"
	MsgPasswordLengthError   = "USERS.PASSWORD_LENGTH_ERROR"
	MsgUserInactive          = "USERS.INACTIVE"
	MsgUserNotFound          = "USERS.NOT_FOUND"
	MsgRegistrationClosed    = "USERS.REGISTRATION_CLOSED"
	MsgMissingToken          = "AUTH.MISSING_TOKEN"
	MsgInvalidToken          = "AUTH.INVALID_TOKEN"
	MsgExpiredToken          = "AUTH.EXPIRED_TOKEN"
	MsgInsufficientPrivilege = "AUTH.INSUFFICIENT_PRIVILEGE"
	MsgRoleNotFound          = "ROLES.NOT_FOUND"
	MsgUnknownPermission     = "ROLES.UNKNOWN_PERMISSION"
	MsgCategoryNotFound      = "CATEGORIES.NOT_FOUND"
	MsgInvalidAuditFilter    = "AUDIT.INVALID_FILTER"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	MessageKey string      `json:"message_key"`
	Params     []any       `json:"-"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so sentinels compare equal to fresh copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithParams(params ...any) *AppError {
	cp := *e
	cp.Params = params
	return &cp
}

type ValidationError struct {
	Field      string `json:"field"`
	MessageKey string `json:"message_key"`
	Params     []any  `json:"-"`
	Message    string `json:"message"`
	Code       string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func newAppError(t ErrorType, code ErrorCode, key, message string, status int) *AppError {
	return &AppError{
		Type:       t,
		Code:       code,
		MessageKey: key,
		Message:    message,
		StatusCode: status,
	}
}

func NewValidationError(key string, code ErrorCode, message string) *AppError {
	return newAppError(ErrorTypeValidation, code, key, message, http.StatusBadRequest)
}

func NewValidationFieldError(field, key, message string, code ErrorCode, params ...any) *AppError {
	return NewValidationError(MsgValidationError, ErrCodeValidationFailed, "Validation failed").
		WithDetails(ValidationErrors{
			Errors: []ValidationError{
				{Field: field, MessageKey: key, Params: params, Message: message, Code: string(code)},
			},
		})
}

func NewNotFoundError(key string, code ErrorCode, message string) *AppError {
	return newAppError(ErrorTypeNotFound, code, key, message, http.StatusNotFound)
}

func NewUnauthorizedError(key string, code ErrorCode, message string) *AppError {
	return newAppError(ErrorTypeUnauthorized, code, key, message, http.StatusUnauthorized)
}

func NewForbiddenError(key string, code ErrorCode, message string) *AppError {
	return newAppError(ErrorTypeForbidden, code, key, message, http.StatusForbidden)
}

func NewConflictError(key string, code ErrorCode, message string) *AppError {
	return newAppError(ErrorTypeConflict, code, key, message, http.StatusConflict)
}

func NewStoreUnavailableError(cause error) *AppError {
	return newAppError(ErrorTypeStoreUnavailable, ErrCodeStoreUnavailable, MsgStoreUnavailable,
		"Store unavailable", http.StatusServiceUnavailable).WithCause(cause)
}

func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, ErrCodeInternal, MsgUnknownError, message,
		http.StatusInternalServerError).WithCause(cause)
}

var (
	ErrMissingToken          = NewUnauthorizedError(MsgMissingToken, ErrCodeMissingToken, "Missing bearer token")
	ErrInvalidToken          = NewUnauthorizedError(MsgInvalidToken, ErrCodeInvalidToken, "Invalid token")
	ErrExpiredToken          = NewUnauthorizedError(MsgExpiredToken, ErrCodeExpiredToken, "Token has expired")
	ErrInvalidCredentials    = NewUnauthorizedError(MsgAuthError, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUserInactive          = NewUnauthorizedError(MsgUserInactive, ErrCodeUserInactive, "User account is inactive")
	ErrInsufficientPrivilege = NewForbiddenError(MsgInsufficientPrivilege, ErrCodeInsufficientPrivilege, "Insufficient privilege")
	ErrInvalidBody           = NewValidationError(MsgInvalidBody, ErrCodeInvalidBody, "Invalid request body")
	ErrAlreadyExists         = NewConflictError(MsgAlreadyExist, ErrCodeAlreadyExists, "Already exists")
	ErrStoreUnavailable      = NewStoreUnavailableError(nil)
	ErrTooManyRequests       = newAppError(ErrorTypeRateLimited, ErrCodeTooManyRequests, MsgTooManyRequests, "Too many requests", http.StatusTooManyRequests)
	ErrUserNotFound          = NewNotFoundError(MsgUserNotFound, ErrCodeUserNotFound, "User not found")
	ErrRoleNotFound          = NewNotFoundError(MsgRoleNotFound, ErrCodeRoleNotFound, "Role not found")
	ErrCategoryNotFound      = NewNotFoundError(MsgCategoryNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrRegistrationClosed    = NewNotFoundError(MsgRegistrationClosed, ErrCodeRegistrationShut, "Registration is closed")
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// Classify converts any error into an AppError; unknown errors become INTERNAL_ERROR
// with the original kept only as Cause.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Unknown error", err)
}

type Response struct {
	Code  int       `json:"code"`
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Code: e.StatusCode, Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       ErrorType   `json:"type"`
		Code       ErrorCode   `json:"code"`
		MessageKey string      `json:"message_key"`
		Message    string      `json:"message"`
		Details    interface{} `json:"details,omitempty"`
	}{
		Type:       e.Type,
		Code:       e.Code,
		MessageKey: e.MessageKey,
		Message:    e.Message,
		Details:    e.Details,
	})
}
