package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"devflow/internal/models"
	"devflow/internal/repositories"
	"devflow/internal/validation"
)

// Error types surfaced to callers
const (
	ErrTypeNotFound          = "NOT_FOUND"
	ErrTypeInvalidSearchType = "INVALID_SEARCH_TYPE"
	ErrTypeValidation        = "VALIDATION_ERROR"
	ErrTypeUnauthenticated   = "UNAUTHENTICATED"
	ErrTypeConflict          = "CONFLICT"
	ErrTypeInternal          = "INTERNAL_ERROR"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// WithDetail attaches a detail entry and returns the error
func (e *ServiceError) WithDetail(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidSearchTypeError rejects an unrecognized search kind
func NewInvalidSearchTypeError(kind string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInvalidSearchType,
		Message:    fmt.Sprintf("unsupported search type %q", kind),
		StatusCode: http.StatusBadRequest,
		Details:    map[string]interface{}{"type": kind},
	}
}

// NewUnauthenticatedError is returned when an operation needs a caller identity
func NewUnauthenticatedError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnauthenticated,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError rejects a signed-in caller acting on content they do not
// own. It shares the unauthenticated kind and answers with 403.
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeUnauthenticated,
		Message:    message,
		Code:       "FORBIDDEN",
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeConflict,
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s not found", entityType)).
		WithDetail("resource", entityType).
		WithDetail("id", fmt.Sprint(id))
}

// InvalidInputError creates a standard invalid input error
func InvalidInputError(field, reason string) *ServiceError {
	return NewValidationError(fmt.Sprintf("Invalid input for field '%s': %s", field, reason), nil).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error chain, or wraps the
// error as an internal one
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewInternalError("internal error", err)
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Type == errorType
	}
	return false
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrTypeNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, ErrTypeValidation)
}

// IsUnauthenticatedError checks if an error is an unauthenticated error
func IsUnauthenticatedError(err error) bool {
	return IsErrorType(err, ErrTypeUnauthenticated)
}

// IsInvalidSearchTypeError checks if an error rejects a search kind
func IsInvalidSearchTypeError(err error) bool {
	return IsErrorType(err, ErrTypeInvalidSearchType)
}

// IsExpectedError reports whether err is one of the kinds the presentation
// layer handles inline rather than logging as unexpected
func IsExpectedError(err error) bool {
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		return false
	}
	switch serviceErr.Type {
	case ErrTypeNotFound, ErrTypeValidation, ErrTypeUnauthenticated, ErrTypeInvalidSearchType, ErrTypeConflict:
		return true
	}
	return false
}

// ===============================
// BOUNDARY HELPERS
// ===============================

// parseID decodes an id argument, mapping malformed input to a validation
// error that is distinct from NotFound
func parseID(field, raw string) (models.ID, error) {
	id, err := models.ParseID(raw)
	if err != nil {
		return models.NilID, NewValidationError(fmt.Sprintf("malformed %s", field), err).
			WithDetail("field", field)
	}
	return id, nil
}

// validateRequest runs struct validation and converts field failures into a
// validation error with per-field details
func validateRequest(req interface{}) error {
	fieldErrs, err := validation.ValidateStruct(req)
	if err != nil {
		return NewValidationError("invalid request", err)
	}
	if len(fieldErrs) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field] = fe.Message
	}
	return NewValidationError("validation failed", nil).WithDetail("fields", fields)
}


// storeError maps a Content Store failure onto the service error kinds
func storeError(err error, entity string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return EntityNotFoundError(entity, id)
	case errors.Is(err, repositories.ErrDuplicate):
		return NewConflictError(fmt.Sprintf("%s already exists", entity), "DUPLICATE")
	default:
		return NewInternalError(fmt.Sprintf("failed to access %s", entity), err)
	}
}

// requireAuthor resolves the actor and checks they wrote the content
func requireAuthor(ctx context.Context, users repositories.UserRepository, actorID string, author models.ID, entity string) error {
	actor, err := resolveUser(ctx, users, actorID)
	if err != nil {
		return err
	}
	if actor.ID != author {
		return NewForbiddenError(fmt.Sprintf("only the author can change this %s", entity))
	}
	return nil
}

// resolveUser loads the user behind an identity provider subject
func resolveUser(ctx context.Context, users repositories.UserRepository, clerkID string) (*models.User, error) {
	if clerkID == "" {
		return nil, NewUnauthenticatedError("sign in required")
	}
	user, err := users.GetByClerkID(ctx, clerkID)
	if err != nil {
		return nil, storeError(err, "user", clerkID)
	}
	return user, nil
}
