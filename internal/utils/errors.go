package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Custom error types
var (
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when there's a conflict with existing data
	ErrConflict = errors.New("conflict")

	// ErrDatabase is returned when there's a database operation error
	ErrDatabase = errors.New("database error")

	// ErrConfig is returned when required configuration is missing or unusable
	ErrConfig = errors.New("configuration error")

	// ErrRemote is returned when a call to the remote database endpoint fails
	ErrRemote = errors.New("remote error")

	// ErrMigration is returned when a migration file could not be applied
	ErrMigration = errors.New("migration failed")
)

// SQLSTATE codes reported when an object being created already exists.
const (
	sqlStateDuplicateTable  = "42P07"
	sqlStateDuplicateObject = "42710"
)

// ValidationError represents an error that occurs during input validation
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ConflictError represents an error when there's a conflict with existing data
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("%s already exists with %s='%s'", e.Resource, e.Field, e.Value)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// DatabaseError represents an error that occurs during database operations
type DatabaseError struct {
	Operation string
	Cause     error
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("database error during %s", e.Operation)
}

func (e *DatabaseError) Unwrap() error {
	return ErrDatabase
}

// ConfigError represents a missing or invalid configuration value.
// It is always fatal for the command line tools.
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error on '%s': %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfig
}

// RemoteError represents a failed call against the remote database endpoint.
// Code carries the PostgREST or SQLSTATE code when the server reported one.
type RemoteError struct {
	Operation string
	Status    int
	Code      string
	Message   string
	Hint      string
	Cause     error
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	b.WriteString("remote ")
	b.WriteString(e.Operation)
	b.WriteString(" failed")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Cause != nil:
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *RemoteError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrRemote, e.Cause}
	}
	return []error{ErrRemote}
}

// MigrationError is returned when a migration file fails. DashboardURL points
// at the hosted SQL editor where the operator can apply the file by hand.
type MigrationError struct {
	File         string
	DashboardURL string
	Cause        error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed: %v", e.File, e.Cause)
}

func (e *MigrationError) Unwrap() []error {
	return []error{ErrMigration, e.Cause}
}

// Error wrapping functions

// WrapValidationError wraps an error as a validation error
func WrapValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// WrapNotFoundError wraps an error as a not found error
func WrapNotFoundError(resource, id string) error {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// WrapConflictError wraps an error as a conflict error
func WrapConflictError(resource, field, value string) error {
	return &ConflictError{
		Resource: resource,
		Field:    field,
		Value:    value,
	}
}

// WrapDatabaseError wraps an error as a database error
func WrapDatabaseError(operation string, cause error) error {
	return &DatabaseError{
		Operation: operation,
		Cause:     cause,
	}
}

// WrapConfigError builds a configuration error for the given key
func WrapConfigError(key, message string) error {
	return &ConfigError{
		Key:     key,
		Message: message,
	}
}

// Error checking functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsDatabaseError checks if an error is a database error
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}

// IsRemoteError checks if an error came from the remote endpoint
func IsRemoteError(err error) bool {
	return errors.Is(err, ErrRemote)
}

// IsMigrationError checks if an error is a fatal migration failure
func IsMigrationError(err error) bool {
	return errors.Is(err, ErrMigration)
}

// IsAlreadyExists reports whether err signals that the object being created
// already exists. Only this condition may be ignored when creating the
// migration tracking table.
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.Code == sqlStateDuplicateTable || remoteErr.Code == sqlStateDuplicateObject {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "sqlstate "+strings.ToLower(sqlStateDuplicateTable))
}

// IsDuplicateKey reports whether err is a unique constraint violation
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// Helper function to create a validation error for required fields
func RequiredFieldError(field string) error {
	return WrapValidationError(field, "field is required")
}

// Helper function to create a validation error for invalid field values
func InvalidFieldError(field, reason string) error {
	return WrapValidationError(field, reason)
}
