package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/learning-analytics-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrInvalidStudentID = errors.New("invalid student id")
	ErrAnalysisNotFound = errors.New("analysis not found")
)

// ===== SHARED ERROR TYPES =====

// Use shared error types from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type InfrastructureError = apperrors.InfrastructureError

// NewInfrastructureError marks a collaborator failure (event store, cache,
// feed). These must reach the caller as failures; mapping them to a business
// default would mask an outage as a legitimate "no data" result.
func NewInfrastructureError(component, op string, err error) *InfrastructureError {
	return apperrors.NewInfrastructureError(component, op, err)
}

// IsInfrastructure checks if error represents a collaborator failure
func IsInfrastructure(err error) bool {
	return apperrors.IsInfrastructure(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single) || errors.Is(err, ErrInvalidStudentID)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAnalysisNotFound)
}
