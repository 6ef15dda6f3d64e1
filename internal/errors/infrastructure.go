package errors

import (
	"errors"
	"fmt"
)

// InfrastructureError marks a failure of an external collaborator (event
// store, cache, feed). It is deliberately distinct from data-insufficiency
// outcomes: mapping an outage to a business default like "no data" would
// mask it as a legitimate result.
type InfrastructureError struct {
	Component string // "event_store", "cache", "ingestion_feed"
	Op        string
	Err       error
}

func (ie *InfrastructureError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", ie.Component, ie.Op, ie.Err)
}

func (ie *InfrastructureError) Unwrap() error {
	return ie.Err
}

func NewInfrastructureError(component, op string, err error) *InfrastructureError {
	return &InfrastructureError{
		Component: component,
		Op:        op,
		Err:       err,
	}
}

// IsInfrastructure checks if error represents an external collaborator failure
func IsInfrastructure(err error) bool {
	var ie *InfrastructureError
	return errors.As(err, &ie)
}
