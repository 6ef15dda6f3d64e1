package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("test_field", "test message", "test_value")

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'test_field': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestInfrastructureError(t *testing.T) {
	inner := stderrors.New("connection refused")
	err := NewInfrastructureError("event_store", "get_events", inner)

	expected := "event_store get_events failed: connection refused"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	if !stderrors.Is(err, inner) {
		t.Error("Expected wrapped error to unwrap to the inner error")
	}

	if !IsInfrastructure(err) {
		t.Error("Expected IsInfrastructure to report true for InfrastructureError")
	}

	wrapped := fmt.Errorf("analyze failed: %w", err)
	if !IsInfrastructure(wrapped) {
		t.Error("Expected IsInfrastructure to see through wrapping")
	}

	if IsInfrastructure(stderrors.New("plain")) {
		t.Error("Expected IsInfrastructure to report false for plain errors")
	}
}
