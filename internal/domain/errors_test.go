package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		message   string
		details   string
		requestID string
	}{
		{
			name:      "Malformed body",
			code:      ErrInvalidInput,
			message:   "Request body is not valid JSON",
			details:   "unexpected end of JSON input",
			requestID: "req-123",
		},
		{
			name:      "Internal error",
			code:      ErrInternalServer,
			message:   "Analysis failed",
			details:   "",
			requestID: "req-456",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.code, tt.message, tt.details, tt.requestID)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Message != tt.message {
				t.Errorf("Expected message %s, got %s", tt.message, err.Message)
			}

			if err.RequestID != tt.requestID {
				t.Errorf("Expected requestID %s, got %s", tt.requestID, err.RequestID)
			}

			if time.Since(err.Timestamp) > time.Minute {
				t.Errorf("Timestamp should be recent, got %v", err.Timestamp)
			}

			expectedError := tt.code + ": " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestAPIError_JSONShape(t *testing.T) {
	err := NewAPIError(ErrInvalidInput, "slides must be an array", "", "")

	b, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("marshal: %v", marshalErr)
	}

	var body map[string]any
	if unmarshalErr := json.Unmarshal(b, &body); unmarshalErr != nil {
		t.Fatalf("unmarshal: %v", unmarshalErr)
	}
	if body["error"] != ErrInvalidInput {
		t.Errorf("Expected error field %s, got %v", ErrInvalidInput, body["error"])
	}
	if body["message"] != "slides must be an array" {
		t.Errorf("Expected message field, got %v", body["message"])
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		message string
		value   interface{}
	}{
		{
			name:    "String validation error",
			field:   "presentationType",
			message: "Unknown archetype",
			value:   "podcast",
		},
		{
			name:    "Integer validation error",
			field:   "slideIndex",
			message: "Must not be negative",
			value:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.field, tt.message, tt.value)

			if err.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, err.Field)
			}

			if err.Value != tt.value {
				t.Errorf("Expected value %v, got %v", tt.value, err.Value)
			}

			expectedError := "validation error for field '" + tt.field + "': " + tt.message
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestErrorConstants(t *testing.T) {
	expected := map[string]string{
		ErrInvalidInput:    "INVALID_INPUT",
		ErrValidation:      "VALIDATION_ERROR",
		ErrNotFoundCode:    "NOT_FOUND",
		ErrRateLimit:       "RATE_LIMIT_EXCEEDED",
		ErrPayloadTooLarge: "PAYLOAD_TOO_LARGE",
		ErrInternalServer:  "INTERNAL_SERVER_ERROR",
		ErrStorage:         "STORAGE_ERROR",
	}

	for actual, want := range expected {
		if actual != want {
			t.Errorf("Expected %s, got %s", want, actual)
		}
	}
}
