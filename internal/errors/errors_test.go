package errors

import (
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		CodeUnknown,
		CodeValidation,
		CodeConfiguration,
		CodeCanceled,
		CodeTransport,
		CodeDecode,
		CodeConflict,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("Error code %v should not be empty", code)
		}
	}
}

func TestValidationError(t *testing.T) {
	t.Run("required field", func(t *testing.T) {
		err := ErrRequiredField("network_range")
		if err.Code != CodeValidation {
			t.Errorf("Expected code %s, got %s", CodeValidation, err.Code)
		}
		expected := "[VALIDATION] required field missing (field: network_range)"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("without field", func(t *testing.T) {
		err := NewValidationError("bad input", "", nil)
		expected := "[VALIDATION] bad input"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})
}

func TestTransportError(t *testing.T) {
	t.Run("status fallback message", func(t *testing.T) {
		err := NewStatusError(502, "", "/network/full-scan")
		if err.Message != "HTTP error: 502" {
			t.Errorf("Expected fallback message, got '%s'", err.Message)
		}
		if err.StatusCode != 502 {
			t.Errorf("Expected status 502, got %d", err.StatusCode)
		}
		expected := "[TRANSPORT] HTTP error: 502 (status: 502)"
		if err.Error() != expected {
			t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
		}
	})

	t.Run("wrapped network failure", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := WrapTransportError("request failed", "/device/10.0.0.1", cause)
		if err.Unwrap() != cause {
			t.Error("Should unwrap to original error")
		}
		if err.StatusCode != 0 {
			t.Errorf("Expected zero status, got %d", err.StatusCode)
		}
	})
}

func TestDecodeError(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := WrapDecodeError("/network/full-scan", cause)
	if err.Unwrap() != cause {
		t.Error("Should unwrap to original error")
	}
	expected := "[DECODE] malformed response body (endpoint: /network/full-scan)"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigFieldError(CodeValidation, "invalid port", "console.port", 65536)
	if err.Field != "console.port" {
		t.Errorf("Expected field 'console.port', got '%s'", err.Field)
	}
	expected := "[VALIDATION] invalid port (field: console.port)"
	if err.Error() != expected {
		t.Errorf("Expected error message '%s', got '%s'", expected, err.Error())
	}

	cause := fmt.Errorf("yaml: line 3")
	wrapped := WrapConfigError(CodeConfiguration, "parse failed", cause)
	if wrapped.Unwrap() != cause {
		t.Error("Should unwrap to original error")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"plain", fmt.Errorf("boom"), CodeUnknown},
		{"validation", ErrRequiredField("ip"), CodeValidation},
		{"transport", NewStatusError(500, "", ""), CodeTransport},
		{"decode", WrapDecodeError("", fmt.Errorf("x")), CodeDecode},
		{"config", WrapConfigError(CodeConfiguration, "x", nil), CodeConfiguration},
		{"wrapped transport", fmt.Errorf("submit: %w", NewStatusError(404, "", "")), CodeTransport},
		{"state", NewStateError(CodeConflict, "scan already in progress"), CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %s, want %s", got, tt.want)
			}
			if tt.want != CodeUnknown && !IsCode(tt.err, tt.want) {
				t.Errorf("IsCode(%s) should be true", tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	for _, err := range []error{
		ErrRequiredField("ip"),
		NewStatusError(503, "", ""),
		WrapTransportError("timeout", "", fmt.Errorf("i/o timeout")),
		WrapDecodeError("", fmt.Errorf("x")),
	} {
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", ErrRequiredField("network_range"), "network_range: required field missing"},
		{"status with server text", NewStatusError(400, "network_range is required", ""), "network_range is required"},
		{"status fallback", NewStatusError(500, "", ""), "HTTP error: 500"},
		{"network failure", WrapTransportError("request failed", "", fmt.Errorf("dial tcp: refused")), "request failed: dial tcp: refused"},
		{"decode", WrapDecodeError("", fmt.Errorf("invalid character 'x'")), "malformed response body: invalid character 'x'"},
		{"state", NewStateError(CodeConflict, "scan already in progress"), "scan already in progress"},
		{"plain", fmt.Errorf("something"), "something"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Message(tt.err); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}
