package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTypeAndStatusCode(t *testing.T) {
	cases := []struct {
		err    *AppError
		typ    ErrorType
		status int
	}{
		{NewValidationError("bad input", nil), ErrorTypeValidation, http.StatusBadRequest},
		{NewConfigurationError("no providers", nil), ErrorTypeConfiguration, http.StatusInternalServerError},
		{NewNetworkError("upstream down", nil), ErrorTypeNetwork, http.StatusBadGateway},
		{NewProcessingError("bad image", nil), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{NewTimeoutError("too slow", nil), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{NewInternalError("boom", nil), ErrorTypeInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if c.err.Type != c.typ {
			t.Errorf("type = %s, want %s", c.err.Type, c.typ)
		}
		if !IsType(c.err, c.typ) {
			t.Errorf("IsType(%s) failed", c.typ)
		}
		if got := GetStatusCode(c.err); got != c.status {
			t.Errorf("GetStatusCode(%s) = %d, want %d", c.typ, got, c.status)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetworkError("fetch failed", cause)

	if !errors.Is(err, cause) {
		t.Error("AppError must unwrap to its cause")
	}
	if err.Error() == "" || err.Error() == cause.Error() {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestGetStatusCodeDefaultsTo500(t *testing.T) {
	if got := GetStatusCode(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("plain error status = %d", got)
	}
}

func TestIsTypeOnForeignError(t *testing.T) {
	if IsType(errors.New("plain"), ErrorTypeValidation) {
		t.Error("plain errors have no type")
	}
}
