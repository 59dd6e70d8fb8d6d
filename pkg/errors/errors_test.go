package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidInput, "unknown tool: %s", "T9"),
			want: "INVALID_INPUT: unknown tool: T9",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeNetwork, errors.New("connection refused"), "fetch %s", "http://x"),
			want: "NETWORK_ERROR: fetch http://x: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAndGetCode(t *testing.T) {
	base := New(ErrCodeNodeNotFound, "node 7")
	wrapped := fmt.Errorf("edit: %w", base)

	if !Is(wrapped, ErrCodeNodeNotFound) {
		t.Error("Is should find the code through fmt.Errorf wrapping")
	}
	if Is(wrapped, ErrCodeNotFound) {
		t.Error("Is matched a different code")
	}
	if got := GetCode(wrapped); got != ErrCodeNodeNotFound {
		t.Errorf("GetCode = %q", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Wrap(ErrCodeInternal, sentinel, "context")
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidFormat, "bad yaml")); got != "bad yaml" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidCategory, "x"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", New(ErrCodeNodeNotFound, "x")), http.StatusNotFound},
		{New(ErrCodeCycleNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeNetwork, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeRateLimited, "x"), http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
