package services

import (
	"fmt"
	"net/http"
	"testing"
)

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindInvalidState, http.StatusConflict},
		{KindNotFound, http.StatusNotFound},
		{KindUnauthorized, http.StatusForbidden},
		{ErrorKind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e := &Error{Kind: tt.kind, Message: "boom"}
			if got := e.HTTPStatus(); got != tt.expected {
				t.Errorf("HTTPStatus() = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(newConflict("taken")); got != KindConflict {
		t.Errorf("KindOf = %q, expected conflict", got)
	}

	// Wrapped domain errors still classify.
	wrapped := fmt.Errorf("adding collaborator: %w", newNotFound("gone"))
	if got := KindOf(wrapped); got != KindNotFound {
		t.Errorf("KindOf(wrapped) = %q, expected not_found", got)
	}

	if got := KindOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("KindOf(plain) = %q, expected empty", got)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, expected empty", got)
	}
}

func TestError_Message(t *testing.T) {
	e := newValidation("name is required")
	if e.Error() != "name is required" {
		t.Errorf("Error() = %q", e.Error())
	}
}
