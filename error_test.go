package restapir

import (
	"errors"
	"testing"
)

func TestError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("boom")
	err := New(UnknownOperator, "boom")
	err.Err = cause
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
}

func TestError_MessageIncludesCode(t *testing.T) {
	err := Newf(PermissionDenied, "model %s", "User")
	msg := err.Error()
	if msg == "" {
		t.Fatalf("expected a non-empty message")
	}
	if got := err.Code.String(); got != "PermissionDenied" {
		t.Fatalf("unexpected code string: %q", got)
	}
}

func TestError_WithData(t *testing.T) {
	err := New(UnknownField, "no such field").WithData("email")
	if err.UserData != "email" {
		t.Fatalf("expected UserData to be set, got %v", err.UserData)
	}
}
