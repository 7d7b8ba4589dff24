package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "script not found")
		if err.Error() != "[NOT_FOUND] script not found" {
			t.Errorf("expected [NOT_FOUND] script not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("permission denied")
		err := Wrap(original, CodeInternal, "read failed")
		expected := "[INTERNAL_ERROR] read failed: permission denied"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("ContextIsSorted", func(t *testing.T) {
		err := New(CodeSyntax, "invalid syntax")
		err = AddContext(err, CtxPath, "app.py")
		err = AddContext(err, CtxLine, 3)
		expected := "[SYNTAX_ERROR] invalid syntax (line=3 path=app.py)"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("AddContextToPlainError", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxOperation, "scan")
		if !IsCode(err, CodeInternal) {
			t.Error("expected plain error to be wrapped as CodeInternal")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("IsCodeThroughFmtWrap", func(t *testing.T) {
		err := fmt.Errorf("wrap: %w", New(CodeSyntax, "bad"))
		if !IsCode(err, CodeSyntax) {
			t.Error("expected IsCode to see through fmt.Errorf wrapping")
		}
	})

	t.Run("Message", func(t *testing.T) {
		if got := Message(New(CodeNotSupported, "x.txt is not a script")); got != "x.txt is not a script" {
			t.Errorf("unexpected message %q", got)
		}
		if got := Message(errors.New("plain")); got != "plain" {
			t.Errorf("unexpected message %q", got)
		}
		if got := Message(nil); got != "" {
			t.Errorf("expected empty message for nil, got %q", got)
		}
	})
}
