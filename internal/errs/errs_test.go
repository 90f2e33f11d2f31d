package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/edgard/letterbot/internal/errs"
)

func TestCode(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "store", err: errs.NewStoreError("insert failed", cause), want: errs.CodeStore},
		{name: "transport", err: errs.NewTransportError("send failed", cause), want: errs.CodeTransport},
		{name: "input", err: errs.NewInputError("text required"), want: errs.CodeInput},
		{name: "stale", err: errs.NewStaleError("no draft"), want: errs.CodeStale},
		{name: "config", err: errs.NewConfigError("bad file", cause), want: errs.CodeConfig},
		{name: "validation", err: errs.NewValidationError("empty text", nil), want: errs.CodeValidation},
		{name: "wrapped", err: fmt.Errorf("commit: %w", errs.NewStoreError("insert failed", cause)), want: errs.CodeStore},
		{name: "plain", err: cause, want: errs.CodeUnknown},
		{name: "nil", err: nil, want: errs.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := errs.Code(tt.err); got != tt.want {
				t.Errorf("Code() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessageAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("locked")
	err := errs.NewStoreError("failed to delete letters", cause)

	if got, want := err.Error(), "failed to delete letters: locked"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if got, want := errs.NewStaleError("no draft").Error(), "no draft"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errs.Is(err, errs.CodeStore) || errs.Is(nil, errs.CodeStore) {
		t.Error("Is() returned unexpected result")
	}
}
