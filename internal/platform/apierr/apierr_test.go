package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "wrapped", err: New(http.StatusBadRequest, "bad", errors.New("boom")), want: "boom"},
		{name: "code", err: New(http.StatusBadRequest, "bad", nil), want: "bad"},
		{name: "status", err: New(http.StatusTeapot, "", nil), want: "api error (418)"},
		{name: "empty", err: &Error{}, want: "api error"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("load: %w", NotFound("qr code"))
	ae, ok := As(err)
	if !ok {
		t.Fatalf("expected apierr in chain")
	}
	if ae.Status != http.StatusNotFound || ae.Code != "not_found" {
		t.Fatalf("unexpected error: status=%d code=%s", ae.Status, ae.Code)
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain error should not match")
	}
}
