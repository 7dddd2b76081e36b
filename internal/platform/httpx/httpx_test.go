package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestNewStatusErrorTruncatesBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader(strings.Repeat("x", 4096))),
	}
	se := NewStatusError("catalog", resp)
	if se.Status != http.StatusBadGateway {
		t.Fatalf("status: want=502 got=%d", se.Status)
	}
	if len(se.Body) != 2048 {
		t.Fatalf("body len: want=2048 got=%d", len(se.Body))
	}
}

func TestStatusCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("query product: %w", &StatusError{Service: "catalog", Status: 401})
	if got := StatusCode(err); got != 401 {
		t.Fatalf("StatusCode: want=401 got=%d", got)
	}
	if got := StatusCode(fmt.Errorf("plain")); got != 0 {
		t.Fatalf("StatusCode plain: want=0 got=%d", got)
	}
	if msg := (&StatusError{Service: "catalog", Status: 500}).Error(); msg != "catalog: unexpected status 500" {
		t.Fatalf("Error(): got=%q", msg)
	}
}
