package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

// StatusError describes a non-2xx response from an upstream service.
type StatusError struct {
	Service string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Status, e.Body)
}

func (e *StatusError) HTTPStatusCode() int { return e.Status }

// NewStatusError reads (and truncates) the body of resp.
func NewStatusError(service string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &StatusError{Service: service, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// StatusCode returns the upstream status carried by err, or 0.
func StatusCode(err error) int {
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}
