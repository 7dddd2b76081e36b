package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusExposition(t *testing.T) {
	m := New(time.Second)
	m.ObserveAPI("GET", "/api/qrcodes", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/qrcodes", "200", 2*time.Second)
	m.ObserveCatalog("ok", 40*time.Millisecond)
	m.IncScan("redirected")
	m.SSEClientsInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE qr_api_requests_total counter",
		`qr_api_requests_total{method="GET",route="/api/qrcodes",status="200"} 2`,
		`qr_api_request_duration_seconds_bucket{method="GET",route="/api/qrcodes",status="200",le="0.05"} 1`,
		`qr_api_request_duration_seconds_bucket{method="GET",route="/api/qrcodes",status="200",le="+Inf"} 2`,
		`qr_api_request_duration_seconds_count{method="GET",route="/api/qrcodes",status="200"} 2`,
		`qr_catalog_requests_total{status="ok"} 1`,
		`qr_scans_total{status="redirected"} 1`,
		"qr_sse_clients 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveEnrich("ok", time.Millisecond)
	m.IncScan("ok")
	m.SSEClientsDec()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{"a\"b\\c\nd"})
	if want := `{route="a\"b\\c\nd"}`; got != want {
		t.Fatalf("labelString: want=%s got=%s", want, got)
	}
	if got := labelString([]string{"a", "b"}, []string{"x"}); got != `{a="x",b="unknown"}` {
		t.Fatalf("labelString missing value: got=%s", got)
	}
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("withLe: got=%s", got)
	}
}

func TestGaugeIncDec(t *testing.T) {
	g := NewGauge("g", "help")
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 1 {
		t.Fatalf("gauge: want=1 got=%v", g.Value())
	}
}

func TestStatusLabel(t *testing.T) {
	cases := map[string]error{
		"ok":       nil,
		"canceled": fmt.Errorf("wrap: %w", context.Canceled),
		"error":    errors.New("boom"),
	}
	for want, err := range cases {
		if got := StatusLabel(err); got != want {
			t.Fatalf("StatusLabel(%v): want=%s got=%s", err, want, got)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders("api-key=abc, x-team = qr ,broken,=nokey")
	if len(h) != 2 || h["api-key"] != "abc" || h["x-team"] != "qr" {
		t.Fatalf("ParseHeaders: got=%v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("ParseHeaders empty: want nil")
	}
}
