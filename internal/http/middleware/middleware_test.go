package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

const (
	testKey    = "api-key"
	testSecret = "shh-secret"
)

func shopEcho(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/api/qrcodes", func(c *gin.Context) {
		sd := ctxutil.GetShopData(c.Request.Context())
		c.String(http.StatusOK, sd.Shop+"|"+sd.SessionID)
	})
	return r
}

func signToken(t *testing.T, secret string, claims SessionClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func validClaims() SessionClaims {
	now := time.Now()
	return SessionClaims{
		Dest: "https://demo.myshopify.com",
		SID:  "session-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://demo.myshopify.com/admin",
			Audience:  jwt.ClaimStrings{testKey},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestShopSessionVerifiesToken(t *testing.T) {
	mw := NewShopSessionMiddleware(logger.Nop(), ShopSessionConfig{APIKey: testKey, APISecret: testSecret})
	r := shopEcho(mw.RequireShop())

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"someone-else"}
	badDest := validClaims()
	badDest.Dest = "https://example.com"

	cases := []struct {
		name   string
		auth   string
		status int
		body   string
	}{
		{name: "valid", auth: "Bearer " + signToken(t, testSecret, validClaims()), status: http.StatusOK, body: "demo.myshopify.com|session-1"},
		{name: "missing", auth: "", status: http.StatusUnauthorized},
		{name: "wrong secret", auth: "Bearer " + signToken(t, "nope", validClaims()), status: http.StatusUnauthorized},
		{name: "expired", auth: "Bearer " + signToken(t, testSecret, expired), status: http.StatusUnauthorized},
		{name: "wrong audience", auth: "Bearer " + signToken(t, testSecret, wrongAud), status: http.StatusUnauthorized},
		{name: "dest not a shop", auth: "Bearer " + signToken(t, testSecret, badDest), status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/qrcodes", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			// ignored when a secret is configured
			req.Header.Set(headerShopDomain, "spoof.myshopify.com")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d body=%s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.body != "" && rec.Body.String() != tc.body {
				t.Fatalf("body: want=%q got=%q", tc.body, rec.Body.String())
			}
		})
	}
}

func TestShopSessionDevHeader(t *testing.T) {
	mw := NewShopSessionMiddleware(logger.Nop(), ShopSessionConfig{})
	r := shopEcho(mw.RequireShop())

	req := httptest.NewRequest(http.MethodGet, "/api/qrcodes", nil)
	req.Header.Set(headerShopDomain, "HTTPS://Dev-Store.myshopify.com/")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "dev-store.myshopify.com|" {
		t.Fatalf("dev header: status=%d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/qrcodes", nil)
	req.Header.Set(headerShopDomain, "not a shop")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid header: status=%d", rec.Code)
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(headerRequestID); got != "req-123" {
		t.Fatalf("request id header: %q", got)
	}
	if seen == nil || seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("trace data: %+v", seen)
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("trace id header mismatch")
	}
}
