package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/qrcodes-backend/internal/http/response"
	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/platform/shopify"
)

const headerShopDomain = "X-Shop-Domain"

type ShopSessionConfig struct {
	// APIKey is the expected "aud" claim. Empty skips the audience check.
	APIKey string
	// APISecret verifies session tokens. Empty trusts the X-Shop-Domain header (local dev only).
	APISecret string
	Leeway    time.Duration
}

// SessionClaims are the claims of an embedded-app session token.
type SessionClaims struct {
	Dest string `json:"dest"`
	SID  string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type ShopSessionMiddleware struct {
	log *logger.Logger
	cfg ShopSessionConfig
}

func NewShopSessionMiddleware(log *logger.Logger, cfg ShopSessionConfig) *ShopSessionMiddleware {
	if cfg.Leeway <= 0 {
		cfg.Leeway = 5 * time.Second
	}
	mw := &ShopSessionMiddleware{log: log.With("middleware", "ShopSessionMiddleware"), cfg: cfg}
	if cfg.APISecret == "" {
		mw.log.Warn("No api secret configured; trusting " + headerShopDomain + " header")
	}
	return mw
}

func (m *ShopSessionMiddleware) RequireShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		sd, err := m.resolve(c)
		if err != nil {
			m.log.Debug("Shop session rejected", "error", err)
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithShopData(c.Request.Context(), sd))
		c.Set("shop", sd.Shop)
		c.Next()
	}
}

func (m *ShopSessionMiddleware) resolve(c *gin.Context) (*ctxutil.ShopData, error) {
	if m.cfg.APISecret == "" {
		shop := shopify.NormalizeShop(c.GetHeader(headerShopDomain))
		if !shopify.ValidShop(shop) {
			return nil, fmt.Errorf("missing or invalid %s header", headerShopDomain)
		}
		return &ctxutil.ShopData{Shop: shop}, nil
	}
	token := bearerToken(c)
	if token == "" {
		return nil, errors.New("missing session token")
	}
	claims, err := m.ParseSessionToken(token)
	if err != nil {
		return nil, err
	}
	shop, err := shopFromDest(claims.Dest)
	if err != nil {
		return nil, err
	}
	sid := claims.SID
	if sid == "" {
		sid = claims.ID
	}
	return &ctxutil.ShopData{Shop: shop, SessionID: sid}, nil
}

// ParseSessionToken verifies an HS256 session token signed with the api secret.
func (m *ShopSessionMiddleware) ParseSessionToken(raw string) (*SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(m.cfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if m.cfg.APIKey != "" {
		opts = append(opts, jwt.WithAudience(m.cfg.APIKey))
	}
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(m.cfg.APISecret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	return claims, nil
}

func shopFromDest(dest string) (string, error) {
	u, err := url.Parse(dest)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid dest claim %q", dest)
	}
	shop := shopify.NormalizeShop(u.Host)
	if !shopify.ValidShop(shop) {
		return "", fmt.Errorf("dest claim is not a shop domain: %q", dest)
	}
	return shop, nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	// EventSource cannot set headers
	return c.Query("token")
}
