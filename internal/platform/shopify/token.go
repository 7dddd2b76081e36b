package shopify

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// TokenSource yields the offline Admin API access token for a shop.
type TokenSource interface {
	AccessToken(ctx context.Context, shop string) (string, error)
}

// StaticTokens serves tokens from configuration: a per-shop map with an
// optional fallback used by single-shop (custom app) installs.
type StaticTokens struct {
	mu       sync.RWMutex
	perShop  map[string]string
	fallback string
}

func NewStaticTokens(perShop map[string]string, fallback string) *StaticTokens {
	m := make(map[string]string, len(perShop))
	for shop, tok := range perShop {
		m[NormalizeShop(shop)] = tok
	}
	return &StaticTokens{perShop: m, fallback: strings.TrimSpace(fallback)}
}

func (s *StaticTokens) Set(shop, token string) {
	s.mu.Lock()
	s.perShop[NormalizeShop(shop)] = token
	s.mu.Unlock()
}

func (s *StaticTokens) AccessToken(ctx context.Context, shop string) (string, error) {
	s.mu.RLock()
	tok, ok := s.perShop[NormalizeShop(shop)]
	s.mu.RUnlock()
	if ok && tok != "" {
		return tok, nil
	}
	if s.fallback != "" {
		return s.fallback, nil
	}
	return "", fmt.Errorf("no access token for shop %s", shop)
}

// NormalizeShop lowercases a shop domain and strips scheme and path.
func NormalizeShop(shop string) string {
	s := strings.ToLower(strings.TrimSpace(shop))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}

// ValidShop reports whether shop looks like "<name>.myshopify.com".
func ValidShop(shop string) bool {
	s := NormalizeShop(shop)
	name, ok := strings.CutSuffix(s, ".myshopify.com")
	if !ok || name == "" {
		return false
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}
