package qrcodes

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

const testBaseURL = "https://qr.example.app"

type fakeStore struct {
	recs    map[uint]*domain.QRCode
	err     error
	getHits int32
}

func newFakeStore(recs ...*domain.QRCode) *fakeStore {
	s := &fakeStore{recs: map[uint]*domain.QRCode{}}
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetByID(ctx context.Context, id uint) (*domain.QRCode, error) {
	atomic.AddInt32(&s.getHits, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.recs[id], nil
}

func (s *fakeStore) ListByShop(ctx context.Context, shop string) ([]*domain.QRCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.QRCode
	for _, r := range s.recs {
		if r.Shop == shop {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	err      error
	calls    int32
	// hook runs before the product is returned.
	hook func(ctx context.Context, productID string) error
}

func (c *fakeCatalog) QueryProduct(ctx context.Context, productID string) (*domain.Product, error) {
	atomic.AddInt32(&c.calls, 1)
	if c.hook != nil {
		if err := c.hook(ctx, productID); err != nil {
			return nil, err
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return &domain.Product{}, nil
	}
	return p, nil
}

type fakeEncoder struct {
	err   error
	calls int32
	mu    sync.Mutex
	urls  []string
	hook  func(ctx context.Context, url string) error
}

func (e *fakeEncoder) Encode(ctx context.Context, url string) (string, error) {
	atomic.AddInt32(&e.calls, 1)
	e.mu.Lock()
	e.urls = append(e.urls, url)
	e.mu.Unlock()
	if e.hook != nil {
		if err := e.hook(ctx, url); err != nil {
			return "", err
		}
	}
	if e.err != nil {
		return "", e.err
	}
	return "data:image/png;base64," + url, nil
}

func newTestEnricher(t *testing.T, store RecordStore, catalog Catalog, encoder ImageEncoder, limit int) *Enricher {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Cleanup(log.Sync)
	e, err := NewEnricher(EnricherDeps{
		Log:            log,
		Store:          store,
		Catalog:        catalog,
		Encoder:        encoder,
		AppBaseURL:     testBaseURL,
		MaxConcurrency: limit,
	})
	if err != nil {
		t.Fatalf("NewEnricher: %v", err)
	}
	return e
}

func titled(title string, images ...domain.ProductImage) *domain.Product {
	return &domain.Product{Title: &title, Images: images}
}

var errBoom = errors.New("boom")
