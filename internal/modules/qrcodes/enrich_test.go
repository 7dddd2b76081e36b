package qrcodes

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/qrcodes-backend/internal/domain"
)

func productRecord(id uint, productID string) *domain.QRCode {
	return &domain.QRCode{
		ID:            id,
		Shop:          "demo.myshopify.com",
		Title:         fmt.Sprintf("code %d", id),
		ProductID:     productID,
		ProductHandle: "handle-" + productID,
		Destination:   domain.DestinationProduct,
	}
}

func TestEnrichOneBuildsView(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*domain.Product{
		"p1": titled("Snowboard", domain.ProductImage{URL: "https://cdn/s.png", AltText: "board"}),
	}}
	encoder := &fakeEncoder{}
	e := newTestEnricher(t, newFakeStore(), catalog, encoder, 0)

	rec := productRecord(5, "p1")
	rec.Scans = 4
	got, err := e.EnrichOne(context.Background(), rec)
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if got.ProductDeleted {
		t.Fatalf("productDeleted: want=false")
	}
	if got.ProductTitle == nil || *got.ProductTitle != "Snowboard" {
		t.Fatalf("productTitle: got=%v", got.ProductTitle)
	}
	if got.ProductImage == nil || *got.ProductImage != "https://cdn/s.png" || got.ProductAlt == nil || *got.ProductAlt != "board" {
		t.Fatalf("image/alt: got=%v/%v", got.ProductImage, got.ProductAlt)
	}
	if got.DestinationURL != "https://demo.myshopify.com/products/handle-p1" {
		t.Fatalf("destinationUrl: got=%s", got.DestinationURL)
	}
	wantScan := testBaseURL + "/qrcodes/5/scan"
	if got.Image != "data:image/png;base64,"+wantScan {
		t.Fatalf("image: got=%s", got.Image)
	}
	if got.Scans != 4 || got.Title != rec.Title {
		t.Fatalf("record fields not carried: %+v", got)
	}
	if len(encoder.urls) != 1 || encoder.urls[0] != wantScan {
		t.Fatalf("encoder urls: got=%v", encoder.urls)
	}
}

func TestEnrichOneDoesNotMutateRecord(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(), &fakeCatalog{}, &fakeEncoder{}, 0)
	rec := productRecord(1, "p1")
	before := *rec
	if _, err := e.EnrichOne(context.Background(), rec); err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if *rec != before {
		t.Fatalf("record mutated: before=%+v after=%+v", before, *rec)
	}
}

func TestEnrichOneDeletedProduct(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(), &fakeCatalog{}, &fakeEncoder{}, 0)
	got, err := e.EnrichOne(context.Background(), productRecord(1, "gone"))
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if !got.ProductDeleted {
		t.Fatalf("productDeleted: want=true")
	}
	if got.ProductTitle != nil || got.ProductImage != nil || got.ProductAlt != nil {
		t.Fatalf("product fields should be absent: %+v", got)
	}
}

func TestEnrichOneTitleWithoutImages(t *testing.T) {
	catalog := &fakeCatalog{products: map[string]*domain.Product{"p1": titled("Poster")}}
	e := newTestEnricher(t, newFakeStore(), catalog, &fakeEncoder{}, 0)
	got, err := e.EnrichOne(context.Background(), productRecord(1, "p1"))
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if got.ProductDeleted || got.ProductTitle == nil || *got.ProductTitle != "Poster" {
		t.Fatalf("title: got deleted=%v title=%v", got.ProductDeleted, got.ProductTitle)
	}
	if got.ProductImage != nil || got.ProductAlt != nil {
		t.Fatalf("image/alt should be absent: %v/%v", got.ProductImage, got.ProductAlt)
	}
}

func TestEnrichOneIssuesCallsConcurrently(t *testing.T) {
	encoderStarted := make(chan struct{})
	catalogStarted := make(chan struct{})
	wait := func(ch chan struct{}) error {
		select {
		case <-ch:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("sibling call was never started")
		}
	}
	catalog := &fakeCatalog{hook: func(ctx context.Context, productID string) error {
		close(catalogStarted)
		return wait(encoderStarted)
	}}
	encoder := &fakeEncoder{hook: func(ctx context.Context, url string) error {
		close(encoderStarted)
		return wait(catalogStarted)
	}}
	e := newTestEnricher(t, newFakeStore(), catalog, encoder, 0)
	if _, err := e.EnrichOne(context.Background(), productRecord(1, "p1")); err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
}

func TestEnrichOneCatalogFailurePropagates(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(), &fakeCatalog{err: errBoom}, &fakeEncoder{}, 0)
	got, err := e.EnrichOne(context.Background(), productRecord(1, "p1"))
	if !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil view on failure, got=%+v", got)
	}
}

func TestEnrichOneEncoderFailurePropagates(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(), &fakeCatalog{}, &fakeEncoder{err: errBoom}, 0)
	if _, err := e.EnrichOne(context.Background(), productRecord(1, "p1")); !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got=%v", err)
	}
}

func TestEnrichOneCorruptCartRecord(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(), &fakeCatalog{}, &fakeEncoder{}, 0)
	rec := productRecord(1, "p1")
	rec.Destination = domain.DestinationCart
	rec.ProductVariantID = "not-a-variant"
	_, err := e.EnrichOne(context.Background(), rec)
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("want ErrCorruptRecord, got=%v", err)
	}
}

func TestEnrichManyEmpty(t *testing.T) {
	catalog, encoder := &fakeCatalog{}, &fakeEncoder{}
	e := newTestEnricher(t, newFakeStore(), catalog, encoder, 0)
	got, err := e.EnrichMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("EnrichMany: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got=%v", got)
	}
	if catalog.calls != 0 || encoder.calls != 0 {
		t.Fatalf("want zero collaborator calls, catalog=%d encoder=%d", catalog.calls, encoder.calls)
	}
}

func TestEnrichManyPreservesOrder(t *testing.T) {
	secondDone := make(chan struct{})
	catalog := &fakeCatalog{
		products: map[string]*domain.Product{"p1": titled("first"), "p2": titled("second")},
		hook: func(ctx context.Context, productID string) error {
			if productID == "p2" {
				close(secondDone)
				return nil
			}
			select {
			case <-secondDone:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("p2 never resolved")
			}
		},
	}
	e := newTestEnricher(t, newFakeStore(), catalog, &fakeEncoder{}, 0)
	got, err := e.EnrichMany(context.Background(), []*domain.QRCode{productRecord(1, "p1"), productRecord(2, "p2")})
	if err != nil {
		t.Fatalf("EnrichMany: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("order: got=%v", got)
	}
	if *got[0].ProductTitle != "first" || *got[1].ProductTitle != "second" {
		t.Fatalf("titles: %s, %s", *got[0].ProductTitle, *got[1].ProductTitle)
	}
}

func TestEnrichManyBoundedConcurrency(t *testing.T) {
	var inflight, peak int32
	catalog := &fakeCatalog{hook: func(ctx context.Context, productID string) error {
		n := atomic.AddInt32(&inflight, 1)
		defer atomic.AddInt32(&inflight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		return nil
	}}
	e := newTestEnricher(t, newFakeStore(), catalog, &fakeEncoder{}, 2)

	recs := make([]*domain.QRCode, 0, 8)
	for i := uint(1); i <= 8; i++ {
		recs = append(recs, productRecord(i, fmt.Sprintf("p%d", i)))
	}
	got, err := e.EnrichMany(context.Background(), recs)
	if err != nil {
		t.Fatalf("EnrichMany: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("len: want=8 got=%d", len(got))
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Fatalf("peak concurrency: want<=2 got=%d", p)
	}
}

func TestEnrichManyFailureAborts(t *testing.T) {
	catalog := &fakeCatalog{hook: func(ctx context.Context, productID string) error {
		if productID == "p2" {
			return errBoom
		}
		return nil
	}}
	e := newTestEnricher(t, newFakeStore(), catalog, &fakeEncoder{}, 0)
	got, err := e.EnrichMany(context.Background(), []*domain.QRCode{productRecord(1, "p1"), productRecord(2, "p2")})
	if !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got=%v", err)
	}
	if got != nil {
		t.Fatalf("want nil result on failure, got=%v", got)
	}
}

func TestFetchAndEnrichByIDMissing(t *testing.T) {
	catalog, encoder := &fakeCatalog{}, &fakeEncoder{}
	store := newFakeStore()
	e := newTestEnricher(t, store, catalog, encoder, 0)
	got, err := e.FetchAndEnrichByID(context.Background(), 404)
	if err != nil {
		t.Fatalf("FetchAndEnrichByID: %v", err)
	}
	if got != nil {
		t.Fatalf("want nil, got=%+v", got)
	}
	if store.getHits != 1 {
		t.Fatalf("store hits: want=1 got=%d", store.getHits)
	}
	if catalog.calls != 0 || encoder.calls != 0 {
		t.Fatalf("want zero collaborator calls, catalog=%d encoder=%d", catalog.calls, encoder.calls)
	}
}

func TestFetchAndEnrichByIDFound(t *testing.T) {
	e := newTestEnricher(t, newFakeStore(productRecord(3, "p1")), &fakeCatalog{}, &fakeEncoder{}, 0)
	got, err := e.FetchAndEnrichByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchAndEnrichByID: %v", err)
	}
	if got == nil || got.ID != 3 {
		t.Fatalf("want record 3, got=%+v", got)
	}
}

func TestFetchAndEnrichByIDStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errBoom
	e := newTestEnricher(t, store, &fakeCatalog{}, &fakeEncoder{}, 0)
	if _, err := e.FetchAndEnrichByID(context.Background(), 1); !errors.Is(err, errBoom) {
		t.Fatalf("want errBoom, got=%v", err)
	}
}

func TestFetchAndEnrichByShopNewestFirst(t *testing.T) {
	other := productRecord(4, "p4")
	other.Shop = "other.myshopify.com"
	store := newFakeStore(productRecord(1, "p1"), productRecord(3, "p3"), productRecord(2, "p2"), other)
	e := newTestEnricher(t, store, &fakeCatalog{}, &fakeEncoder{}, 0)

	got, err := e.FetchAndEnrichByShop(context.Background(), "demo.myshopify.com")
	if err != nil {
		t.Fatalf("FetchAndEnrichByShop: %v", err)
	}
	if len(got) != 3 || got[0].ID != 3 || got[1].ID != 2 || got[2].ID != 1 {
		ids := make([]uint, 0, len(got))
		for _, g := range got {
			ids = append(ids, g.ID)
		}
		t.Fatalf("ids: want=[3 2 1] got=%v", ids)
	}
}

func TestFetchAndEnrichByShopNone(t *testing.T) {
	catalog := &fakeCatalog{}
	e := newTestEnricher(t, newFakeStore(), catalog, &fakeEncoder{}, 0)
	got, err := e.FetchAndEnrichByShop(context.Background(), "empty.myshopify.com")
	if err != nil {
		t.Fatalf("FetchAndEnrichByShop: %v", err)
	}
	if len(got) != 0 || catalog.calls != 0 {
		t.Fatalf("want empty result and no calls, got=%v calls=%d", got, catalog.calls)
	}
}

func TestNewEnricherRequiresCollaborators(t *testing.T) {
	if _, err := NewEnricher(EnricherDeps{AppBaseURL: testBaseURL}); err == nil {
		t.Fatalf("expected error without collaborators")
	}
	if _, err := NewEnricher(EnricherDeps{Store: newFakeStore(), Catalog: &fakeCatalog{}, Encoder: &fakeEncoder{}}); err == nil {
		t.Fatalf("expected error without base url")
	}
}
