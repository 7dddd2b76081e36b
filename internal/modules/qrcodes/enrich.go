package qrcodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

// RecordStore is the read side of QR code persistence. A nil record with a
// nil error means "not found".
type RecordStore interface {
	GetByID(ctx context.Context, id uint) (*domain.QRCode, error)
	// ListByShop returns records ordered by id descending.
	ListByShop(ctx context.Context, shop string) ([]*domain.QRCode, error)
}

// Catalog fetches live product data (title and first image).
type Catalog interface {
	QueryProduct(ctx context.Context, productID string) (*domain.Product, error)
}

// ImageEncoder renders a URL into a scannable image data URI.
type ImageEncoder interface {
	Encode(ctx context.Context, url string) (string, error)
}

const DefaultMaxConcurrency = 8

type EnricherDeps struct {
	Log     *logger.Logger
	Store   RecordStore
	Catalog Catalog
	Encoder ImageEncoder

	// AppBaseURL prefixes the scan URL encoded into every image.
	AppBaseURL string
	// MaxConcurrency bounds records enriched at once by EnrichMany.
	// Zero or negative means unbounded.
	MaxConcurrency int
}

type Enricher struct {
	deps   EnricherDeps
	log    *logger.Logger
	tracer trace.Tracer
}

func NewEnricher(deps EnricherDeps) (*Enricher, error) {
	if deps.Store == nil || deps.Catalog == nil || deps.Encoder == nil {
		return nil, errors.New("qrcodes: enricher requires store, catalog and encoder")
	}
	if deps.AppBaseURL == "" {
		return nil, errors.New("qrcodes: enricher requires an app base url")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Enricher{
		deps:   deps,
		log:    deps.Log.With("module", "qrcodes.Enricher"),
		tracer: otel.Tracer("qrcodes"),
	}, nil
}

func (e *Enricher) AppBaseURL() string { return e.deps.AppBaseURL }

type outcome[T any] struct {
	val T
	err error
}

// EnrichOne joins rec with live catalog data, its destination URL and a
// freshly encoded scan image. The catalog query and the image encode are in
// flight at the same time; the catalog result is awaited first.
func (e *Enricher) EnrichOne(ctx context.Context, rec *domain.QRCode) (out *domain.EnrichedQRCode, err error) {
	ctx, span := e.tracer.Start(ctx, "qrcodes.EnrichOne", trace.WithAttributes(
		attribute.Int64("qrcode.id", int64(rec.ID)),
		attribute.String("qrcode.destination", string(rec.Destination)),
	))
	start := time.Now()
	defer func() {
		observeEnrich(err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	imageCh := make(chan outcome[string], 1)
	productCh := make(chan outcome[*domain.Product], 1)

	scanURL := ScanURL(e.deps.AppBaseURL, rec.ID)
	go func() {
		img, err := e.deps.Encoder.Encode(ctx, scanURL)
		imageCh <- outcome[string]{val: img, err: err}
	}()
	go func() {
		p, err := e.deps.Catalog.QueryProduct(ctx, rec.ProductID)
		productCh <- outcome[*domain.Product]{val: p, err: err}
	}()

	product := <-productCh
	if product.err != nil {
		return nil, fmt.Errorf("query product %s for qr code %d: %w", rec.ProductID, rec.ID, product.err)
	}

	destinationURL, err := ResolveDestination(rec)
	if err != nil {
		e.log.Error("Unresolvable qr code destination", "qrcode_id", rec.ID, "error", err)
		return nil, err
	}

	image := <-imageCh
	if image.err != nil {
		return nil, fmt.Errorf("encode scan image for qr code %d: %w", rec.ID, image.err)
	}

	return domain.NewEnrichedQRCode(rec, product.val, destinationURL, image.val), nil
}

// EnrichMany enriches recs concurrently. The result is index-aligned with
// recs; the first failure aborts the whole call.
func (e *Enricher) EnrichMany(ctx context.Context, recs []*domain.QRCode) ([]*domain.EnrichedQRCode, error) {
	out := make([]*domain.EnrichedQRCode, len(recs))
	if len(recs) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if e.deps.MaxConcurrency > 0 {
		g.SetLimit(e.deps.MaxConcurrency)
	}
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			enriched, err := e.EnrichOne(gctx, rec)
			if err != nil {
				return err
			}
			out[i] = enriched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAndEnrichByID returns nil, nil when no record has the given id.
func (e *Enricher) FetchAndEnrichByID(ctx context.Context, id uint) (*domain.EnrichedQRCode, error) {
	rec, err := e.deps.Store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load qr code %d: %w", id, err)
	}
	if rec == nil {
		return nil, nil
	}
	return e.EnrichOne(ctx, rec)
}

// FetchAndEnrichByShop returns the shop's records newest first.
func (e *Enricher) FetchAndEnrichByShop(ctx context.Context, shop string) ([]*domain.EnrichedQRCode, error) {
	recs, err := e.deps.Store.ListByShop(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return e.EnrichMany(ctx, recs)
}

func observeEnrich(err error, dur time.Duration) {
	m := observability.Current()
	if m == nil {
		return
	}
	status := "ok"
	switch {
	case errors.Is(err, ErrCorruptRecord):
		status = "corrupt"
	case err != nil:
		status = "error"
	}
	m.ObserveEnrich(status, dur)
}
