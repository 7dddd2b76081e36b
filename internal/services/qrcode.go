package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/qrcodes-backend/internal/data/repos"
	types "github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/modules/qrcodes"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/apierr"
	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

var ErrNoShop = errors.New("no shop in request context")

const msgDestinationInvalid = "Destination must be product or cart"

// LabelRenderer draws a printable PNG for a QR code.
type LabelRenderer interface {
	Render(ctx context.Context, title, url string) ([]byte, error)
}

// QRCodePage is what the public landing page shows. It needs no catalog
// access and therefore no shop session.
type QRCodePage struct {
	ID    uint
	Title string
	Image string
}

type QRCodeService interface {
	List(ctx context.Context) ([]*types.EnrichedQRCode, error)
	Get(ctx context.Context, id uint) (*types.EnrichedQRCode, error)
	Create(ctx context.Context, in qrcodes.Candidate) (*types.EnrichedQRCode, qrcodes.FieldErrors, error)
	Update(ctx context.Context, id uint, in qrcodes.Candidate) (*types.EnrichedQRCode, qrcodes.FieldErrors, error)
	Delete(ctx context.Context, id uint) error
	// Scan counts a scan and returns the URL to redirect to.
	Scan(ctx context.Context, id uint) (string, error)
	Label(ctx context.Context, id uint) ([]byte, error)
	Page(ctx context.Context, id uint) (*QRCodePage, error)
}

type qrCodeService struct {
	log      *logger.Logger
	repo     repos.QRCodeRepo
	enricher *qrcodes.Enricher
	encoder  qrcodes.ImageEncoder
	labels   LabelRenderer
	notifier QRCodeNotifier
}

func NewQRCodeService(
	log *logger.Logger,
	repo repos.QRCodeRepo,
	enricher *qrcodes.Enricher,
	encoder qrcodes.ImageEncoder,
	labels LabelRenderer,
	notifier QRCodeNotifier,
) QRCodeService {
	return &qrCodeService{
		log:      log.With("service", "QRCodeService"),
		repo:     repo,
		enricher: enricher,
		encoder:  encoder,
		labels:   labels,
		notifier: notifier,
	}
}

// NewRecordStore adapts the repo to the enrichment pipeline's read side.
func NewRecordStore(repo repos.QRCodeRepo) qrcodes.RecordStore {
	return &recordStore{repo: repo}
}

type recordStore struct {
	repo repos.QRCodeRepo
}

func (s *recordStore) GetByID(ctx context.Context, id uint) (*types.QRCode, error) {
	return s.repo.GetByID(ctx, nil, id)
}

func (s *recordStore) ListByShop(ctx context.Context, shop string) ([]*types.QRCode, error) {
	return s.repo.ListByShop(ctx, nil, shop)
}

func requireShop(ctx context.Context) (string, error) {
	shop := ctxutil.Shop(ctx)
	if shop == "" {
		return "", apierr.New(http.StatusUnauthorized, "unauthorized", ErrNoShop)
	}
	return shop, nil
}

// owned loads id and hides records of other shops behind a 404.
func (s *qrCodeService) owned(ctx context.Context, id uint) (*types.QRCode, error) {
	shop, err := requireShop(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load qr code %d: %w", id, err)
	}
	if rec == nil || rec.Shop != shop {
		return nil, apierr.NotFound("qr code")
	}
	return rec, nil
}

func (s *qrCodeService) List(ctx context.Context) ([]*types.EnrichedQRCode, error) {
	shop, err := requireShop(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.FetchAndEnrichByShop(ctx, shop)
}

func (s *qrCodeService) Get(ctx context.Context, id uint) (*types.EnrichedQRCode, error) {
	rec, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichOne(ctx, rec)
}

func validateCandidate(in qrcodes.Candidate) qrcodes.FieldErrors {
	errs := qrcodes.Validate(in)
	if in.Destination != "" && !in.Destination.Valid() {
		if errs == nil {
			errs = qrcodes.FieldErrors{}
		}
		errs["destination"] = msgDestinationInvalid
	}
	return errs
}

func (s *qrCodeService) Create(ctx context.Context, in qrcodes.Candidate) (*types.EnrichedQRCode, qrcodes.FieldErrors, error) {
	shop, err := requireShop(ctx)
	if err != nil {
		return nil, nil, err
	}
	if errs := validateCandidate(in); errs != nil {
		return nil, errs, nil
	}
	rec, err := s.repo.Create(ctx, nil, &types.QRCode{
		Shop:             shop,
		Title:            in.Title,
		ProductID:        in.ProductID,
		ProductVariantID: in.ProductVariantID,
		ProductHandle:    in.ProductHandle,
		Destination:      in.Destination,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create qr code: %w", err)
	}
	s.log.Info("QR code created", "qrcode_id", rec.ID, "shop", shop)

	view, err := s.enricher.EnrichOne(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	s.notifier.QRCodeCreated(ctx, view)
	return view, nil, nil
}

func (s *qrCodeService) Update(ctx context.Context, id uint, in qrcodes.Candidate) (*types.EnrichedQRCode, qrcodes.FieldErrors, error) {
	shop, err := requireShop(ctx)
	if err != nil {
		return nil, nil, err
	}
	if errs := validateCandidate(in); errs != nil {
		return nil, errs, nil
	}
	found, err := s.repo.UpdateFields(ctx, nil, shop, id, map[string]interface{}{
		"title":              in.Title,
		"product_id":         in.ProductID,
		"product_variant_id": in.ProductVariantID,
		"product_handle":     in.ProductHandle,
		"destination":        in.Destination,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("update qr code %d: %w", id, err)
	}
	if !found {
		return nil, nil, apierr.NotFound("qr code")
	}

	rec, err := s.owned(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	view, err := s.enricher.EnrichOne(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	s.notifier.QRCodeUpdated(ctx, view)
	return view, nil, nil
}

func (s *qrCodeService) Delete(ctx context.Context, id uint) error {
	shop, err := requireShop(ctx)
	if err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, nil, shop, id)
	if err != nil {
		return fmt.Errorf("delete qr code %d: %w", id, err)
	}
	if !found {
		return apierr.NotFound("qr code")
	}
	s.log.Info("QR code deleted", "qrcode_id", id, "shop", shop)
	s.notifier.QRCodeDeleted(ctx, shop, id)
	return nil
}

// Scan resolves the destination before counting, so an unrenderable record
// never accumulates scans.
func (s *qrCodeService) Scan(ctx context.Context, id uint) (dest string, err error) {
	defer func() {
		if m := observability.Current(); m != nil {
			status := "redirected"
			switch {
			case errors.Is(err, qrcodes.ErrCorruptRecord):
				status = "corrupt"
			case err != nil:
				if ae, ok := apierr.As(err); ok && ae.Status == http.StatusNotFound {
					status = "not_found"
				} else {
					status = "error"
				}
			}
			m.IncScan(status)
		}
	}()

	rec, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return "", fmt.Errorf("load qr code %d: %w", id, err)
	}
	if rec == nil {
		return "", apierr.NotFound("qr code")
	}
	dest, err = qrcodes.ResolveDestination(rec)
	if err != nil {
		s.log.Error("Unresolvable qr code destination", "qrcode_id", id, "error", err)
		return "", err
	}
	found, err := s.repo.IncrementScans(ctx, nil, id)
	if err != nil {
		return "", fmt.Errorf("count scan for qr code %d: %w", id, err)
	}
	if !found {
		// deleted between the read and the increment
		return "", apierr.NotFound("qr code")
	}
	s.notifier.QRCodeScanned(ctx, rec.Shop, rec.ID, rec.Scans+1)
	return dest, nil
}

func (s *qrCodeService) Label(ctx context.Context, id uint) ([]byte, error) {
	rec, err := s.owned(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := s.labels.Render(ctx, rec.Title, qrcodes.ScanURL(s.enricher.AppBaseURL(), rec.ID))
	if err != nil {
		return nil, fmt.Errorf("render label for qr code %d: %w", id, err)
	}
	return png, nil
}

func (s *qrCodeService) Page(ctx context.Context, id uint) (*QRCodePage, error) {
	rec, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("load qr code %d: %w", id, err)
	}
	if rec == nil {
		return nil, apierr.NotFound("qr code")
	}
	img, err := s.encoder.Encode(ctx, qrcodes.ScanURL(s.enricher.AppBaseURL(), rec.ID))
	if err != nil {
		return nil, fmt.Errorf("encode qr code %d: %w", id, err)
	}
	return &QRCodePage{ID: rec.ID, Title: rec.Title, Image: img}, nil
}
