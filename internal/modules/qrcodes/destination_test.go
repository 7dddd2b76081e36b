package qrcodes

import (
	"errors"
	"testing"

	"github.com/yungbote/qrcodes-backend/internal/domain"
)

func TestResolveDestinationProduct(t *testing.T) {
	t.Parallel()

	rec := &domain.QRCode{
		ID:            1,
		Shop:          "demo.myshopify.com",
		ProductHandle: "the-complete-snowboard",
		Destination:   domain.DestinationProduct,
	}
	got, err := ResolveDestination(rec)
	if err != nil {
		t.Fatalf("ResolveDestination: %v", err)
	}
	if want := "https://demo.myshopify.com/products/the-complete-snowboard"; got != want {
		t.Fatalf("url: want=%s got=%s", want, got)
	}
}

func TestResolveDestinationCart(t *testing.T) {
	t.Parallel()

	rec := &domain.QRCode{
		ID:               2,
		Shop:             "demo.myshopify.com",
		ProductVariantID: "gid://shopify/ProductVariant/44012345678",
		Destination:      domain.DestinationCart,
	}
	got, err := ResolveDestination(rec)
	if err != nil {
		t.Fatalf("ResolveDestination: %v", err)
	}
	if want := "https://demo.myshopify.com/cart/44012345678:1"; got != want {
		t.Fatalf("url: want=%s got=%s", want, got)
	}
}

func TestResolveDestinationCorruptVariant(t *testing.T) {
	t.Parallel()

	for _, variant := range []string{
		"",
		"gid://shopify/ProductVariant/",
		"gid://shopify/ProductVariant/12abc",
		"gid://shopify/Product/12",
		"ProductVariant/12",
	} {
		rec := &domain.QRCode{ID: 9, Shop: "demo.myshopify.com", ProductVariantID: variant, Destination: domain.DestinationCart}
		url, err := ResolveDestination(rec)
		if err == nil {
			t.Fatalf("variant %q: expected error, got url=%s", variant, url)
		}
		if url != "" {
			t.Fatalf("variant %q: expected no url, got %s", variant, url)
		}
		if !errors.Is(err, ErrCorruptRecord) {
			t.Fatalf("variant %q: expected ErrCorruptRecord, got %v", variant, err)
		}
		var cre *CorruptRecordError
		if !errors.As(err, &cre) || cre.RecordID != 9 || cre.Field != "productVariantId" {
			t.Fatalf("variant %q: unexpected error detail %#v", variant, cre)
		}
	}
}

func TestResolveDestinationUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := ResolveDestination(&domain.QRCode{ID: 3, Shop: "s", Destination: "checkout"})
	var cre *CorruptRecordError
	if !errors.As(err, &cre) || cre.Field != "destination" {
		t.Fatalf("expected destination corrupt error, got %v", err)
	}
}

func TestParseVariantID(t *testing.T) {
	t.Parallel()

	id, ok := ParseVariantID("gid://shopify/ProductVariant/42")
	if !ok || id != 42 {
		t.Fatalf("ParseVariantID: want=42,true got=%d,%v", id, ok)
	}
	if _, ok := ParseVariantID("gid://shopify/ProductVariant/99999999999999999999999"); ok {
		t.Fatalf("overflowing id should not parse")
	}
}

func TestScanURL(t *testing.T) {
	t.Parallel()

	if got := ScanURL("https://qr.example.app/", 12); got != "https://qr.example.app/qrcodes/12/scan" {
		t.Fatalf("ScanURL: got=%s", got)
	}
	if got := ScanURL("https://qr.example.app", 1); got != "https://qr.example.app/qrcodes/1/scan" {
		t.Fatalf("ScanURL: got=%s", got)
	}
}
