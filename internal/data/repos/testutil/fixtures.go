package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/qrcodes-backend/internal/domain"
)

func SeedQRCode(tb testing.TB, ctx context.Context, tx *gorm.DB, shop, title string) *types.QRCode {
	tb.Helper()
	rec := &types.QRCode{
		Shop:          shop,
		Title:         title,
		ProductID:     "gid://shopify/Product/1",
		ProductHandle: "handle",
		Destination:   types.DestinationProduct,
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed qr code: %v", err)
	}
	return rec
}

func SeedCartQRCode(tb testing.TB, ctx context.Context, tx *gorm.DB, shop, variantID string) *types.QRCode {
	tb.Helper()
	rec := &types.QRCode{
		Shop:             shop,
		Title:            "cart " + variantID,
		ProductID:        "gid://shopify/Product/1",
		ProductVariantID: variantID,
		Destination:      types.DestinationCart,
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed cart qr code: %v", err)
	}
	return rec
}
