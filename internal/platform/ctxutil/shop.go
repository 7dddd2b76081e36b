package ctxutil

import "context"

type shopDataKey struct{}

// ShopData identifies the tenant a request acts for.
type ShopData struct {
	Shop      string
	SessionID string
}

func WithShopData(ctx context.Context, sd *ShopData) context.Context {
	return context.WithValue(ctx, shopDataKey{}, sd)
}

func GetShopData(ctx context.Context) *ShopData {
	if sd, ok := ctx.Value(shopDataKey{}).(*ShopData); ok {
		return sd
	}
	return nil
}

// Shop returns the current shop domain or "".
func Shop(ctx context.Context) string {
	if sd := GetShopData(ctx); sd != nil {
		return sd.Shop
	}
	return ""
}
