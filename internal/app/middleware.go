package app

import (
	httpMW "github.com/yungbote/qrcodes-backend/internal/http/middleware"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type Middleware struct {
	ShopSession *httpMW.ShopSessionMiddleware
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		ShopSession: httpMW.NewShopSessionMiddleware(log, httpMW.ShopSessionConfig{
			APIKey:    cfg.Shopify.APIKey,
			APISecret: cfg.Shopify.APISecret,
		}),
	}
}
