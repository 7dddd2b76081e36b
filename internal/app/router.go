package app

import (
	httpx "github.com/yungbote/qrcodes-backend/internal/http"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *httpx.Server {
	return httpx.NewServer(httpx.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.Otel.ServiceName,
		CORSOrigins:     cfg.Server.CORSOrigins,
		Tracing:         cfg.Otel.Enabled,
		ShopSession:     middleware.ShopSession,
		QRCodeHandler:   handlers.QRCode,
		PublicHandler:   handlers.Public,
		RealtimeHandler: handlers.Realtime,
		HealthHandler:   handlers.Health,
	})
}
