package app

import (
	httpH "github.com/yungbote/qrcodes-backend/internal/http/handlers"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
)

type Handlers struct {
	QRCode   *httpH.QRCodeHandler
	Public   *httpH.PublicHandler
	Realtime *httpH.RealtimeHandler
	Health   *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		QRCode:   httpH.NewQRCodeHandler(log, serviceset.QRCode),
		Public:   httpH.NewPublicHandler(log, serviceset.QRCode),
		Realtime: httpH.NewRealtimeHandler(log, hub),
		Health:   httpH.NewHealthHandler(metrics),
	}
}
