package app

import (
	"fmt"

	"github.com/yungbote/qrcodes-backend/internal/modules/qrcodes"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
	"github.com/yungbote/qrcodes-backend/internal/services"
)

type Services struct {
	Enricher *qrcodes.Enricher
	Emitter  services.SSEEmitter
	QRCode   services.QRCodeService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	enricher, err := qrcodes.NewEnricher(qrcodes.EnricherDeps{
		Log:            log,
		Store:          services.NewRecordStore(reposet.QRCode),
		Catalog:        clients.Shopify,
		Encoder:        clients.Encoder,
		AppBaseURL:     cfg.Server.AppBaseURL,
		MaxConcurrency: cfg.Enrich.MaxConcurrency,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init enricher: %w", err)
	}

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}

	qr := services.NewQRCodeService(
		log,
		reposet.QRCode,
		enricher,
		clients.Encoder,
		clients.Labels,
		services.NewQRCodeNotifier(emitter),
	)

	return Services{
		Enricher: enricher,
		Emitter:  emitter,
		QRCode:   qr,
	}, nil
}
