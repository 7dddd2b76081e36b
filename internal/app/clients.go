package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/platform/qrimage"
	"github.com/yungbote/qrcodes-backend/internal/platform/shopify"
	"github.com/yungbote/qrcodes-backend/internal/realtime/bus"
)

type Clients struct {
	Redis   *goredis.Client
	SSEBus  bus.Bus
	Shopify *shopify.Client
	Encoder *qrimage.Encoder
	Labels  *qrimage.LabelRenderer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis (optional; without it realtime events stay process-local)
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("redis ping %s: %w", addr, err)
		}
		b, err := bus.NewRedisBus(log, rdb, cfg.Redis.Channel)
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.Redis = rdb
		out.SSEBus = b
	}

	// Shopify Admin API
	tokens := shopify.NewStaticTokens(nil, cfg.Shopify.AdminAccessToken)
	sc, err := shopify.New(log, cfg.Shopify.Client(), tokens)
	if err != nil {
		return Clients{}, fmt.Errorf("init shopify client: %w", err)
	}
	out.Shopify = sc

	// QR rendering
	enc, err := qrimage.NewEncoder(cfg.QRImage)
	if err != nil {
		return Clients{}, fmt.Errorf("init qr encoder: %w", err)
	}
	out.Encoder = enc
	labels, err := qrimage.NewLabelRenderer(log, cfg.QRImage)
	if err != nil {
		return Clients{}, fmt.Errorf("init label renderer: %w", err)
	}
	out.Labels = labels

	return out, nil
}

func (c Clients) Close() {
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
