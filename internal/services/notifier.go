package services

import (
	"context"

	types "github.com/yungbote/qrcodes-backend/internal/domain"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
)

type QRCodeNotifier interface {
	QRCodeCreated(ctx context.Context, qr *types.EnrichedQRCode)
	QRCodeUpdated(ctx context.Context, qr *types.EnrichedQRCode)
	QRCodeDeleted(ctx context.Context, shop string, id uint)
	QRCodeScanned(ctx context.Context, shop string, id uint, scans int)
}

type qrCodeNotifier struct {
	emit SSEEmitter
}

func NewQRCodeNotifier(emit SSEEmitter) QRCodeNotifier {
	return &qrCodeNotifier{emit: emit}
}

func (n *qrCodeNotifier) QRCodeCreated(ctx context.Context, qr *types.EnrichedQRCode) {
	if n == nil || n.emit == nil || qr == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ShopChannel(qr.Shop),
		Event:   realtime.SSEEventQRCodeCreated,
		Data:    map[string]any{"qrcode": qr},
	})
}

func (n *qrCodeNotifier) QRCodeUpdated(ctx context.Context, qr *types.EnrichedQRCode) {
	if n == nil || n.emit == nil || qr == nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ShopChannel(qr.Shop),
		Event:   realtime.SSEEventQRCodeUpdated,
		Data:    map[string]any{"qrcode": qr},
	})
}

func (n *qrCodeNotifier) QRCodeDeleted(ctx context.Context, shop string, id uint) {
	if n == nil || n.emit == nil || shop == "" {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ShopChannel(shop),
		Event:   realtime.SSEEventQRCodeDeleted,
		Data:    map[string]any{"id": id},
	})
}

func (n *qrCodeNotifier) QRCodeScanned(ctx context.Context, shop string, id uint, scans int) {
	if n == nil || n.emit == nil || shop == "" {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.ShopChannel(shop),
		Event:   realtime.SSEEventQRCodeScanned,
		Data:    map[string]any{"id": id, "scans": scans},
	})
}
