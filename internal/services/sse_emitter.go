package services

import (
	"context"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
	"github.com/yungbote/qrcodes-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers to clients connected to this process only.
type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes on the bus; every replica's forwarder feeds its hub.
type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
	}
}
