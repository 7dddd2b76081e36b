package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
)

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus publishes and subscribes on channel using rdb. The client is
// owned by the caller.
func NewRedisBus(log *logger.Logger, rdb *goredis.Client, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "qrcodes:sse"
	}
	return &redisBus{
		log:     log.With("service", "RedisSSEBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	// wait for the subscription confirmation
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg realtime.SSEMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.log.Warn("bad redis SSE payload", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

// Close is a no-op: the redis client belongs to the caller.
func (b *redisBus) Close() error { return nil }
