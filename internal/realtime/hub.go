package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

const heartbeatEvery = 15 * time.Second

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
	}
}

func (hub *SSEHub) NewSSEClient(shop string) *SSEClient {
	id := uuid.New()
	if m := observability.Current(); m != nil {
		m.SSEClientsInc()
	}
	return &SSEClient{
		ID:       id,
		Shop:     shop,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, clientBuffer),
		done:     make(chan struct{}),
		Logger:   hub.logger.With("client_id", id.String()),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()

	client.Channels[channel] = true
	clients, ok := hub.subscriptions[channel]
	if !ok {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true
	client.Logger.Debug("SSE client subscribed", "channel", channel)
}

func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	for ch := range client.Channels {
		if subs, ok := hub.subscriptions[ch]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(hub.subscriptions, ch)
			}
		}
	}
	client.Channels = make(map[string]bool)
}

// Subscribers returns the number of clients on channel.
func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

// Broadcast delivers msg to every local subscriber of msg.Channel. Slow
// clients lose the message rather than blocking the publisher.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for c := range hub.subscriptions[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			if m := observability.Current(); m != nil {
				m.IncSSEDropped()
			}
			c.Logger.Warn("Dropping SSE message; outbound buffer full", "event", msg.Event)
		}
	}
}

func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			client.Logger.Debug("SSE client context done", "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				client.Logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes client and closes its channels. Unsubscribing
// first guarantees Broadcast never sends on a closed Outbound.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	hub.RemoveClient(client)
	close(client.done)
	close(client.Outbound)
	if m := observability.Current(); m != nil {
		m.SSEClientsDec()
	}
}
