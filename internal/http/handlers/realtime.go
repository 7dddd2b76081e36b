package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/http/response"
	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[string]*realtime.SSEClient // key: session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[string]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	sd := ctxutil.GetShopData(c.Request.Context())
	if sd == nil || sd.Shop == "" {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	client := h.hub.NewSSEClient(sd.Shop)
	if sd.SessionID != "" {
		h.mu.Lock()
		// a reconnecting session replaces its previous stream
		if existing, ok := h.clients[sd.SessionID]; ok {
			h.hub.CloseClient(existing)
		}
		h.clients[sd.SessionID] = client
		h.mu.Unlock()
	}
	h.log.Info("SSEStream open", "shop", sd.Shop, "client_id", client.ID.String())

	h.hub.AddChannel(client, realtime.ShopChannel(sd.Shop))
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	if sd.SessionID != "" {
		h.mu.Lock()
		if h.clients[sd.SessionID] == client {
			delete(h.clients, sd.SessionID)
		} else {
			// already replaced and closed
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()
	}
	h.hub.CloseClient(client)
}
