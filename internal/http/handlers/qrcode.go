package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/http/response"
	"github.com/yungbote/qrcodes-backend/internal/modules/qrcodes"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/services"
)

const maxBodyBytes = 1 << 20

type QRCodeHandler struct {
	log *logger.Logger
	svc services.QRCodeService
}

func NewQRCodeHandler(log *logger.Logger, svc services.QRCodeService) *QRCodeHandler {
	return &QRCodeHandler{log: log.With("handler", "QRCodeHandler"), svc: svc}
}

// GET /api/qrcodes
func (h *QRCodeHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"qrcodes": list})
}

// GET /api/qrcodes/:id
func (h *QRCodeHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	qr, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"qrcode": qr})
}

func (h *QRCodeHandler) bindCandidate(c *gin.Context) (qrcodes.Candidate, bool) {
	var in qrcodes.Candidate
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return in, false
	}
	return in, true
}

// POST /api/qrcodes
func (h *QRCodeHandler) Create(c *gin.Context) {
	in, ok := h.bindCandidate(c)
	if !ok {
		return
	}
	qr, fieldErrs, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if fieldErrs != nil {
		response.RespondFieldErrors(c, fieldErrs)
		return
	}
	response.RespondCreated(c, gin.H{"qrcode": qr})
}

// PUT /api/qrcodes/:id
func (h *QRCodeHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := h.bindCandidate(c)
	if !ok {
		return
	}
	qr, fieldErrs, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if fieldErrs != nil {
		response.RespondFieldErrors(c, fieldErrs)
		return
	}
	response.RespondOK(c, gin.H{"qrcode": qr})
}

// DELETE /api/qrcodes/:id
func (h *QRCodeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/qrcodes/:id/label.png
func (h *QRCodeHandler) Label(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	png, err := h.svc.Label(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
