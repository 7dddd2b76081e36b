package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/services"
)

var pageTemplate = template.Must(template.New("qrcode").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>body{font-family:sans-serif;text-align:center;padding:2rem}img{max-width:320px;width:100%}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<img src="{{.Image}}" alt="QR code for {{.Title}}">
</body>
</html>
`))

// PublicHandler serves the unauthenticated QR landing page and scan redirect.
type PublicHandler struct {
	log *logger.Logger
	svc services.QRCodeService
}

func NewPublicHandler(log *logger.Logger, svc services.QRCodeService) *PublicHandler {
	return &PublicHandler{log: log.With("handler", "PublicHandler"), svc: svc}
}

// GET /qrcodes/:id
func (h *PublicHandler) Page(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	page, err := h.svc.Page(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	data := struct {
		Title string
		Image template.URL
	}{Title: page.Title, Image: template.URL(page.Image)}
	if err := pageTemplate.Execute(c.Writer, data); err != nil {
		h.log.Warn("Render qr page failed", "qrcode_id", id, "error", err)
	}
}

// GET /qrcodes/:id/scan
func (h *PublicHandler) Scan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	dest, err := h.svc.Scan(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Redirect(http.StatusFound, dest)
}
