package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/qrcodes-backend/internal/http/response"
	"github.com/yungbote/qrcodes-backend/internal/modules/qrcodes"
	"github.com/yungbote/qrcodes-backend/internal/platform/apierr"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
	"github.com/yungbote/qrcodes-backend/internal/platform/shopify"
)

var errInvalidID = errors.New("invalid qr code id")

// respondServiceError maps service and pipeline errors onto the API envelope.
func respondServiceError(c *gin.Context, log *logger.Logger, err error) {
	if ae, ok := apierr.As(err); ok {
		response.RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	switch {
	case errors.Is(err, qrcodes.ErrCorruptRecord):
		log.Error("Corrupt qr code record", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "corrupt_record", err)
	case errors.Is(err, shopify.ErrCatalog):
		response.RespondError(c, http.StatusBadGateway, "catalog_unavailable", err)
	default:
		log.Error("Request failed", "path", c.FullPath(), "error", err)
		response.RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errInvalidID)
		return 0, false
	}
	return uint(id), true
}
