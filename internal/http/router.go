package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/qrcodes-backend/internal/http/handlers"
	httpMW "github.com/yungbote/qrcodes-backend/internal/http/middleware"
	"github.com/yungbote/qrcodes-backend/internal/observability"
	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	Tracing     bool

	ShopSession *httpMW.ShopSessionMiddleware

	QRCodeHandler   *httpH.QRCodeHandler
	PublicHandler   *httpH.PublicHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		if cfg.Metrics != nil {
			r.GET("/metrics", cfg.HealthHandler.Metrics)
		}
	}

	// Public QR landing page and scan redirect
	if cfg.PublicHandler != nil {
		r.GET("/qrcodes/:id", cfg.PublicHandler.Page)
		r.GET("/qrcodes/:id/scan", cfg.PublicHandler.Scan)
	}

	api := r.Group("/api")
	{
		if cfg.ShopSession != nil {
			api.Use(cfg.ShopSession.RequireShop())
		}

		if cfg.QRCodeHandler != nil {
			api.GET("/qrcodes", cfg.QRCodeHandler.List)
			api.POST("/qrcodes", cfg.QRCodeHandler.Create)
			api.GET("/qrcodes/:id", cfg.QRCodeHandler.Get)
			api.PUT("/qrcodes/:id", cfg.QRCodeHandler.Update)
			api.DELETE("/qrcodes/:id", cfg.QRCodeHandler.Delete)
			api.GET("/qrcodes/:id/label.png", cfg.QRCodeHandler.Label)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}
	}

	return r
}
