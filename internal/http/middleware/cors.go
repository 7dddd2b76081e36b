package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultDevOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the embedded admin frontend. An empty list falls back to local dev origins.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultDevOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", headerShopDomain, headerRequestID},
		ExposeHeaders:    []string{headerTraceID, headerRequestID},
		AllowCredentials: true,
	})
}
