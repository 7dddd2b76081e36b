package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/qrcodes-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext runs after otelgin so a sampled span's trace id wins over
// a generated one.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		span := trace.SpanFromContext(c.Request.Context())
		traceID := ""
		if sc := span.SpanContext(); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		}
		if traceID == "" {
			traceID = strings.TrimSpace(c.GetHeader(headerTraceID))
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		span.SetAttributes(attribute.String("http.request_id", reqID))

		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}
