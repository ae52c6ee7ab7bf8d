package middleware

import (
	"property-service/pkg/logger"
	"property-service/pkg/tracing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware tags each request with an id, reusing the caller's
// X-Request-ID when present, and stores a logger carrying it in both the echo
// context and the request context.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		requestID := req.Header.Get(echo.HeaderXRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		req.Header.Set(echo.HeaderXRequestID, requestID)
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)
		c.Set("request_id", requestID)

		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.GetTraceID(req.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		log := logger.GetLogger().With(fields...)

		c.Set(logger.EchoKey, log)
		c.SetRequest(req.WithContext(logger.WithLogger(req.Context(), log)))

		return next(c)
	}
}

// GetRequestID returns the id assigned by RequestIDMiddleware
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
