package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"property-service/internal/apperror"
	"property-service/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware adds prometheus metrics to track HTTP requests
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		// The error handler has not written the response yet
		code := c.Response().Status
		if err != nil {
			code = statusOf(err)
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		prometheus.RecordHTTPRequest(c.Request().Method, path, strconv.Itoa(code), code, time.Since(start))

		return err
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if appErr, ok := apperror.As(err); ok {
		return apperror.HTTPStatus(appErr.Kind)
	}
	return http.StatusInternalServerError
}
