package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"property-service/internal/apperror"
	"property-service/internal/middleware"
	"property-service/pkg/logger"
	"property-service/pkg/tracing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	TraceID   string   `json:"trace_id,omitempty"`
}

// HTTPErrorHandler renders domain errors with their stable code and status.
// Anything unrecognised becomes a 500 whose body never carries the cause.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := logger.FromContext(c)
	status := http.StatusInternalServerError
	body := ErrorResponse{
		Code:    string(apperror.KindInternal),
		Message: "internal server error",
	}

	var he *echo.HTTPError
	if appErr, ok := apperror.As(err); ok {
		status = apperror.HTTPStatus(appErr.Kind)
		body.Code = string(appErr.Kind)
		body.Message = appErr.Message
		body.Details = appErr.Details
		if appErr.Kind == apperror.KindInternal {
			body.Message = "internal server error"
			body.Details = nil
		}
		log.Info("Request failed",
			zap.String("code", body.Code),
			zap.Int("status", status),
			zap.Strings("details", appErr.Details))
	} else if errors.As(err, &he) {
		status = he.Code
		body.Code = codeForStatus(he.Code)
		body.Message = strings.ToLower(fmt.Sprint(he.Message))
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", zap.Int("status", status), zap.Error(err))
			body.Message = "internal server error"
		}
	} else {
		log.Error("Unhandled error", zap.Error(err))
	}

	if status >= http.StatusInternalServerError && body.Code == string(apperror.KindInternal) {
		body.TraceID = tracing.GetTraceID(c.Request().Context())
	}
	body.RequestID = middleware.GetRequestID(c)

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Error("Failed to write error response", zap.Error(err))
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(apperror.KindValidation)
	case http.StatusUnauthorized:
		return string(apperror.KindUnauthorized)
	case http.StatusForbidden:
		return string(apperror.KindForbidden)
	}
	if status >= http.StatusInternalServerError {
		return string(apperror.KindInternal)
	}
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
