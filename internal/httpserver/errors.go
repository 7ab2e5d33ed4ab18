package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/labstack/echo/v4"
)

const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindBadRequest   = "bad_request"
	KindInternal     = "internal"
)

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, KindBadRequest
	case errors.Is(err, service.ErrValidation):
		return http.StatusUnprocessableEntity, KindValidation
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, KindNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, KindConflict
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, KindUnauthorized
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// writeError logs the failure under event and renders the service error as
// {"kind","message","fields"}.
func writeError(c echo.Context, l *slog.Logger, event string, err error) error {
	status, kind := classify(err)
	body := transport.ErrorResponse{Kind: kind, Message: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body.Message = "the given data was invalid"
		body.Fields = verr.Fields
	}

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", kind, "error", err)
		body.Message = "internal error"
	} else {
		l.Warn(event, "status", status, "reason", kind, "error", err)
	}
	return c.JSON(status, body)
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindValidation
	}
	if status >= http.StatusInternalServerError {
		return KindInternal
	}
	return KindBadRequest
}

// ErrorHandler renders errors that escape handlers (middleware rejections,
// unknown routes, bind failures) in the same JSON shape as writeError.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	msg := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	}

	body := transport.ErrorResponse{Kind: kindForStatus(status), Message: msg}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
