package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/rs/zerolog"
)

// ErrorHandler renders every error as a dto.ErrorResponse. Server errors are
// logged with their internal cause.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	body := dto.ErrorResponse{Message: "Error interno del servidor", Error: err.Error()}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		switch m := he.Message.(type) {
		case dto.ErrorResponse:
			body = m
		case string:
			body = dto.ErrorResponse{Message: m}
		default:
			body = dto.ErrorResponse{Message: fmt.Sprint(m)}
		}
	}

	if code >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).
			Str("method", c.Request().Method).
			Str("uri", c.Request().RequestURI).
			Msg("request failed")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}
