package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/repository"
	"github.com/organizador-eventos/backend/internal/service"
	"github.com/organizador-eventos/backend/pkg/validator"
)

func httpError(code int, message string, err error, details string) *echo.HTTPError {
	body := dto.ErrorResponse{Message: message, Details: details}
	if err != nil {
		body.Error = err.Error()
	}
	return echo.NewHTTPError(code, body).SetInternal(err)
}

// bindAndValidate decodes the body into req and runs the struct rules.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Internal != nil {
			err = he.Internal
		}
		return httpError(http.StatusBadRequest, "Cuerpo de la solicitud inválido", err, "")
	}
	if err := c.Validate(req); err != nil {
		var vErr *validator.Error
		if errors.As(err, &vErr) {
			return httpError(http.StatusBadRequest, "Datos inválidos", err, vErr.Field)
		}
		return httpError(http.StatusBadRequest, "Datos inválidos", err, "")
	}
	return nil
}

// readError maps failures of reads and deletes. Anything unclassified is a
// storage failure.
func readError(err error, notFound string) error {
	if he := commonError(err, notFound); he != nil {
		return he
	}
	return httpError(http.StatusInternalServerError, "Error interno del servidor", err, "")
}

// writeError maps failures of creates, updates and appends. Unclassified
// errors carry the storage message back to the caller.
func writeError(err error, notFound, failed string) error {
	if he := commonError(err, notFound); he != nil {
		return he
	}
	return httpError(http.StatusBadRequest, failed, err, "")
}

func commonError(err error, notFound string) *echo.HTTPError {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return httpError(http.StatusBadRequest, "Datos inválidos", err, vErr.Field)
	case errors.Is(err, service.ErrEventNotFound), errors.Is(err, service.ErrAttendeeNotFound):
		return httpError(http.StatusNotFound, notFound, err, "")
	case errors.Is(err, repository.ErrInvalidID):
		return httpError(http.StatusBadRequest, "Identificador inválido", err, "")
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrInvalidReference):
		return httpError(http.StatusBadRequest, "Violación de integridad", err, "")
	}
	return nil
}
