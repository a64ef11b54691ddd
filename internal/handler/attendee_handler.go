package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/service"
)

const attendeeNotFound = "Asistente no encontrado"

type AttendeeHandler struct {
	svc service.AttendeeService
}

func NewAttendeeHandler(svc service.AttendeeService) *AttendeeHandler {
	return &AttendeeHandler{svc: svc}
}

func (h *AttendeeHandler) RegisterRoutes(g *echo.Group, p Paths) {
	attendees := g.Group("/" + p.Attendees)
	attendees.GET("", h.ListAttendees)
	attendees.POST("", h.CreateAttendee)
	attendees.GET("/:id", h.GetAttendee)
	attendees.PUT("/:id", h.UpdateAttendee)
	attendees.DELETE("/:id", h.DeleteAttendee)
	attendees.POST("/:id/"+p.Attendances, h.AddAttendance)
}

func (h *AttendeeHandler) ListAttendees(c echo.Context) error {
	attendees, err := h.svc.ListAttendees(c.Request().Context())
	if err != nil {
		return readError(err, attendeeNotFound)
	}
	return c.JSON(http.StatusOK, attendees)
}

func (h *AttendeeHandler) GetAttendee(c echo.Context) error {
	a, err := h.svc.GetAttendee(c.Request().Context(), c.Param("id"))
	if err != nil {
		return readError(err, attendeeNotFound)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AttendeeHandler) CreateAttendee(c echo.Context) error {
	var req dto.AttendeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.svc.CreateAttendee(c.Request().Context(), &req)
	if err != nil {
		return writeError(err, attendeeNotFound, "Error al crear el asistente")
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AttendeeHandler) UpdateAttendee(c echo.Context) error {
	var req dto.AttendeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	a, err := h.svc.UpdateAttendee(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return writeError(err, attendeeNotFound, "Error al actualizar el asistente")
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AttendeeHandler) DeleteAttendee(c echo.Context) error {
	if err := h.svc.DeleteAttendee(c.Request().Context(), c.Param("id")); err != nil {
		return readError(err, attendeeNotFound)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Asistente eliminado"})
}

func (h *AttendeeHandler) AddAttendance(c echo.Context) error {
	var req dto.AttendanceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	at, err := h.svc.AddAttendance(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return writeError(err, attendeeNotFound, "Error al registrar la asistencia")
	}
	return c.JSON(http.StatusCreated, at)
}
