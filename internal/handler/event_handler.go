package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/service"
)

const eventNotFound = "Evento no encontrado"

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group, p Paths) {
	events := g.Group("/" + p.Events)
	events.GET("", h.ListEvents)
	events.POST("", h.CreateEvent)
	events.GET("/:id", h.GetEvent)
	events.PUT("/:id", h.ReplaceEvent)
	events.DELETE("/:id", h.DeleteEvent)
	events.POST("/:id/"+p.Tickets, h.AddTicketType)
	events.POST("/:id/"+p.Promotions, h.AddPromotion)

	g.GET("/"+p.Tickets, h.ListTicketTypes)
	g.GET("/"+p.Promotions, h.ListPromotions)
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return readError(err, eventNotFound)
	}
	return c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.svc.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return readError(err, eventNotFound)
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), &req)
	if err != nil {
		return writeError(err, eventNotFound, "Error al crear el evento")
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) ReplaceEvent(c echo.Context) error {
	var req dto.EventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	event, err := h.svc.ReplaceEvent(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return writeError(err, eventNotFound, "Error al actualizar el evento")
	}
	return c.JSON(http.StatusOK, event)
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.svc.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return readError(err, eventNotFound)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Evento eliminado"})
}

func (h *EventHandler) AddTicketType(c echo.Context) error {
	var req dto.TicketTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ticket, err := h.svc.AddTicketType(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return writeError(err, eventNotFound, "Error al agregar el ticket")
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *EventHandler) AddPromotion(c echo.Context) error {
	var req dto.PromotionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	promo, err := h.svc.AddPromotion(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return writeError(err, eventNotFound, "Error al agregar la promoción")
	}
	return c.JSON(http.StatusCreated, promo)
}

func (h *EventHandler) ListTicketTypes(c echo.Context) error {
	tickets, err := h.svc.ListTicketTypes(c.Request().Context())
	if err != nil {
		return readError(err, eventNotFound)
	}
	return c.JSON(http.StatusOK, tickets)
}

func (h *EventHandler) ListPromotions(c echo.Context) error {
	promos, err := h.svc.ListPromotions(c.Request().Context())
	if err != nil {
		return readError(err, eventNotFound)
	}
	return c.JSON(http.StatusOK, promos)
}
