package dto

import "github.com/organizador-eventos/backend/internal/models"

type OrganizerRequest struct {
	Name    string `json:"nombre"`
	Contact string `json:"contacto"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type TicketTypeRequest struct {
	Label           string         `json:"tipo" validate:"max=100"`
	Price           Number         `json:"precio"`
	Quantity        Number         `json:"cantidad"`
	Sold            Number         `json:"vendidos"`
	Characteristics map[string]any `json:"caracteristicas"`
}

type PromotionRequest struct {
	Code       string         `json:"codigo" validate:"notblank,max=50"`
	Discount   Number         `json:"descuento"`
	StartsAt   Date           `json:"fechaInicio"`
	EndsAt     Date           `json:"fechaFin"`
	Active     *bool          `json:"activa"`
	Conditions map[string]any `json:"condiciones"`
}

// EventRequest is the payload for create and replace. It always carries the
// complete desired child set.
type EventRequest struct {
	Name        string              `json:"nombre" validate:"notblank"`
	Description string              `json:"descripcion" validate:"notblank"`
	Date        Date                `json:"fecha"`
	Venue       string              `json:"lugar" validate:"notblank"`
	Capacity    Number              `json:"capacidad"`
	Category    string              `json:"categoria"`
	Organizer   *OrganizerRequest   `json:"organizador"`
	TicketTypes []TicketTypeRequest `json:"tickets" validate:"dive"`
	Promotions  []PromotionRequest  `json:"promociones" validate:"dive"`
}

type PreferencesRequest struct {
	Dietary       []string  `json:"dietarias"`
	Interests     Interests `json:"intereses"`
	Accessibility *string   `json:"accesibilidad"`
}

type AttendeeRequest struct {
	Name        string              `json:"nombre" validate:"notblank"`
	Email       string              `json:"email" validate:"required,email"`
	Phone       string              `json:"telefono"`
	Document    string              `json:"documento"`
	Company     string              `json:"empresa"`
	JobTitle    string              `json:"cargo"`
	Preferences *PreferencesRequest `json:"preferencias"`
	Attributes  models.Attributes   `json:"datosAdicionales"`
	Status      string              `json:"estado" validate:"omitempty,oneof=Activo Inactivo"`
}

type AttendanceRequest struct {
	EventID      string `json:"eventoId" validate:"notblank"`
	TicketTypeID string `json:"ticketId" validate:"notblank"`
	PurchasedAt  Date   `json:"fechaCompra"`
	FinalPrice   Number `json:"precioFinal"`
	Status       string `json:"estado" validate:"omitempty,oneof=Confirmado Pendiente Cancelado"`
}
