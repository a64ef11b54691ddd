package models

import "time"

const DefaultCategory = "Otro"

// DefaultTicketLabel is used when a ticket type arrives without a label.
const DefaultTicketLabel = "General"

type Organizer struct {
	Name    string `json:"nombre,omitempty"`
	Contact string `json:"contacto,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Event owns its ticket types and promotions; deleting it deletes them.
// Capacity is advisory and never checked against ticket quantities.
type Event struct {
	ID          string       `json:"id"`
	Name        string       `json:"nombre"`
	Description string       `json:"descripcion"`
	Date        time.Time    `json:"fecha"`
	Venue       string       `json:"lugar"`
	Capacity    int          `json:"capacidad"`
	Category    string       `json:"categoria"`
	Organizer   Organizer    `json:"organizador"`
	TicketTypes []TicketType `json:"tickets"`
	Promotions  []Promotion  `json:"promociones"`

	// Aggregates filled by list reads only.
	TotalAttendees      *int64 `json:"totalAsistentes,omitempty"`
	TotalTicketCapacity *int64 `json:"totalCapacidadTickets,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TicketType is a priced admission category. Sold is not checked against
// Quantity, so overselling is possible.
type TicketType struct {
	ID              string         `json:"id"`
	EventID         string         `json:"eventoId"`
	Label           string         `json:"tipo"`
	Price           float64        `json:"precio"`
	Quantity        int            `json:"cantidad"`
	Sold            int            `json:"vendidos"`
	Characteristics map[string]any `json:"caracteristicas"`
}

type Promotion struct {
	ID         string         `json:"id"`
	EventID    string         `json:"eventoId"`
	Code       string         `json:"codigo"`
	Discount   float64        `json:"descuento"`
	StartsAt   *time.Time     `json:"fechaInicio"`
	EndsAt     *time.Time     `json:"fechaFin"`
	Active     bool           `json:"activa"`
	Conditions map[string]any `json:"condiciones"`
}

// TicketListing is a ticket type flattened out of its event.
type TicketListing struct {
	TicketType
	EventName string `json:"eventoNombre"`
}

// PromotionListing is a promotion flattened out of its event.
type PromotionListing struct {
	Promotion
	EventName string `json:"eventoNombre"`
}

// Normalize replaces nil collections with empty ones so that responses always
// carry JSON arrays and objects.
func (e *Event) Normalize() {
	if e.TicketTypes == nil {
		e.TicketTypes = []TicketType{}
	}
	if e.Promotions == nil {
		e.Promotions = []Promotion{}
	}
	for i := range e.TicketTypes {
		if e.TicketTypes[i].Characteristics == nil {
			e.TicketTypes[i].Characteristics = map[string]any{}
		}
	}
	for i := range e.Promotions {
		if e.Promotions[i].Conditions == nil {
			e.Promotions[i].Conditions = map[string]any{}
		}
	}
}
