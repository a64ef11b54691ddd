package dto

// Routing keys published on the events exchange.
const (
	RouteEventCreated      = "event.created"
	RouteEventUpdated      = "event.updated"
	RouteEventDeleted      = "event.deleted"
	RouteAttendeeCreated   = "attendee.created"
	RouteAttendeeUpdated   = "attendee.updated"
	RouteAttendeeDeleted   = "attendee.deleted"
	RouteAttendanceCreated = "attendance.created"
)

type DeletedMessage struct {
	ID string `json:"id"`
}

// AttendanceCreatedMessage is published once per stored attendance and drives
// the sold counter of its ticket type.
type AttendanceCreatedMessage struct {
	AttendanceID string  `json:"asistenciaId"`
	AttendeeID   string  `json:"asistenteId"`
	EventID      string  `json:"eventoId"`
	TicketTypeID string  `json:"ticketId"`
	FinalPrice   float64 `json:"precioFinal"`
	Status       string  `json:"estado"`
}
