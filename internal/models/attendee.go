package models

import "time"

type AttendeeStatus string

const (
	AttendeeActive   AttendeeStatus = "Activo"
	AttendeeInactive AttendeeStatus = "Inactivo"
)

type AttendanceStatus string

const (
	AttendanceConfirmed AttendanceStatus = "Confirmado"
	AttendancePending   AttendanceStatus = "Pendiente"
	AttendanceCancelled AttendanceStatus = "Cancelado"
)

type Preferences struct {
	Dietary       []string `json:"dietarias"`
	Interests     []string `json:"intereses"`
	Accessibility string   `json:"accesibilidad,omitempty"`
}

// Attendee owns its attendance history.
type Attendee struct {
	ID          string         `json:"id"`
	Name        string         `json:"nombre"`
	Email       string         `json:"email"`
	Phone       string         `json:"telefono,omitempty"`
	Document    string         `json:"documento,omitempty"`
	Company     string         `json:"empresa,omitempty"`
	JobTitle    string         `json:"cargo,omitempty"`
	Preferences Preferences    `json:"preferencias"`
	Attributes  Attributes     `json:"datosAdicionales"`
	Status      AttendeeStatus `json:"estado"`
	Attendances []Attendance   `json:"asistencias"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Attendance links an attendee to one event and ticket type. The references
// are lookups only.
type Attendance struct {
	ID           string           `json:"id"`
	EventID      string           `json:"eventoId"`
	TicketTypeID string           `json:"ticketId"`
	PurchasedAt  time.Time        `json:"fechaCompra"`
	FinalPrice   float64          `json:"precioFinal"`
	Status       AttendanceStatus `json:"estado"`

	// Display labels resolved on read.
	EventName   string     `json:"eventoNombre,omitempty"`
	EventDate   *time.Time `json:"eventoFecha,omitempty"`
	TicketLabel string     `json:"ticketTipo,omitempty"`
}

func (a *Attendee) Normalize() {
	if a.Preferences.Dietary == nil {
		a.Preferences.Dietary = []string{}
	}
	if a.Preferences.Interests == nil {
		a.Preferences.Interests = []string{}
	}
	if a.Attributes == nil {
		a.Attributes = Attributes{}
	}
	if a.Attendances == nil {
		a.Attendances = []Attendance{}
	}
	if a.Status == "" {
		a.Status = AttendeeActive
	}
}

// MergeInterests returns existing followed by every incoming interest not yet
// present. Duplicates are dropped and first occurrence order is kept.
func MergeInterests(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, v := range list {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
