package relational

import (
	"strconv"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"gorm.io/gorm"
)

type eventRecord struct {
	ID               uint               `gorm:"primaryKey"`
	Name             string             `gorm:"column:nombre;size:200;not null"`
	Description      string             `gorm:"column:descripcion;type:text;not null"`
	Date             time.Time          `gorm:"column:fecha;not null;index"`
	Venue            string             `gorm:"column:lugar;size:200;not null"`
	Capacity         int                `gorm:"column:capacidad;not null"`
	Category         string             `gorm:"column:categoria;size:100;not null"`
	OrganizerName    *string            `gorm:"column:organizador_nombre;size:200"`
	OrganizerContact *string            `gorm:"column:organizador_contacto;size:200"`
	OrganizerEmail   *string            `gorm:"column:organizador_email;size:255"`
	TicketTypes      []ticketTypeRecord `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	Promotions       []promotionRecord  `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (eventRecord) TableName() string { return "eventos" }

type ticketTypeRecord struct {
	ID              uint              `gorm:"primaryKey"`
	EventID         uint              `gorm:"column:evento_id;not null;index"`
	Label           string            `gorm:"column:tipo;size:100;not null"`
	Price           float64           `gorm:"column:precio;type:decimal(10,2);not null"`
	Quantity        int               `gorm:"column:cantidad;not null"`
	Characteristics map[string]any    `gorm:"column:caracteristicas;type:text;serializer:json"`
	Sales           ticketSalesRecord `gorm:"foreignKey:TicketTypeID;constraint:OnDelete:CASCADE"`
}

func (ticketTypeRecord) TableName() string { return "tipos_ticket" }

// ticketSalesRecord is the sold counter paired one-to-one with a ticket type.
type ticketSalesRecord struct {
	ID           uint `gorm:"primaryKey"`
	TicketTypeID uint `gorm:"column:tipo_ticket_id;not null;uniqueIndex"`
	Sold         int  `gorm:"column:vendidos;not null"`
}

func (ticketSalesRecord) TableName() string { return "tickets" }

type promotionRecord struct {
	ID         uint           `gorm:"primaryKey"`
	EventID    uint           `gorm:"column:evento_id;not null;uniqueIndex:idx_promociones_evento_codigo"`
	Code       string         `gorm:"column:codigo;size:50;not null;uniqueIndex:idx_promociones_evento_codigo"`
	Discount   float64        `gorm:"column:descuento;type:decimal(5,2);not null"`
	StartsAt   *time.Time     `gorm:"column:fecha_inicio"`
	EndsAt     *time.Time     `gorm:"column:fecha_fin"`
	Active     bool           `gorm:"column:activa;not null"`
	Conditions map[string]any `gorm:"column:condiciones;type:text;serializer:json"`
}

func (promotionRecord) TableName() string { return "promociones" }

type attendeeRecord struct {
	ID            uint               `gorm:"primaryKey"`
	Name          string             `gorm:"column:nombre;size:200;not null;index"`
	Email         string             `gorm:"column:email;size:255;not null;uniqueIndex"`
	Phone         string             `gorm:"column:telefono;size:50"`
	Document      string             `gorm:"column:documento;size:50"`
	Company       string             `gorm:"column:empresa;size:200"`
	JobTitle      string             `gorm:"column:cargo;size:200"`
	Accessibility string             `gorm:"column:accesibilidad;size:500"`
	Status        string             `gorm:"column:estado;size:20;not null"`
	Dietary       []dietaryRecord    `gorm:"foreignKey:AttendeeID;constraint:OnDelete:CASCADE"`
	Interests     []interestRecord   `gorm:"foreignKey:AttendeeID;constraint:OnDelete:CASCADE"`
	Attributes    []attributeRecord  `gorm:"foreignKey:AttendeeID;constraint:OnDelete:CASCADE"`
	Attendances   []attendanceRecord `gorm:"foreignKey:AttendeeID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (attendeeRecord) TableName() string { return "asistentes" }

type dietaryRecord struct {
	ID         uint   `gorm:"primaryKey"`
	AttendeeID uint   `gorm:"column:asistente_id;not null;index"`
	Preference string `gorm:"column:preferencia;size:100;not null"`
}

func (dietaryRecord) TableName() string { return "preferencias_dietarias" }

type interestRecord struct {
	ID         uint   `gorm:"primaryKey"`
	AttendeeID uint   `gorm:"column:asistente_id;not null;index"`
	Interest   string `gorm:"column:interes;size:100;not null"`
}

func (interestRecord) TableName() string { return "intereses" }

// attributeRecord stores one free-form key/value pair (EAV). Position keeps
// the order the keys were supplied in.
type attributeRecord struct {
	ID         uint   `gorm:"primaryKey"`
	AttendeeID uint   `gorm:"column:asistente_id;not null;index"`
	Position   int    `gorm:"column:posicion;not null"`
	Key        string `gorm:"column:clave;size:100;not null"`
	Value      string `gorm:"column:valor;type:text"`
}

func (attributeRecord) TableName() string { return "datos_adicionales" }

// attendanceRecord references its event with a cascading key. The ticket type
// reference is nulled when the event's ticket types are replaced.
type attendanceRecord struct {
	ID           uint              `gorm:"primaryKey"`
	AttendeeID   uint              `gorm:"column:asistente_id;not null;index"`
	EventID      uint              `gorm:"column:evento_id;not null;index"`
	TicketTypeID *uint             `gorm:"column:tipo_ticket_id;index"`
	PurchasedAt  time.Time         `gorm:"column:fecha_compra;not null"`
	FinalPrice   float64           `gorm:"column:precio_final;type:decimal(10,2);not null"`
	Status       string            `gorm:"column:estado;size:20;not null"`
	Event        *eventRecord      `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	TicketType   *ticketTypeRecord `gorm:"foreignKey:TicketTypeID;constraint:OnDelete:SET NULL"`
}

func (attendanceRecord) TableName() string { return "asistencias" }

// Migrate creates or updates every table, parents first.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&eventRecord{},
		&ticketTypeRecord{},
		&ticketSalesRecord{},
		&promotionRecord{},
		&attendeeRecord{},
		&dietaryRecord{},
		&interestRecord{},
		&attributeRecord{},
		&attendanceRecord{},
	)
}

func parseID(id string) (uint, error) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, repository.ErrInvalidID
	}
	return uint(n), nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toEventRecord(e *models.Event) eventRecord {
	return eventRecord{
		Name:             e.Name,
		Description:      e.Description,
		Date:             e.Date,
		Venue:            e.Venue,
		Capacity:         e.Capacity,
		Category:         e.Category,
		OrganizerName:    optional(e.Organizer.Name),
		OrganizerContact: optional(e.Organizer.Contact),
		OrganizerEmail:   optional(e.Organizer.Email),
	}
}

func toTicketTypeRecord(eventID uint, t *models.TicketType) ticketTypeRecord {
	return ticketTypeRecord{
		EventID:         eventID,
		Label:           t.Label,
		Price:           t.Price,
		Quantity:        t.Quantity,
		Characteristics: t.Characteristics,
	}
}

func toPromotionRecord(eventID uint, p *models.Promotion) promotionRecord {
	return promotionRecord{
		EventID:    eventID,
		Code:       p.Code,
		Discount:   p.Discount,
		StartsAt:   p.StartsAt,
		EndsAt:     p.EndsAt,
		Active:     p.Active,
		Conditions: p.Conditions,
	}
}

func (r *eventRecord) toModel() models.Event {
	e := models.Event{
		ID:          formatID(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Date:        r.Date.UTC(),
		Venue:       r.Venue,
		Capacity:    r.Capacity,
		Category:    r.Category,
		Organizer: models.Organizer{
			Name:    deref(r.OrganizerName),
			Contact: deref(r.OrganizerContact),
			Email:   deref(r.OrganizerEmail),
		},
		TicketTypes: make([]models.TicketType, 0, len(r.TicketTypes)),
		Promotions:  make([]models.Promotion, 0, len(r.Promotions)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for i := range r.TicketTypes {
		e.TicketTypes = append(e.TicketTypes, r.TicketTypes[i].toModel())
	}
	for i := range r.Promotions {
		e.Promotions = append(e.Promotions, r.Promotions[i].toModel())
	}
	e.Normalize()
	return e
}

func (r *ticketTypeRecord) toModel() models.TicketType {
	return models.TicketType{
		ID:              formatID(r.ID),
		EventID:         formatID(r.EventID),
		Label:           r.Label,
		Price:           r.Price,
		Quantity:        r.Quantity,
		Sold:            r.Sales.Sold,
		Characteristics: r.Characteristics,
	}
}

func (r *promotionRecord) toModel() models.Promotion {
	return models.Promotion{
		ID:         formatID(r.ID),
		EventID:    formatID(r.EventID),
		Code:       r.Code,
		Discount:   r.Discount,
		StartsAt:   r.StartsAt,
		EndsAt:     r.EndsAt,
		Active:     r.Active,
		Conditions: r.Conditions,
	}
}

func toAttendeeRecord(a *models.Attendee) attendeeRecord {
	return attendeeRecord{
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		Document:      a.Document,
		Company:       a.Company,
		JobTitle:      a.JobTitle,
		Accessibility: a.Preferences.Accessibility,
		Status:        string(a.Status),
	}
}

func (r *attendeeRecord) toModel() models.Attendee {
	a := models.Attendee{
		ID:       formatID(r.ID),
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Document: r.Document,
		Company:  r.Company,
		JobTitle: r.JobTitle,
		Preferences: models.Preferences{
			Dietary:       make([]string, 0, len(r.Dietary)),
			Interests:     make([]string, 0, len(r.Interests)),
			Accessibility: r.Accessibility,
		},
		Attributes:  make(models.Attributes, 0, len(r.Attributes)),
		Status:      models.AttendeeStatus(r.Status),
		Attendances: make([]models.Attendance, 0, len(r.Attendances)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, d := range r.Dietary {
		a.Preferences.Dietary = append(a.Preferences.Dietary, d.Preference)
	}
	for _, in := range r.Interests {
		a.Preferences.Interests = append(a.Preferences.Interests, in.Interest)
	}
	for _, kv := range r.Attributes {
		a.Attributes.Set(kv.Key, kv.Value)
	}
	for i := range r.Attendances {
		a.Attendances = append(a.Attendances, r.Attendances[i].toModel())
	}
	a.Normalize()
	return a
}

func (r *attendanceRecord) toModel() models.Attendance {
	at := models.Attendance{
		ID:          formatID(r.ID),
		EventID:     formatID(r.EventID),
		PurchasedAt: r.PurchasedAt.UTC(),
		FinalPrice:  r.FinalPrice,
		Status:      models.AttendanceStatus(r.Status),
	}
	if r.TicketTypeID != nil {
		at.TicketTypeID = formatID(*r.TicketTypeID)
	}
	if r.Event != nil {
		at.EventName = r.Event.Name
		d := r.Event.Date.UTC()
		at.EventDate = &d
	}
	if r.TicketType != nil {
		at.TicketLabel = r.TicketType.Label
	}
	return at
}
