// Package document stores events and attendees as MongoDB documents. Ticket
// types, promotions and attendances are embedded in their parent, so every
// composite write is a single-document operation.
package document

import (
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	eventsCollection    = "eventos"
	attendeesCollection = "asistentes"
)

type organizerDoc struct {
	Name    string `bson:"nombre,omitempty"`
	Contact string `bson:"contacto,omitempty"`
	Email   string `bson:"email,omitempty"`
}

type ticketTypeDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	Label           string             `bson:"tipo"`
	Price           float64            `bson:"precio"`
	Quantity        int                `bson:"cantidad"`
	Sold            int                `bson:"vendidos"`
	Characteristics map[string]any     `bson:"caracteristicas"`
}

type promotionDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Code       string             `bson:"codigo"`
	Discount   float64            `bson:"descuento"`
	StartsAt   *time.Time         `bson:"fechaInicio,omitempty"`
	EndsAt     *time.Time         `bson:"fechaFin,omitempty"`
	Active     bool               `bson:"activa"`
	Conditions map[string]any     `bson:"condiciones"`
}

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"nombre"`
	Description string             `bson:"descripcion"`
	Date        time.Time          `bson:"fecha"`
	Venue       string             `bson:"lugar"`
	Capacity    int                `bson:"capacidad"`
	Category    string             `bson:"categoria"`
	Organizer   organizerDoc       `bson:"organizador"`
	TicketTypes []ticketTypeDoc    `bson:"tickets"`
	Promotions  []promotionDoc     `bson:"promociones"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type preferencesDoc struct {
	Dietary       []string `bson:"dietarias"`
	Interests     []string `bson:"intereses"`
	Accessibility string   `bson:"accesibilidad,omitempty"`
}

// attributeDoc keeps attributes as an array so key order survives.
type attributeDoc struct {
	Key   string `bson:"clave"`
	Value string `bson:"valor"`
}

type attendanceDoc struct {
	ID           primitive.ObjectID  `bson:"_id"`
	EventID      primitive.ObjectID  `bson:"eventoId"`
	TicketTypeID *primitive.ObjectID `bson:"ticketId,omitempty"`
	PurchasedAt  time.Time           `bson:"fechaCompra"`
	FinalPrice   float64             `bson:"precioFinal"`
	Status       string              `bson:"estado"`
}

type attendeeDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"nombre"`
	Email       string             `bson:"email"`
	Phone       string             `bson:"telefono,omitempty"`
	Document    string             `bson:"documento,omitempty"`
	Company     string             `bson:"empresa,omitempty"`
	JobTitle    string             `bson:"cargo,omitempty"`
	Preferences preferencesDoc     `bson:"preferencias"`
	Attributes  []attributeDoc     `bson:"datosAdicionales"`
	Status      string             `bson:"estado"`
	Attendances []attendanceDoc    `bson:"asistencias"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

func emptyIfNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newTicketTypeDoc(t *models.TicketType) ticketTypeDoc {
	return ticketTypeDoc{
		ID:              primitive.NewObjectID(),
		Label:           t.Label,
		Price:           t.Price,
		Quantity:        t.Quantity,
		Sold:            t.Sold,
		Characteristics: emptyIfNil(t.Characteristics),
	}
}

func newPromotionDoc(p *models.Promotion) promotionDoc {
	return promotionDoc{
		ID:         primitive.NewObjectID(),
		Code:       p.Code,
		Discount:   p.Discount,
		StartsAt:   p.StartsAt,
		EndsAt:     p.EndsAt,
		Active:     p.Active,
		Conditions: emptyIfNil(p.Conditions),
	}
}

func childDocs(e *models.Event) ([]ticketTypeDoc, []promotionDoc) {
	tickets := make([]ticketTypeDoc, 0, len(e.TicketTypes))
	for i := range e.TicketTypes {
		tickets = append(tickets, newTicketTypeDoc(&e.TicketTypes[i]))
	}
	promos := make([]promotionDoc, 0, len(e.Promotions))
	for i := range e.Promotions {
		promos = append(promos, newPromotionDoc(&e.Promotions[i]))
	}
	return tickets, promos
}

func (d *eventDoc) toModel() models.Event {
	id := d.ID.Hex()
	e := models.Event{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Date:        d.Date.UTC(),
		Venue:       d.Venue,
		Capacity:    d.Capacity,
		Category:    d.Category,
		Organizer: models.Organizer{
			Name:    d.Organizer.Name,
			Contact: d.Organizer.Contact,
			Email:   d.Organizer.Email,
		},
		TicketTypes: make([]models.TicketType, 0, len(d.TicketTypes)),
		Promotions:  make([]models.Promotion, 0, len(d.Promotions)),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for i := range d.TicketTypes {
		e.TicketTypes = append(e.TicketTypes, d.TicketTypes[i].toModel(id))
	}
	for i := range d.Promotions {
		e.Promotions = append(e.Promotions, d.Promotions[i].toModel(id))
	}
	e.Normalize()
	return e
}

func (d *ticketTypeDoc) toModel(eventID string) models.TicketType {
	return models.TicketType{
		ID:              d.ID.Hex(),
		EventID:         eventID,
		Label:           d.Label,
		Price:           d.Price,
		Quantity:        d.Quantity,
		Sold:            d.Sold,
		Characteristics: emptyIfNil(d.Characteristics),
	}
}

func (d *promotionDoc) toModel(eventID string) models.Promotion {
	return models.Promotion{
		ID:         d.ID.Hex(),
		EventID:    eventID,
		Code:       d.Code,
		Discount:   d.Discount,
		StartsAt:   d.StartsAt,
		EndsAt:     d.EndsAt,
		Active:     d.Active,
		Conditions: emptyIfNil(d.Conditions),
	}
}

func attributeDocs(attrs models.Attributes) []attributeDoc {
	out := make([]attributeDoc, 0, len(attrs))
	for _, kv := range attrs {
		out = append(out, attributeDoc{Key: kv.Key, Value: kv.Value})
	}
	return out
}

func newAttendeeDoc(a *models.Attendee) attendeeDoc {
	return attendeeDoc{
		Name:     a.Name,
		Email:    a.Email,
		Phone:    a.Phone,
		Document: a.Document,
		Company:  a.Company,
		JobTitle: a.JobTitle,
		Preferences: preferencesDoc{
			Dietary:       nonNil(a.Preferences.Dietary),
			Interests:     nonNil(a.Preferences.Interests),
			Accessibility: a.Preferences.Accessibility,
		},
		Attributes:  attributeDocs(a.Attributes),
		Status:      string(a.Status),
		Attendances: []attendanceDoc{},
	}
}

// eventLabel is the slice of an event needed to label attendances.
type eventLabel struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"nombre"`
	Date        time.Time          `bson:"fecha"`
	TicketTypes []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Label string             `bson:"tipo"`
	} `bson:"tickets"`
}

func (d *attendanceDoc) toModel(labels map[primitive.ObjectID]eventLabel) models.Attendance {
	at := models.Attendance{
		ID:          d.ID.Hex(),
		EventID:     d.EventID.Hex(),
		PurchasedAt: d.PurchasedAt.UTC(),
		FinalPrice:  d.FinalPrice,
		Status:      models.AttendanceStatus(d.Status),
	}
	if d.TicketTypeID != nil {
		at.TicketTypeID = d.TicketTypeID.Hex()
	}
	if ev, ok := labels[d.EventID]; ok {
		at.EventName = ev.Name
		date := ev.Date.UTC()
		at.EventDate = &date
		if d.TicketTypeID != nil {
			for _, t := range ev.TicketTypes {
				if t.ID == *d.TicketTypeID {
					at.TicketLabel = t.Label
					break
				}
			}
		}
	}
	return at
}

func (d *attendeeDoc) toModel(labels map[primitive.ObjectID]eventLabel) models.Attendee {
	a := models.Attendee{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Document: d.Document,
		Company:  d.Company,
		JobTitle: d.JobTitle,
		Preferences: models.Preferences{
			Dietary:       nonNil(d.Preferences.Dietary),
			Interests:     nonNil(d.Preferences.Interests),
			Accessibility: d.Preferences.Accessibility,
		},
		Attributes:  make(models.Attributes, 0, len(d.Attributes)),
		Status:      models.AttendeeStatus(d.Status),
		Attendances: make([]models.Attendance, 0, len(d.Attendances)),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for _, kv := range d.Attributes {
		a.Attributes.Set(kv.Key, kv.Value)
	}
	for i := range d.Attendances {
		a.Attendances = append(a.Attendances, d.Attendances[i].toModel(labels))
	}
	a.Normalize()
	return a
}
