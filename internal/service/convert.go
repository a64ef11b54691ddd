package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
)

// toEvent converts a create or replace payload. capacidad and fecha are
// required; ticket numbers default to 0 when absent and are rejected when
// malformed or negative.
func toEvent(req *dto.EventRequest) (*models.Event, error) {
	if !req.Date.Set {
		return nil, invalid("fecha", "is required")
	}
	date, err := req.Date.Time()
	if err != nil {
		return nil, invalid("fecha", "%v", err)
	}
	if !req.Capacity.Set {
		return nil, invalid("capacidad", "is required")
	}
	capacity, err := nonNegativeInt("capacidad", req.Capacity)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Venue:       strings.TrimSpace(req.Venue),
		Capacity:    capacity,
		Category:    strings.TrimSpace(req.Category),
		TicketTypes: make([]models.TicketType, 0, len(req.TicketTypes)),
		Promotions:  make([]models.Promotion, 0, len(req.Promotions)),
	}
	if event.Category == "" {
		event.Category = models.DefaultCategory
	}
	if o := req.Organizer; o != nil {
		event.Organizer = models.Organizer{
			Name:    strings.TrimSpace(o.Name),
			Contact: strings.TrimSpace(o.Contact),
			Email:   strings.TrimSpace(o.Email),
		}
	}

	for i := range req.TicketTypes {
		t, err := toTicketType(fmt.Sprintf("tickets[%d]", i), &req.TicketTypes[i])
		if err != nil {
			return nil, err
		}
		event.TicketTypes = append(event.TicketTypes, *t)
	}

	codes := make(map[string]struct{}, len(req.Promotions))
	for i := range req.Promotions {
		prefix := fmt.Sprintf("promociones[%d]", i)
		p, err := toPromotion(prefix, &req.Promotions[i])
		if err != nil {
			return nil, err
		}
		if _, dup := codes[p.Code]; dup {
			return nil, invalid(prefix+".codigo", "duplicate code %q", p.Code)
		}
		codes[p.Code] = struct{}{}
		event.Promotions = append(event.Promotions, *p)
	}
	return event, nil
}

func toTicketType(prefix string, req *dto.TicketTypeRequest) (*models.TicketType, error) {
	t := &models.TicketType{
		Label:           strings.TrimSpace(req.Label),
		Characteristics: req.Characteristics,
	}
	if t.Label == "" {
		t.Label = models.DefaultTicketLabel
	}
	if t.Characteristics == nil {
		t.Characteristics = map[string]any{}
	}

	var err error
	if t.Price, err = optionalFloat(prefix+".precio", req.Price); err != nil {
		return nil, err
	}
	if t.Quantity, err = optionalInt(prefix+".cantidad", req.Quantity); err != nil {
		return nil, err
	}
	if t.Sold, err = optionalInt(prefix+".vendidos", req.Sold); err != nil {
		return nil, err
	}
	return t, nil
}

func toPromotion(prefix string, req *dto.PromotionRequest) (*models.Promotion, error) {
	p := &models.Promotion{
		Code:       strings.TrimSpace(req.Code),
		Active:     true,
		Conditions: req.Conditions,
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if p.Conditions == nil {
		p.Conditions = map[string]any{}
	}

	var err error
	if p.Discount, err = optionalFloat(prefix+".descuento", req.Discount); err != nil {
		return nil, err
	}
	if p.Discount > 100 {
		return nil, invalid(prefix+".descuento", "must be between 0 and 100")
	}
	if p.StartsAt, err = optionalDate(prefix+".fechaInicio", req.StartsAt); err != nil {
		return nil, err
	}
	if p.EndsAt, err = optionalDate(prefix+".fechaFin", req.EndsAt); err != nil {
		return nil, err
	}
	if p.StartsAt != nil && p.EndsAt != nil && p.EndsAt.Before(*p.StartsAt) {
		return nil, invalid(prefix+".fechaFin", "must not be before fechaInicio")
	}
	return p, nil
}

// toAttendee converts a create or update payload. The returned options tell
// an update which stored values to keep: interests sent as a delimited
// string, or left out, are merged into the stored list, and an absent estado
// or accesibilidad keeps the stored one.
func toAttendee(req *dto.AttendeeRequest) (*models.Attendee, repository.AttendeeUpdate) {
	a := &models.Attendee{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      strings.TrimSpace(req.Phone),
		Document:   strings.TrimSpace(req.Document),
		Company:    strings.TrimSpace(req.Company),
		JobTitle:   strings.TrimSpace(req.JobTitle),
		Attributes: req.Attributes,
		Status:     models.AttendeeStatus(req.Status),
	}

	opts := repository.AttendeeUpdate{
		MergeInterests:    true,
		KeepStatus:        req.Status == "",
		KeepAccessibility: true,
	}
	if p := req.Preferences; p != nil {
		a.Preferences.Dietary = models.MergeInterests(nil, trimAll(p.Dietary))
		if p.Accessibility != nil {
			a.Preferences.Accessibility = strings.TrimSpace(*p.Accessibility)
			opts.KeepAccessibility = false
		}
		if p.Interests.Set {
			a.Preferences.Interests = models.MergeInterests(nil, p.Interests.List)
			opts.MergeInterests = p.Interests.Merge
		}
	}
	a.Normalize()
	return a, opts
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNegativeInt(field string, n dto.Number) (int, error) {
	v, err := n.Int()
	if err != nil {
		return 0, invalid(field, "%v", err)
	}
	if v < 0 {
		return 0, invalid(field, "must not be negative")
	}
	return v, nil
}

func optionalInt(field string, n dto.Number) (int, error) {
	if !n.Set {
		return 0, nil
	}
	return nonNegativeInt(field, n)
}

func optionalFloat(field string, n dto.Number) (float64, error) {
	if !n.Set {
		return 0, nil
	}
	v, err := n.Float()
	if err != nil {
		return 0, invalid(field, "%v", err)
	}
	if v < 0 {
		return 0, invalid(field, "must not be negative")
	}
	return v, nil
}

func optionalDate(field string, d dto.Date) (*time.Time, error) {
	if !d.Set {
		return nil, nil
	}
	t, err := d.Time()
	if err != nil {
		return nil, invalid(field, "%v", err)
	}
	return &t, nil
}
