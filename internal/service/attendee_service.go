package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
)

type AttendeeService interface {
	ListAttendees(ctx context.Context) ([]models.Attendee, error)
	GetAttendee(ctx context.Context, id string) (*models.Attendee, error)
	CreateAttendee(ctx context.Context, req *dto.AttendeeRequest) (*models.Attendee, error)
	UpdateAttendee(ctx context.Context, id string, req *dto.AttendeeRequest) (*models.Attendee, error)
	DeleteAttendee(ctx context.Context, id string) error
	AddAttendance(ctx context.Context, attendeeID string, req *dto.AttendanceRequest) (*models.Attendance, error)
}

type attendeeService struct {
	repo      repository.AttendeeRepository
	events    repository.EventRepository
	publisher Publisher
	now       func() time.Time
}

func NewAttendeeService(repo repository.AttendeeRepository, events repository.EventRepository, publisher Publisher) AttendeeService {
	return &attendeeService{repo: repo, events: events, publisher: publisher, now: time.Now}
}

func attendeeErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAttendeeNotFound
	}
	return err
}

func (s *attendeeService) ListAttendees(ctx context.Context) ([]models.Attendee, error) {
	attendees, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return attendees, nil
}

func (s *attendeeService) GetAttendee(ctx context.Context, id string) (*models.Attendee, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, attendeeErr(err)
	}
	return a, nil
}

func (s *attendeeService) CreateAttendee(ctx context.Context, req *dto.AttendeeRequest) (*models.Attendee, error) {
	a, _ := toAttendee(req)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	publish(ctx, s.publisher, dto.RouteAttendeeCreated, a)
	return a, nil
}

// UpdateAttendee replaces the profile. Interests sent as a list replace the
// stored ones; sent as a delimited string, or left out, they are merged.
// estado and accesibilidad keep their stored value when left out.
func (s *attendeeService) UpdateAttendee(ctx context.Context, id string, req *dto.AttendeeRequest) (*models.Attendee, error) {
	a, opts := toAttendee(req)
	a.ID = id
	if err := s.repo.Update(ctx, a, opts); err != nil {
		return nil, attendeeErr(err)
	}
	publish(ctx, s.publisher, dto.RouteAttendeeUpdated, a)
	return a, nil
}

func (s *attendeeService) DeleteAttendee(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return attendeeErr(err)
	}
	publish(ctx, s.publisher, dto.RouteAttendeeDeleted, dto.DeletedMessage{ID: id})
	return nil
}

// AddAttendance checks that the ticket type belongs to the referenced event
// before appending. precioFinal falls back to the ticket price and
// fechaCompra to the current time.
func (s *attendeeService) AddAttendance(ctx context.Context, attendeeID string, req *dto.AttendanceRequest) (*models.Attendance, error) {
	event, err := s.events.FindByID(ctx, req.EventID)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
		return nil, invalid("eventoId", "event %q does not exist", req.EventID)
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}

	var ticket *models.TicketType
	for i := range event.TicketTypes {
		if event.TicketTypes[i].ID == req.TicketTypeID {
			ticket = &event.TicketTypes[i]
			break
		}
	}
	if ticket == nil {
		return nil, invalid("ticketId", "ticket type %q does not belong to event %q", req.TicketTypeID, req.EventID)
	}

	at := &models.Attendance{
		EventID:      event.ID,
		TicketTypeID: ticket.ID,
		PurchasedAt:  s.now().UTC(),
		FinalPrice:   ticket.Price,
		Status:       models.AttendanceStatus(req.Status),
	}
	if at.Status == "" {
		at.Status = models.AttendanceConfirmed
	}
	if req.FinalPrice.Set {
		if at.FinalPrice, err = optionalFloat("precioFinal", req.FinalPrice); err != nil {
			return nil, err
		}
	}
	if req.PurchasedAt.Set {
		t, err := req.PurchasedAt.Time()
		if err != nil {
			return nil, invalid("fechaCompra", "%v", err)
		}
		at.PurchasedAt = t
	}

	if err := s.repo.AddAttendance(ctx, attendeeID, at); err != nil {
		return nil, attendeeErr(err)
	}

	publish(ctx, s.publisher, dto.RouteAttendanceCreated, dto.AttendanceCreatedMessage{
		AttendanceID: at.ID,
		AttendeeID:   attendeeID,
		EventID:      at.EventID,
		TicketTypeID: at.TicketTypeID,
		FinalPrice:   at.FinalPrice,
		Status:       string(at.Status),
	})
	return at, nil
}
