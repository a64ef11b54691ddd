package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
)

type EventService interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, req *dto.EventRequest) (*models.Event, error)
	ReplaceEvent(ctx context.Context, id string, req *dto.EventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	AddTicketType(ctx context.Context, eventID string, req *dto.TicketTypeRequest) (*models.TicketType, error)
	AddPromotion(ctx context.Context, eventID string, req *dto.PromotionRequest) (*models.Promotion, error)
	ListTicketTypes(ctx context.Context) ([]models.TicketListing, error)
	ListPromotions(ctx context.Context) ([]models.PromotionListing, error)
}

type eventService struct {
	repo      repository.EventRepository
	publisher Publisher
}

func NewEventService(repo repository.EventRepository, publisher Publisher) EventService {
	return &eventService{repo: repo, publisher: publisher}
}

func eventErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	return err
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, eventErr(err)
	}
	return event, nil
}

func (s *eventService) CreateEvent(ctx context.Context, req *dto.EventRequest) (*models.Event, error) {
	event, err := toEvent(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	publish(ctx, s.publisher, dto.RouteEventCreated, event)
	return event, nil
}

// ReplaceEvent overwrites the event and its whole child set. Ticket types and
// promotions missing from req are removed along with their sold counts.
func (s *eventService) ReplaceEvent(ctx context.Context, id string, req *dto.EventRequest) (*models.Event, error) {
	event, err := toEvent(req)
	if err != nil {
		return nil, err
	}
	event.ID = id
	if err := s.repo.Replace(ctx, event); err != nil {
		return nil, eventErr(err)
	}

	publish(ctx, s.publisher, dto.RouteEventUpdated, event)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return eventErr(err)
	}
	publish(ctx, s.publisher, dto.RouteEventDeleted, dto.DeletedMessage{ID: id})
	return nil
}

func (s *eventService) AddTicketType(ctx context.Context, eventID string, req *dto.TicketTypeRequest) (*models.TicketType, error) {
	ticket, err := toTicketType("ticket", req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddTicketType(ctx, eventID, ticket); err != nil {
		return nil, eventErr(err)
	}
	return ticket, nil
}

func (s *eventService) AddPromotion(ctx context.Context, eventID string, req *dto.PromotionRequest) (*models.Promotion, error) {
	promo, err := toPromotion("promocion", req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddPromotion(ctx, eventID, promo); err != nil {
		return nil, eventErr(err)
	}
	return promo, nil
}

func (s *eventService) ListTicketTypes(ctx context.Context) ([]models.TicketListing, error) {
	tickets, err := s.repo.ListTicketTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return tickets, nil
}

func (s *eventService) ListPromotions(ctx context.Context) ([]models.PromotionListing, error) {
	promos, err := s.repo.ListPromotions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return promos, nil
}
