package service

import (
	"context"
	"sync"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	listFn            func(ctx context.Context) ([]models.Event, error)
	findByIDFn        func(ctx context.Context, id string) (*models.Event, error)
	createFn          func(ctx context.Context, event *models.Event) error
	replaceFn         func(ctx context.Context, event *models.Event) error
	deleteFn          func(ctx context.Context, id string) error
	addTicketTypeFn   func(ctx context.Context, eventID string, ticket *models.TicketType) error
	addPromotionFn    func(ctx context.Context, eventID string, promo *models.Promotion) error
	listTicketTypesFn func(ctx context.Context) ([]models.TicketListing, error)
	listPromotionsFn  func(ctx context.Context) ([]models.PromotionListing, error)
	incrementSoldFn   func(ctx context.Context, eventID, ticketTypeID string, n int) error
}

func (m *mockEventRepo) List(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) Replace(ctx context.Context, event *models.Event) error {
	return m.replaceFn(ctx, event)
}
func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockEventRepo) AddTicketType(ctx context.Context, eventID string, ticket *models.TicketType) error {
	return m.addTicketTypeFn(ctx, eventID, ticket)
}
func (m *mockEventRepo) AddPromotion(ctx context.Context, eventID string, promo *models.Promotion) error {
	return m.addPromotionFn(ctx, eventID, promo)
}
func (m *mockEventRepo) ListTicketTypes(ctx context.Context) ([]models.TicketListing, error) {
	return m.listTicketTypesFn(ctx)
}
func (m *mockEventRepo) ListPromotions(ctx context.Context) ([]models.PromotionListing, error) {
	return m.listPromotionsFn(ctx)
}
func (m *mockEventRepo) IncrementSold(ctx context.Context, eventID, ticketTypeID string, n int) error {
	return m.incrementSoldFn(ctx, eventID, ticketTypeID, n)
}

// --- Mock AttendeeRepository ---

type mockAttendeeRepo struct {
	listFn          func(ctx context.Context) ([]models.Attendee, error)
	findByIDFn      func(ctx context.Context, id string) (*models.Attendee, error)
	createFn        func(ctx context.Context, a *models.Attendee) error
	updateFn        func(ctx context.Context, a *models.Attendee, opts repository.AttendeeUpdate) error
	deleteFn        func(ctx context.Context, id string) error
	addAttendanceFn func(ctx context.Context, attendeeID string, at *models.Attendance) error
}

func (m *mockAttendeeRepo) List(ctx context.Context) ([]models.Attendee, error) {
	return m.listFn(ctx)
}
func (m *mockAttendeeRepo) FindByID(ctx context.Context, id string) (*models.Attendee, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockAttendeeRepo) Create(ctx context.Context, a *models.Attendee) error {
	return m.createFn(ctx, a)
}
func (m *mockAttendeeRepo) Update(ctx context.Context, a *models.Attendee, opts repository.AttendeeUpdate) error {
	return m.updateFn(ctx, a, opts)
}
func (m *mockAttendeeRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockAttendeeRepo) AddAttendance(ctx context.Context, attendeeID string, at *models.Attendance) error {
	return m.addAttendanceFn(ctx, attendeeID, at)
}

// --- Recording Publisher ---

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.key)
	}
	return out
}
