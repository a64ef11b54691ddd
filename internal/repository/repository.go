// Package repository declares the storage contracts shared by the relational
// and document backends. Each composite write is all-or-nothing: either the
// parent and its full child set are stored, or nothing is.
package repository

import (
	"context"

	"github.com/organizador-eventos/backend/internal/models"
)

type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	// Create stores the event with its ticket types and promotions and fills
	// in every generated id.
	Create(ctx context.Context, event *models.Event) error
	// Replace overwrites the event fields and swaps its ticket types and
	// promotions for the given set. Children not resupplied are lost.
	Replace(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	AddTicketType(ctx context.Context, eventID string, ticket *models.TicketType) error
	AddPromotion(ctx context.Context, eventID string, promo *models.Promotion) error
	ListTicketTypes(ctx context.Context) ([]models.TicketListing, error)
	ListPromotions(ctx context.Context) ([]models.PromotionListing, error)
	IncrementSold(ctx context.Context, eventID, ticketTypeID string, n int) error
}

// AttendeeUpdate lists the parts of a stored profile an update leaves alone
// or folds into.
type AttendeeUpdate struct {
	MergeInterests    bool
	KeepStatus        bool
	KeepAccessibility bool
}

type AttendeeRepository interface {
	List(ctx context.Context) ([]models.Attendee, error)
	FindByID(ctx context.Context, id string) (*models.Attendee, error)
	Create(ctx context.Context, attendee *models.Attendee) error
	// Update overwrites the attendee profile. Dietary preferences and
	// attributes are replaced; interests are replaced, or merged into the
	// stored list when opts.MergeInterests is set. Attendances are untouched.
	Update(ctx context.Context, attendee *models.Attendee, opts AttendeeUpdate) error
	Delete(ctx context.Context, id string) error
	AddAttendance(ctx context.Context, attendeeID string, attendance *models.Attendance) error
}
