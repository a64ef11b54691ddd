//go:build integration

package document

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27018/?replicaSet=rs0&directConnection=true"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true}))
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to test mongo: %v", err)
	}

	testDB = client.Database("eventos_test_db")
	_ = testDB.Drop(context.Background())
	if err := EnsureIndexes(context.Background(), testDB); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}

	code := m.Run()

	_ = testDB.Drop(context.Background())
	_ = client.Disconnect(context.Background())
	os.Exit(code)
}

func cleanCollections(t *testing.T) {
	t.Helper()
	for _, name := range []string{eventsCollection, attendeesCollection} {
		_, err := testDB.Collection(name).DeleteMany(t.Context(), bson.D{})
		require.NoError(t, err)
	}
}

func sampleEvent() *models.Event {
	return &models.Event{
		Name:        "Go Meetup",
		Description: "Charlas",
		Date:        time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC),
		Venue:       "Auditorio",
		Capacity:    200,
		Category:    "Tecnología",
		TicketTypes: []models.TicketType{
			{Label: "General", Price: 10, Quantity: 100, Characteristics: map[string]any{"asiento": "libre"}},
			{Label: "VIP", Price: 50, Quantity: 20, Sold: 3},
		},
		Promotions: []models.Promotion{{Code: "EARLY", Discount: 15, Active: true}},
	}
}

func TestEventCreateReplaceAndListings(t *testing.T) {
	cleanCollections(t)
	repo := NewEventRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, repo.Create(ctx, event))
	require.Len(t, event.TicketTypes, 2)
	require.Len(t, event.Promotions, 1)
	assert.Equal(t, "libre", event.TicketTypes[0].Characteristics["asiento"])

	created := event.CreatedAt
	event.TicketTypes = []models.TicketType{{Label: "Único", Price: 20, Quantity: 50}}
	require.NoError(t, repo.Replace(ctx, event))

	found, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, found.TicketTypes, 1)
	assert.Equal(t, "Único", found.TicketTypes[0].Label)
	assert.WithinDuration(t, created, found.CreatedAt, time.Millisecond)

	tickets, err := repo.ListTicketTypes(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, event.ID, tickets[0].EventID)
	assert.Equal(t, "Go Meetup", tickets[0].EventName)

	promos, err := repo.ListPromotions(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, "EARLY", promos[0].Code)
}

func TestEventMissingAndInvalidIDs(t *testing.T) {
	cleanCollections(t)
	repo := NewEventRepository(testDB)
	ctx := t.Context()

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrInvalidID)
	_, err = repo.FindByID(ctx, "64b7f0c2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "64b7f0c2a1b2c3d4e5f60718"), repository.ErrNotFound)

	event := sampleEvent()
	event.ID = "64b7f0c2a1b2c3d4e5f60718"
	assert.ErrorIs(t, repo.Replace(ctx, event), repository.ErrNotFound)
	assert.ErrorIs(t, repo.AddTicketType(ctx, event.ID, &models.TicketType{Label: "X"}), repository.ErrNotFound)
}

func TestAddPromotionRejectsDuplicateCode(t *testing.T) {
	cleanCollections(t)
	repo := NewEventRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, repo.Create(ctx, event))
	err := repo.AddPromotion(ctx, event.ID, &models.Promotion{Code: "EARLY", Discount: 5})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	promo := &models.Promotion{Code: "LATE", Discount: 5, Active: true}
	require.NoError(t, repo.AddPromotion(ctx, event.ID, promo))
	assert.NotEmpty(t, promo.ID)
}

func TestConcurrentAppendsAreAllKept(t *testing.T) {
	cleanCollections(t)
	events := NewEventRepository(testDB)
	attendees := NewAttendeeRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, events.Create(ctx, event))
	a := &models.Attendee{Name: "Ana", Email: "ana@x.com", Status: models.AttendeeActive}
	require.NoError(t, attendees.Create(ctx, a))

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			errs <- events.AddTicketType(ctx, event.ID, &models.TicketType{Label: "Extra", Quantity: 1})
		}()
		go func() {
			defer wg.Done()
			errs <- attendees.AddAttendance(ctx, a.ID, &models.Attendance{
				EventID:      event.ID,
				TicketTypeID: event.TicketTypes[0].ID,
				PurchasedAt:  time.Now(),
				Status:       models.AttendanceConfirmed,
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	foundEvent, err := events.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, foundEvent.TicketTypes, 2+n)

	foundAttendee, err := attendees.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, foundAttendee.Attendances, n)
	assert.Equal(t, "Go Meetup", foundAttendee.Attendances[0].EventName)
	assert.Equal(t, "General", foundAttendee.Attendances[0].TicketLabel)
}

func TestAttendeeInterestsMergeAndReplace(t *testing.T) {
	cleanCollections(t)
	repo := NewAttendeeRepository(testDB)
	ctx := t.Context()

	a := &models.Attendee{
		Name:        "Ana",
		Email:       "ana@x.com",
		Preferences: models.Preferences{Interests: []string{"art"}},
		Attributes:  models.Attributes{{Key: "talla", Value: "M"}, {Key: "ciudad", Value: "Lima"}},
		Status:      models.AttendeeActive,
	}
	require.NoError(t, repo.Create(ctx, a))

	a.Preferences.Interests = []string{"music", "tech", "music"}
	require.NoError(t, repo.Update(ctx, a, repository.AttendeeUpdate{MergeInterests: true}))
	assert.Equal(t, []string{"art", "music", "tech"}, a.Preferences.Interests)
	assert.Equal(t, models.Attributes{{Key: "talla", Value: "M"}, {Key: "ciudad", Value: "Lima"}}, a.Attributes)

	a.Preferences.Interests = []string{"cine"}
	require.NoError(t, repo.Update(ctx, a, repository.AttendeeUpdate{}))
	assert.Equal(t, []string{"cine"}, a.Preferences.Interests)

	dup := &models.Attendee{Name: "Otra", Email: "ana@x.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)
}

func TestDeleteEventPullsAttendances(t *testing.T) {
	cleanCollections(t)
	events := NewEventRepository(testDB)
	attendees := NewAttendeeRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, events.Create(ctx, event))
	keep := sampleEvent()
	require.NoError(t, events.Create(ctx, keep))

	a := &models.Attendee{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, attendees.Create(ctx, a))
	for _, id := range []string{event.ID, keep.ID} {
		require.NoError(t, attendees.AddAttendance(ctx, a.ID, &models.Attendance{
			EventID: id, PurchasedAt: time.Now(), Status: models.AttendanceConfirmed,
		}))
	}

	list, err := events.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), *list[0].TotalAttendees)
	assert.Equal(t, int64(120), *list[0].TotalTicketCapacity)

	require.NoError(t, events.Delete(ctx, event.ID))

	_, err = events.FindByID(ctx, event.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	found, err := attendees.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, found.Attendances, 1)
	assert.Equal(t, keep.ID, found.Attendances[0].EventID)
}

func TestListCountsEveryAttendance(t *testing.T) {
	cleanCollections(t)
	events := NewEventRepository(testDB)
	attendees := NewAttendeeRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, events.Create(ctx, event))
	a := &models.Attendee{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, attendees.Create(ctx, a))
	for _, ticket := range event.TicketTypes {
		require.NoError(t, attendees.AddAttendance(ctx, a.ID, &models.Attendance{
			EventID: event.ID, TicketTypeID: ticket.ID, PurchasedAt: time.Now(), Status: models.AttendanceConfirmed,
		}))
	}

	list, err := events.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), *list[0].TotalAttendees)
}

func TestEventReplaceKeepsAttendanceHistory(t *testing.T) {
	cleanCollections(t)
	events := NewEventRepository(testDB)
	attendees := NewAttendeeRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, events.Create(ctx, event))
	other := sampleEvent()
	require.NoError(t, events.Create(ctx, other))
	a := &models.Attendee{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, attendees.Create(ctx, a))
	for _, e := range []*models.Event{event, other} {
		require.NoError(t, attendees.AddAttendance(ctx, a.ID, &models.Attendance{
			EventID: e.ID, TicketTypeID: e.TicketTypes[1].ID,
			PurchasedAt: time.Now(), FinalPrice: 50, Status: models.AttendanceConfirmed,
		}))
	}

	event.TicketTypes = []models.TicketType{{Label: "Única", Price: 30, Quantity: 50}}
	require.NoError(t, events.Replace(ctx, event))

	found, err := attendees.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, found.Attendances, 2)
	replaced, untouched := found.Attendances[0], found.Attendances[1]
	assert.Equal(t, event.ID, replaced.EventID)
	assert.Empty(t, replaced.TicketTypeID)
	assert.Empty(t, replaced.TicketLabel)
	assert.Equal(t, 50.0, replaced.FinalPrice)
	assert.Equal(t, other.TicketTypes[1].ID, untouched.TicketTypeID)
	assert.Equal(t, "VIP", untouched.TicketLabel)
}

func TestAttendeeUpdateKeepsOmittedStatusAndAccessibility(t *testing.T) {
	cleanCollections(t)
	repo := NewAttendeeRepository(testDB)
	ctx := t.Context()

	a := &models.Attendee{
		Name:        "Ana",
		Email:       "ana@x.com",
		Preferences: models.Preferences{Accessibility: "silla de ruedas"},
		Status:      models.AttendeeInactive,
	}
	require.NoError(t, repo.Create(ctx, a))

	edit := &models.Attendee{ID: a.ID, Name: "Ana María", Email: "ana@x.com", Status: models.AttendeeActive}
	require.NoError(t, repo.Update(ctx, edit, repository.AttendeeUpdate{
		MergeInterests: true, KeepStatus: true, KeepAccessibility: true,
	}))
	assert.Equal(t, "Ana María", edit.Name)
	assert.Equal(t, models.AttendeeInactive, edit.Status)
	assert.Equal(t, "silla de ruedas", edit.Preferences.Accessibility)

	edit = &models.Attendee{ID: a.ID, Name: "Ana María", Email: "ana@x.com", Status: models.AttendeeActive}
	require.NoError(t, repo.Update(ctx, edit, repository.AttendeeUpdate{MergeInterests: true}))
	assert.Equal(t, models.AttendeeActive, edit.Status)
	assert.Empty(t, edit.Preferences.Accessibility)
}

func TestIncrementSold(t *testing.T) {
	cleanCollections(t)
	repo := NewEventRepository(testDB)
	ctx := t.Context()

	event := sampleEvent()
	require.NoError(t, repo.Create(ctx, event))
	require.NoError(t, repo.IncrementSold(ctx, event.ID, event.TicketTypes[1].ID, 2))

	found, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, found.TicketTypes[1].Sold)
	assert.ErrorIs(t, repo.IncrementSold(ctx, event.ID, "64b7f0c2a1b2c3d4e5f60718", 1), repository.ErrNotFound)
}
