package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type eventRepository struct {
	client    *mongo.Client
	events    *mongo.Collection
	attendees *mongo.Collection
}

func NewEventRepository(db *mongo.Database) repository.EventRepository {
	return &eventRepository{
		client:    db.Client(),
		events:    db.Collection(eventsCollection),
		attendees: db.Collection(attendeesCollection),
	}
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	counts, err := r.attendeeCounts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Event, 0, len(docs))
	for i := range docs {
		e := docs[i].toModel()
		attendees := counts[docs[i].ID]
		var capacity int64
		for _, t := range docs[i].TicketTypes {
			capacity += int64(t.Quantity)
		}
		e.TotalAttendees = &attendees
		e.TotalTicketCapacity = &capacity
		out = append(out, e)
	}
	return out, nil
}

// attendeeCounts returns, per event, how many attendance entries reference
// it. An attendee holding two attendances for one event counts twice.
func (r *eventRepository) attendeeCounts(ctx context.Context) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$asistencias"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$asistencias.eventoId"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.attendees.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count attendees: %w", err)
	}
	var rows []struct {
		EventID primitive.ObjectID `bson:"_id"`
		Total   int64              `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode attendee counts: %w", err)
	}
	out := make(map[primitive.ObjectID]int64, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Total
	}
	return out, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, oid)
}

func (r *eventRepository) find(ctx context.Context, oid primitive.ObjectID) (*models.Event, error) {
	var doc eventDoc
	if err := r.events.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	e := doc.toModel()
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	tickets, promos := childDocs(event)
	doc := eventDoc{
		ID:          primitive.NewObjectID(),
		Name:        event.Name,
		Description: event.Description,
		Date:        event.Date,
		Venue:       event.Venue,
		Capacity:    event.Capacity,
		Category:    event.Category,
		Organizer:   organizerDoc(event.Organizer),
		TicketTypes: tickets,
		Promotions:  promos,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.events.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", classify(err))
	}
	*event = doc.toModel()
	return nil
}

// Replace rewrites every field except the id and creation time. The ticket
// types get new ids, so inside the same transaction every attendance for the
// event loses its ticket reference and keeps the rest of its history.
func (r *eventRepository) Replace(ctx context.Context, event *models.Event) error {
	oid, err := parseID(event.ID)
	if err != nil {
		return err
	}
	tickets, promos := childDocs(event)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "nombre", Value: event.Name},
		{Key: "descripcion", Value: event.Description},
		{Key: "fecha", Value: event.Date},
		{Key: "lugar", Value: event.Venue},
		{Key: "capacidad", Value: event.Capacity},
		{Key: "categoria", Value: event.Category},
		{Key: "organizador", Value: organizerDoc(event.Organizer)},
		{Key: "tickets", Value: tickets},
		{Key: "promociones", Value: promos},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	var doc eventDoc
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.events.FindOneAndUpdate(sc, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
			return nil, classify(err)
		}
		return nil, detachTickets(sc, r.attendees, oid)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("replace event: %w", err)
	}
	*event = doc.toModel()
	return nil
}

// detachTickets clears the ticket reference of every attendance for the
// event.
func detachTickets(ctx context.Context, attendees *mongo.Collection, eventID primitive.ObjectID) error {
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []any{bson.D{{Key: "a.eventoId", Value: eventID}}},
	})
	_, err := attendees.UpdateMany(ctx,
		bson.D{{Key: "asistencias.eventoId", Value: eventID}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "asistencias.$[a].ticketId", Value: ""}}}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("detach tickets: %w", err)
	}
	return nil
}

// Delete removes the event and pulls every attendance that referenced it,
// inside one transaction.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		res, err := r.events.DeleteOne(sc, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, repository.ErrNotFound
		}
		_, err = r.attendees.UpdateMany(sc,
			bson.D{{Key: "asistencias.eventoId", Value: oid}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "asistencias", Value: bson.D{{Key: "eventoId", Value: oid}}}}}},
		)
		return nil, err
	})
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (r *eventRepository) AddTicketType(ctx context.Context, eventID string, ticket *models.TicketType) error {
	oid, err := parseID(eventID)
	if err != nil {
		return err
	}
	doc := newTicketTypeDoc(ticket)
	if err := r.push(ctx, oid, bson.D{{Key: "_id", Value: oid}}, "tickets", doc); err != nil {
		return err
	}
	*ticket = doc.toModel(eventID)
	return nil
}

// AddPromotion appends the promotion unless the event already has one with
// the same code.
func (r *eventRepository) AddPromotion(ctx context.Context, eventID string, promo *models.Promotion) error {
	oid, err := parseID(eventID)
	if err != nil {
		return err
	}
	doc := newPromotionDoc(promo)
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "promociones.codigo", Value: bson.D{{Key: "$ne", Value: doc.Code}}},
	}
	err = r.push(ctx, oid, filter, "promociones", doc)
	if errors.Is(err, errNoMatch) {
		return fmt.Errorf("%w: promotion code %q", repository.ErrDuplicate, doc.Code)
	}
	if err != nil {
		return err
	}
	*promo = doc.toModel(eventID)
	return nil
}

var errNoMatch = errors.New("filter matched no event")

// push appends value to the named array with $push. A miss is ErrNotFound
// when the event is gone and errNoMatch when only the extra filter failed.
func (r *eventRepository) push(ctx context.Context, oid primitive.ObjectID, filter bson.D, field string, value any) error {
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: field, Value: value}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	}
	res, err := r.events.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("push %s: %w", field, classify(err))
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := r.events.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return errNoMatch
}

type ticketListingDoc struct {
	Ticket    ticketTypeDoc      `bson:",inline"`
	EventID   primitive.ObjectID `bson:"eventoId"`
	EventName string             `bson:"eventoNombre"`
}

// flatten unwinds the given array and lifts each element to the top level,
// tagged with its event id and name.
func flatten(field string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$unwind", Value: "$" + field}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: bson.D{
			{Key: "$mergeObjects", Value: bson.A{
				"$" + field,
				bson.D{{Key: "eventoId", Value: "$_id"}, {Key: "eventoNombre", Value: "$nombre"}},
			}},
		}}}}},
	}
}

func (r *eventRepository) ListTicketTypes(ctx context.Context) ([]models.TicketListing, error) {
	cur, err := r.events.Aggregate(ctx, flatten("tickets"))
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	var docs []ticketListingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode ticket types: %w", err)
	}
	out := make([]models.TicketListing, 0, len(docs))
	for i := range docs {
		out = append(out, models.TicketListing{
			TicketType: docs[i].Ticket.toModel(docs[i].EventID.Hex()),
			EventName:  docs[i].EventName,
		})
	}
	return out, nil
}

type promotionListingDoc struct {
	Promotion promotionDoc       `bson:",inline"`
	EventID   primitive.ObjectID `bson:"eventoId"`
	EventName string             `bson:"eventoNombre"`
}

func (r *eventRepository) ListPromotions(ctx context.Context) ([]models.PromotionListing, error) {
	cur, err := r.events.Aggregate(ctx, flatten("promociones"))
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	var docs []promotionListingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode promotions: %w", err)
	}
	out := make([]models.PromotionListing, 0, len(docs))
	for i := range docs {
		out = append(out, models.PromotionListing{
			Promotion: docs[i].Promotion.toModel(docs[i].EventID.Hex()),
			EventName: docs[i].EventName,
		})
	}
	return out, nil
}

func (r *eventRepository) IncrementSold(ctx context.Context, eventID, ticketTypeID string, n int) error {
	eid, err := parseID(eventID)
	if err != nil {
		return err
	}
	tid, err := parseID(ticketTypeID)
	if err != nil {
		return err
	}
	res, err := r.events.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: eid}, {Key: "tickets._id", Value: tid}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "tickets.$.vendidos", Value: n}}}},
	)
	if err != nil {
		return fmt.Errorf("increment sold: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
