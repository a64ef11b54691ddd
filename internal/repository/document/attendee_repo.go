package document

import (
	"context"
	"fmt"
	"time"

	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type attendeeRepository struct {
	attendees *mongo.Collection
	events    *mongo.Collection
}

func NewAttendeeRepository(db *mongo.Database) repository.AttendeeRepository {
	return &attendeeRepository{
		attendees: db.Collection(attendeesCollection),
		events:    db.Collection(eventsCollection),
	}
}

func (r *attendeeRepository) List(ctx context.Context) ([]models.Attendee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.attendees.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	var docs []attendeeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode attendees: %w", err)
	}

	labels, err := r.labels(ctx, docs...)
	if err != nil {
		return nil, err
	}
	out := make([]models.Attendee, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel(labels))
	}
	return out, nil
}

// labels loads name, date and ticket labels for every event referenced by
// the given attendees with a single $in query.
func (r *attendeeRepository) labels(ctx context.Context, docs ...attendeeDoc) (map[primitive.ObjectID]eventLabel, error) {
	seen := map[primitive.ObjectID]struct{}{}
	ids := bson.A{}
	for i := range docs {
		for _, at := range docs[i].Attendances {
			if _, ok := seen[at.EventID]; ok {
				continue
			}
			seen[at.EventID] = struct{}{}
			ids = append(ids, at.EventID)
		}
	}
	out := make(map[primitive.ObjectID]eventLabel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.D{
		{Key: "nombre", Value: 1},
		{Key: "fecha", Value: 1},
		{Key: "tickets._id", Value: 1},
		{Key: "tickets.tipo", Value: 1},
	})
	cur, err := r.events.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("load event labels: %w", err)
	}
	var rows []eventLabel
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode event labels: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *attendeeRepository) FindByID(ctx context.Context, id string) (*models.Attendee, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc attendeeDoc
	if err := r.attendees.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return nil, classify(err)
	}
	return r.toModel(ctx, &doc)
}

func (r *attendeeRepository) toModel(ctx context.Context, doc *attendeeDoc) (*models.Attendee, error) {
	labels, err := r.labels(ctx, *doc)
	if err != nil {
		return nil, err
	}
	a := doc.toModel(labels)
	return &a, nil
}

func (r *attendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	now := time.Now().UTC()
	doc := newAttendeeDoc(attendee)
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.attendees.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert attendee: %w", classify(err))
	}
	*attendee = doc.toModel(nil)
	return nil
}

// Update rewrites the profile in one document update. With MergeInterests the
// incoming interests are folded in by $addToSet, which keeps the stored order
// and appends only values not yet present.
func (r *attendeeRepository) Update(ctx context.Context, attendee *models.Attendee, opts repository.AttendeeUpdate) error {
	oid, err := parseID(attendee.ID)
	if err != nil {
		return err
	}
	doc := newAttendeeDoc(attendee)
	set := bson.D{
		{Key: "nombre", Value: doc.Name},
		{Key: "email", Value: doc.Email},
		{Key: "telefono", Value: doc.Phone},
		{Key: "documento", Value: doc.Document},
		{Key: "empresa", Value: doc.Company},
		{Key: "cargo", Value: doc.JobTitle},
		{Key: "preferencias.dietarias", Value: doc.Preferences.Dietary},
		{Key: "datosAdicionales", Value: doc.Attributes},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	if !opts.KeepAccessibility {
		set = append(set, bson.E{Key: "preferencias.accesibilidad", Value: doc.Preferences.Accessibility})
	}
	if !opts.KeepStatus {
		set = append(set, bson.E{Key: "estado", Value: doc.Status})
	}
	update := bson.D{}
	if opts.MergeInterests {
		update = append(update, bson.E{Key: "$addToSet", Value: bson.D{
			{Key: "preferencias.intereses", Value: bson.D{{Key: "$each", Value: doc.Preferences.Interests}}},
		}})
	} else {
		set = append(set, bson.E{Key: "preferencias.intereses", Value: doc.Preferences.Interests})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	findOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var stored attendeeDoc
	if err := r.attendees.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, findOpts).Decode(&stored); err != nil {
		return classify(err)
	}
	fresh, err := r.toModel(ctx, &stored)
	if err != nil {
		return err
	}
	*attendee = *fresh
	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.attendees.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddAttendance appends with $push, so concurrent appends to one attendee
// are all kept.
func (r *attendeeRepository) AddAttendance(ctx context.Context, attendeeID string, attendance *models.Attendance) error {
	oid, err := parseID(attendeeID)
	if err != nil {
		return err
	}
	eventID, err := primitive.ObjectIDFromHex(attendance.EventID)
	if err != nil {
		return repository.ErrInvalidReference
	}
	doc := attendanceDoc{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		PurchasedAt: attendance.PurchasedAt,
		FinalPrice:  attendance.FinalPrice,
		Status:      string(attendance.Status),
	}
	if attendance.TicketTypeID != "" {
		tid, err := primitive.ObjectIDFromHex(attendance.TicketTypeID)
		if err != nil {
			return repository.ErrInvalidReference
		}
		doc.TicketTypeID = &tid
	}

	res, err := r.attendees.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "asistencias", Value: doc}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
	)
	if err != nil {
		return fmt.Errorf("push attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	labels, err := r.labels(ctx, attendeeDoc{Attendances: []attendanceDoc{doc}})
	if err != nil {
		return err
	}
	*attendance = doc.toModel(labels)
	return nil
}
