package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/organizador-eventos/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, err.Error())
	}
	return err
}

// EnsureIndexes creates the indexes both repositories rely on. It is safe to
// call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(attendeesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "nombre", Value: 1}}, Options: options.Index().SetName("idx_nombre")},
		{Keys: bson.D{{Key: "asistencias.eventoId", Value: 1}}, Options: options.Index().SetName("idx_asistencias_evento")},
	})
	if err != nil {
		return fmt.Errorf("create attendee indexes: %w", err)
	}
	_, err = db.Collection(eventsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "fecha", Value: 1}},
		Options: options.Index().SetName("idx_fecha"),
	})
	if err != nil {
		return fmt.Errorf("create event indexes: %w", err)
	}
	return nil
}
