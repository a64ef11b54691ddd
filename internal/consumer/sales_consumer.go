package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/organizador-eventos/backend/internal/dto"
	"github.com/organizador-eventos/backend/internal/models"
	"github.com/organizador-eventos/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// SalesQueue receives attendance.created messages and keeps each ticket
// type's sold counter in step with stored attendances.
const SalesQueue = "organizador.sales"

type SalesConsumer struct {
	events repository.EventRepository
	log    zerolog.Logger
}

func NewSalesConsumer(events repository.EventRepository, log zerolog.Logger) *SalesConsumer {
	return &SalesConsumer{events: events, log: log.With().Str("consumer", SalesQueue).Logger()}
}

// Start drains msgs in a goroutine until the channel closes. The returned
// channel is closed once the last delivery has been handled.
func (sc *SalesConsumer) Start(msgs <-chan amqp.Delivery) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			sc.handleMessage(msg)
		}
		sc.log.Info().Msg("channel closed, stopping consumer")
	}()
	return done
}

func (sc *SalesConsumer) handleMessage(msg amqp.Delivery) {
	var m dto.AttendanceCreatedMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		sc.log.Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to unmarshal")
		_ = msg.Nack(false, false)
		return
	}

	if m.Status == string(models.AttendanceCancelled) || m.TicketTypeID == "" {
		_ = msg.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log := sc.log.With().
		Str("attendance_id", m.AttendanceID).
		Str("event_id", m.EventID).
		Str("ticket_id", m.TicketTypeID).
		Logger()

	err := sc.events.IncrementSold(ctx, m.EventID, m.TicketTypeID, 1)
	switch {
	case err == nil:
		log.Debug().Msg("ticket sale counted")
		_ = msg.Ack(false)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		// the event or ticket type is gone; nothing left to count
		log.Warn().Err(err).Msg("dropping sale for unknown ticket type")
		_ = msg.Ack(false)
	default:
		log.Error().Err(err).Msg("failed to count sale")
		_ = msg.Nack(false, true)
	}
}
