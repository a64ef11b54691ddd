package rabbitmq

import (
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer reads one durable queue bound to the events exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	tag     string
	log     zerolog.Logger
}

func NewConsumer(url, queue string, bindings []string, log zerolog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := declareExchange(ch); err != nil {
		return fail(err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("rabbitmq queue declare: %w", err))
	}
	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			return fail(fmt.Errorf("rabbitmq queue bind %s: %w", key, err))
		}
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fail(fmt.Errorf("rabbitmq qos: %w", err))
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name, tag: q.Name + "-" + uuid.NewString(), log: log}, nil
}

// Consume starts delivery with manual acknowledgement.
func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue,
		c.tag,
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	c.log.Info().Str("queue", c.queue).Msg("consuming")
	return msgs, nil
}

// Cancel stops new deliveries. The delivery channel is closed once the
// messages already handed out have been drained by the reader.
func (c *Consumer) Cancel() error {
	if err := c.channel.Cancel(c.tag, false); err != nil {
		return fmt.Errorf("rabbitmq cancel: %w", err)
	}
	return nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
