package rabbitmq

import (
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationQueue = "parking.notifications"
	ReservationTopic  = "reservation.*"
	prefetchCount     = 10
)

type Consumer struct {
	*session
	queue string
}

// NewConsumer declares a durable queue bound to every reservation event.
func NewConsumer(url string) (*Consumer, error) {
	s, err := dial(url)
	if err != nil {
		return nil, err
	}

	q, err := s.channel.QueueDeclare(NotificationQueue, true, false, false, false, nil)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	if err := s.channel.QueueBind(q.Name, ReservationTopic, ExchangeName, false, nil); err != nil {
		s.Close()
		return nil, fmt.Errorf("rabbitmq queue bind: %w", err)
	}

	if err := s.channel.Qos(prefetchCount, 0, false); err != nil {
		s.Close()
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}

	return &Consumer{session: s, queue: q.Name}, nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(
		c.queue,
		"",
		false, // ack after the notification is handled
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}

	log.Printf("[RabbitMQ] consuming from queue: %s", c.queue)
	return msgs, nil
}
