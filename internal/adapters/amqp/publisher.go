// Package amqpad publishes booking events to RabbitMQ.
package amqpad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"staybook/internal/domain"
)

// QueueBookingConfirmed receives one message per stored booking.
const QueueBookingConfirmed = "booking.confirmed"

type Publisher struct {
	url  string
	dial func(url string) (*amqp.Connection, error)
}

func New(url string) *Publisher {
	return &Publisher{url: url, dial: amqp.Dial}
}

// PublishBookingConfirmed dials, declares the durable queue and publishes one
// persistent message. Bookings are rare enough that a connection per event
// keeps this free of reconnect bookkeeping.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, e domain.BookingConfirmedEvent) error {
	msg, err := encode(e, time.Now())
	if err != nil {
		return err
	}
	conn, err := p.dial(p.url)
	if err != nil {
		return errors.Wrap(err, "rabbitmq dial")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "rabbitmq channel")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		QueueBookingConfirmed, // name
		true,                  // durable
		false,                 // autoDelete
		false,                 // exclusive
		false,                 // noWait
		nil,                   // args
	); err != nil {
		return errors.Wrap(err, "rabbitmq queue declare")
	}

	return errors.Wrap(ch.PublishWithContext(ctx,
		"",                    // default exchange
		QueueBookingConfirmed, // routing key = queue name
		false,                 // mandatory
		false,                 // immediate
		msg,
	), "rabbitmq publish")
}

func encode(e domain.BookingConfirmedEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, errors.Wrap(err, "marshal booking event")
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.BookingID,
		Type:         QueueBookingConfirmed,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
