package amqpad

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain"
)

func TestEncode(t *testing.T) {
	e := domain.BookingConfirmedEvent{BookingID: "b1", UserID: "u1", HotelID: "h1", Guests: 2, TotalCents: 30000, Status: "confirmed"}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("x", 3600))

	msg, err := encode(e, now)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "b1", msg.MessageId)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())

	var back domain.BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Body, &back))
	assert.Equal(t, e, back)
}

func TestPublishDialFailure(t *testing.T) {
	p := New("amqp://nowhere")
	p.dial = func(string) (*amqp.Connection, error) { return nil, errors.New("connection refused") }

	err := p.PublishBookingConfirmed(context.Background(), domain.BookingConfirmedEvent{BookingID: "b1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq dial")
}
