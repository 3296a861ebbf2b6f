package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	event := domain.BookingEvent{ID: "e1", Type: domain.EventBookingCreated, PNR: "ABC123", FlightID: "F1", Seats: 2}

	msg, err := newMessage("booking-events", "ABC123", event)
	require.NoError(t, err)
	assert.Equal(t, "booking-events", msg.Topic)
	assert.Equal(t, []byte("ABC123"), msg.Key)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "content-type", msg.Headers[0].Key)

	var decoded domain.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.PNR, decoded.PNR)
	assert.Equal(t, event.Seats, decoded.Seats)
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	_, err := newMessage("t", "k", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}

func TestProducer_CheckConnection_NoBrokers(t *testing.T) {
	p := NewProducer(nil, logrus.New())
	defer p.Close()

	assert.Error(t, p.CheckConnection(context.Background()))
}

func TestConsumer_CloseNil(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}
