package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/sirupsen/logrus"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender renders booking events into customer e-mails. Delivery is a log line;
// an SMTP relay plugs in behind Deliver.
type Sender struct {
	log     logrus.FieldLogger
	Deliver func(ctx context.Context, msg Message) error
}

func NewSender(log logrus.FieldLogger) *Sender {
	s := &Sender{log: log}
	s.Deliver = s.logDelivery
	return s
}

// Handle decodes one event payload from the broker. Undecodable payloads are
// logged and dropped so they do not block the queue.
func (s *Sender) Handle(ctx context.Context, payload []byte) error {
	var event domain.BookingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.WithError(err).Warn("dropping undecodable booking event")
		return nil
	}
	return s.Send(ctx, event)
}

func (s *Sender) Send(ctx context.Context, event domain.BookingEvent) error {
	msg, ok := Render(event)
	if !ok {
		s.log.WithFields(logrus.Fields{"pnr": event.PNR, "type": event.Type}).Debug("no e-mail for event")
		return nil
	}
	return s.Deliver(ctx, msg)
}

// Render builds the customer e-mail for an event. Events without a recipient or
// meant for operators only produce nothing.
func Render(event domain.BookingEvent) (Message, bool) {
	if event.Email == "" {
		return Message{}, false
	}

	journey := event.JourneyDateTime.Format(time.RFC1123)
	switch event.Type {
	case domain.EventBookingCreated:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking confirmed: %s", event.PNR),
			Body: fmt.Sprintf("Dear %s,\n\nyour booking %s on flight %s for %d seat(s) departing %s is confirmed. Total paid: %.2f.\n",
				event.Name, event.PNR, event.FlightID, event.Seats, journey, event.TotalPrice),
		}, true
	case domain.EventBookingCancelled:
		return Message{
			To:      event.Email,
			Subject: fmt.Sprintf("Booking cancelled: %s", event.PNR),
			Body: fmt.Sprintf("Dear %s,\n\nyour booking %s on flight %s departing %s has been cancelled.\n",
				event.Name, event.PNR, event.FlightID, journey),
		}, true
	default:
		return Message{}, false
	}
}

func (s *Sender) logDelivery(_ context.Context, msg Message) error {
	s.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("send email")
	return nil
}
