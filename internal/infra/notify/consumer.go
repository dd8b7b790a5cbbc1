package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"quietsummit/internal/app/policies"
	domainbooking "quietsummit/internal/domain/booking"
)

// BookingEventHandler consumes booking lifecycle events off the broker and
// turns them into traveler notifications. Delivery is best effort: a failed
// send is logged and the message acknowledged anyway.
type BookingEventHandler struct {
	Notifier policies.NotifierPort
	Logger   *slog.Logger
}

type cloudEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (h *BookingEventHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("dropping malformed event", "topic", msg.Topic, "error", err)
		}
		return nil
	}
	template, subject := templateFor(evt.Type)
	if template == "" {
		return nil
	}
	var data struct {
		BookingID  string `json:"BookingID"`
		TravelerID string `json:"TravelerID"`
	}
	if err := json.Unmarshal(evt.Data, &data); err != nil {
		return nil
	}
	notification := policies.Notification{
		Template:  template,
		Recipient: data.TravelerID,
		Subject:   subject,
		Data:      map[string]any{"booking_id": data.BookingID},
	}
	if err := h.Notifier.Send(ctx, notification); err != nil && h.Logger != nil {
		h.Logger.Warn("notification delivery failed", "template", template, "error", err)
	}
	return nil
}

func templateFor(eventType string) (template, subject string) {
	switch eventType {
	case domainbooking.EventBookingCreated + ".v1":
		return "booking_created", "We received your reservation"
	case domainbooking.EventBookingConfirmed + ".v1":
		return "booking_confirmed", "Your reservation is confirmed"
	case domainbooking.EventBookingCompleted + ".v1":
		return "booking_completed", "Thanks for staying with us"
	case domainbooking.EventBookingCancelled + ".v1":
		return "booking_cancelled", "Your reservation was cancelled"
	default:
		return "", ""
	}
}
