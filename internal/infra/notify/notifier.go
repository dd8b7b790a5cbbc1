package notify

import (
	"context"
	"log/slog"

	"quietsummit/internal/app/policies"
)

// LogNotifier writes notifications to the log instead of an external
// channel. It stands in for a mail or push provider in every environment
// that has none configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, notification policies.Notification) error {
	if n.Logger == nil {
		return nil
	}
	n.Logger.Info("notification",
		"template", notification.Template,
		"recipient", notification.Recipient,
		"subject", notification.Subject,
	)
	return nil
}

var _ policies.NotifierPort = LogNotifier{}
