// Package notify delivers push notifications through Pushover.
package notify

import (
	"fmt"

	"github.com/gregdel/pushover"

	"github.com/yegors/skyalert/pkg/logger"
)

// PushoverNotifier sends alert messages to a single Pushover recipient
type PushoverNotifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	logger    *logger.Logger
}

// NewPushoverNotifier creates a notifier for the given application token
// and user key.
func NewPushoverNotifier(token, userKey string, loggerObj *logger.Logger) *PushoverNotifier {
	return &PushoverNotifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
		logger:    loggerObj.Named("notify"),
	}
}

// Send delivers one notification. Delivery failure is returned to the
// caller for logging; it is never fatal.
func (n *PushoverNotifier) Send(title, body string) error {
	message := pushover.NewMessageWithTitle(body, title)
	if _, err := n.app.SendMessage(message, n.recipient); err != nil {
		return fmt.Errorf("pushover delivery failed: %w", err)
	}

	n.logger.Debug("Notification delivered", logger.String("title", title))
	return nil
}

// NopNotifier discards notifications; used when no Pushover credentials
// are configured so the monitor still runs and logs alerts.
type NopNotifier struct{}

// Send implements the notifier contract and always succeeds
func (NopNotifier) Send(title, body string) error { return nil }
