// Package notify announces newly raised alerts over WhatsApp.
package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/fleetbook/internal/domain/models"
	"github.com/mamadbah2/fleetbook/pkg/clients/whatsapp"
)

// WhatsAppNotifier sends one text message per alert to every configured
// recipient.
type WhatsAppNotifier struct {
	client     whatsapp.Client
	recipients []string
	logger     *zap.Logger
}

// NewWhatsAppNotifier builds a notifier. recipients is a comma separated list
// of phone numbers.
func NewWhatsAppNotifier(client whatsapp.Client, recipients string, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	var to []string
	for _, r := range strings.Split(recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &WhatsAppNotifier{client: client, recipients: to, logger: logger}
}

// NotifyAlert sends the alert to each recipient. Every recipient is tried;
// the first failure is returned.
func (n *WhatsAppNotifier) NotifyAlert(ctx context.Context, alert models.Alert) error {
	body := FormatAlert(alert)

	var firstErr error
	for _, to := range n.recipients {
		resp, err := n.client.SendTextMessage(ctx, whatsapp.SendTextMessageRequest{To: to, Body: body})
		if err != nil {
			n.logger.Warn("alert notification failed", zap.String("to", to), zap.String("alert_type", string(alert.Type)), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("notify %s: %w", to, err)
			}
			continue
		}
		var id string
		if len(resp.Messages) > 0 {
			id = resp.Messages[0].ID
		}
		n.logger.Debug("alert notification sent", zap.String("to", to), zap.String("message_id", id))
	}
	return firstErr
}

// FormatAlert renders the alert as a short chat message.
func FormatAlert(alert models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ *%s*\n%s", alert.Title, alert.Message)
	switch {
	case alert.TruckNumber != "":
		fmt.Fprintf(&b, "\nTruck: %s", alert.TruckNumber)
	case alert.EmployeeNumber != "":
		fmt.Fprintf(&b, "\nEmployee: %s", alert.EmployeeNumber)
	}
	return b.String()
}
