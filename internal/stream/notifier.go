package stream

import (
	"log/slog"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
)

// Notifier fans committed status transitions out to every live subscriber of
// a payment. It is called by the reconciliation engine after each commit.
type Notifier struct {
	registry *Registry
	logger   *slog.Logger
}

func NewNotifier(registry *Registry, logger *slog.Logger) *Notifier {
	return &Notifier{
		registry: registry,
		logger:   logger,
	}
}

// Notify pushes (paymentID, status, now) to each subscriber. A failed push
// is isolated to its subscriber: the session is closed and delivery to the
// rest proceeds. On a terminal status the key is dropped afterwards.
func (n *Notifier) Notify(paymentID string, status domain.PaymentStatus) {
	update := PaymentUpdate{
		ID:        paymentID,
		Status:    status,
		Timestamp: time.Now(),
	}

	for _, sub := range n.registry.Snapshot(paymentID) {
		err := sub.Deliver(update)
		if err != nil {
			n.logger.Warn("dropping unresponsive subscriber",
				"payment_id", paymentID, "error", err)
			sub.Close()
		}
	}

	if status.IsTerminal() {
		n.registry.Drop(paymentID)
	}
}
