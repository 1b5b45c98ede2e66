package stream

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lfmartins/legalflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

type recordingSubscriber struct {
	updates    []PaymentUpdate
	deliverErr error
	closed     bool
}

func (s *recordingSubscriber) Deliver(update PaymentUpdate) error {
	if s.deliverErr != nil {
		return s.deliverErr
	}

	s.updates = append(s.updates, update)

	return nil
}

func (s *recordingSubscriber) Close() {
	s.closed = true
}

func newTestNotifier(registry *Registry) *Notifier {
	return NewNotifier(registry, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNotifierFanOutReachesEverySubscriber(t *testing.T) {
	registry := NewRegistry()
	notifier := newTestNotifier(registry)

	subs := make([]*recordingSubscriber, 5)
	for i := range subs {
		subs[i] = &recordingSubscriber{}
		registry.Subscribe("pay_1", subs[i])
	}

	notifier.Notify("pay_1", domain.PaymentStatusOverdue)

	for _, sub := range subs {
		assert.Len(t, sub.updates, 1)
		assert.Equal(t, "pay_1", sub.updates[0].ID)
		assert.Equal(t, domain.PaymentStatusOverdue, sub.updates[0].Status)
		assert.False(t, sub.updates[0].Timestamp.IsZero())
	}

	// non-terminal push keeps the key alive
	assert.Len(t, registry.Snapshot("pay_1"), 5)
}

func TestNotifierIsolatesFailedSubscriber(t *testing.T) {
	registry := NewRegistry()
	notifier := newTestNotifier(registry)

	healthy := &recordingSubscriber{}
	broken := &recordingSubscriber{deliverErr: domain.ErrSubscriberOverflow}

	registry.Subscribe("pay_1", healthy)
	registry.Subscribe("pay_1", broken)

	notifier.Notify("pay_1", domain.PaymentStatusOverdue)

	assert.Len(t, healthy.updates, 1)
	assert.True(t, broken.closed)
	assert.False(t, healthy.closed)
}

func TestNotifierDropsKeyOnTerminalStatus(t *testing.T) {
	registry := NewRegistry()
	notifier := newTestNotifier(registry)

	sub := &recordingSubscriber{}
	registry.Subscribe("pay_1", sub)

	notifier.Notify("pay_1", domain.PaymentStatusConfirmed)

	assert.Len(t, sub.updates, 1)
	assert.Empty(t, registry.Snapshot("pay_1"))
}

func TestNotifierWithNoSubscribers(t *testing.T) {
	registry := NewRegistry()
	notifier := newTestNotifier(registry)

	// must not panic or create registry entries
	notifier.Notify("pay_1", domain.PaymentStatusConfirmed)

	assert.Empty(t, registry.Snapshot("pay_1"))
}
