package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
)

const (
	EventPaymentUpdate = "payment-update"
	EventHeartbeat     = "heartbeat"
	EventTimeout       = "timeout"

	// Pushed as the synthetic PENDING message while the booking flow is
	// still writing the record the client subscribed ahead of.
	msgAwaitingCreation = "awaiting creation"
)

const deliveryBuffer = 8

type HeartbeatFrame struct {
	Heartbeat bool `json:"heartbeat"`
}

type TimeoutFrame struct {
	Timeout bool `json:"timeout"`
}

// Transport is the push channel a session writes frames to. The HTTP layer
// provides an SSE-backed implementation; tests provide fakes.
type Transport interface {
	SendEvent(name string, data any) error
}

// Config bounds a session's lifetime.
type Config struct {
	// HeartbeatInterval spaces keep-alive frames. A failed heartbeat write
	// is treated as a client disconnect.
	HeartbeatInterval time.Duration

	// SessionTimeout is the hard ceiling after which the session closes
	// with a timeout frame regardless of payment status.
	SessionTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 30 * time.Second,
		SessionTimeout:    5 * time.Minute,
	}
}

// Session owns one subscriber connection for its whole lifetime. It runs the
// CONNECTING → OPEN → CLOSED machine: initial-state push, registry
// subscription, then a select loop over notifier deliveries, heartbeats, the
// session ceiling and client disconnect.
type Session struct {
	paymentID string
	registry  *Registry
	payments  domain.PaymentRepository
	transport Transport
	logger    *slog.Logger
	cfg       Config

	updates   chan PaymentUpdate
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(
	paymentID string,
	registry *Registry,
	payments domain.PaymentRepository,
	transport Transport,
	logger *slog.Logger,
	cfg Config) *Session {

	return &Session{
		paymentID: paymentID,
		registry:  registry,
		payments:  payments,
		transport: transport,
		logger:    logger,
		cfg:       cfg,
		updates:   make(chan PaymentUpdate, deliveryBuffer),
		done:      make(chan struct{}),
	}
}

// Deliver hands a committed update to the session without blocking the
// notifier. A full buffer means the consumer stopped draining and is
// reported as a transport failure so the notifier schedules cleanup.
func (s *Session) Deliver(update PaymentUpdate) error {
	select {
	case <-s.done:
		return domain.ErrSubscriberClosed
	default:
	}

	select {
	case s.updates <- update:
		return nil
	case <-s.done:
		return domain.ErrSubscriberClosed
	default:
		return domain.ErrSubscriberOverflow
	}
}

// Close unregisters the session and marks it dead. Idempotent, and the
// unsubscribe happens before the done signal so the notifier never pushes to
// a handle that started tearing down.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.registry.Unsubscribe(s.paymentID, s)
		close(s.done)
	})
}

// Run drives the session until it closes. The caller owns the transport and
// releases it after Run returns; Run guarantees the registry entry is gone
// by then.
func (s *Session) Run(ctx context.Context) error {
	defer s.Close()

	payment, err := s.payments.GetById(ctx, s.paymentID)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		// The booking flow can create the record slightly after the client
		// opens the stream. Stay open and report a synthetic PENDING.
		err = s.transport.SendEvent(EventPaymentUpdate, PaymentUpdate{
			ID:        s.paymentID,
			Status:    domain.PaymentStatusPending,
			Timestamp: time.Now(),
			Message:   msgAwaitingCreation,
		})
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case payment.Status.IsTerminal():
		// Already settled: push the final state once and skip the registry.
		return s.transport.SendEvent(EventPaymentUpdate, PaymentUpdate{
			ID:        s.paymentID,
			Status:    payment.Status,
			Timestamp: time.Now(),
		})
	default:
		err = s.transport.SendEvent(EventPaymentUpdate, PaymentUpdate{
			ID:        s.paymentID,
			Status:    payment.Status,
			Timestamp: time.Now(),
		})
		if err != nil {
			return err
		}
	}

	s.registry.Subscribe(s.paymentID, s)

	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	ceiling := time.NewTimer(s.cfg.SessionTimeout)
	defer ceiling.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-s.done:
			return nil

		case update := <-s.updates:
			err := s.transport.SendEvent(EventPaymentUpdate, update)
			if err != nil {
				return err
			}

			if update.Status.IsTerminal() {
				return nil
			}

		case <-heartbeat.C:
			err := s.transport.SendEvent(EventHeartbeat, HeartbeatFrame{Heartbeat: true})
			if err != nil {
				return err
			}

		case <-ceiling.C:
			s.logger.Info("stream session hit its ceiling", "payment_id", s.paymentID)

			// Best effort: the client sees an explicit terminal frame
			// rather than a silent drop.
			_ = s.transport.SendEvent(EventTimeout, TimeoutFrame{Timeout: true})

			return nil
		}
	}
}
