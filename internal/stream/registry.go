// Package stream implements the live payment-status channel: an in-memory
// subscription registry, the notifier that fans committed transitions out to
// subscribers, and the per-connection session state machine.
package stream

import (
	"sync"
	"time"

	"github.com/lfmartins/legalflow/internal/domain"
)

// PaymentUpdate is one committed status change pushed to subscribers.
type PaymentUpdate struct {
	ID        string               `json:"id"`
	Status    domain.PaymentStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Message   string               `json:"message,omitempty"`
}

// Subscriber is one live connection interested in a payment. The registry
// references subscribers by payment id but never owns their transport.
type Subscriber interface {
	Deliver(update PaymentUpdate) error
	Close()
}

// Registry maps payment ids to their active subscribers. It is the only
// shared mutable structure in the pipeline and is safe for concurrent use
// from sessions and the notifier.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]map[Subscriber]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string]map[Subscriber]struct{}),
	}
}

func (r *Registry) Subscribe(paymentID string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[paymentID]
	if !ok {
		set = make(map[Subscriber]struct{})
		r.subs[paymentID] = set
	}

	set[sub] = struct{}{}
}

// Unsubscribe removes sub and deletes the key once its set empties, so
// abandoned payments do not accumulate. Safe to call for a subscriber that
// was never registered.
func (r *Registry) Unsubscribe(paymentID string, sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subs[paymentID]
	if !ok {
		return
	}

	delete(set, sub)

	if len(set) == 0 {
		delete(r.subs, paymentID)
	}
}

// Snapshot returns a copy of the current subscriber set so fan-out never
// holds the lock while pushing.
func (r *Registry) Snapshot(paymentID string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.subs[paymentID]
	if len(set) == 0 {
		return nil
	}

	subs := make([]Subscriber, 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}

	return subs
}

// Drop removes the key outright. Used after a terminal fan-out: late
// subscribers then take the connect-time terminal short-circuit instead.
func (r *Registry) Drop(paymentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subs, paymentID)
}
