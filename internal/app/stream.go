package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/lfmartins/legalflow/internal/stream"
)

// PaymentStatusStreamHandler opens the long-lived payment-status stream. One
// session per request; the session owns the connection's lifecycle and this
// handler owns the SSE transport wrapped around the response writer.
func (app *application) PaymentStatusStreamHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")

	err := app.validator.Var(paymentID, "required,payment_id")
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverErrorResponse(w, r, fmt.Errorf("streaming unsupported by the underlying connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	transport := &sseTransport{w: w, flusher: flusher}

	session := stream.NewSession(
		paymentID,
		app.registry,
		app.paymentRepo,
		transport,
		app.logger,
		app.streamConfig,
	)

	err = session.Run(r.Context())
	if err != nil {
		app.logger.Warn("stream session ended with error", "payment_id", paymentID, "error", err)
	}
}

// sseTransport frames events as text/event-stream records. Writes are
// serialized: the session's heartbeat and update pushes come from its own
// goroutine, but the mutex keeps the framing safe if that ever changes.
type sseTransport struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

func (t *sseTransport) SendEvent(name string, data any) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	_, err = fmt.Fprintf(t.w, "event: %s\ndata: %s\n\n", name, js)
	if err != nil {
		return err
	}

	t.flusher.Flush()

	return nil
}
