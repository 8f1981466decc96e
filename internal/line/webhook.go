package line

import (
	"context"
	"io"
	"log"
	"net/http"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// Deduplicator decides whether an event id is seen for the first time.
type Deduplicator interface {
	ShouldProcess(eventID string) bool
}

// EventProcessor handles one authenticated, non-duplicate event. It must not
// panic its way out; the handler still guards each event with a recover.
type EventProcessor interface {
	HandleEvent(ctx context.Context, ev Event)
}

// WebhookHandler receives platform callbacks: verifies the signature,
// acknowledges immediately, then processes the batch asynchronously so the
// short-lived reply tokens are not burned waiting on AI calls.
type WebhookHandler struct {
	secret    string
	dedup     Deduplicator
	processor EventProcessor
}

func NewWebhookHandler(secret string, dedup Deduplicator, processor EventProcessor) *WebhookHandler {
	return &WebhookHandler{secret: secret, dedup: dedup, processor: processor}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	// Authentication gates everything: no event is decoded, no state is
	// touched, before the signature over the raw bytes checks out.
	if !ValidateSignature(h.secret, body, r.Header.Get("X-Line-Signature")) {
		log.Printf("webhook signature mismatch from %s", r.RemoteAddr)
		http.Error(w, "signature validation failed", http.StatusForbidden)
		return
	}

	// Ack before processing: the platform's delivery timeout is shorter
	// than an AI round trip.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))

	parsed, err := ParseWebhookBody(body)
	if err != nil {
		log.Printf("failed to parse webhook body: %v", err)
		return
	}

	go h.processEvents(parsed.Events)
}

func (h *WebhookHandler) processEvents(events []Event) {
	ctx := context.Background()
	for _, ev := range events {
		if ev.Type != EventTypeMessage {
			log.Printf("skipping event type %q", ev.Type)
			continue
		}
		if ev.Message.ID == "" {
			// An event without an id cannot be deduplicated safely.
			log.Printf("skipping message event without id (user=%s)", ev.Source.UserID)
			continue
		}
		if !h.dedup.ShouldProcess(ev.Message.ID) {
			// Redelivery: already handled in this process lifetime.
			continue
		}
		h.handleOne(ctx, ev)
	}
}

// handleOne isolates a single event: a panic here must not take down
// sibling events or the process.
func (h *WebhookHandler) handleOne(ctx context.Context, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("panic while handling event %s: %v", ev.Message.ID, rec)
		}
	}()
	h.processor.HandleEvent(ctx, ev)
}
