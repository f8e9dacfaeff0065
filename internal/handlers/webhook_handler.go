package handlers

import (
	"log"
	"net/http"

	"rent-backend/internal/metrics"
	"rent-backend/internal/services"
)

type WebhookHandler struct {
	Verifier *services.WebhookVerifier
}

func NewWebhookHandler(verifier *services.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{Verifier: verifier}
}

// HandleNotification processes gateway delivery notifications
// POST /payments/webhook
//
// The gateway expects a 2xx ack once the payload is readable; anything
// else triggers redelivery. Verification failures are therefore logged
// and acked, not surfaced. Only the transaction reference is read from
// the body; every other field is untrusted.
func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("[Webhook] Unreadable payload: %v", err)
		metrics.WebhooksReceivedTotal.WithLabelValues("malformed").Inc()
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	reference := r.PostForm.Get("cpm_trans_id")
	if reference == "" {
		reference = r.PostForm.Get("reference")
	}
	if reference == "" {
		log.Printf("[Webhook] Notification without transaction reference")
		metrics.WebhooksReceivedTotal.WithLabelValues("malformed").Inc()
		http.Error(w, "Missing transaction reference", http.StatusBadRequest)
		return
	}

	log.Printf("[Webhook] Received notification for %s", reference)

	if err := h.Verifier.HandleNotification(r.Context(), reference); err != nil {
		// Ack anyway; unresolved payments are retried by the gateway or
		// swept up by reconciliation
		log.Printf("[Webhook] %s left unresolved: %v", reference, err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
