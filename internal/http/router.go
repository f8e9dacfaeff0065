package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rent-backend/internal/handlers"
	"rent-backend/internal/middleware"
)

func NewRouter(
	paymentHandler *handlers.PaymentHandler,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Health checks (Kubernetes probes + monitoring)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Gateway notifications (server-to-server, no auth; the payload is
	// never trusted, only re-verified)
	r.HandleFunc("/payments/webhook", webhookHandler.HandleNotification).Methods("POST")

	// Payment status polling for the post-redirect page
	r.HandleFunc("/payments/{reference}", paymentHandler.GetPaymentStatus).Methods("GET")

	// Protected API routes - payment initiation
	paymentsAPI := r.PathPrefix("/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("/rent", paymentHandler.InitiateRentPayment).Methods("POST")

	// Admin routes - reporting and reconciliation
	adminAPI := r.PathPrefix("/api/admin/payments").Subrouter()
	adminAPI.Use(authMiddleware.RequireAdmin)
	adminAPI.HandleFunc("", paymentHandler.GetAllPayments).Methods("GET")
	adminAPI.HandleFunc("/summary", paymentHandler.GetPaymentSummary).Methods("GET")
	adminAPI.HandleFunc("/reconcile", paymentHandler.ReconcilePayments).Methods("POST")

	return r
}
