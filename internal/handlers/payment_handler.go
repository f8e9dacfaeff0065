package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rent-backend/internal/cache"
	"rent-backend/internal/models"
	"rent-backend/internal/repositories"
	"rent-backend/internal/services"
	"rent-backend/pkg/utils"
)

type PaymentHandler struct {
	Service     *services.PaymentService
	Verifier    *services.WebhookVerifier
	PaymentRepo *repositories.PaymentRepository
}

func NewPaymentHandler(service *services.PaymentService, verifier *services.WebhookVerifier, paymentRepo *repositories.PaymentRepository) *PaymentHandler {
	return &PaymentHandler{
		Service:     service,
		Verifier:    verifier,
		PaymentRepo: paymentRepo,
	}
}

// InitiateRentPayment opens a checkout session for a lease
// POST /payments/rent
func (h *PaymentHandler) InitiateRentPayment(w http.ResponseWriter, r *http.Request) {
	var req models.InitiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.InitiatePayment(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrLeaseNotFound):
			utils.Error(w, http.StatusNotFound, "Lease not found")
		case errors.Is(err, models.ErrGateway):
			log.Printf("[Payment] Initiation failed: %v", err)
			utils.Error(w, http.StatusBadGateway, "Payment gateway unavailable, please retry")
		default:
			utils.Error(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	utils.JSON(w, http.StatusCreated, resp)
}

// GetPaymentStatus returns a payment by reference, for the post-redirect
// polling UI. Responses are briefly cached.
// GET /payments/{reference}
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	if data, ok := cache.GetCachedPaymentStatus(r.Context(), reference); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	payment, err := h.Service.GetPayment(r.Context(), reference)
	if err != nil {
		if errors.Is(err, models.ErrPaymentNotFound) {
			utils.Error(w, http.StatusNotFound, "Payment not found")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to get payment")
		return
	}

	data, err := json.Marshal(payment)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to encode payment")
		return
	}
	cache.CachePaymentStatus(r.Context(), reference, data)

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// GetAllPayments returns payments with filters (admin)
// GET /api/admin/payments
func (h *PaymentHandler) GetAllPayments(w http.ResponseWriter, r *http.Request) {
	filter := &models.PaymentFilter{
		Limit:  50,
		Offset: 0,
	}

	// Parse query params
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	if lease := r.URL.Query().Get("lease_id"); lease != "" {
		if n, err := strconv.Atoi(lease); err == nil && n > 0 {
			filter.LeaseID = n
		}
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = models.PaymentStatus(status)
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		filter.Kind = models.PaymentKind(kind)
	}

	if startDate := r.URL.Query().Get("start_date"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			filter.StartDate = &t
		}
	}

	if endDate := r.URL.Query().Get("end_date"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndDate = &endOfDay
		}
	}

	payments, total, err := h.PaymentRepo.GetAll(r.Context(), filter)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to get payments")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// GetPaymentSummary returns settlement totals for reports (admin)
// GET /api/admin/payments/summary
func (h *PaymentHandler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	var startDate, endDate *time.Time

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			startDate = &t
		}
	}

	if e := r.URL.Query().Get("end_date"); e != "" {
		if t, err := time.Parse("2006-01-02", e); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			endDate = &endOfDay
		}
	}

	summary, err := h.PaymentRepo.GetSummary(r.Context(), startDate, endDate)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to get summary")
		return
	}

	utils.JSON(w, http.StatusOK, summary)
}

// ReconcilePayments re-verifies stale PENDING payments (admin)
// POST /api/admin/payments/reconcile
func (h *PaymentHandler) ReconcilePayments(w http.ResponseWriter, r *http.Request) {
	maxAge := time.Hour
	if m := r.URL.Query().Get("max_age_minutes"); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			maxAge = time.Duration(n) * time.Minute
		}
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := h.Verifier.Reconcile(r.Context(), maxAge, limit)
	if err != nil {
		log.Printf("[Payment] Reconcile error: %v", err)
		utils.Error(w, http.StatusInternalServerError, "Reconciliation failed")
		return
	}

	utils.JSON(w, http.StatusOK, result)
}
