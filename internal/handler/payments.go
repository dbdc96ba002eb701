package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/middleware"
	"github.com/tong-pos/api/internal/service"
)

// PaymentServicer applies a single tender to an order.
// Satisfied by *service.OrderService.
type PaymentServicer interface {
	AddPayment(ctx context.Context, req service.PaymentRequest) (*service.PaymentResult, error)
}

// PaymentStore defines the read-only database methods needed by payment handlers.
type PaymentStore interface {
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]database.OrderPayment, error)
}

// PaymentHandler handles split-payment endpoints.
type PaymentHandler struct {
	svc   PaymentServicer
	store PaymentStore
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(svc PaymentServicer, store PaymentStore) *PaymentHandler {
	return &PaymentHandler{svc: svc, store: store}
}

// RegisterRoutes registers payment endpoints. Expected to be mounted at
// /api/orders/{id}/payments.
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(enum.UserRoleFront, enum.UserRoleAdmin))
	r.Post("/", h.Add)
	r.Get("/", h.List)
}

// --- Request / Response types ---

type addPaymentRequest struct {
	Method string      `json:"method"`
	Amount json.Number `json:"amount"`
}

type addPaymentResponse struct {
	Success bool   `json:"success"`
	Applied string `json:"applied"`
	Balance string `json:"balance"`
	Status  string `json:"status"`
}

type paymentListResponse struct {
	Payments []paymentResponse `json:"payments"`
}

// --- Handlers ---

// Add handles POST /api/orders/{id}/payments. Overpayment is capped at the
// outstanding balance; the order completes when the balance reaches zero.
func (h *PaymentHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Amount == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": service.ErrInvalidAmount.Error()})
		return
	}

	result, err := h.svc.AddPayment(r.Context(), service.PaymentRequest{
		OrderID:     orderID,
		Method:      req.Method,
		Amount:      req.Amount.String(),
		ProcessedBy: claims.UserID,
	})
	if err != nil {
		writeServiceError(w, "add payment", err)
		return
	}

	writeJSON(w, http.StatusOK, addPaymentResponse{
		Success: true,
		Applied: result.Applied.StringFixed(2),
		Balance: result.Balance.StringFixed(2),
		Status:  result.Status,
	})
}

// List handles GET /api/orders/{id}/payments.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetOrder(r.Context(), orderID); err != nil {
		writeLookupError(w, "get order", "order not found", err)
		return
	}

	payments, err := h.store.ListPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, paymentListResponse{Payments: toPaymentResponses(payments)})
}
