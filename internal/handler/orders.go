package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/middleware"
	"github.com/tong-pos/api/internal/service"
)

// OrderServicer defines the engine methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	AppendItems(ctx context.Context, req service.AppendItemsRequest) (*service.OrderResult, error)
	SetStatus(ctx context.Context, req service.SetStatusRequest) (*service.OrderResult, error)
	SettleFull(ctx context.Context, req service.SettleRequest) (*service.OrderResult, error)
}

// OrderStore defines the read-only database methods needed by order handlers.
// Satisfied by *database.Queries.
type OrderStore interface {
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses []string) ([]database.Order, error)
	ListCompletedOrders(ctx context.Context, arg database.ListCompletedOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	ListOrderItemsByOrders(ctx context.Context, orderIds []int64) ([]database.OrderItem, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]database.OrderPayment, error)
	ListPaymentsByOrders(ctx context.Context, orderIds []int64) ([]database.OrderPayment, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	loc   *time.Location
}

// NewOrderHandler creates a new OrderHandler. loc sets business-day boundaries
// for date filters.
func NewOrderHandler(svc OrderServicer, store OrderStore, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{svc: svc, store: store, loc: loc}
}

// RegisterRoutes registers order endpoints. Expected to be mounted at /api/orders
// behind middleware.Authenticate.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	takers := middleware.RequireRole(enum.UserRoleWaiter, enum.UserRoleFront, enum.UserRoleAdmin)
	cashiers := middleware.RequireRole(enum.UserRoleFront, enum.UserRoleAdmin)
	queue := middleware.RequireRole(enum.UserRoleKitchen, enum.UserRoleFront, enum.UserRoleAdmin)

	r.With(takers).Post("/", h.Create)
	r.Get("/pending", h.ListOpen)
	r.With(cashiers).Get("/completed", h.ListCompleted)
	r.Get("/{id}", h.Get)
	r.With(takers).Get("/{id}/receipt", h.Receipt)
	r.With(takers).Post("/{id}/items", h.AppendItems)
	r.With(queue).Patch("/{id}/status", h.UpdateStatus)
	r.With(cashiers).Patch("/{id}/complete", h.Complete)
}

// --- Request / Response types ---

type lineRequest struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int32       `json:"quantity"`
}

type createOrderRequest struct {
	OrderType   string        `json:"orderType"`
	Destination string        `json:"destination"`
	Items       []lineRequest `json:"items"`
}

type appendItemsRequest struct {
	Items []lineRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type completeOrderRequest struct {
	PaymentMethod string      `json:"paymentMethod"`
	Discount      json.Number `json:"discount"`
}

type orderItemResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Quantity int32     `json:"quantity"`
	Price    string    `json:"price"`
	AddedAt  time.Time `json:"addedAt"`
}

type paymentResponse struct {
	ID        int64     `json:"id"`
	Method    string    `json:"method"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	OrderType     string              `json:"orderType"`
	Destination   string              `json:"destination"`
	Status        string              `json:"status"`
	PaymentMethod *string             `json:"paymentMethod"`
	CreatedAt     time.Time           `json:"createdAt"`
	CompletedAt   *time.Time          `json:"completedAt"`
	Items         []orderItemResponse `json:"items"`
	Total         string              `json:"total"`
	Discount      string              `json:"discount"`
	FinalTotal    string              `json:"finalTotal"`
	Paid          string              `json:"paid"`
	Balance       string              `json:"balance"`
}

type orderDetailResponse struct {
	orderResponse
	Payments []paymentResponse `json:"payments"`
}

type receiptLineResponse struct {
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

type receiptResponse struct {
	OrderID       int64                 `json:"orderId"`
	OrderType     string                `json:"orderType"`
	Destination   string                `json:"destination"`
	Status        string                `json:"status"`
	PaymentMethod *string               `json:"paymentMethod"`
	CreatedAt     time.Time             `json:"createdAt"`
	CompletedAt   *time.Time            `json:"completedAt"`
	Lines         []receiptLineResponse `json:"lines"`
	Subtotal      string                `json:"subtotal"`
	Discount      string                `json:"discount"`
	Total         string                `json:"total"`
	Paid          string                `json:"paid"`
	Balance       string                `json:"balance"`
	Payments      []paymentResponse     `json:"payments"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

// --- Handlers ---

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		CreatedBy:   claims.UserID,
		OrderType:   req.OrderType,
		Destination: req.Destination,
		Items:       toLineRequests(req.Items),
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"orderId": result.Order.ID})
}

// AppendItems handles POST /api/orders/{id}/items.
func (h *OrderHandler) AppendItems(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req appendItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := h.svc.AppendItems(r.Context(), service.AppendItemsRequest{
		OrderID: orderID,
		AddedBy: claims.UserID,
		Items:   toLineRequests(req.Items),
	}); err != nil {
		writeServiceError(w, "append items", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListOpen handles GET /api/orders/pending: every pending or ready order with
// its items and current balance.
func (h *OrderHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrdersByStatus(r.Context(), enum.OpenOrderStatuses)
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.withTotals(r.Context(), orders)
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// ListCompleted handles GET /api/orders/completed?date=YYYY-MM-DD&paymentMethod=.
func (h *OrderHandler) ListCompleted(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDay(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}

	params := database.ListCompletedOrdersParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	}
	if m := strings.ToLower(r.URL.Query().Get("paymentMethod")); m != "" && m != "all" {
		if !enum.IsTenderMethod(m) && m != enum.PaymentMethodMixed {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": service.ErrInvalidPaymentMethod.Error()})
			return
		}
		params.PaymentMethod = pgtype.Text{String: m, Valid: true}
	}

	orders, err := h.store.ListCompletedOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list completed orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.withTotals(r.Context(), orders)
	if err != nil {
		log.Printf("ERROR: list completed orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp})
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, items, payments, ok := h.load(w, r, orderID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, orderDetailResponse{
		orderResponse: toOrderResponse(order, items, payments),
		Payments:      toPaymentResponses(payments),
	})
}

// Receipt handles GET /api/orders/{id}/receipt. Lines with the same name and
// unit price are merged across batches.
func (h *OrderHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	order, items, payments, ok := h.load(w, r, orderID)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toReceiptResponse(order, items, payments))
}

// load reads an order with its line items and payments, writing the error
// response itself when it reports false.
func (h *OrderHandler) load(w http.ResponseWriter, r *http.Request, orderID int64) (database.Order, []database.OrderItem, []database.OrderPayment, bool) {
	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		writeLookupError(w, "get order", "order not found", err)
		return database.Order{}, nil, nil, false
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Order{}, nil, nil, false
	}

	payments, err := h.store.ListPaymentsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list payments: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return database.Order{}, nil, nil, false
	}
	return order, items, payments, true
}

// UpdateStatus handles PATCH /api/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.svc.SetStatus(r.Context(), service.SetStatusRequest{
		OrderID:   orderID,
		Status:    req.Status,
		ChangedBy: claims.UserID,
	})
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Order " + strconv.FormatInt(orderID, 10) + " marked as " + result.Order.Status,
	})
}

// Complete handles PATCH /api/orders/{id}/complete: one-shot settlement with
// the caller's payment method and discount.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req completeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := h.svc.SettleFull(r.Context(), service.SettleRequest{
		OrderID:       orderID,
		PaymentMethod: req.PaymentMethod,
		Discount:      req.Discount.String(),
		SettledBy:     claims.UserID,
	}); err != nil {
		writeServiceError(w, "complete order", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Helpers ---

// withTotals loads items and payments for all orders in two queries and
// attaches each order's derived totals.
func (h *OrderHandler) withTotals(ctx context.Context, orders []database.Order) ([]orderResponse, error) {
	resp := make([]orderResponse, 0, len(orders))
	if len(orders) == 0 {
		return resp, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := h.store.ListOrderItemsByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	payments, err := h.store.ListPaymentsByOrders(ctx, ids)
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]database.OrderItem, len(orders))
	for _, it := range items {
		itemsByOrder[it.OrderID] = append(itemsByOrder[it.OrderID], it)
	}
	paymentsByOrder := make(map[int64][]database.OrderPayment, len(orders))
	for _, p := range payments {
		paymentsByOrder[p.OrderID] = append(paymentsByOrder[p.OrderID], p)
	}

	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, itemsByOrder[o.ID], paymentsByOrder[o.ID]))
	}
	return resp, nil
}

func toLineRequests(items []lineRequest) []service.LineRequest {
	out := make([]service.LineRequest, len(items))
	for i, it := range items {
		out[i] = service.LineRequest{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price.String(),
		}
	}
	return out
}

func toOrderResponse(o database.Order, items []database.OrderItem, payments []database.OrderPayment) orderResponse {
	totals := service.ComputeTotals(o, items, payments)

	resp := orderResponse{
		ID:          o.ID,
		OrderType:   o.OrderType,
		Destination: o.Destination,
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Items:       make([]orderItemResponse, len(items)),
		Total:       totals.Total.StringFixed(2),
		Discount:    totals.Discount.StringFixed(2),
		FinalTotal:  totals.FinalTotal.StringFixed(2),
		Paid:        totals.Paid.StringFixed(2),
		Balance:     totals.Balance.StringFixed(2),
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	if o.CompletedAt.Valid {
		t := o.CompletedAt.Time
		resp.CompletedAt = &t
	}
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ID:       it.ID,
			Name:     it.ItemName,
			Quantity: it.Quantity,
			Price:    numericToString(it.UnitPrice),
			AddedAt:  it.AddedAt,
		}
	}
	return resp
}

func toReceiptResponse(o database.Order, items []database.OrderItem, payments []database.OrderPayment) receiptResponse {
	base := toOrderResponse(o, items, payments)

	type lineKey struct {
		name  string
		price string
	}
	var keys []lineKey
	qty := make(map[lineKey]int32)
	totals := make(map[lineKey]decimal.Decimal)
	for _, it := range items {
		price := service.NumericToDecimal(it.UnitPrice)
		k := lineKey{name: it.ItemName, price: price.StringFixed(2)}
		if _, seen := qty[k]; !seen {
			keys = append(keys, k)
		}
		qty[k] += it.Quantity
		totals[k] = totals[k].Add(price.Mul(decimal.NewFromInt32(it.Quantity)))
	}

	lines := make([]receiptLineResponse, len(keys))
	for i, k := range keys {
		lines[i] = receiptLineResponse{
			Name:      k.name,
			Quantity:  qty[k],
			UnitPrice: k.price,
			LineTotal: totals[k].StringFixed(2),
		}
	}

	return receiptResponse{
		OrderID:       base.ID,
		OrderType:     base.OrderType,
		Destination:   base.Destination,
		Status:        base.Status,
		PaymentMethod: base.PaymentMethod,
		CreatedAt:     base.CreatedAt,
		CompletedAt:   base.CompletedAt,
		Lines:         lines,
		Subtotal:      base.Total,
		Discount:      base.Discount,
		Total:         base.FinalTotal,
		Paid:          base.Paid,
		Balance:       base.Balance,
		Payments:      toPaymentResponses(payments),
	}
}

func toPaymentResponses(payments []database.OrderPayment) []paymentResponse {
	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = paymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    numericToString(p.Amount),
			CreatedAt: p.CreatedAt,
		}
	}
	return out
}

func numericToString(n pgtype.Numeric) string {
	return service.NumericToDecimal(n).StringFixed(2)
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return 0, false
	}
	return id, true
}

// parseDay returns [midnight, next midnight) of the YYYY-MM-DD date in loc,
// defaulting to today.
func parseDay(s string, loc *time.Location) (time.Time, time.Time, error) {
	var day time.Time
	if s == "" {
		now := time.Now().In(loc)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation("2006-01-02", s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		day = t
	}
	return day, day.AddDate(0, 0, 1), nil
}

// writeLookupError responds 404 for a missing row and 500 otherwise.
func writeLookupError(w http.ResponseWriter, op, notFound string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": notFound})
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// isValidationError checks if the error is a known validation error
// that should be surfaced to the caller with 400.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyOrder) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrMissingDestination) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrMissingItemName) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrInvalidStatus) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrInvalidAmount) ||
		errors.Is(err, service.ErrInvalidDiscount) ||
		errors.Is(err, service.ErrInvalidStock) ||
		errors.Is(err, service.ErrEmptyStockUpdate)
}

// writeServiceError maps engine errors to HTTP responses. Anything unknown is
// logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":     stockErr.Error(),
			"item":      stockErr.Item,
			"available": stockErr.Available,
		})
	case errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrOrderNotOpen):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
