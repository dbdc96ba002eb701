package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/middleware"
	"github.com/tong-pos/api/internal/service"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) (int64, error)
}

// Restocker applies absolute stock levels. Satisfied by *service.StockService.
type Restocker interface {
	Restock(ctx context.Context, updates []service.StockUpdate) ([]database.MenuItem, error)
}

// MenuHandler handles catalog and stock endpoints.
type MenuHandler struct {
	store MenuStore
	stock Restocker
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, stock Restocker) *MenuHandler {
	return &MenuHandler{store: store, stock: stock}
}

// RegisterRoutes registers menu endpoints. Expected to be mounted at /api
// behind middleware.Authenticate.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	admins := middleware.RequireRole(enum.UserRoleAdmin)

	r.Get("/menu", h.List)
	r.With(admins).Post("/menu/item", h.Create)
	r.With(admins).Put("/menu/item/{id}", h.Update)
	r.With(admins).Delete("/menu/item/{id}", h.Delete)
	r.With(middleware.RequireRole(enum.UserRoleAdmin, enum.UserRoleKitchen)).Post("/stock", h.Restock)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Category string      `json:"category"`
	Stock    int32       `json:"stock"`
	Cost     json.Number `json:"cost"`
}

type stockUpdateRequest struct {
	Updates []struct {
		ID    int64 `json:"id"`
		Stock int32 `json:"stock"`
	} `json:"updates"`
}

type menuItemResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Stock    int32  `json:"stock"`
	Cost     string `json:"cost"`
}

type menuListResponse struct {
	Menu []menuItemResponse `json:"menu"`
}

// --- Handlers ---

// List handles GET /api/menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, menuListResponse{Menu: toMenuResponses(items)})
}

// Create handles POST /api/menu/item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, cost, ok := validateMenuItem(w, req)
	if !ok {
		return
	}
	if req.Stock < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stock must be >= 0"})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:     strings.TrimSpace(req.Name),
		Price:    service.DecimalToNumeric(price),
		Category: strings.TrimSpace(req.Category),
		Stock:    req.Stock,
		Cost:     service.DecimalToNumeric(cost),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item name already exists"})
			return
		}
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuResponse(item))
}

// Update handles PUT /api/menu/item/{id}. Stock is only changed through
// POST /api/stock.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, cost, ok := validateMenuItem(w, req)
	if !ok {
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Price:    service.DecimalToNumeric(price),
		Category: strings.TrimSpace(req.Category),
		Cost:     service.DecimalToNumeric(cost),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item name already exists"})
			return
		}
		writeLookupError(w, "update menu item", "menu item not found", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuResponse(item))
}

// Delete handles DELETE /api/menu/item/{id}. Existing order lines keep their
// snapshot of the name and price.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	n, err := h.store.DeleteMenuItem(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restock handles POST /api/stock with absolute stock levels.
func (h *MenuHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req stockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	updates := make([]service.StockUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = service.StockUpdate{ID: u.ID, Stock: u.Stock}
	}

	items, err := h.stock.Restock(r.Context(), updates)
	if err != nil {
		if errors.Is(err, service.ErrMenuItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeServiceError(w, "restock", err)
		return
	}

	writeJSON(w, http.StatusOK, menuListResponse{Menu: toMenuResponses(items)})
}

// --- Helpers ---

func validateMenuItem(w http.ResponseWriter, req menuItemRequest) (decimal.Decimal, decimal.Decimal, bool) {
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, decimal.Zero, false
	}
	if strings.TrimSpace(req.Category) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category is required"})
		return decimal.Zero, decimal.Zero, false
	}

	price, err := service.ParseMoney(req.Price.String())
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a number >= 0"})
		return decimal.Zero, decimal.Zero, false
	}
	cost, err := service.ParseMoney(req.Cost.String())
	if err != nil || cost.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cost must be a number >= 0"})
		return decimal.Zero, decimal.Zero, false
	}
	return price, cost, true
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func toMenuResponse(item database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:       item.ID,
		Name:     item.Name,
		Price:    numericToString(item.Price),
		Category: item.Category,
		Stock:    item.Stock,
		Cost:     numericToString(item.Cost),
	}
}

func toMenuResponses(items []database.MenuItem) []menuItemResponse {
	out := make([]menuItemResponse, len(items))
	for i, it := range items {
		out[i] = toMenuResponse(it)
	}
	return out
}
