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
	"golang.org/x/crypto/bcrypt"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/middleware"
)

// UserStore defines the database methods needed by staff handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type UserStore interface {
	ListUsers(ctx context.Context) ([]database.User, error)
	CreateUser(ctx context.Context, arg database.CreateUserParams) (database.User, error)
	UpdateUser(ctx context.Context, arg database.UpdateUserParams) (database.User, error)
	SoftDeleteUser(ctx context.Context, id int64) (int64, error)
}

// UserHandler handles staff account endpoints.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers staff endpoints. Expected to be mounted at /api/users
// behind middleware.Authenticate.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(enum.UserRoleAdmin))
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type userDetailResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDetailResponse(u database.User) userDetailResponse {
	return userDetailResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName.String,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// --- Handlers ---

// List returns all active staff accounts.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		log.Printf("ERROR: list users: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]userDetailResponse, len(users))
	for i, u := range users {
		resp[i] = toUserDetailResponse(u)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff account. Only a superadmin may create another superadmin.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username, password, and role are required"})
		return
	}

	if !canAssignRole(r.Context(), w, req.Role) {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: create user: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := h.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:       req.Username,
		HashedPassword: string(hashed),
		Role:           req.Role,
		FullName:       optionalText(req.FullName),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "username already exists"})
			return
		}
		log.Printf("ERROR: create user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toUserDetailResponse(user))
}

// Update modifies a staff account. An empty password keeps the current one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Role == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and role are required"})
		return
	}

	if !canAssignRole(r.Context(), w, req.Role) {
		return
	}

	password := pgtype.Text{}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("ERROR: update user: hash password: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		password = pgtype.Text{String: string(hashed), Valid: true}
	}

	user, err := h.store.UpdateUser(r.Context(), database.UpdateUserParams{
		ID:             userID,
		Username:       req.Username,
		Role:           req.Role,
		FullName:       optionalText(req.FullName),
		HashedPassword: password,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "username already exists"})
			return
		}
		log.Printf("ERROR: update user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserDetailResponse(user))
}

// Delete deactivates a staff account. Order history keeps the user id.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && claims.UserID == userID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot delete your own account"})
		return
	}

	if _, err := h.store.SoftDeleteUser(r.Context(), userID); err != nil {
		writeLookupError(w, "delete user", "user not found", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// canAssignRole rejects unknown roles, and superadmin unless the caller is one.
func canAssignRole(ctx context.Context, w http.ResponseWriter, role string) bool {
	if !enum.IsRole(role) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
		return false
	}
	if role == enum.UserRoleSuperadmin {
		claims := middleware.ClaimsFromContext(ctx)
		if claims == nil || claims.Role != enum.UserRoleSuperadmin {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
			return false
		}
	}
	return true
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
		return 0, false
	}
	return id, true
}

func optionalText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
