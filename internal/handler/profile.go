package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/middleware"
)

// ProfileStore defines the database methods a caller needs to manage their own account.
type ProfileStore interface {
	GetUserByID(ctx context.Context, id int64) (database.User, error)
	UpdateUserProfile(ctx context.Context, arg database.UpdateUserProfileParams) (database.User, error)
	UpdateUserPassword(ctx context.Context, arg database.UpdateUserPasswordParams) (int64, error)
}

// ProfileHandler serves self-service account endpoints for any signed-in role.
type ProfileHandler struct {
	store ProfileStore
}

func NewProfileHandler(store ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// RegisterRoutes registers profile endpoints. Expected under /api/profile.
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.Get)
	r.Put("/me", h.Update)
	r.Put("/password", h.ChangePassword)
}

// --- Request / Response types ---

type updateProfileRequest struct {
	FullName string `json:"fullName"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// --- Handlers ---

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeLookupError(w, "get profile", "user not found", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]userResponse{"user": toUserResponse(user)})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.store.UpdateUserProfile(r.Context(), database.UpdateUserProfileParams{
		ID:       claims.UserID,
		FullName: optionalText(req.FullName),
	})
	if err != nil {
		writeLookupError(w, "update profile", "user not found", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": toUserResponse(user)})
}

// ChangePassword replaces the caller's password after checking the old one.
func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "oldPassword and newPassword are required"})
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeLookupError(w, "change password", "user not found", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.OldPassword)); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "old password incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: change password: hash password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	n, err := h.store.UpdateUserPassword(r.Context(), database.UpdateUserPasswordParams{
		ID:             user.ID,
		HashedPassword: string(hashed),
	})
	if err != nil {
		log.Printf("ERROR: change password: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
