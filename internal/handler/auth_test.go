package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"

	"github.com/tong-pos/api/internal/auth"
	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/handler"
	"github.com/tong-pos/api/internal/middleware"
)

// --- Mock store ---

type mockAuthStore struct {
	userByUsername map[string]database.User
	userByID       map[int64]database.User
	err            error
}

func newMockStore() *mockAuthStore {
	return &mockAuthStore{
		userByUsername: make(map[string]database.User),
		userByID:       make(map[int64]database.User),
	}
}

func (m *mockAuthStore) addUser(u database.User) {
	m.userByUsername[u.Username] = u
	m.userByID[u.ID] = u
}

func (m *mockAuthStore) GetUserByUsername(_ context.Context, username string) (database.User, error) {
	if m.err != nil {
		return database.User{}, m.err
	}
	u, ok := m.userByUsername[username]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthStore) GetUserByID(_ context.Context, id int64) (database.User, error) {
	if m.err != nil {
		return database.User{}, m.err
	}
	u, ok := m.userByID[id]
	if !ok {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

// --- Helpers ---

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	// MinCost keeps the suite fast; production hashes use DefaultCost.
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(h)
}

func makeTestUser(t *testing.T) database.User {
	t.Helper()
	return database.User{
		ID:             7,
		Username:       "front",
		HashedPassword: hashPassword(t, "correct-password"),
		FullName:       pgtype.Text{String: "Front Desk", Valid: true},
		Role:           enum.UserRoleFront,
	}
}

func setupAuthRouter(store *mockAuthStore) *chi.Mux {
	h := handler.NewAuthHandler(store, testJWTSecret)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterSessionRoutes(r)
	})
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	router := setupAuthRouter(store)

	rr := postJSON(t, router, "/login", map[string]string{
		"username": "front",
		"password": "correct-password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	accessToken, _ := resp["access_token"].(string)
	if accessToken == "" {
		t.Fatal("expected access_token in response")
	}
	if rt, _ := resp["refresh_token"].(string); rt == "" {
		t.Fatal("expected refresh_token in response")
	}

	claims, err := auth.ValidateToken(testJWTSecret, accessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enum.UserRoleFront || claims.Username != "front" {
		t.Errorf("claims: got %+v", claims)
	}

	u, ok := resp["user"].(map[string]interface{})
	if !ok {
		t.Fatal("expected user object in response")
	}
	if u["fullName"] != "Front Desk" {
		t.Errorf("fullName: got %v", u["fullName"])
	}
	if u["role"] != enum.UserRoleFront {
		t.Errorf("role: got %v", u["role"])
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newMockStore()
	store.addUser(makeTestUser(t))
	router := setupAuthRouter(store)

	rr := postJSON(t, router, "/login", map[string]string{
		"username": "front",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	router := setupAuthRouter(newMockStore())

	rr := postJSON(t, router, "/login", map[string]string{
		"username": "nobody",
		"password": "x",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := setupAuthRouter(newMockStore())

	rr := postJSON(t, router, "/login", map[string]string{"username": "front"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestLogin_StoreError(t *testing.T) {
	store := newMockStore()
	store.err = errors.New("connection refused")
	router := setupAuthRouter(store)

	rr := postJSON(t, router, "/login", map[string]string{
		"username": "front",
		"password": "correct-password",
	})
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}

// --- Refresh tests ---

func TestRefresh_Success(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	router := setupAuthRouter(store)

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, user.ID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := postJSON(t, router, "/refresh", map[string]string{"refresh_token": refresh})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if at, _ := resp["access_token"].(string); at == "" {
		t.Error("expected access_token in response")
	}
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	router := setupAuthRouter(store)

	access, err := auth.GenerateToken(testJWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	rr := postJSON(t, router, "/refresh", map[string]string{"refresh_token": access})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRefresh_DeletedUser(t *testing.T) {
	router := setupAuthRouter(newMockStore())

	refresh, err := auth.GenerateRefreshToken(testJWTSecret, 99)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	rr := postJSON(t, router, "/refresh", map[string]string{"refresh_token": refresh})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRefresh_MissingToken(t *testing.T) {
	router := setupAuthRouter(newMockStore())

	rr := postJSON(t, router, "/refresh", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Session tests ---

func TestSession_LoggedIn(t *testing.T) {
	store := newMockStore()
	user := makeTestUser(t)
	store.addUser(user)
	router := setupAuthRouter(store)

	rr := doAuthRequest(t, router, "GET", "/session", nil, &auth.Claims{
		UserID: user.ID, Username: user.Username, Role: user.Role,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["loggedIn"] != true {
		t.Errorf("loggedIn: got %v", resp["loggedIn"])
	}
}

func TestSession_NoToken(t *testing.T) {
	router := setupAuthRouter(newMockStore())

	req := httptest.NewRequest("GET", "/session", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
