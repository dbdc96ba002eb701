package router

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tong-pos/api/internal/config"
	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/events"
	"github.com/tong-pos/api/internal/handler"
	mw "github.com/tong-pos/api/internal/middleware"
	"github.com/tong-pos/api/internal/service"
	"github.com/tong-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Every engine mutation publishes to publisher after commit; pass the hub
// (optionally combined with other sinks via events.Multi).
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, publisher events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	loc, err := cfg.Location()
	if err != nil {
		log.Printf("WARN: %v, falling back to UTC", err)
		loc = time.UTC
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	newOrderStore := func(db database.DBTX) service.OrderStore { return database.New(db) }
	newRestockStore := func(db database.DBTX) service.RestockStore { return database.New(db) }
	orderSvc := service.NewOrderService(pool, newOrderStore, publisher)
	stockSvc := service.NewStockService(pool, newRestockStore)

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	orderHandler := handler.NewOrderHandler(orderSvc, queries, loc)
	paymentHandler := handler.NewPaymentHandler(orderSvc, queries)
	menuHandler := handler.NewMenuHandler(queries, stockSvc)
	reportsHandler := handler.NewReportsHandler(queries, loc)
	userHandler := handler.NewUserHandler(queries)
	profileHandler := handler.NewProfileHandler(queries)

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		authHandler.RegisterRoutes(r)

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))

			authHandler.RegisterSessionRoutes(r)
			menuHandler.RegisterRoutes(r)

			r.Route("/orders", func(r chi.Router) {
				orderHandler.RegisterRoutes(r)
				r.Route("/{id}/payments", paymentHandler.RegisterRoutes)
			})

			r.Route("/reports", reportsHandler.RegisterRoutes)
			r.Route("/users", userHandler.RegisterRoutes)
			r.Route("/profile", profileHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all routes")
	return r
}
