package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/tong-pos/api/internal/config"
	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/events"
	"github.com/tong-pos/api/internal/router"
	"github.com/tong-pos/api/internal/ws"
	"github.com/tong-pos/api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := migrations.Up(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Println("Migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Println("Connected to database")

	hub := ws.NewHub()
	publishers := events.Multi{hub}

	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.DialAMQP(ctx, cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("connect to rabbitmq: %w", err)
		}
		defer amqpPub.Close() //nolint:errcheck
		publishers = append(publishers, amqpPub)
		log.Printf("Publishing order events to exchange %q", events.Exchange)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, database.New(pool), pool, hub, publishers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
