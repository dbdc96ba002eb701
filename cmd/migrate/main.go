package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"

	"github.com/tong-pos/api/internal/config"
	"github.com/tong-pos/api/migrations"
)

func main() {
	steps := flag.Int("steps", 0, "Number of migrations to roll back with down (0 = all)")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	m, err := migrations.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open migrations: %v", err)
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		if *steps > 0 {
			err = m.Steps(-*steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatalf("Unknown command %q (want up or down)", cmd)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration %s failed: %v", cmd, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Printf("Migration %s complete: no migrations applied", cmd)
	case err != nil:
		log.Fatalf("Failed to read migration version: %v", err)
	default:
		log.Printf("Migration %s complete: version %d (dirty=%v)", cmd, version, dirty)
	}
}
