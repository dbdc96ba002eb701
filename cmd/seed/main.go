package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/tong-pos/api/internal/config"
	"github.com/tong-pos/api/internal/enum"
)

type seedUser struct {
	username string
	role     string
	fullName string
}

type seedItem struct {
	name     string
	price    string
	category string
	stock    int32
	cost     string
}

var users = []seedUser{
	{"superadmin", enum.UserRoleSuperadmin, "Super Admin"},
	{"admin", enum.UserRoleAdmin, "Admin"},
	{"waiter", enum.UserRoleWaiter, "Waiter"},
	{"kitchen", enum.UserRoleKitchen, "Kitchen"},
	{"front", enum.UserRoleFront, "Front Desk"},
}

var menu = []seedItem{
	{"Singara", "1.20", "Snacks", 50, "0.35"},
	{"Muglai", "4.49", "Snacks", 30, "1.60"},
	{"Dal Puri", "1.90", "Snacks", 50, "0.55"},
	{"Extra Sauce", "1.00", "Snacks", 100, "0.20"},
	{"Chicken Chaap", "4.99", "Chef Special Chaap", 25, "1.90"},
	{"Beef Chaap", "6.49", "Chef Special Chaap", 25, "2.70"},
	{"Full", "12.99", "Deshi Grilled Chicken", 15, "5.10"},
	{"Half", "6.99", "Deshi Grilled Chicken", 20, "2.60"},
	{"Butter Naan", "1.50", "Breads", 100, "0.30"},
	{"Luchi (2 pieces)", "1.00", "Breads", 100, "0.20"},
	{"Porota", "1.50", "Breads", 100, "0.30"},
	{"Chicken Tandoori Sheek", "4.99", "Chicken Sheek Kabab", 40, "1.80"},
	{"Beef Sheek", "5.99", "Beef Kabab", 40, "2.30"},
	{"Coca-Cola", "1.20", "Drinks", 100, "0.45"},
	{"Borhani", "2.50", "House Special Drinks", 50, "0.60"},
	{"Deshi Cha (Small)", "1.20", "Cha", 200, "0.15"},
	{"Rosmalai", "1.00", "Dessert", 30, "0.35"},
}

func main() {
	password := flag.String("password", "", "Password for every seeded user")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *password == "" {
		*password = "1234"
		log.Println("WARNING: Using default password '1234'. Change immediately in production!")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction: all users and menu rows or nothing
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	nUsers, err := seedUsers(ctx, tx, string(hashed))
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	nItems, err := seedMenu(ctx, tx)
	if err != nil {
		log.Fatalf("Failed to seed menu: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Users created: %d, menu items created: %d", nUsers, nItems)
}

// seedUsers creates one user per role. Existing usernames are left untouched.
func seedUsers(ctx context.Context, tx pgx.Tx, hashedPassword string) (int, error) {
	const insertSQL = `
		INSERT INTO users (username, hashed_password, role, full_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
	`
	created := 0
	for _, u := range users {
		tag, err := tx.Exec(ctx, insertSQL, u.username, hashedPassword, u.role, u.fullName)
		if err != nil {
			return 0, fmt.Errorf("insert user %s: %w", u.username, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("User '%s' already exists, skipping", u.username)
			continue
		}
		created++
	}
	return created, nil
}

// seedMenu loads the starter menu. Existing names keep their current price and stock.
func seedMenu(ctx context.Context, tx pgx.Tx) (int, error) {
	const insertSQL = `
		INSERT INTO menu (name, price, category, stock, cost)
		VALUES ($1, $2::numeric, $3, $4, $5::numeric)
		ON CONFLICT (name) DO NOTHING
	`
	created := 0
	for _, it := range menu {
		tag, err := tx.Exec(ctx, insertSQL, it.name, it.price, it.category, it.stock, it.cost)
		if err != nil {
			return 0, fmt.Errorf("insert menu item %s: %w", it.name, err)
		}
		if tag.RowsAffected() > 0 {
			created++
		}
	}
	return created, nil
}
