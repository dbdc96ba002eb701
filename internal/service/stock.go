package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
)

// StockStore defines the menu-row methods used to reserve stock inside an
// enclosing transaction. Satisfied by *database.Queries.
type StockStore interface {
	LockMenuItemsByName(ctx context.Context, names []string) ([]database.MenuItem, error)
	DecrementStock(ctx context.Context, arg database.DecrementStockParams) (int32, error)
}

// LineRequest is one cart line. Price is what the client displayed; the
// catalog price at reservation time is what gets recorded.
type LineRequest struct {
	Name     string
	Quantity int32
	Price    string
}

// reservedLine is a validated cart line with its catalog snapshot.
type reservedLine struct {
	name      string
	quantity  int32
	unitPrice decimal.Decimal
	unitCost  decimal.Decimal
}

func validateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for i, l := range lines {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("item[%d]: %w", i, ErrMissingItemName)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	return nil
}

// reserveBatch locks every affected menu row in name order, checks all lines
// against current stock and only then decrements. Either every line is
// reserved or none is.
func reserveBatch(ctx context.Context, store StockStore, lines []LineRequest) ([]reservedLine, error) {
	if err := validateLines(lines); err != nil {
		return nil, err
	}

	// Totals are summed wide; repeated lines must not wrap the stock column.
	wanted := make(map[string]int64, len(lines))
	var names []string
	for _, l := range lines {
		name := strings.TrimSpace(l.Name)
		if _, seen := wanted[name]; !seen {
			names = append(names, name)
		}
		wanted[name] += int64(l.Quantity)
		if wanted[name] > math.MaxInt32 {
			return nil, fmt.Errorf("%s: %w", name, ErrInvalidQuantity)
		}
	}
	sort.Strings(names)

	rows, err := store.LockMenuItemsByName(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("lock menu items: %w", err)
	}
	byName := make(map[string]database.MenuItem, len(rows))
	for _, m := range rows {
		byName[m.Name] = m
	}

	// Validate in cart order so the reported item is the first failing line.
	for _, l := range lines {
		name := strings.TrimSpace(l.Name)
		m, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ErrMenuItemNotFound)
		}
		if int64(m.Stock) < wanted[name] {
			return nil, &InsufficientStockError{Item: name, Available: m.Stock, Requested: int32(wanted[name])}
		}
	}

	for _, name := range names {
		m := byName[name]
		if _, err := store.DecrementStock(ctx, database.DecrementStockParams{
			ID:       m.ID,
			Quantity: int32(wanted[name]),
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &InsufficientStockError{Item: name, Available: m.Stock, Requested: int32(wanted[name])}
			}
			return nil, fmt.Errorf("decrement stock for %s: %w", name, err)
		}
	}

	reserved := make([]reservedLine, 0, len(lines))
	for _, l := range lines {
		m := byName[strings.TrimSpace(l.Name)]
		reserved = append(reserved, reservedLine{
			name:      m.Name,
			quantity:  l.Quantity,
			unitPrice: NumericToDecimal(m.Price),
			unitCost:  NumericToDecimal(m.Cost),
		})
	}
	return reserved, nil
}

// RestockStore defines the DB methods needed to set absolute stock levels.
type RestockStore interface {
	GetMenuItemForUpdate(ctx context.Context, id int64) (database.MenuItem, error)
	SetStock(ctx context.Context, arg database.SetStockParams) (database.MenuItem, error)
}

type NewRestockStore func(db database.DBTX) RestockStore

type StockUpdate struct {
	ID    int64
	Stock int32
}

// StockService applies manual stock corrections.
type StockService struct {
	pool     TxBeginner
	newStore NewRestockStore
}

func NewStockService(pool TxBeginner, newStore NewRestockStore) *StockService {
	return &StockService{pool: pool, newStore: newStore}
}

// Restock sets each item's stock to the given absolute quantity in one
// transaction. Rows are locked in id order.
func (s *StockService) Restock(ctx context.Context, updates []StockUpdate) ([]database.MenuItem, error) {
	if len(updates) == 0 {
		return nil, ErrEmptyStockUpdate
	}
	for i, u := range updates {
		if u.Stock < 0 {
			return nil, fmt.Errorf("updates[%d]: %w", i, ErrInvalidStock)
		}
	}

	ordered := make([]StockUpdate, len(updates))
	copy(ordered, updates)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	for _, u := range ordered {
		if _, err := store.GetMenuItemForUpdate(ctx, u.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("menu item %d: %w", u.ID, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("lock menu item %d: %w", u.ID, err)
		}
	}

	items := make([]database.MenuItem, 0, len(ordered))
	for _, u := range ordered {
		item, err := store.SetStock(ctx, database.SetStockParams{ID: u.ID, Stock: u.Stock})
		if err != nil {
			return nil, fmt.Errorf("set stock for %d: %w", u.ID, err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return items, nil
}
