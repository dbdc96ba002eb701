package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/events"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner hands out a fresh mockTx per Begin and remembers them.
type mockTxBeginner struct {
	mu        sync.Mutex
	txs       []*mockTx
	err       error
	commitErr error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &mockTx{commitErr: m.commitErr}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *mockTxBeginner) last() *mockTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.txs) == 0 {
		return nil
	}
	return m.txs[len(m.txs)-1]
}

// fakeStore is an in-memory OrderStore and RestockStore. It does not undo
// writes on rollback; atomicity tests assert no write was attempted.
type fakeStore struct {
	nextID   int64
	menu     map[int64]*database.MenuItem
	orders   map[int64]*database.Order
	items    []database.OrderItem
	payments []database.OrderPayment

	lockedNames [][]string
	decrements  []database.DecrementStockParams

	createItemErr    error
	createPaymentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID: 100,
		menu:   make(map[int64]*database.MenuItem),
		orders: make(map[int64]*database.Order),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addMenuItem(name, price, cost string, stock int32) int64 {
	id := f.id()
	f.menu[id] = &database.MenuItem{
		ID:       id,
		Name:     name,
		Price:    makeNumeric(price),
		Cost:     makeNumeric(cost),
		Category: "Starters",
		Stock:    stock,
	}
	return id
}

func (f *fakeStore) stockOf(name string) int32 {
	for _, m := range f.menu {
		if m.Name == name {
			return m.Stock
		}
	}
	return -1
}

// seedOrder inserts an order with the given lines directly, bypassing stock.
func (f *fakeStore) seedOrder(status string, lines map[string]string, qty int32) int64 {
	id := f.id()
	f.orders[id] = &database.Order{
		ID:          id,
		OrderType:   enum.OrderTypeTable,
		Destination: "Table 3",
		Status:      status,
		Discount:    makeNumeric("0"),
		CreatedAt:   time.Now(),
	}
	names := make([]string, 0, len(lines))
	for name := range lines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f.items = append(f.items, database.OrderItem{
			ID:        f.id(),
			OrderID:   id,
			ItemName:  name,
			Quantity:  qty,
			UnitPrice: makeNumeric(lines[name]),
			UnitCost:  makeNumeric("0"),
			AddedAt:   time.Now(),
		})
	}
	return id
}

func (f *fakeStore) LockMenuItemsByName(ctx context.Context, names []string) ([]database.MenuItem, error) {
	f.lockedNames = append(f.lockedNames, append([]string(nil), names...))
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []database.MenuItem
	for _, m := range f.menu {
		if want[m.Name] {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) DecrementStock(ctx context.Context, arg database.DecrementStockParams) (int32, error) {
	m, ok := f.menu[arg.ID]
	if !ok || m.Stock < arg.Quantity {
		return 0, pgx.ErrNoRows
	}
	m.Stock -= arg.Quantity
	f.decrements = append(f.decrements, arg)
	return m.Stock, nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	o := &database.Order{
		ID:          f.id(),
		OrderType:   arg.OrderType,
		Destination: arg.Destination,
		Status:      enum.OrderStatusPending,
		Discount:    makeNumeric("0"),
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.orders[o.ID] = o
	return *o, nil
}

func (f *fakeStore) GetOrderForUpdate(ctx context.Context, id int64) (database.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return *o, nil
}

func (f *fakeStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if f.createItemErr != nil {
		return database.OrderItem{}, f.createItemErr
	}
	it := database.OrderItem{
		ID:        f.id(),
		OrderID:   arg.OrderID,
		ItemName:  arg.ItemName,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		UnitCost:  arg.UnitCost,
		AddedBy:   arg.AddedBy,
		AddedAt:   arg.AddedAt,
	}
	f.items = append(f.items, it)
	return it, nil
}

func (f *fakeStore) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error) {
	var out []database.OrderItem
	for _, it := range f.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]database.OrderPayment, error) {
	var out []database.OrderPayment
	for _, p := range f.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o := f.orders[arg.ID]
	o.Status = arg.Status
	if arg.Status == enum.OrderStatusCompleted {
		o.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	}
	return *o, nil
}

func (f *fakeStore) SettleOrder(ctx context.Context, arg database.SettleOrderParams) (database.Order, error) {
	o := f.orders[arg.ID]
	o.Status = enum.OrderStatusCompleted
	o.PaymentMethod = arg.PaymentMethod
	o.Discount = arg.Discount
	o.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return *o, nil
}

func (f *fakeStore) CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error) {
	o := f.orders[arg.ID]
	o.Status = enum.OrderStatusCompleted
	o.PaymentMethod = arg.PaymentMethod
	o.CompletedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return *o, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.OrderPayment, error) {
	if f.createPaymentErr != nil {
		return database.OrderPayment{}, f.createPaymentErr
	}
	p := database.OrderPayment{
		ID:          f.id(),
		OrderID:     arg.OrderID,
		Method:      arg.Method,
		Amount:      arg.Amount,
		ProcessedBy: arg.ProcessedBy,
		CreatedAt:   time.Now(),
	}
	f.payments = append(f.payments, p)
	return p, nil
}

func (f *fakeStore) GetMenuItemForUpdate(ctx context.Context, id int64) (database.MenuItem, error) {
	m, ok := f.menu[id]
	if !ok {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return *m, nil
}

func (f *fakeStore) SetStock(ctx context.Context, arg database.SetStockParams) (database.MenuItem, error) {
	m := f.menu[arg.ID]
	m.Stock = arg.Stock
	return *m, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

// --- Test helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(store *fakeStore) (*OrderService, *mockTxBeginner, *recordingPublisher) {
	pool := &mockTxBeginner{}
	pub := &recordingPublisher{}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore, pub), pool, pub
}
