package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/events"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order engine needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	StockStore
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]database.OrderPayment, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	SettleOrder(ctx context.Context, arg database.SettleOrderParams) (database.Order, error)
	CompleteOrder(ctx context.Context, arg database.CompleteOrderParams) (database.Order, error)
	CreatePayment(ctx context.Context, arg database.CreatePaymentParams) (database.OrderPayment, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

type CreateOrderRequest struct {
	CreatedBy   int64
	OrderType   string
	Destination string
	Items       []LineRequest
}

type AppendItemsRequest struct {
	OrderID int64
	AddedBy int64
	Items   []LineRequest
}

type SetStatusRequest struct {
	OrderID   int64
	Status    string
	ChangedBy int64
}

type SettleRequest struct {
	OrderID       int64
	PaymentMethod string
	Discount      string
	SettledBy     int64
}

type PaymentRequest struct {
	OrderID     int64
	Method      string
	Amount      string
	ProcessedBy int64
}

// OrderResult is an order with its rows and derived money summary, as of commit.
type OrderResult struct {
	Order    database.Order
	Items    []database.OrderItem
	Payments []database.OrderPayment
	Totals   Totals
}

type PaymentResult struct {
	OrderID int64
	Applied decimal.Decimal
	Balance decimal.Decimal
	Status  string
}

// OrderService runs every order mutation in a single transaction with the
// order row (and any menu rows) locked until commit.
type OrderService struct {
	pool      TxBeginner
	newStore  NewOrderStore
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore, publisher events.Publisher) *OrderService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OrderService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder reserves stock for every line and inserts a pending order.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	orderType := strings.ToLower(strings.TrimSpace(req.OrderType))
	if !enum.IsOrderType(orderType) {
		return nil, ErrInvalidOrderType
	}

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		if orderType == enum.OrderTypeTable {
			return nil, ErrMissingDestination
		}
		destination = "Takeaway"
	}

	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	reserved, err := reserveBatch(ctx, store, req.Items)
	if err != nil {
		return nil, err
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderType:   orderType,
		Destination: destination,
		CreatedBy:   actor(req.CreatedBy),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items, err := s.insertLines(ctx, store, order.ID, reserved, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	result := &OrderResult{Order: order, Items: items, Totals: ComputeTotals(order, items, nil)}
	s.publish(ctx, events.TypeOrderCreated, result, req.CreatedBy)
	return result, nil
}

// AppendItems reserves stock for new lines only and adds them to an open
// order. The batch shares one added_at so it can be told apart from earlier rounds.
func (s *OrderService) AppendItems(ctx context.Context, req AppendItemsRequest) (*OrderResult, error) {
	if err := validateLines(req.Items); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOpenOrder(ctx, store, req.OrderID)
	if err != nil {
		return nil, err
	}

	reserved, err := reserveBatch(ctx, store, req.Items)
	if err != nil {
		return nil, err
	}

	if _, err := s.insertLines(ctx, store, order.ID, reserved, req.AddedBy); err != nil {
		return nil, err
	}

	result, err := loadResult(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, events.TypeOrderItemsAdded, result, req.AddedBy)
	return result, nil
}

// SetStatus moves an open order to any valid status. Backward moves between
// pending and ready are accepted; a completed order cannot change.
func (s *OrderService) SetStatus(ctx context.Context, req SetStatusRequest) (*OrderResult, error) {
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !enum.IsOrderStatus(status) {
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := lockOpenOrder(ctx, store, req.OrderID); err != nil {
		return nil, err
	}

	order, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:     req.OrderID,
		Status: status,
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	result, err := loadResult(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	eventType := events.TypeOrderStatusChanged
	if status == enum.OrderStatusCompleted {
		eventType = events.TypeOrderCompleted
	}
	s.publish(ctx, eventType, result, req.ChangedBy)
	return result, nil
}

// SettleFull completes an open order in one call, storing the caller's method
// and discount as given. Any outstanding balance is booked as a single payment
// in that method so the completed order reconciles to zero.
func (s *OrderService) SettleFull(ctx context.Context, req SettleRequest) (*OrderResult, error) {
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if !enum.IsTenderMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	discount, err := ParseMoney(strings.TrimSpace(req.Discount))
	if err != nil || discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := lockOpenOrder(ctx, store, req.OrderID); err != nil {
		return nil, err
	}

	order, err := store.SettleOrder(ctx, database.SettleOrderParams{
		ID:            req.OrderID,
		PaymentMethod: pgtype.Text{String: method, Valid: true},
		Discount:      DecimalToNumeric(discount),
	})
	if err != nil {
		return nil, fmt.Errorf("settle order: %w", err)
	}

	result, err := loadResult(ctx, store, order)
	if err != nil {
		return nil, err
	}

	if result.Totals.Balance.IsPositive() {
		payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
			OrderID:     order.ID,
			Method:      method,
			Amount:      DecimalToNumeric(result.Totals.Balance),
			ProcessedBy: actor(req.SettledBy),
		})
		if err != nil {
			return nil, fmt.Errorf("record settlement payment: %w", err)
		}
		result.Payments = append(result.Payments, payment)
		result.Totals = ComputeTotals(order, result.Items, result.Payments)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ctx, events.TypeOrderCompleted, result, req.SettledBy)
	return result, nil
}

// AddPayment records a (possibly partial) payment against an open order. The
// applied amount is capped at the outstanding balance, and the order completes
// when the balance reaches zero.
func (s *OrderService) AddPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	method := strings.ToLower(strings.TrimSpace(req.Method))
	if !enum.IsTenderMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}

	amount, err := ParseMoney(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockOpenOrder(ctx, store, req.OrderID)
	if err != nil {
		return nil, err
	}

	result, err := loadResult(ctx, store, order)
	if err != nil {
		return nil, err
	}

	applied := decimal.Min(amount, result.Totals.Balance)
	if applied.IsPositive() {
		payment, err := store.CreatePayment(ctx, database.CreatePaymentParams{
			OrderID:     order.ID,
			Method:      method,
			Amount:      DecimalToNumeric(applied),
			ProcessedBy: actor(req.ProcessedBy),
		})
		if err != nil {
			return nil, fmt.Errorf("create payment: %w", err)
		}
		result.Payments = append(result.Payments, payment)
		result.Totals = ComputeTotals(order, result.Items, result.Payments)
	}

	completed := result.Totals.Balance.IsZero()
	if completed {
		settled := settledMethod(result.Payments)
		if settled == "" {
			settled = method
		}
		order, err = store.CompleteOrder(ctx, database.CompleteOrderParams{
			ID:            order.ID,
			PaymentMethod: pgtype.Text{String: settled, Valid: true},
		})
		if err != nil {
			return nil, fmt.Errorf("complete order: %w", err)
		}
		result.Order = order
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if applied.IsPositive() {
		s.publish(ctx, events.TypeOrderPaymentAdded, result, req.ProcessedBy)
	}
	if completed {
		s.publish(ctx, events.TypeOrderCompleted, result, req.ProcessedBy)
	}

	return &PaymentResult{
		OrderID: order.ID,
		Applied: applied,
		Balance: result.Totals.Balance,
		Status:  order.Status,
	}, nil
}

func (s *OrderService) insertLines(ctx context.Context, store OrderStore, orderID int64, lines []reservedLine, addedBy int64) ([]database.OrderItem, error) {
	addedAt := s.now()
	items := make([]database.OrderItem, 0, len(lines))
	for i, l := range lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   orderID,
			ItemName:  l.name,
			Quantity:  l.quantity,
			UnitPrice: DecimalToNumeric(l.unitPrice),
			UnitCost:  DecimalToNumeric(l.unitCost),
			AddedBy:   actor(addedBy),
			AddedAt:   addedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create order item: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// publish runs after commit. A failed sink is logged and never surfaces to the caller.
func (s *OrderService) publish(ctx context.Context, eventType string, r *OrderResult, actorID int64) {
	e := events.New(eventType, r.Order.ID, r.Order.Status, r.Totals.Balance.StringFixed(2), actorID)
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Printf("WARN: publish %s for order %d: %v", eventType, r.Order.ID, err)
	}
}

// lockOpenOrder takes the row lock on the order and rejects completed orders.
func lockOpenOrder(ctx context.Context, store OrderStore, id int64) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("lock order: %w", err)
	}
	if order.Status == enum.OrderStatusCompleted {
		return database.Order{}, ErrOrderClosed
	}
	if !enum.IsOpenStatus(order.Status) {
		return database.Order{}, ErrOrderNotOpen
	}
	return order, nil
}

func loadResult(ctx context.Context, store OrderStore, order database.Order) (*OrderResult, error) {
	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	payments, err := store.ListPaymentsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return &OrderResult{
		Order:    order,
		Items:    items,
		Payments: payments,
		Totals:   ComputeTotals(order, items, payments),
	}, nil
}

func actor(id int64) pgtype.Int8 {
	return pgtype.Int8{Int64: id, Valid: id > 0}
}
