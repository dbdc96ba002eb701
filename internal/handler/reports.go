package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/enum"
	"github.com/tong-pos/api/internal/middleware"
	"github.com/tong-pos/api/internal/service"
)

// ReportsStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportsStore interface {
	GetSalesTotals(ctx context.Context, arg database.GetSalesTotalsParams) (database.GetSalesTotalsRow, error)
	GetPaymentSummary(ctx context.Context, arg database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error)
	GetSalesByPeriod(ctx context.Context, arg database.GetSalesByPeriodParams) ([]database.GetSalesByPeriodRow, error)
	GetItemSales(ctx context.Context, arg database.GetItemSalesParams) ([]database.GetItemSalesRow, error)
	GetCategorySales(ctx context.Context, arg database.GetCategorySalesParams) ([]database.GetCategorySalesRow, error)
}

// ReportsHandler handles read-only report endpoints.
type ReportsHandler struct {
	store ReportsStore
	loc   *time.Location
}

// NewReportsHandler creates a new ReportsHandler. Date params are interpreted
// in loc.
func NewReportsHandler(store ReportsStore, loc *time.Location) *ReportsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportsHandler{store: store, loc: loc}
}

// RegisterRoutes registers report endpoints. Expected to be mounted at /api/reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.RequireRole(enum.UserRoleAdmin))
	r.Get("/z", h.ZReport)
	r.Get("/profit-loss", h.ProfitLoss)
	r.Get("/sales-summary", h.SalesSummary)
	r.Get("/product-performance", h.ProductPerformance)
	r.Get("/category-sales", h.CategorySales)
}

// --- Response types ---

type paymentSummaryResponse struct {
	Method           string `json:"method"`
	TransactionCount int64  `json:"transactionCount"`
	TotalAmount      string `json:"totalAmount"`
}

type zReportResponse struct {
	Date           string                   `json:"date"`
	OrderCount     int64                    `json:"orderCount"`
	GrossSales     string                   `json:"grossSales"`
	Discounts      string                   `json:"discounts"`
	NetSales       string                   `json:"netSales"`
	Collected      string                   `json:"collected"`
	PaymentMethods []paymentSummaryResponse `json:"paymentMethods"`
}

type profitLossResponse struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	OrderCount  int64  `json:"orderCount"`
	Revenue     string `json:"revenue"`
	Discounts   string `json:"discounts"`
	NetRevenue  string `json:"netRevenue"`
	CostOfGoods string `json:"costOfGoods"`
	GrossProfit string `json:"grossProfit"`
}

type salesBucketResponse struct {
	Period     string `json:"period"`
	OrderCount int64  `json:"orderCount"`
	GrossSales string `json:"grossSales"`
	Discounts  string `json:"discounts"`
	NetSales   string `json:"netSales"`
}

type productPerformanceResponse struct {
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantitySold"`
	Revenue      string `json:"revenue"`
	Cost         string `json:"cost"`
	Profit       string `json:"profit"`
}

type categorySalesResponse struct {
	Category     string `json:"category"`
	QuantitySold int64  `json:"quantitySold"`
	Revenue      string `json:"revenue"`
}

// --- Handlers ---

// ZReport returns the end-of-day summary for a business day.
func (h *ReportsHandler) ZReport(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDay(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
		return
	}
	startAt, endAt := timestamptz(start), timestamptz(end)

	totals, err := h.store.GetSalesTotals(r.Context(), database.GetSalesTotalsParams{StartAt: startAt, EndAt: endAt})
	if err != nil {
		log.Printf("ERROR: get sales totals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	methods, err := h.store.GetPaymentSummary(r.Context(), database.GetPaymentSummaryParams{StartAt: startAt, EndAt: endAt})
	if err != nil {
		log.Printf("ERROR: get payment summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	gross := service.NumericToDecimal(totals.GrossSales)
	discount := service.NumericToDecimal(totals.TotalDiscount)
	collected := decimal.Zero
	resp := zReportResponse{
		Date:           start.Format("2006-01-02"),
		OrderCount:     totals.OrderCount,
		GrossSales:     gross.StringFixed(2),
		Discounts:      discount.StringFixed(2),
		NetSales:       netOf(gross, discount).StringFixed(2),
		PaymentMethods: make([]paymentSummaryResponse, len(methods)),
	}
	for i, m := range methods {
		amount := service.NumericToDecimal(m.TotalAmount)
		collected = collected.Add(amount)
		resp.PaymentMethods[i] = paymentSummaryResponse{
			Method:           m.Method,
			TransactionCount: m.TransactionCount,
			TotalAmount:      amount.StringFixed(2),
		}
	}
	resp.Collected = collected.StringFixed(2)

	writeJSON(w, http.StatusOK, resp)
}

// ProfitLoss returns revenue, discounts and cost of goods for a date range.
// Cost comes from the unit cost captured when each line was ordered.
func (h *ReportsHandler) ProfitLoss(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	totals, err := h.store.GetSalesTotals(r.Context(), database.GetSalesTotalsParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		log.Printf("ERROR: get sales totals: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	gross := service.NumericToDecimal(totals.GrossSales)
	discount := service.NumericToDecimal(totals.TotalDiscount)
	cost := service.NumericToDecimal(totals.TotalCost)
	net := netOf(gross, discount)

	writeJSON(w, http.StatusOK, profitLossResponse{
		StartDate:   start.Format("2006-01-02"),
		EndDate:     end.AddDate(0, 0, -1).Format("2006-01-02"),
		OrderCount:  totals.OrderCount,
		Revenue:     gross.StringFixed(2),
		Discounts:   discount.StringFixed(2),
		NetRevenue:  net.StringFixed(2),
		CostOfGoods: cost.StringFixed(2),
		GrossProfit: net.Sub(cost).StringFixed(2),
	})
}

// SalesSummary returns order count and sales bucketed by day, week or month.
func (h *ReportsHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
	var bucket string
	switch r.URL.Query().Get("period") {
	case "", "daily":
		bucket = "day"
	case "weekly":
		bucket = "week"
	case "monthly":
		bucket = "month"
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "period must be daily, weekly or monthly"})
		return
	}

	start, end, err := parseDateRange(r, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetSalesByPeriod(r.Context(), database.GetSalesByPeriodParams{
		Bucket:  bucket,
		Tz:      h.loc.String(),
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		log.Printf("ERROR: get sales by period: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]salesBucketResponse, len(rows))
	for i, row := range rows {
		period := "N/A"
		if row.BucketStart.Valid {
			period = row.BucketStart.Time.Format("2006-01-02")
		}
		gross := service.NumericToDecimal(row.GrossSales)
		discount := service.NumericToDecimal(row.TotalDiscount)
		resp[i] = salesBucketResponse{
			Period:     period,
			OrderCount: row.OrderCount,
			GrossSales: gross.StringFixed(2),
			Discounts:  discount.StringFixed(2),
			NetSales:   netOf(gross, discount).StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ProductPerformance returns per-item quantity, revenue and cost, best sellers first.
func (h *ReportsHandler) ProductPerformance(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit := int32(20)
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		if n > 100 {
			n = 100
		}
		limit = int32(n)
	}

	rows, err := h.store.GetItemSales(r.Context(), database.GetItemSalesParams{
		StartAt:  timestamptz(start),
		EndAt:    timestamptz(end),
		RowLimit: limit,
	})
	if err != nil {
		log.Printf("ERROR: get item sales: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]productPerformanceResponse, len(rows))
	for i, row := range rows {
		revenue := service.NumericToDecimal(row.Revenue)
		cost := service.NumericToDecimal(row.Cost)
		resp[i] = productPerformanceResponse{
			Name:         row.ItemName,
			QuantitySold: row.QuantitySold,
			Revenue:      revenue.StringFixed(2),
			Cost:         cost.StringFixed(2),
			Profit:       revenue.Sub(cost).StringFixed(2),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// CategorySales returns quantity and revenue per menu category.
func (h *ReportsHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.store.GetCategorySales(r.Context(), database.GetCategorySalesParams{
		StartAt: timestamptz(start),
		EndAt:   timestamptz(end),
	})
	if err != nil {
		log.Printf("ERROR: get category sales: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categorySalesResponse, len(rows))
	for i, row := range rows {
		resp[i] = categorySalesResponse{
			Category:     row.Category,
			QuantitySold: row.QuantitySold,
			Revenue:      numericToString(row.Revenue),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func netOf(gross, discount decimal.Decimal) decimal.Decimal {
	net := gross.Sub(discount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// parseDateRange parses start_date and end_date query params in loc.
// Defaults to the last 30 days. The returned end is exclusive (next day midnight).
func parseDateRange(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	const layout = "2006-01-02"

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	startDate := today.AddDate(0, 0, -30)
	endDate := today.AddDate(0, 0, 1)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format: %w", err)
		}
		startDate = t
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format: %w", err)
		}
		endDate = t.AddDate(0, 0, 1)
	}

	if !startDate.Before(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date must be before end_date")
	}

	return startDate, endDate, nil
}
