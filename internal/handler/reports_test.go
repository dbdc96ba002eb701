package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tong-pos/api/internal/database"
	"github.com/tong-pos/api/internal/handler"
	"github.com/tong-pos/api/internal/middleware"
)

// --- Mock ReportsStore ---

type mockReportsStore struct {
	totals   database.GetSalesTotalsRow
	methods  []database.GetPaymentSummaryRow
	periods  []database.GetSalesByPeriodRow
	items    []database.GetItemSalesRow
	category []database.GetCategorySalesRow
	err      error

	lastTotals database.GetSalesTotalsParams
	lastPeriod database.GetSalesByPeriodParams
	lastItems  database.GetItemSalesParams
}

func (m *mockReportsStore) GetSalesTotals(_ context.Context, arg database.GetSalesTotalsParams) (database.GetSalesTotalsRow, error) {
	m.lastTotals = arg
	return m.totals, m.err
}

func (m *mockReportsStore) GetPaymentSummary(_ context.Context, _ database.GetPaymentSummaryParams) ([]database.GetPaymentSummaryRow, error) {
	return m.methods, m.err
}

func (m *mockReportsStore) GetSalesByPeriod(_ context.Context, arg database.GetSalesByPeriodParams) ([]database.GetSalesByPeriodRow, error) {
	m.lastPeriod = arg
	return m.periods, m.err
}

func (m *mockReportsStore) GetItemSales(_ context.Context, arg database.GetItemSalesParams) ([]database.GetItemSalesRow, error) {
	m.lastItems = arg
	return m.items, m.err
}

func (m *mockReportsStore) GetCategorySales(_ context.Context, _ database.GetCategorySalesParams) ([]database.GetCategorySalesRow, error) {
	return m.category, m.err
}

func setupReportsRouter(store *mockReportsStore, loc *time.Location) *chi.Mux {
	h := handler.NewReportsHandler(store, loc)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/reports", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestZReport(t *testing.T) {
	store := &mockReportsStore{
		totals: database.GetSalesTotalsRow{
			OrderCount:    3,
			GrossSales:    testNumeric("60.00"),
			TotalDiscount: testNumeric("5.00"),
		},
		methods: []database.GetPaymentSummaryRow{
			{Method: "cash", TransactionCount: 2, TotalAmount: testNumeric("30.00")},
			{Method: "card", TransactionCount: 1, TotalAmount: testNumeric("25.00")},
		},
	}
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	router := setupReportsRouter(store, loc)

	rr := doAuthRequest(t, router, "GET", "/reports/z?date=2026-07-01", nil, adminClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["netSales"] != "55.00" || resp["collected"] != "55.00" || resp["orderCount"] != float64(3) {
		t.Errorf("response: got %v", resp)
	}

	// BST: local midnight is 23:00 UTC the previous day.
	wantStart := time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)
	if !store.lastTotals.StartAt.Time.Equal(wantStart) {
		t.Errorf("start: got %v, want %v", store.lastTotals.StartAt.Time.UTC(), wantStart)
	}
}

func TestProfitLoss(t *testing.T) {
	store := &mockReportsStore{
		totals: database.GetSalesTotalsRow{
			OrderCount:    2,
			GrossSales:    testNumeric("40.00"),
			TotalDiscount: testNumeric("4.00"),
			TotalCost:     testNumeric("12.50"),
		},
	}
	router := setupReportsRouter(store, time.UTC)

	rr := doAuthRequest(t, router, "GET", "/reports/profit-loss?start_date=2026-03-01&end_date=2026-03-31", nil, adminClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["netRevenue"] != "36.00" || resp["costOfGoods"] != "12.50" || resp["grossProfit"] != "23.50" {
		t.Errorf("response: got %v", resp)
	}
	if resp["endDate"] != "2026-03-31" {
		t.Errorf("endDate: got %v", resp["endDate"])
	}
	if !store.lastTotals.EndAt.Time.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("exclusive end: got %v", store.lastTotals.EndAt.Time)
	}
}

func TestProfitLoss_BadRange(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{}, time.UTC)

	for _, q := range []string{
		"start_date=2026-03-10&end_date=2026-03-01",
		"start_date=yesterday",
		"end_date=2026/03/01",
	} {
		rr := doAuthRequest(t, router, "GET", "/reports/profit-loss?"+q, nil, adminClaims)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", q, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestSalesSummary_Periods(t *testing.T) {
	tests := []struct {
		period string
		bucket string
	}{
		{"", "day"},
		{"daily", "day"},
		{"weekly", "week"},
		{"monthly", "month"},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			store := &mockReportsStore{periods: []database.GetSalesByPeriodRow{{
				BucketStart:   pgtype.Timestamp{Time: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Valid: true},
				OrderCount:    4,
				GrossSales:    testNumeric("80.00"),
				TotalDiscount: testNumeric("0.00"),
			}}}
			router := setupReportsRouter(store, time.UTC)

			rr := doAuthRequest(t, router, "GET", "/reports/sales-summary?period="+tt.period, nil, adminClaims)
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
			}
			if store.lastPeriod.Bucket != tt.bucket || store.lastPeriod.Tz != "UTC" {
				t.Errorf("params: got %+v", store.lastPeriod)
			}
		})
	}
}

func TestSalesSummary_InvalidPeriod(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{}, time.UTC)

	rr := doAuthRequest(t, router, "GET", "/reports/sales-summary?period=hourly", nil, adminClaims)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestProductPerformance_Limit(t *testing.T) {
	tests := []struct {
		query string
		want  int32
		code  int
	}{
		{"", 20, http.StatusOK},
		{"?limit=5", 5, http.StatusOK},
		{"?limit=500", 100, http.StatusOK},
		{"?limit=0", 0, http.StatusBadRequest},
		{"?limit=abc", 0, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &mockReportsStore{}
			router := setupReportsRouter(store, time.UTC)

			rr := doAuthRequest(t, router, "GET", "/reports/product-performance"+tt.query, nil, adminClaims)
			if rr.Code != tt.code {
				t.Fatalf("status: got %d, want %d", rr.Code, tt.code)
			}
			if tt.code == http.StatusOK && store.lastItems.RowLimit != tt.want {
				t.Errorf("limit: got %d, want %d", store.lastItems.RowLimit, tt.want)
			}
		})
	}
}

func TestCategorySales(t *testing.T) {
	store := &mockReportsStore{category: []database.GetCategorySalesRow{
		{Category: "Mains", QuantitySold: 9, Revenue: testNumeric("90.00")},
	}}
	router := setupReportsRouter(store, time.UTC)

	rr := doAuthRequest(t, router, "GET", "/reports/category-sales", nil, adminClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body != "[{\"category\":\"Mains\",\"quantitySold\":9,\"revenue\":\"90.00\"}]\n" {
		t.Errorf("body: got %s", body)
	}
}

func TestReports_StoreError(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{err: errors.New("timeout")}, time.UTC)

	for _, path := range []string{
		"/reports/z",
		"/reports/profit-loss",
		"/reports/sales-summary",
		"/reports/product-performance",
		"/reports/category-sales",
	} {
		rr := doAuthRequest(t, router, "GET", path, nil, adminClaims)
		if rr.Code != http.StatusInternalServerError {
			t.Errorf("%s: got %d, want %d", path, rr.Code, http.StatusInternalServerError)
		}
	}
}

func TestReports_FrontForbidden(t *testing.T) {
	router := setupReportsRouter(&mockReportsStore{}, time.UTC)

	rr := doAuthRequest(t, router, "GET", "/reports/z", nil, frontClaims)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}
