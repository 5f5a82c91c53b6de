package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

type mockAnalyticsService struct {
	summaryFunc   func(userID uint, r services.DateRange) (*services.Summary, error)
	analyticsFunc func(userID uint, r services.DateRange) (*services.Analytics, error)
	exportFunc    func(userID uint) ([]byte, error)
}

func (m *mockAnalyticsService) GetSummary(userID uint, r services.DateRange) (*services.Summary, error) {
	return m.summaryFunc(userID, r)
}

func (m *mockAnalyticsService) GetAnalytics(userID uint, r services.DateRange) (*services.Analytics, error) {
	return m.analyticsFunc(userID, r)
}

func (m *mockAnalyticsService) ExportCSV(userID uint) ([]byte, error) {
	return m.exportFunc(userID)
}

func setupAnalyticsRouter(analytics *mockAnalyticsService) *gin.Engine {
	handler := NewAnalyticsHandler(analytics)
	router := gin.New()
	group := router.Group("/transactions", injectUserID(1))
	group.GET("/summary", handler.GetSummary)
	group.GET("/analytics", handler.GetAnalytics)
	group.GET("/export", handler.ExportTransactions)
	return router
}

func TestGetSummaryHandler(t *testing.T) {
	t.Run("returns_totals_as_json_numbers", func(t *testing.T) {
		analytics := &mockAnalyticsService{
			summaryFunc: func(userID uint, r services.DateRange) (*services.Summary, error) {
				return &services.Summary{
					TotalIncome:   decimal.RequireFromString("1000"),
					TotalExpenses: decimal.RequireFromString("50"),
					Balance:       decimal.RequireFromString("950"),
				}, nil
			},
		}
		router := setupAnalyticsRouter(analytics)

		w := doRequest(t, router, http.MethodGet, "/transactions/summary", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var body struct {
			TotalIncome   json.RawMessage `json:"total_income"`
			Balance       json.RawMessage `json:"balance"`
			TotalExpenses json.RawMessage `json:"total_expenses"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to parse body: %v", err)
		}
		if string(body.TotalIncome) != "1000" || string(body.Balance) != "950" {
			t.Errorf("expected unquoted numbers, got income=%s balance=%s", body.TotalIncome, body.Balance)
		}
	})

	t.Run("forwards_date_range", func(t *testing.T) {
		var captured services.DateRange
		analytics := &mockAnalyticsService{
			summaryFunc: func(userID uint, r services.DateRange) (*services.Summary, error) {
				captured = r
				return &services.Summary{}, nil
			},
		}
		router := setupAnalyticsRouter(analytics)

		w := doRequest(t, router, http.MethodGet, "/transactions/summary?start_date=2024-01-01&end_date=2024-01-31", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if captured.From == nil || captured.To == nil {
			t.Error("expected both range bounds to be forwarded")
		}
	})

	t.Run("malformed_date_is_400", func(t *testing.T) {
		router := setupAnalyticsRouter(&mockAnalyticsService{})

		w := doRequest(t, router, http.MethodGet, "/transactions/summary?start_date=bogus", nil)

		assertErrorCode(t, w, http.StatusBadRequest, apperrors.ErrInvalidDate.Code)
	})
}

func TestGetAnalyticsHandler(t *testing.T) {
	t.Run("returns_all_four_sections", func(t *testing.T) {
		analytics := &mockAnalyticsService{
			analyticsFunc: func(userID uint, r services.DateRange) (*services.Analytics, error) {
				return &services.Analytics{
					CategoryBreakdown: map[string]services.FlowTotals{
						"Food": {Expense: decimal.RequireFromString("50")},
					},
					MonthlyTrends: map[string]services.FlowTotals{
						"2024-01": {Income: decimal.RequireFromString("1000")},
					},
					TopExpenseCategories: []services.CategoryTotal{
						{Category: "Food", Amount: decimal.RequireFromString("50")},
					},
					TopIncomeCategories: []services.CategoryTotal{},
				}, nil
			},
		}
		router := setupAnalyticsRouter(analytics)

		w := doRequest(t, router, http.MethodGet, "/transactions/analytics", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		body := parseJSON(t, w)
		for _, key := range []string{"category_breakdown", "monthly_trends", "top_expense_categories", "top_income_categories"} {
			if _, ok := body[key]; !ok {
				t.Errorf("expected %s in response", key)
			}
		}
	})
}

func TestExportTransactionsHandler(t *testing.T) {
	t.Run("serves_csv_attachment", func(t *testing.T) {
		analytics := &mockAnalyticsService{
			exportFunc: func(userID uint) ([]byte, error) {
				return []byte("Date,Category,Description,Type,Amount\n2024-01-05,Food,,expense,50.25\n"), nil
			},
		}
		router := setupAnalyticsRouter(analytics)

		w := doRequest(t, router, http.MethodGet, "/transactions/export", nil)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected text/csv content type, got %q", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=transactions.csv" {
			t.Errorf("unexpected content disposition: %q", cd)
		}
		if !strings.HasPrefix(w.Body.String(), "Date,Category,Description,Type,Amount") {
			t.Errorf("expected CSV header first, got %q", w.Body.String())
		}
	})
}
