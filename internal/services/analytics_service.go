package services

import (
	"bytes"
	"encoding/csv"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// topCategoryLimit bounds the top-N category rankings.
const topCategoryLimit = 5

// analyticsService computes summaries, breakdowns, trends, rankings, and CSV
// exports over a user's transactions. Every aggregation is recomputed from
// the store on each call; sums use decimal arithmetic throughout.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// scoped returns the user's transactions within the optional date range.
func (s *analyticsService) scoped(userID uint, r DateRange) ([]models.Transaction, error) {
	q := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if r.From != nil {
		q = q.Where("date >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("date <= ?", *r.To)
	}

	var transactions []models.Transaction
	if err := q.Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetSummary returns income/expense totals and their balance. An empty
// transaction set yields all zeros.
func (s *analyticsService) GetSummary(userID uint, r DateRange) (*Summary, error) {
	transactions, err := s.scoped(userID, r)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, t := range transactions {
		switch t.Type {
		case models.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case models.TransactionTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(t.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpenses)
	return summary, nil
}

// GetAnalytics returns the category breakdown, monthly trends, and top-5
// category rankings for the user's transactions in the given range.
func (s *analyticsService) GetAnalytics(userID uint, r DateRange) (*Analytics, error) {
	transactions, err := s.scoped(userID, r)
	if err != nil {
		return nil, err
	}

	result := &Analytics{
		CategoryBreakdown: make(map[string]FlowTotals),
		MonthlyTrends:     make(map[string]FlowTotals),
	}

	expenseByCategory := make(map[string]decimal.Decimal)
	incomeByCategory := make(map[string]decimal.Decimal)

	for _, t := range transactions {
		byCat := result.CategoryBreakdown[t.Category]
		// Months come from each transaction's own date, not the request range.
		monthKey := t.Date.Format("2006-01")
		byMonth := result.MonthlyTrends[monthKey]

		switch t.Type {
		case models.TransactionTypeIncome:
			byCat.Income = byCat.Income.Add(t.Amount)
			byMonth.Income = byMonth.Income.Add(t.Amount)
			incomeByCategory[t.Category] = incomeByCategory[t.Category].Add(t.Amount)
		case models.TransactionTypeExpense:
			byCat.Expense = byCat.Expense.Add(t.Amount)
			byMonth.Expense = byMonth.Expense.Add(t.Amount)
			expenseByCategory[t.Category] = expenseByCategory[t.Category].Add(t.Amount)
		}

		result.CategoryBreakdown[t.Category] = byCat
		result.MonthlyTrends[monthKey] = byMonth
	}

	result.TopExpenseCategories = rankCategories(expenseByCategory)
	result.TopIncomeCategories = rankCategories(incomeByCategory)
	return result, nil
}

// rankCategories sorts category totals by amount descending and truncates to
// the top 5. Equal amounts are ordered by category name ascending so the
// ranking is deterministic.
func rankCategories(totals map[string]decimal.Decimal) []CategoryTotal {
	ranked := make([]CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		ranked = append(ranked, CategoryTotal{Category: category, Amount: amount})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Amount.Equal(ranked[j].Amount) {
			return ranked[i].Amount.GreaterThan(ranked[j].Amount)
		}
		return ranked[i].Category < ranked[j].Category
	})

	if len(ranked) > topCategoryLimit {
		ranked = ranked[:topCategoryLimit]
	}
	return ranked
}

// ExportCSV renders every transaction of the user as a CSV document with a
// header row, ordered by date descending like the list endpoint.
func (s *analyticsService) ExportCSV(userID uint) ([]byte, error) {
	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Category", "Description", "Type", "Amount"}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range transactions {
		record := []string{
			t.Date.Format("2006-01-02"),
			t.Category,
			t.Description,
			string(t.Type),
			t.Amount.String(),
		}
		if err := w.Write(record); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return buf.Bytes(), nil
}
