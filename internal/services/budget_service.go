package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// monthWindow returns the half-open interval covering the calendar month.
func monthWindow(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// GetBudgetsWithSpend returns every budget for (user, month, year), each
// enriched with actual spend, remaining amount, and percentage used.
// Remaining may go negative; percentage is 0 when the budget amount is 0.
func (s *budgetService) GetBudgetsWithSpend(userID uint, month, year int) ([]BudgetStatus, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("category ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthWindow(month, year)

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		var amounts []decimal.Decimal
		if err := s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND category = ? AND type = ? AND date >= ? AND date < ?",
				userID, budget.Category, models.TransactionTypeExpense, start, end).
			Pluck("amount", &amounts).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		spent := decimal.Zero
		for _, a := range amounts {
			spent = spent.Add(a)
		}

		var percentage float64
		if budget.Amount.IsPositive() {
			percentage = spent.Mul(decimal.NewFromInt(100)).Div(budget.Amount).InexactFloat64()
		}

		statuses = append(statuses, BudgetStatus{
			Budget:     budget,
			Spent:      spent,
			Remaining:  budget.Amount.Sub(spent),
			Percentage: percentage,
		})
	}

	return statuses, nil
}

// UpsertBudget creates a budget for (user, category, month, year), or updates
// the amount of the existing one. The returned bool reports whether a new row
// was created.
func (s *budgetService) UpsertBudget(userID uint, category string, amount decimal.Decimal, month, year int) (*models.Budget, bool, error) {
	if category == "" || amount.IsZero() {
		return nil, false, apperrors.ErrMissingFields
	}
	if month < 1 || month > 12 {
		return nil, false, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}

	var existing models.Budget
	err := s.db.Where("user_id = ? AND category = ? AND month = ? AND year = ?",
		userID, category, month, year).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Model(&existing).Update("amount", amount).Error
		}); err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		budget := &models.Budget{
			UserID:   userID,
			Category: category,
			Amount:   amount,
			Month:    month,
			Year:     year,
		}
		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(budget).Error
		}); err != nil {
			return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return budget, true, nil

	default:
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// DeleteBudget removes an owned budget. Deleting a missing or non-owned
// budget is a not-found error.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&budget).Error
	}); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
