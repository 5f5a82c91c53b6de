package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(username, email, password string) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
}

// TokenServicer defines the contract for bearer token revocation.
type TokenServicer interface {
	Revoke(userID uint, tokenHash string, expiresAt time.Time) error
	IsRevoked(tokenHash string) bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
// The owner filter is mandatory and passed separately; it can never be
// overridden from here.
type TransactionFilter struct {
	Category *string
	Type     *models.TransactionType
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionUpdateFields holds the optional fields of a partial update.
// Nil means "leave unchanged".
type TransactionUpdateFields struct {
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Type        *models.TransactionType
	Date        *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, amount decimal.Decimal, category, description string, transactionType models.TransactionType, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetUserCategories(userID uint) ([]string, error)
}

// Summary contains income/expense totals over a scoped transaction set.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// FlowTotals contains income and expense sums for a single bucket.
type FlowTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is a single entry in a top-N category ranking.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Analytics contains category breakdowns, monthly trends, and top-N rankings.
type Analytics struct {
	CategoryBreakdown    map[string]FlowTotals `json:"category_breakdown"`
	MonthlyTrends        map[string]FlowTotals `json:"monthly_trends"`
	TopExpenseCategories []CategoryTotal       `json:"top_expense_categories"`
	TopIncomeCategories  []CategoryTotal       `json:"top_income_categories"`
}

// DateRange is an optional inclusive date window for aggregations.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// AnalyticsServicer defines the contract for transaction aggregation.
type AnalyticsServicer interface {
	GetSummary(userID uint, r DateRange) (*Summary, error)
	GetAnalytics(userID uint, r DateRange) (*Analytics, error)
	ExportCSV(userID uint) ([]byte, error)
}

// BudgetStatus is a budget enriched with actual spend for its month.
type BudgetStatus struct {
	models.Budget
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	GetBudgetsWithSpend(userID uint, month, year int) ([]BudgetStatus, error)
	UpsertBudget(userID uint, category string, amount decimal.Decimal, month, year int) (*models.Budget, bool, error)
	DeleteBudget(userID, budgetID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
