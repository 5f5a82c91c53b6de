package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// GetBudgets lists the user's budgets for a month/year, each enriched with
// spent, remaining, and percentage. Month and year default to the current
// calendar month.
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if v := c.Query("month"); v != "" {
		m, parseErr := strconv.Atoi(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month"))
			return
		}
		month = m
	}
	if v := c.Query("year"); v != "" {
		y, parseErr := strconv.Atoi(v)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		year = y
	}

	budgets, err := h.budgetService.GetBudgetsWithSpend(userID, month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// UpsertBudgetRequest represents the request payload for creating or updating a budget.
type UpsertBudgetRequest struct {
	Category string  `json:"category" binding:"required,max=100"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Month    *int    `json:"month" binding:"omitempty,min=1,max=12"`
	Year     *int    `json:"year" binding:"omitempty,min=1970"`
}

// UpsertBudget creates a budget or overwrites the amount of an existing one
// for the same (category, month, year). Responds 201 when a new budget was
// created and 200 when an existing one was updated.
func (h *BudgetHandler) UpsertBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if req.Month != nil {
		month = *req.Month
	}
	if req.Year != nil {
		year = *req.Year
	}

	budget, created, err := h.budgetService.UpsertBudget(userID, req.Category, decimal.NewFromFloat(req.Amount), month, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := "UPDATE_BUDGET"
	status := http.StatusOK
	if created {
		action = "CREATE_BUDGET"
		status = http.StatusCreated
	}
	h.auditService.Log(userID, action, "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"category": req.Category, "amount": req.Amount, "month": month, "year": year})

	c.JSON(status, gin.H{"budget": budget})
}

// DeleteBudget removes an owned budget.
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
