package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

// PlanningHandler handles expenses, income targets and the early-retirement setting
type PlanningHandler struct {
	planningSvc  *services.PlanningService
	planningRepo *repository.PlanningRepository
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(planningSvc *services.PlanningService, planningRepo *repository.PlanningRepository) *PlanningHandler {
	return &PlanningHandler{planningSvc: planningSvc, planningRepo: planningRepo}
}

// ListExpenses handles GET /expenses
// @Summary List expenses
// @Tags planning
// @Produce json
// @Param type query string false "fixed or variable"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Expense
// @Failure 400 {object} models.ErrorResponse
// @Router /expenses [get]
func (h *PlanningHandler) ListExpenses(c *gin.Context) {
	t := models.ExpenseType(c.Query("type"))
	if t != "" && t != models.ExpenseTypeFixed && t != models.ExpenseTypeVariable {
		badRequest(c, "type must be 'fixed' or 'variable'")
		return
	}
	listPage(c, func(ctx context.Context, p models.Page) ([]models.Expense, error) {
		return h.planningSvc.ListExpenses(ctx, t, p)
	})
}

// GetExpense handles GET /expenses/:id
// @Summary Get an expense
// @Tags planning
// @Produce json
// @Param id path int true "Expense ID"
// @Success 200 {object} models.Expense
// @Failure 404 {object} models.ErrorResponse
// @Router /expenses/{id} [get]
func (h *PlanningHandler) GetExpense(c *gin.Context) {
	getOne(c, h.planningRepo.GetExpense)
}

// CreateExpense handles POST /expenses
// @Summary Create an expense
// @Tags planning
// @Accept json
// @Produce json
// @Param body body models.ExpenseRequest true "Expense"
// @Success 201 {object} models.Expense
// @Failure 400 {object} models.ErrorResponse
// @Router /expenses [post]
func (h *PlanningHandler) CreateExpense(c *gin.Context) {
	createOne(c, h.planningSvc.CreateExpense)
}

// UpdateExpense handles PUT /expenses/:id
// @Summary Update an expense
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "Expense ID"
// @Param body body models.ExpenseRequest true "Expense"
// @Success 200 {object} models.Expense
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /expenses/{id} [put]
func (h *PlanningHandler) UpdateExpense(c *gin.Context) {
	updateOne(c, h.planningSvc.UpdateExpense)
}

// DeleteExpense handles DELETE /expenses/:id
// @Summary Delete an expense
// @Tags planning
// @Param id path int true "Expense ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /expenses/{id} [delete]
func (h *PlanningHandler) DeleteExpense(c *gin.Context) {
	deleteOne(c, "expense", h.planningRepo.DeleteExpense)
}

// ListIncomeTargets handles GET /income-targets
// @Summary List income targets
// @Tags planning
// @Produce json
// @Param type query string false "stock_sale or dividend"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.IncomeTarget
// @Failure 400 {object} models.ErrorResponse
// @Router /income-targets [get]
func (h *PlanningHandler) ListIncomeTargets(c *gin.Context) {
	t := models.IncomeType(c.Query("type"))
	if t != "" && t != models.IncomeTypeStockSale && t != models.IncomeTypeDividend {
		badRequest(c, "type must be 'stock_sale' or 'dividend'")
		return
	}
	listPage(c, func(ctx context.Context, p models.Page) ([]models.IncomeTarget, error) {
		return h.planningSvc.ListIncomeTargets(ctx, t, p)
	})
}

// GetIncomeTarget handles GET /income-targets/:id
// @Summary Get an income target
// @Tags planning
// @Produce json
// @Param id path int true "Income target ID"
// @Success 200 {object} models.IncomeTarget
// @Failure 404 {object} models.ErrorResponse
// @Router /income-targets/{id} [get]
func (h *PlanningHandler) GetIncomeTarget(c *gin.Context) {
	getOne(c, h.planningRepo.GetIncomeTarget)
}

// CreateIncomeTarget handles POST /income-targets
// @Summary Create an income target
// @Tags planning
// @Accept json
// @Produce json
// @Param body body models.IncomeTargetRequest true "Income target"
// @Success 201 {object} models.IncomeTarget
// @Failure 400 {object} models.ErrorResponse
// @Router /income-targets [post]
func (h *PlanningHandler) CreateIncomeTarget(c *gin.Context) {
	createOne(c, h.planningSvc.CreateIncomeTarget)
}

// UpdateIncomeTarget handles PUT /income-targets/:id
// @Summary Update an income target
// @Tags planning
// @Accept json
// @Produce json
// @Param id path int true "Income target ID"
// @Param body body models.IncomeTargetRequest true "Income target"
// @Success 200 {object} models.IncomeTarget
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /income-targets/{id} [put]
func (h *PlanningHandler) UpdateIncomeTarget(c *gin.Context) {
	updateOne(c, h.planningSvc.UpdateIncomeTarget)
}

// DeleteIncomeTarget handles DELETE /income-targets/:id
// @Summary Delete an income target
// @Tags planning
// @Param id path int true "Income target ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /income-targets/{id} [delete]
func (h *PlanningHandler) DeleteIncomeTarget(c *gin.Context) {
	deleteOne(c, "income target", h.planningRepo.DeleteIncomeTarget)
}

// GetRetirementSetting handles GET /early-retirement-initial-setting
// @Summary Get the early-retirement setting
// @Tags planning
// @Produce json
// @Success 200 {object} models.RetirementSetting
// @Failure 404 {object} models.ErrorResponse
// @Router /early-retirement-initial-setting [get]
func (h *PlanningHandler) GetRetirementSetting(c *gin.Context) {
	setting, err := h.planningRepo.GetRetirementSetting(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// SaveRetirementSetting handles POST and PUT /early-retirement-initial-setting.
// Both create the single row when absent and replace it otherwise.
// @Summary Create or replace the early-retirement setting
// @Description standby_fund defaults to investable_assets * standby_fund_ratio / 100, truncated
// @Tags planning
// @Accept json
// @Produce json
// @Param body body models.RetirementSettingRequest true "Setting"
// @Success 200 {object} models.RetirementSetting
// @Failure 400 {object} models.ErrorResponse
// @Router /early-retirement-initial-setting [post]
// @Router /early-retirement-initial-setting [put]
func (h *PlanningHandler) SaveRetirementSetting(c *gin.Context) {
	var req models.RetirementSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.planningSvc.SaveRetirementSetting(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}
