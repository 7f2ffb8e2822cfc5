package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

// SaleHandler handles ISA sale records and ISA dividend receipts
type SaleHandler struct {
	saleSvc  *services.SaleService
	saleRepo *repository.SaleRepository
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleSvc *services.SaleService, saleRepo *repository.SaleRepository) *SaleHandler {
	return &SaleHandler{saleSvc: saleSvc, saleRepo: saleRepo}
}

// accountMonth reads :account_id and the optional ?year_month filter
func accountMonth(c *gin.Context) (int64, string, bool) {
	accountID, ok := parseID(c, "account_id")
	if !ok {
		return 0, "", false
	}
	yearMonth := c.Query("year_month")
	if yearMonth != "" && !services.ValidYearMonth(yearMonth) {
		badRequest(c, "year_month must be YYYY-MM")
		return 0, "", false
	}
	return accountID, yearMonth, true
}

// ListSales handles GET /isa-account-sales
// @Summary List ISA sale records
// @Tags sales
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Sale
// @Router /isa-account-sales [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.Sale, error) {
		return h.saleRepo.ListSales(ctx, p.Skip, p.Limit)
	})
}

// ListSalesByAccount handles GET /isa-account-sales/account/:account_id
// @Summary List the sale records of one ISA account
// @Tags sales
// @Produce json
// @Param account_id path int true "Account ID"
// @Param year_month query string false "Only this month (YYYY-MM)"
// @Success 200 {array} models.Sale
// @Failure 400 {object} models.ErrorResponse
// @Router /isa-account-sales/account/{account_id} [get]
func (h *SaleHandler) ListSalesByAccount(c *gin.Context) {
	accountID, yearMonth, ok := accountMonth(c)
	if !ok {
		return
	}
	sales, err := h.saleRepo.ListSalesByAccount(c.Request.Context(), accountID, yearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	if sales == nil {
		sales = []models.Sale{}
	}
	c.JSON(http.StatusOK, sales)
}

// GetSale handles GET /isa-account-sales/:id
// @Summary Get an ISA sale record
// @Tags sales
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} models.Sale
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-sales/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	getOne(c, h.saleRepo.GetSale)
}

// CreateSale handles POST /isa-account-sales
// @Summary Record an ISA sale
// @Description profit_loss and return_rate are computed from the quantities and prices
// @Tags sales
// @Accept json
// @Produce json
// @Param body body models.SaleRequest true "Sale"
// @Success 201 {object} models.Sale
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-sales [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	createOne(c, h.saleSvc.Create)
}

// UpdateSale handles PUT /isa-account-sales/:id
// @Summary Update an ISA sale record
// @Tags sales
// @Accept json
// @Produce json
// @Param id path int true "Sale ID"
// @Param body body models.SaleRequest true "Sale"
// @Success 200 {object} models.Sale
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-sales/{id} [put]
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	updateOne(c, h.saleSvc.Update)
}

// DeleteSale handles DELETE /isa-account-sales/:id
// @Summary Delete an ISA sale record
// @Tags sales
// @Param id path int true "Sale ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	deleteOne(c, "sale", h.saleRepo.DeleteSale)
}

// ListDividends handles GET /isa-account-dividends
// @Summary List ISA dividend receipts
// @Tags sales
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.AccountDividend
// @Router /isa-account-dividends [get]
func (h *SaleHandler) ListDividends(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.AccountDividend, error) {
		return h.saleRepo.ListDividends(ctx, p.Skip, p.Limit)
	})
}

// ListDividendsByAccount handles GET /isa-account-dividends/account/:account_id
// @Summary List the dividend receipts of one ISA account
// @Tags sales
// @Produce json
// @Param account_id path int true "Account ID"
// @Param year_month query string false "Only this month (YYYY-MM)"
// @Success 200 {array} models.AccountDividend
// @Failure 400 {object} models.ErrorResponse
// @Router /isa-account-dividends/account/{account_id} [get]
func (h *SaleHandler) ListDividendsByAccount(c *gin.Context) {
	accountID, yearMonth, ok := accountMonth(c)
	if !ok {
		return
	}
	divs, err := h.saleRepo.ListDividendsByAccount(c.Request.Context(), accountID, yearMonth)
	if err != nil {
		respondError(c, err)
		return
	}
	if divs == nil {
		divs = []models.AccountDividend{}
	}
	c.JSON(http.StatusOK, divs)
}

// GetDividend handles GET /isa-account-dividends/:id
// @Summary Get an ISA dividend receipt
// @Tags sales
// @Produce json
// @Param id path int true "Dividend ID"
// @Success 200 {object} models.AccountDividend
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-dividends/{id} [get]
func (h *SaleHandler) GetDividend(c *gin.Context) {
	getOne(c, h.saleRepo.GetDividend)
}

// CreateDividend handles POST /isa-account-dividends
// @Summary Record an ISA dividend receipt
// @Tags sales
// @Accept json
// @Produce json
// @Param body body models.AccountDividendRequest true "Dividend"
// @Success 201 {object} models.AccountDividend
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-dividends [post]
func (h *SaleHandler) CreateDividend(c *gin.Context) {
	createOne(c, h.saleSvc.CreateDividend)
}

// UpdateDividend handles PUT /isa-account-dividends/:id
// @Summary Update an ISA dividend receipt
// @Tags sales
// @Accept json
// @Produce json
// @Param id path int true "Dividend ID"
// @Param body body models.AccountDividendRequest true "Dividend"
// @Success 200 {object} models.AccountDividend
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-dividends/{id} [put]
func (h *SaleHandler) UpdateDividend(c *gin.Context) {
	updateOne(c, h.saleSvc.UpdateDividend)
}

// DeleteDividend handles DELETE /isa-account-dividends/:id
// @Summary Delete an ISA dividend receipt
// @Tags sales
// @Param id path int true "Dividend ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-dividends/{id} [delete]
func (h *SaleHandler) DeleteDividend(c *gin.Context) {
	deleteOne(c, "dividend", h.saleRepo.DeleteDividend)
}
