package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AccountHandler handles one account family (/isa-accounts, /irp-accounts, /pension-fund-accounts)
type AccountHandler struct {
	kind       models.AccountKind
	accountSvc *services.AccountService
}

// NewAccountHandler creates an AccountHandler bound to kind
func NewAccountHandler(kind models.AccountKind, accountSvc *services.AccountService) *AccountHandler {
	return &AccountHandler{kind: kind, accountSvc: accountSvc}
}

// List handles GET /{kind}-accounts
// @Summary List accounts
// @Description Accounts with the financial institution name resolved
// @Tags accounts
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Account
// @Failure 400 {object} models.ErrorResponse
// @Router /isa-accounts [get]
// @Router /irp-accounts [get]
// @Router /pension-fund-accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.Account, error) {
		return h.accountSvc.List(ctx, h.kind, p)
	})
}

// Get handles GET /{kind}-accounts/:id
// @Summary Get an account with its holdings
// @Tags accounts
// @Produce json
// @Param id path int true "Account ID"
// @Success 200 {object} models.AccountWithDetails
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-accounts/{id} [get]
// @Router /irp-accounts/{id} [get]
// @Router /pension-fund-accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.AccountWithDetails, error) {
		return h.accountSvc.GetWithDetails(ctx, h.kind, id)
	})
}

// Create handles POST /{kind}-accounts
// @Summary Create an account
// @Description non_tax_type is required for ISA accounts and ignored otherwise
// @Tags accounts
// @Accept json
// @Produce json
// @Param body body models.AccountRequest true "Account"
// @Success 201 {object} models.Account
// @Failure 400 {object} models.ErrorResponse
// @Router /isa-accounts [post]
// @Router /irp-accounts [post]
// @Router /pension-fund-accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, req *models.AccountRequest) (*models.Account, error) {
		return h.accountSvc.Create(ctx, h.kind, req)
	})
}

// Update handles PUT /{kind}-accounts/:id
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param body body models.AccountRequest true "Account"
// @Success 200 {object} models.Account
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-accounts/{id} [put]
// @Router /irp-accounts/{id} [put]
// @Router /pension-fund-accounts/{id} [put]
func (h *AccountHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, req *models.AccountRequest) (*models.Account, error) {
		return h.accountSvc.Update(ctx, h.kind, id, req)
	})
}

// Delete handles DELETE /{kind}-accounts/:id
// @Summary Delete an account and its holdings
// @Tags accounts
// @Param id path int true "Account ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-accounts/{id} [delete]
// @Router /irp-accounts/{id} [delete]
// @Router /pension-fund-accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	deleteOne(c, "account", func(ctx context.Context, id int64) error {
		return h.accountSvc.Delete(ctx, h.kind, id)
	})
}

// HoldingHandler handles one family of account detail lines (/{kind}-account-details)
type HoldingHandler struct {
	kind        models.AccountKind
	holdingSvc  *services.HoldingService
	holdingRepo *repository.HoldingRepository
}

// NewHoldingHandler creates a HoldingHandler bound to kind
func NewHoldingHandler(kind models.AccountKind, holdingSvc *services.HoldingService, holdingRepo *repository.HoldingRepository) *HoldingHandler {
	return &HoldingHandler{kind: kind, holdingSvc: holdingSvc, holdingRepo: holdingRepo}
}

// List handles GET /{kind}-account-details
// @Summary List holdings
// @Tags holdings
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows (1-1000)"
// @Success 200 {array} models.Holding
// @Router /isa-account-details [get]
// @Router /irp-account-details [get]
// @Router /pension-fund-account-details [get]
func (h *HoldingHandler) List(c *gin.Context) {
	listPage(c, func(ctx context.Context, p models.Page) ([]models.Holding, error) {
		return h.holdingRepo.List(ctx, h.kind, p.Skip, p.Limit)
	})
}

// ListByAccount handles GET /{kind}-account-details/account/:account_id
// @Summary List the holdings of one account
// @Description stock_name is resolved from the ETF tables and is null when unknown
// @Tags holdings
// @Produce json
// @Param account_id path int true "Account ID"
// @Success 200 {array} models.Holding
// @Failure 400 {object} models.ErrorResponse
// @Router /isa-account-details/account/{account_id} [get]
// @Router /irp-account-details/account/{account_id} [get]
// @Router /pension-fund-account-details/account/{account_id} [get]
func (h *HoldingHandler) ListByAccount(c *gin.Context) {
	accountID, ok := parseID(c, "account_id")
	if !ok {
		return
	}
	holdings, err := h.holdingRepo.ListByAccount(c.Request.Context(), h.kind, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	c.JSON(http.StatusOK, holdings)
}

// Get handles GET /{kind}-account-details/:id
// @Summary Get a holding
// @Tags holdings
// @Produce json
// @Param id path int true "Holding ID"
// @Success 200 {object} models.Holding
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-details/{id} [get]
// @Router /irp-account-details/{id} [get]
// @Router /pension-fund-account-details/{id} [get]
func (h *HoldingHandler) Get(c *gin.Context) {
	getOne(c, func(ctx context.Context, id int64) (*models.Holding, error) {
		return h.holdingRepo.GetByID(ctx, h.kind, id)
	})
}

// Create handles POST /{kind}-account-details
// @Summary Create a holding
// @Description (account_id, stock_code) must be unique
// @Tags holdings
// @Accept json
// @Produce json
// @Param body body models.HoldingRequest true "Holding"
// @Success 201 {object} models.Holding
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-details [post]
// @Router /irp-account-details [post]
// @Router /pension-fund-account-details [post]
func (h *HoldingHandler) Create(c *gin.Context) {
	createOne(c, func(ctx context.Context, req *models.HoldingRequest) (*models.Holding, error) {
		return h.holdingSvc.Create(ctx, h.kind, req)
	})
}

// Update handles PUT /{kind}-account-details/:id
// @Summary Update a holding
// @Tags holdings
// @Accept json
// @Produce json
// @Param id path int true "Holding ID"
// @Param body body models.HoldingRequest true "Holding"
// @Success 200 {object} models.Holding
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-details/{id} [put]
// @Router /irp-account-details/{id} [put]
// @Router /pension-fund-account-details/{id} [put]
func (h *HoldingHandler) Update(c *gin.Context) {
	updateOne(c, func(ctx context.Context, id int64, req *models.HoldingRequest) (*models.Holding, error) {
		return h.holdingSvc.Update(ctx, h.kind, id, req)
	})
}

// Delete handles DELETE /{kind}-account-details/:id
// @Summary Delete a holding
// @Tags holdings
// @Param id path int true "Holding ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-details/{id} [delete]
// @Router /irp-account-details/{id} [delete]
// @Router /pension-fund-account-details/{id} [delete]
func (h *HoldingHandler) Delete(c *gin.Context) {
	deleteOne(c, "holding", func(ctx context.Context, id int64) error {
		return h.holdingRepo.Delete(ctx, h.kind, id)
	})
}

// DownloadTemplate handles GET /{kind}-account-details/template/download
// @Summary Download the holdings upload template
// @Tags holdings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /isa-account-details/template/download [get]
// @Router /irp-account-details/template/download [get]
// @Router /pension-fund-account-details/template/download [get]
func (h *HoldingHandler) DownloadTemplate(c *gin.Context) {
	data, err := HoldingsTemplate()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+string(h.kind)+`_holdings_template.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Upload handles POST /{kind}-account-details/upload/:account_id
// @Summary Upload holdings from a spreadsheet
// @Description Accepts .xlsx or .csv in the template layout. Rows are merged by (account_id, stock_code).
// @Description Returns 200 when every row succeeded, 207 on partial success and 400 when nothing was written.
// @Tags holdings
// @Accept multipart/form-data
// @Produce json
// @Param account_id path int true "Account ID"
// @Param file formData file true "Holdings spreadsheet"
// @Success 200 {object} models.UploadResult
// @Success 207 {object} models.UploadResult
// @Failure 400 {object} models.UploadResult
// @Failure 404 {object} models.ErrorResponse
// @Router /isa-account-details/upload/{account_id} [post]
// @Router /irp-account-details/upload/{account_id} [post]
// @Router /pension-fund-account-details/upload/{account_id} [post]
func (h *HoldingHandler) Upload(c *gin.Context) {
	accountID, ok := parseID(c, "account_id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}

	var parse func(io.Reader) (*HoldingsSheet, error)
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx":
		parse = ParseHoldingsXLSX
	case ".csv":
		parse = ParseHoldingsCSV
	default:
		badRequest(c, "only .xlsx and .csv files are supported")
		return
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "failed to read uploaded file")
		return
	}
	defer f.Close()

	sheet, err := parse(f)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(sheet.Rows) == 0 && len(sheet.Errors) == 0 {
		badRequest(c, errNoDataRows.Error())
		return
	}

	log.Debugf("holdings upload %s: %d valid rows, %d rejected", fh.Filename, len(sheet.Rows), len(sheet.Errors))
	result, err := h.holdingSvc.Upload(c.Request.Context(), h.kind, accountID, sheet.Rows, sheet.Errors)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(services.UploadStatus(result), result)
}
