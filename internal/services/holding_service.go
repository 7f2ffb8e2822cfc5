package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"github.com/epeers/fintrack/internal/upsert"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidHolding = errors.New("invalid holding")

// StockCodeLength is the length of a KRX short code such as 069500
const StockCodeLength = 6

// HoldingService handles account detail lines, including spreadsheet uploads
type HoldingService struct {
	db          upsert.Beginner
	accountRepo *repository.AccountRepository
	holdingRepo *repository.HoldingRepository
}

// NewHoldingService creates a new HoldingService
func NewHoldingService(db upsert.Beginner, accountRepo *repository.AccountRepository, holdingRepo *repository.HoldingRepository) *HoldingService {
	return &HoldingService{
		db:          db,
		accountRepo: accountRepo,
		holdingRepo: holdingRepo,
	}
}

// ValidateHolding checks a manually entered holding line
func ValidateHolding(req *models.HoldingRequest) error {
	if len(req.StockCode) != StockCodeLength {
		return fmt.Errorf("%w: stock_code must be %d characters", ErrInvalidHolding, StockCodeLength)
	}
	for name, v := range map[string]decimal.Decimal{
		"quantity":           req.Quantity,
		"purchase_avg_price": req.PurchaseAvgPrice,
		"current_price":      req.CurrentPrice,
		"purchase_fee":       req.PurchaseFee,
		"sale_fee":           req.SaleFee,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidHolding, name)
		}
	}
	return nil
}

func (s *HoldingService) checkAccount(ctx context.Context, kind models.AccountKind, accountID int64) error {
	ok, err := s.accountRepo.Exists(ctx, kind, accountID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrAccountNotFound
	}
	return nil
}

// Create validates and inserts a holding line
func (s *HoldingService) Create(ctx context.Context, kind models.AccountKind, req *models.HoldingRequest) (*models.Holding, error) {
	if err := ValidateHolding(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, kind, req.AccountID); err != nil {
		return nil, err
	}
	id, err := s.holdingRepo.Create(ctx, kind, req)
	if err != nil {
		return nil, err
	}
	return s.holdingRepo.GetByID(ctx, kind, id)
}

// Update validates and rewrites a holding line
func (s *HoldingService) Update(ctx context.Context, kind models.AccountKind, id int64, req *models.HoldingRequest) (*models.Holding, error) {
	if err := ValidateHolding(req); err != nil {
		return nil, err
	}
	if err := s.checkAccount(ctx, kind, req.AccountID); err != nil {
		return nil, err
	}
	if err := s.holdingRepo.Update(ctx, kind, id, req); err != nil {
		return nil, err
	}
	return s.holdingRepo.GetByID(ctx, kind, id)
}

// Upload merges parsed spreadsheet rows into an account by (account_id, stock_code).
// rowErrors are the parser's rejections; they are reported alongside the merge counts.
// The valid rows commit together, so a storage failure returns an error and writes nothing.
func (s *HoldingService) Upload(ctx context.Context, kind models.AccountKind, accountID int64, rows []models.HoldingUploadRow, rowErrors []string) (*models.UploadResult, error) {
	defer TrackTime("HoldingService.Upload", time.Now())

	if err := s.checkAccount(ctx, kind, accountID); err != nil {
		return nil, err
	}
	table, err := s.holdingRepo.Table(kind)
	if err != nil {
		return nil, err
	}

	records := make([]models.HoldingRequest, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.HoldingRequest{
			AccountID:        accountID,
			StockCode:        r.StockCode,
			Quantity:         r.Quantity,
			PurchaseAvgPrice: r.PurchaseAvgPrice,
			CurrentPrice:     r.CurrentPrice,
			PurchaseFee:      r.PurchaseFee,
		})
	}

	res, err := upsert.Merge(ctx, s.db, upsert.Table[repository.HoldingKey, models.HoldingRequest](table), records)
	if err != nil {
		return nil, err
	}

	result := NewUploadResult(res, rowErrors)
	log.Infof("holdings upload for %s account %d: created=%d updated=%d errors=%d",
		kind, accountID, result.CreateCount, result.UpdateCount, result.ErrorCount)
	return result, nil
}

// NewUploadResult builds the per-upload report from merge counts and row errors
func NewUploadResult(res upsert.Result, rowErrors []string) *models.UploadResult {
	if rowErrors == nil {
		rowErrors = []string{}
	}
	return &models.UploadResult{
		SuccessCount: res.Created + res.Updated,
		CreateCount:  res.Created,
		UpdateCount:  res.Updated,
		ErrorCount:   len(rowErrors),
		Errors:       rowErrors,
	}
}

// UploadStatus picks the HTTP status of an upload report:
// 200 when every row succeeded, 207 on partial success, 400 when nothing was written.
func UploadStatus(r *models.UploadResult) int {
	switch {
	case r.ErrorCount == 0:
		return http.StatusOK
	case r.SuccessCount > 0:
		return http.StatusMultiStatus
	}
	return http.StatusBadRequest
}
