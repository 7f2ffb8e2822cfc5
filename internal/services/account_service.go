package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/fintrack/internal/models"
	"github.com/epeers/fintrack/internal/repository"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidAccount = errors.New("invalid account")

// AccountService handles ISA, IRP and pension-fund account business logic
type AccountService struct {
	accountRepo *repository.AccountRepository
	holdingRepo *repository.HoldingRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo *repository.AccountRepository, holdingRepo *repository.HoldingRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		holdingRepo: holdingRepo,
	}
}

// ValidateAccount checks an account request for kind and normalizes it.
// Cash balances are whole won, so fractions are dropped.
func ValidateAccount(kind models.AccountKind, req *models.AccountRequest) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown account kind %q", ErrInvalidAccount, kind)
	}
	if req.CashBalance.IsNegative() {
		return fmt.Errorf("%w: cash_balance must not be negative", ErrInvalidAccount)
	}
	req.CashBalance = req.CashBalance.Truncate(0)

	if kind == models.AccountKindISA {
		if req.NonTaxType == nil || *req.NonTaxType == "" {
			return fmt.Errorf("%w: non_tax_type is required for ISA accounts", ErrInvalidAccount)
		}
	} else {
		req.NonTaxType = nil
	}
	return nil
}

// List returns accounts of one kind
func (s *AccountService) List(ctx context.Context, kind models.AccountKind, page models.Page) ([]models.Account, error) {
	return s.accountRepo.List(ctx, kind, page.Skip, page.Limit)
}

// GetWithDetails loads an account and its holdings concurrently
func (s *AccountService) GetWithDetails(ctx context.Context, kind models.AccountKind, id int64) (*models.AccountWithDetails, error) {
	defer TrackTime("AccountService.GetWithDetails", time.Now())

	var (
		account *models.Account
		details []models.Holding
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		account, err = s.accountRepo.GetByID(gctx, kind, id)
		return err
	})
	g.Go(func() error {
		var err error
		details, err = s.holdingRepo.ListByAccount(gctx, kind, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AccountWithDetails{Account: *account, Details: details}, nil
}

// Create validates and inserts an account
func (s *AccountService) Create(ctx context.Context, kind models.AccountKind, req *models.AccountRequest) (*models.Account, error) {
	if err := ValidateAccount(kind, req); err != nil {
		return nil, err
	}

	tx, err := s.accountRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.accountRepo.Create(ctx, tx, kind, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.accountRepo.GetByID(ctx, kind, id)
}

// Update validates and rewrites an account
func (s *AccountService) Update(ctx context.Context, kind models.AccountKind, id int64, req *models.AccountRequest) (*models.Account, error) {
	if err := ValidateAccount(kind, req); err != nil {
		return nil, err
	}

	tx, err := s.accountRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.Update(ctx, tx, kind, id, req); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.accountRepo.GetByID(ctx, kind, id)
}

// Delete removes an account and, by cascade, its detail, sale and dividend rows
func (s *AccountService) Delete(ctx context.Context, kind models.AccountKind, id int64) error {
	tx, err := s.accountRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.accountRepo.Delete(ctx, tx, kind, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
