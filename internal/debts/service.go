package debts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/debttrack/debttrack-backend/pkg/db"
	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/money"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type creditorDirectory interface {
	FindByID(ctx context.Context, id int64) (*models.Creditor, error)
}

// Service defines the ledger operations over debts and payments.
type Service interface {
	CreateDebt(ctx context.Context, input CreateDebtInput) (*DebtDTO, error)
	GetDebt(ctx context.Context, id int64) (*DebtDTO, error)
	UpdateDebt(ctx context.Context, id int64, input UpdateDebtInput) (*DebtDTO, error)
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error)
	MarkFullyPaid(ctx context.Context, debtID int64, recordedBy *int64) (*DebtDTO, error)
	ListPayments(ctx context.Context, debtID int64, params pagination.Params) (*PaymentPage, error)
	ListDebts(ctx context.Context, filter ListDebtsFilter) (*DebtPage, error)
	DeactivateDebt(ctx context.Context, id int64) error
	SweepOverdue(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	creditors creditorDirectory
}

// NewService builds a debt ledger service with the required dependencies.
func NewService(repo Repository, tx txRunner, creditors creditorDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if creditors == nil {
		return nil, fmt.Errorf("creditor directory required")
	}
	return &service{repo: repo, tx: tx, creditors: creditors}, nil
}

func (s *service) CreateDebt(ctx context.Context, input CreateDebtInput) (*DebtDTO, error) {
	input.DebtorName = strings.TrimSpace(input.DebtorName)
	if input.DebtorName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debtor name required")
	}
	if !input.Principal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "principal must be positive")
	}

	if input.CreditorID != nil {
		if _, err := s.creditors.FindByID(ctx, *input.CreditorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creditor not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load creditor")
		}
	}

	duplicate, err := s.repo.HasPendingForDebtor(ctx, input.DebtorName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending debts")
	}
	if duplicate {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "debtor already has a pending debt")
	}

	debt := &models.Debt{
		DebtorName:      input.DebtorName,
		DebtorEmail:     input.DebtorEmail,
		DebtorPhone:     input.DebtorPhone,
		Description:     input.Description,
		Principal:       input.Principal,
		PaidAmount:      money.Zero(),
		RemainingAmount: input.Principal,
		DueDate:         input.DueDate,
		Status:          enums.DebtStatusPending,
		RecordStatus:    enums.RecordStatusActive,
		CreditorID:      input.CreditorID,
		UserID:          input.UserID,
	}
	if err := s.repo.Create(ctx, debt); err != nil {
		// The partial unique index backs the pre-check above; concurrent
		// creates for the same debtor surface here.
		if db.IsUniqueViolation(err, "uq_debts_pending_debtor") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "debtor already has a pending debt")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create debt")
	}
	return FromModel(debt), nil
}

func (s *service) GetDebt(ctx context.Context, id int64) (*DebtDTO, error) {
	debt, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(debt), nil
}

func (s *service) UpdateDebt(ctx context.Context, id int64, input UpdateDebtInput) (*DebtDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt id required")
	}
	if input.Principal != nil && !input.Principal.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "principal must be positive")
	}

	var updated *models.Debt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debt, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
		}
		if debt.Status == enums.DebtStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "paid debts cannot be edited")
		}

		updates := map[string]any{}
		if input.DebtorName != nil {
			name := strings.TrimSpace(*input.DebtorName)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "debtor name cannot be empty")
			}
			updates["debtor_name"] = name
			debt.DebtorName = name
		}
		if input.DebtorEmail != nil {
			updates["debtor_email"] = input.DebtorEmail
			debt.DebtorEmail = input.DebtorEmail
		}
		if input.DebtorPhone != nil {
			updates["debtor_phone"] = input.DebtorPhone
			debt.DebtorPhone = input.DebtorPhone
		}
		if input.Description != nil {
			updates["description"] = input.Description
			debt.Description = input.Description
		}
		if input.DueDate != nil {
			updates["due_date"] = input.DueDate
			debt.DueDate = input.DueDate
		}
		if input.Principal != nil {
			count, err := repo.CountPayments(ctx, debt.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payments")
			}
			if count > 0 {
				return pkgerrors.New(pkgerrors.CodeImmutablePrincipal, "principal cannot change after payments exist")
			}
			updates["principal"] = *input.Principal
			updates["remaining_amount"] = *input.Principal
			debt.Principal = *input.Principal
			debt.RemainingAmount = *input.Principal
		}

		if len(updates) == 0 {
			updated = debt
			return nil
		}
		if err := repo.Update(ctx, debt.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update debt")
		}
		updated = debt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error) {
	if input.DebtID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var result *CreatePaymentResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debt, err := repo.FindByIDForUpdate(ctx, input.DebtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
		}

		payment, err := s.applyPayment(ctx, repo, debt, input.Amount, input.Description, input.UserID)
		if err != nil {
			return err
		}
		result = &CreatePaymentResult{Payment: *PaymentFromModel(payment), Debt: *FromModel(debt)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) MarkFullyPaid(ctx context.Context, debtID int64, recordedBy *int64) (*DebtDTO, error) {
	if debtID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt id required")
	}

	var settled *models.Debt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debt, err := repo.FindByIDForUpdate(ctx, debtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
		}

		description := "balance settlement"
		if _, err := s.applyPayment(ctx, repo, debt, debt.RemainingAmount, &description, recordedBy); err != nil {
			return err
		}
		settled = debt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(settled), nil
}

// applyPayment performs the read-modify-write of the debt's monetary fields.
// The caller must hold the row lock on debt.
func (s *service) applyPayment(ctx context.Context, repo Repository, debt *models.Debt, amount money.Amount, description *string, recordedBy *int64) (*models.Payment, error) {
	if debt.Status == enums.DebtStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodePaymentRejected, "debt already paid")
	}
	if amount.Cmp(debt.RemainingAmount) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodePaymentRejected, "payment exceeds remaining balance").
			WithDetails(map[string]any{
				"remaining_amount": debt.RemainingAmount.String(),
				"amount":           amount.String(),
			})
	}

	newPaid := debt.PaidAmount.Add(amount)
	newRemaining, err := debt.RemainingAmount.Sub(amount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeOverpayment, err, "remaining balance underflow")
	}

	status := enums.DebtStatusPending
	if newRemaining.IsZero() {
		status = enums.DebtStatusPaid
	} else if debt.Status == enums.DebtStatusOverdue {
		status = enums.DebtStatusOverdue
	}

	payment := &models.Payment{
		DebtID:      debt.ID,
		Amount:      amount,
		Description: description,
		UserID:      recordedBy,
	}
	if err := repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}

	updates := map[string]any{
		"paid_amount":      newPaid,
		"remaining_amount": newRemaining,
		"status":           status,
	}
	if err := repo.Update(ctx, debt.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update debt balance")
	}

	debt.PaidAmount = newPaid
	debt.RemainingAmount = newRemaining
	debt.Status = status
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, debtID int64, params pagination.Params) (*PaymentPage, error) {
	if _, err := s.loadActive(ctx, debtID); err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	payments, err := s.repo.ListPayments(ctx, debtID, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	page := &PaymentPage{Items: make([]PaymentDTO, 0, len(payments))}
	for i := range payments {
		if i == limit {
			break
		}
		page.Items = append(page.Items, *PaymentFromModel(&payments[i]))
	}
	if len(payments) > limit {
		last := page.Items[len(page.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) ListDebts(ctx context.Context, filter ListDebtsFilter) (*DebtPage, error) {
	if filter.DueDateFrom != nil && filter.DueDateTo != nil && filter.DueDateFrom.After(*filter.DueDateTo) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date range is inverted")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	cursor, err := pagination.ParseCursor(filter.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(filter.Pagination.Limit)

	rows, err := s.repo.List(ctx, filter, limit+1, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list debts")
	}

	page := &DebtPage{Items: make([]DebtDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	if len(rows) > limit {
		last := page.Items[len(page.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (s *service) DeactivateDebt(ctx context.Context, id int64) error {
	debt, err := s.loadActive(ctx, id)
	if err != nil {
		return err
	}
	updates := map[string]any{"record_status": enums.RecordStatusInactive}
	if err := s.repo.Update(ctx, debt.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate debt")
	}
	return nil
}

// SweepOverdue stamps PENDING debts whose due date passed as OVERDUE. PAID
// debts are never touched. Returns how many debts were updated.
func (s *service) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.repo.ListDueBefore(ctx, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list overdue candidates")
	}

	var errs error
	updated := 0
	for i := range candidates {
		debt := &candidates[i]
		stamped := false
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			locked, err := repo.FindByIDForUpdate(ctx, debt.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			if locked.Status != enums.DebtStatusPending {
				return nil
			}
			if err := repo.Update(ctx, locked.ID, map[string]any{"status": enums.DebtStatusOverdue}); err != nil {
				return err
			}
			stamped = true
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("debt %d: %w", debt.ID, err))
			continue
		}
		if stamped {
			updated++
		}
	}
	return updated, errs
}

func (s *service) loadActive(ctx context.Context, id int64) (*models.Debt, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debt id required")
	}
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load debt")
	}
	return debt, nil
}
