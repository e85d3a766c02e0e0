package debts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/money"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTxRunner serializes transactions with a mutex, mirroring the row-lock
// discipline the real runner gets from SELECT ... FOR UPDATE.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(nil)
}

type fakeDebtRepo struct {
	mu         sync.Mutex
	debts      map[int64]*models.Debt
	payments   map[int64]*models.Payment
	nextDebt   int64
	nextPay    int64
	failCreate error
	failUpdate error
}

func newFakeDebtRepo() *fakeDebtRepo {
	return &fakeDebtRepo{
		debts:    map[int64]*models.Debt{},
		payments: map[int64]*models.Payment{},
		nextDebt: 1,
		nextPay:  1,
	}
}

func (f *fakeDebtRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeDebtRepo) Create(_ context.Context, debt *models.Debt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	debt.ID = f.nextDebt
	f.nextDebt++
	debt.CreatedAt = time.Now().UTC()
	clone := *debt
	f.debts[debt.ID] = &clone
	return nil
}

func (f *fakeDebtRepo) FindByID(_ context.Context, id int64) (*models.Debt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	debt, ok := f.debts[id]
	if !ok || debt.RecordStatus != enums.RecordStatusActive {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *debt
	return &clone, nil
}

func (f *fakeDebtRepo) FindByIDForUpdate(ctx context.Context, id int64) (*models.Debt, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeDebtRepo) HasPendingForDebtor(_ context.Context, debtorName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, debt := range f.debts {
		if debt.DebtorName == debtorName &&
			debt.Status == enums.DebtStatusPending &&
			debt.RecordStatus == enums.RecordStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDebtRepo) CountPayments(_ context.Context, debtID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, payment := range f.payments {
		if payment.DebtID == debtID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDebtRepo) Update(_ context.Context, id int64, updates map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return f.failUpdate
	}
	debt, ok := f.debts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "paid_amount":
			debt.PaidAmount = value.(money.Amount)
		case "remaining_amount":
			debt.RemainingAmount = value.(money.Amount)
		case "principal":
			debt.Principal = value.(money.Amount)
		case "status":
			debt.Status = value.(enums.DebtStatus)
		case "record_status":
			debt.RecordStatus = value.(enums.RecordStatus)
		case "debtor_name":
			debt.DebtorName = value.(string)
		case "due_date":
			debt.DueDate = value.(*time.Time)
		case "description":
			debt.Description = value.(*string)
		case "debtor_email":
			debt.DebtorEmail = value.(*string)
		case "debtor_phone":
			debt.DebtorPhone = value.(*string)
		}
	}
	return nil
}

func (f *fakeDebtRepo) CreatePayment(_ context.Context, payment *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment.ID = f.nextPay
	f.nextPay++
	payment.CreatedAt = time.Now().UTC()
	clone := *payment
	f.payments[payment.ID] = &clone
	return nil
}

func (f *fakeDebtRepo) ListPayments(_ context.Context, debtID int64, limit int, _ *pagination.Cursor) ([]models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Payment
	for _, payment := range f.payments {
		if payment.DebtID == debtID {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDebtRepo) List(_ context.Context, filter ListDebtsFilter, limit int, _ *pagination.Cursor) ([]models.Debt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Debt
	for _, debt := range f.debts {
		if debt.RecordStatus != enums.RecordStatusActive {
			continue
		}
		if filter.Status != nil && debt.Status != *filter.Status {
			continue
		}
		if filter.UserID != nil && (debt.UserID == nil || *debt.UserID != *filter.UserID) {
			continue
		}
		if filter.DueDateFrom != nil && (debt.DueDate == nil || debt.DueDate.Before(*filter.DueDateFrom)) {
			continue
		}
		if filter.DueDateTo != nil && (debt.DueDate == nil || debt.DueDate.After(*filter.DueDateTo)) {
			continue
		}
		out = append(out, *debt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDebtRepo) ListDueBefore(_ context.Context, cutoff time.Time) ([]models.Debt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Debt
	for _, debt := range f.debts {
		if debt.Status == enums.DebtStatusPending &&
			debt.RecordStatus == enums.RecordStatusActive &&
			debt.DueDate != nil && debt.DueDate.Before(cutoff) {
			out = append(out, *debt)
		}
	}
	return out, nil
}

type fakeCreditorDir struct {
	existing map[int64]bool
}

func (f *fakeCreditorDir) FindByID(_ context.Context, id int64) (*models.Creditor, error) {
	if f.existing[id] {
		return &models.Creditor{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func amount(t *testing.T, value string) money.Amount {
	t.Helper()
	parsed, err := money.FromString(value)
	require.NoError(t, err)
	return parsed
}

func newLedger(t *testing.T) (Service, *fakeDebtRepo, *fakeCreditorDir) {
	t.Helper()
	repo := newFakeDebtRepo()
	dir := &fakeCreditorDir{existing: map[int64]bool{1: true}}
	svc, err := NewService(repo, &fakeTxRunner{}, dir)
	require.NoError(t, err)
	return svc, repo, dir
}

func createDebt(t *testing.T, svc Service, principal string) *DebtDTO {
	t.Helper()
	debt, err := svc.CreateDebt(context.Background(), CreateDebtInput{
		DebtorName: "debtor-" + principal,
		Principal:  amount(t, principal),
	})
	require.NoError(t, err)
	return debt
}

func TestCreateDebtInitialState(t *testing.T) {
	svc, _, _ := newLedger(t)

	debt := createDebt(t, svc, "1000.00")
	assert.Equal(t, enums.DebtStatusPending, debt.Status)
	assert.Equal(t, "1000.00", debt.Principal.String())
	assert.Equal(t, "0.00", debt.PaidAmount.String())
	assert.Equal(t, "1000.00", debt.RemainingAmount.String())
}

func TestCreateDebtValidation(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := svc.CreateDebt(ctx, CreateDebtInput{DebtorName: "  ", Principal: amount(t, "10.00")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateDebt(ctx, CreateDebtInput{DebtorName: "maria", Principal: money.Zero()})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateDebtUnknownCreditorNotFound(t *testing.T) {
	svc, _, _ := newLedger(t)

	missing := int64(42)
	_, err := svc.CreateDebt(context.Background(), CreateDebtInput{
		DebtorName: "maria",
		Principal:  amount(t, "10.00"),
		CreditorID: &missing,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateDebtDuplicatePendingConflicts(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()

	_, err := svc.CreateDebt(ctx, CreateDebtInput{DebtorName: "maria", Principal: amount(t, "10.00")})
	require.NoError(t, err)

	_, err = svc.CreateDebt(ctx, CreateDebtInput{DebtorName: "maria", Principal: amount(t, "20.00")})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestCreateDebtConcurrentDuplicateConflicts(t *testing.T) {
	// A concurrent create can slip past the pending-debt pre-check; the
	// partial unique index then rejects the insert and the violation must
	// come back as a conflict, not a dependency failure.
	svc, repo, _ := newLedger(t)
	repo.failCreate = fmt.Errorf(`duplicate key value violates unique constraint "uq_debts_pending_debtor"`)

	_, err := svc.CreateDebt(context.Background(), CreateDebtInput{
		DebtorName: "maria",
		Principal:  amount(t, "10.00"),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestPaymentsSettleDebt(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "1000.00")

	first, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "400.00")})
	require.NoError(t, err)
	assert.Equal(t, "600.00", first.Debt.RemainingAmount.String())
	assert.Equal(t, enums.DebtStatusPending, first.Debt.Status)

	second, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "600.00")})
	require.NoError(t, err)
	assert.Equal(t, "0.00", second.Debt.RemainingAmount.String())
	assert.Equal(t, "1000.00", second.Debt.PaidAmount.String())
	assert.Equal(t, enums.DebtStatusPaid, second.Debt.Status)

	_, err = svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "0.01")})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentRejected))

	refreshed, err := svc.GetDebt(ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", refreshed.RemainingAmount.String())
	assert.Equal(t, enums.DebtStatusPaid, refreshed.Status)
}

func TestPaymentExceedingBalanceLeavesDebtUnchanged(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "500.00")

	_, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "600.00")})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentRejected))

	refreshed, err := svc.GetDebt(ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", refreshed.PaidAmount.String())
	assert.Equal(t, "500.00", refreshed.RemainingAmount.String())
	assert.Equal(t, enums.DebtStatusPending, refreshed.Status)
}

func TestPaymentValidation(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "100.00")

	_, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: money.Zero()})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreatePayment(ctx, CreatePaymentInput{DebtID: 999, Amount: amount(t, "10.00")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestConcurrentPaymentsOneWins(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "500.00")

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "300.00")})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, rejections int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentRejected), "unexpected error: %v", err)
		rejections++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejections)

	refreshed, err := svc.GetDebt(ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", refreshed.PaidAmount.String())
	assert.Equal(t, "200.00", refreshed.RemainingAmount.String())
}

func TestMarkFullyPaid(t *testing.T) {
	svc, repo, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "750.00")

	_, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "250.00")})
	require.NoError(t, err)

	settled, err := svc.MarkFullyPaid(ctx, debt.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, enums.DebtStatusPaid, settled.Status)
	assert.Equal(t, "0.00", settled.RemainingAmount.String())

	count, err := repo.CountPayments(ctx, debt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.MarkFullyPaid(ctx, debt.ID, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentRejected))
}

func TestUpdateDebtPrincipalImmutableAfterPayment(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "100.00")

	newPrincipal := amount(t, "150.00")
	updated, err := svc.UpdateDebt(ctx, debt.ID, UpdateDebtInput{Principal: &newPrincipal})
	require.NoError(t, err)
	assert.Equal(t, "150.00", updated.Principal.String())
	assert.Equal(t, "150.00", updated.RemainingAmount.String())

	_, err = svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "50.00")})
	require.NoError(t, err)

	another := amount(t, "200.00")
	_, err = svc.UpdateDebt(ctx, debt.ID, UpdateDebtInput{Principal: &another})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeImmutablePrincipal))
}

func TestUpdatePaidDebtRejected(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "100.00")

	_, err := svc.MarkFullyPaid(ctx, debt.ID, nil)
	require.NoError(t, err)

	note := "late edit"
	_, err = svc.UpdateDebt(ctx, debt.ID, UpdateDebtInput{Description: &note})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestDeactivateDebtHidesIt(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "100.00")

	require.NoError(t, svc.DeactivateDebt(ctx, debt.ID))

	_, err := svc.GetDebt(ctx, debt.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "10.00")})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	page, err := svc.ListDebts(ctx, ListDebtsFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListDebtsInvertedRangeRejected(t *testing.T) {
	svc, _, _ := newLedger(t)

	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, -1, 0)
	_, err := svc.ListDebts(context.Background(), ListDebtsFilter{DueDateFrom: &from, DueDateTo: &to})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestListDebtsStatusFilter(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()

	first := createDebt(t, svc, "100.00")
	second := createDebt(t, svc, "200.00")
	_, err := svc.MarkFullyPaid(ctx, first.ID, nil)
	require.NoError(t, err)

	paid := enums.DebtStatusPaid
	page, err := svc.ListDebts(ctx, ListDebtsFilter{Status: &paid})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, first.ID, page.Items[0].ID)

	pending := enums.DebtStatusPending
	page, err = svc.ListDebts(ctx, ListDebtsFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, second.ID, page.Items[0].ID)
}

func TestListPaymentsMostRecentFirst(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()
	debt := createDebt(t, svc, "100.00")

	_, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "10.00")})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "20.00")})
	require.NoError(t, err)

	page, err := svc.ListPayments(ctx, debt.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "20.00", page.Items[0].Amount.String())
	assert.Equal(t, "10.00", page.Items[1].Amount.String())
}

func TestSweepOverdueStampsPendingOnly(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-48 * time.Hour)
	overdueDebt, err := svc.CreateDebt(ctx, CreateDebtInput{
		DebtorName: "late-payer",
		Principal:  amount(t, "100.00"),
		DueDate:    &past,
	})
	require.NoError(t, err)

	paidDebt, err := svc.CreateDebt(ctx, CreateDebtInput{
		DebtorName: "prompt-payer",
		Principal:  amount(t, "50.00"),
		DueDate:    &past,
	})
	require.NoError(t, err)
	_, err = svc.MarkFullyPaid(ctx, paidDebt.ID, nil)
	require.NoError(t, err)

	updated, err := svc.SweepOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	refreshed, err := svc.GetDebt(ctx, overdueDebt.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DebtStatusOverdue, refreshed.Status)

	stillPaid, err := svc.GetDebt(ctx, paidDebt.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DebtStatusPaid, stillPaid.Status)
}

func TestOverduePaymentsStillAccepted(t *testing.T) {
	svc, _, _ := newLedger(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-48 * time.Hour)
	debt, err := svc.CreateDebt(ctx, CreateDebtInput{
		DebtorName: "late-payer",
		Principal:  amount(t, "100.00"),
		DueDate:    &past,
	})
	require.NoError(t, err)

	_, err = svc.SweepOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)

	partial, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "40.00")})
	require.NoError(t, err)
	assert.Equal(t, enums.DebtStatusOverdue, partial.Debt.Status)

	final, err := svc.CreatePayment(ctx, CreatePaymentInput{DebtID: debt.ID, Amount: amount(t, "60.00")})
	require.NoError(t, err)
	assert.Equal(t, enums.DebtStatusPaid, final.Debt.Status)
}
