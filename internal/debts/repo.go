package debts

import (
	"context"
	"time"

	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for debts and their payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, debt *models.Debt) error
	FindByID(ctx context.Context, id int64) (*models.Debt, error)
	// FindByIDForUpdate loads the debt under a row lock. It must only be
	// called from inside a transaction.
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Debt, error)
	HasPendingForDebtor(ctx context.Context, debtorName string) (bool, error)
	CountPayments(ctx context.Context, debtID int64) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, debtID int64, limit int, cursor *pagination.Cursor) ([]models.Payment, error)
	List(ctx context.Context, filter ListDebtsFilter, limit int, cursor *pagination.Cursor) ([]models.Debt, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Debt, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a debts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, debt *models.Debt) error {
	return r.db.WithContext(ctx).Create(debt).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Debt, error) {
	var debt models.Debt
	err := r.db.WithContext(ctx).
		Where("id = ? AND record_status = ?", id, enums.RecordStatusActive).
		First(&debt).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Debt, error) {
	var debt models.Debt
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND record_status = ?", id, enums.RecordStatusActive).
		First(&debt).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *repository) HasPendingForDebtor(ctx context.Context, debtorName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("debtor_name = ? AND status = ? AND record_status = ?",
			debtorName, enums.DebtStatusPending, enums.RecordStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) CountPayments(ctx context.Context, debtID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("debt_id = ?", debtID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Debt{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, debtID int64, limit int, cursor *pagination.Cursor) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).
		Where("debt_id = ?", debtID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) List(ctx context.Context, filter ListDebtsFilter, limit int, cursor *pagination.Cursor) ([]models.Debt, error) {
	query := r.db.WithContext(ctx).
		Where("record_status = ?", enums.RecordStatusActive).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CreditorID != nil {
		query = query.Where("creditor_id = ?", *filter.CreditorID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DebtorName != nil {
		query = query.Where("debtor_name = ?", *filter.DebtorName)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("due_date <= ?", *filter.DueDateTo)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var debtsList []models.Debt
	if err := query.Find(&debtsList).Error; err != nil {
		return nil, err
	}
	return debtsList, nil
}

func (r *repository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Debt, error) {
	var debtsList []models.Debt
	err := r.db.WithContext(ctx).
		Where("status = ? AND record_status = ? AND due_date IS NOT NULL AND due_date < ?",
			enums.DebtStatusPending, enums.RecordStatusActive, cutoff).
		Find(&debtsList).Error
	if err != nil {
		return nil, err
	}
	return debtsList, nil
}
