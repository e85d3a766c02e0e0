package creditors

import (
	"context"
	"strings"

	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	"gorm.io/gorm"
)

// ListFilter narrows creditor listings.
type ListFilter struct {
	Name     *string
	Document *string
	UserID   *int64
}

// Repository manages persistence for creditors.
type Repository interface {
	Create(ctx context.Context, creditor *models.Creditor) error
	FindByID(ctx context.Context, id int64) (*models.Creditor, error)
	List(ctx context.Context, filter ListFilter) ([]models.Creditor, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a creditors repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, creditor *models.Creditor) error {
	return r.db.WithContext(ctx).Create(creditor).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Creditor, error) {
	var creditor models.Creditor
	err := r.db.WithContext(ctx).
		Where("id = ? AND record_status = ?", id, enums.RecordStatusActive).
		First(&creditor).Error
	if err != nil {
		return nil, err
	}
	return &creditor, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Creditor, error) {
	query := r.db.WithContext(ctx).
		Where("record_status = ?", enums.RecordStatusActive).
		Order("name ASC")
	if filter.Name != nil {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*filter.Name)+"%")
	}
	if filter.Document != nil {
		query = query.Where("document = ?", *filter.Document)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var creditors []models.Creditor
	if err := query.Find(&creditors).Error; err != nil {
		return nil, err
	}
	return creditors, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Creditor{}).
		Where("id = ?", id).
		Updates(updates).Error
}
