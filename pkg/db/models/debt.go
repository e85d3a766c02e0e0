package models

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/enums"
	"github.com/debttrack/debttrack-backend/pkg/money"
)

// Debt tracks an obligation from creation through settlement. The monetary
// columns always satisfy principal = paid_amount + remaining_amount.
type Debt struct {
	ID              int64              `gorm:"column:id;primaryKey;autoIncrement"`
	DebtorName      string             `gorm:"column:debtor_name;not null;index"`
	DebtorEmail     *string            `gorm:"column:debtor_email"`
	DebtorPhone     *string            `gorm:"column:debtor_phone"`
	Description     *string            `gorm:"column:description"`
	Principal       money.Amount       `gorm:"column:principal;type:numeric(15,2);not null"`
	PaidAmount      money.Amount       `gorm:"column:paid_amount;type:numeric(15,2);not null"`
	RemainingAmount money.Amount       `gorm:"column:remaining_amount;type:numeric(15,2);not null"`
	DueDate         *time.Time         `gorm:"column:due_date"`
	Status          enums.DebtStatus   `gorm:"column:status;not null;default:PENDING;index"`
	RecordStatus    enums.RecordStatus `gorm:"column:record_status;not null;default:ACTIVE"`
	CreditorID      *int64             `gorm:"column:creditor_id;index"`
	UserID          *int64             `gorm:"column:user_id;index"`
	Payments        []Payment          `gorm:"foreignKey:DebtID"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
