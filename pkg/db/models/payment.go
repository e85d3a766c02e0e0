package models

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/money"
)

// Payment is an immutable record of value applied against a debt.
type Payment struct {
	ID          int64        `gorm:"column:id;primaryKey;autoIncrement"`
	DebtID      int64        `gorm:"column:debt_id;not null;index"`
	Amount      money.Amount `gorm:"column:amount;type:numeric(15,2);not null"`
	Description *string      `gorm:"column:description"`
	UserID      *int64       `gorm:"column:user_id"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
}
