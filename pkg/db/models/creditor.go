package models

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/enums"
)

// Creditor is a party owed money, identified by a unique legal document.
type Creditor struct {
	ID           int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string             `gorm:"column:name;not null"`
	Document     string             `gorm:"column:document;not null;uniqueIndex"`
	Email        *string            `gorm:"column:email"`
	Phone        *string            `gorm:"column:phone"`
	Address      *string            `gorm:"column:address"`
	RecordStatus enums.RecordStatus `gorm:"column:record_status;not null;default:ACTIVE"`
	UserID       *int64             `gorm:"column:user_id;index"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
