package models

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/enums"
)

// User represents an account allowed to record debts and payments.
type User struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string           `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Email        *string          `gorm:"column:email"`
	FullName     *string          `gorm:"column:full_name"`
	Status       enums.UserStatus `gorm:"column:status;not null;default:ACTIVE"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
