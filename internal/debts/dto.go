package debts

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/money"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
)

// DebtDTO is the transport shape for debt records.
type DebtDTO struct {
	ID              int64            `json:"id"`
	DebtorName      string           `json:"debtor_name"`
	DebtorEmail     *string          `json:"debtor_email,omitempty"`
	DebtorPhone     *string          `json:"debtor_phone,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Principal       money.Amount     `json:"principal"`
	PaidAmount      money.Amount     `json:"paid_amount"`
	RemainingAmount money.Amount     `json:"remaining_amount"`
	DueDate         *time.Time       `json:"due_date,omitempty"`
	Status          enums.DebtStatus `json:"status"`
	CreditorID      *int64           `json:"creditor_id,omitempty"`
	UserID          *int64           `json:"user_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// PaymentDTO is the transport shape for payment records.
type PaymentDTO struct {
	ID          int64        `json:"id"`
	DebtID      int64        `json:"debt_id"`
	Amount      money.Amount `json:"amount"`
	Description *string      `json:"description,omitempty"`
	UserID      *int64       `json:"user_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CreateDebtInput holds the fields accepted when registering a debt.
type CreateDebtInput struct {
	DebtorName  string       `json:"debtor_name" validate:"required,max=128"`
	DebtorEmail *string      `json:"debtor_email,omitempty" validate:"omitempty,email"`
	DebtorPhone *string      `json:"debtor_phone,omitempty" validate:"omitempty,max=32"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=512"`
	Principal   money.Amount `json:"principal"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreditorID  *int64       `json:"creditor_id,omitempty"`
	UserID      *int64       `json:"-"`
}

// UpdateDebtInput holds the mutable debt fields. Principal edits are only
// accepted while the debt has no payments.
type UpdateDebtInput struct {
	DebtorName  *string       `json:"debtor_name,omitempty" validate:"omitempty,max=128"`
	DebtorEmail *string       `json:"debtor_email,omitempty" validate:"omitempty,email"`
	DebtorPhone *string       `json:"debtor_phone,omitempty" validate:"omitempty,max=32"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=512"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Principal   *money.Amount `json:"principal,omitempty"`
}

// CreatePaymentInput captures one application of funds against a debt.
type CreatePaymentInput struct {
	DebtID      int64        `json:"-"`
	Amount      money.Amount `json:"amount"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=512"`
	UserID      *int64       `json:"-"`
}

// CreatePaymentResult bundles the created payment with the refreshed debt.
type CreatePaymentResult struct {
	Payment PaymentDTO `json:"payment"`
	Debt    DebtDTO    `json:"debt"`
}

// ListDebtsFilter narrows the query-layer results. One-sided date ranges are
// open-ended on the missing side.
type ListDebtsFilter struct {
	UserID      *int64
	CreditorID  *int64
	Status      *enums.DebtStatus
	DebtorName  *string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Pagination  pagination.Params
}

// FilterDebtsInput is the JSON body accepted by the structured filter
// endpoint. It mirrors the query-string filters of the list endpoint.
type FilterDebtsInput struct {
	UserID      *int64     `json:"user_id,omitempty"`
	CreditorID  *int64     `json:"creditor_id,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DebtorName  *string    `json:"debtor_name,omitempty"`
	DueDateFrom *time.Time `json:"due_date_from,omitempty"`
	DueDateTo   *time.Time `json:"due_date_to,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Cursor      string     `json:"cursor,omitempty"`
}

// ToFilter converts the body into the internal filter shape.
func (f FilterDebtsInput) ToFilter() (ListDebtsFilter, error) {
	filter := ListDebtsFilter{
		UserID:      f.UserID,
		CreditorID:  f.CreditorID,
		DebtorName:  f.DebtorName,
		DueDateFrom: f.DueDateFrom,
		DueDateTo:   f.DueDateTo,
		Pagination: pagination.Params{
			Limit:  pagination.NormalizeLimit(f.Limit),
			Cursor: f.Cursor,
		},
	}
	if f.Status != nil {
		status, err := enums.ParseDebtStatus(*f.Status)
		if err != nil {
			return ListDebtsFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	return filter, nil
}

// DebtPage is one page of debts plus the cursor for the next one.
type DebtPage struct {
	Items      []DebtDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

// PaymentPage is one page of payments plus the cursor for the next one.
type PaymentPage struct {
	Items      []PaymentDTO `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func FromModel(d *models.Debt) *DebtDTO {
	if d == nil {
		return nil
	}
	return &DebtDTO{
		ID:              d.ID,
		DebtorName:      d.DebtorName,
		DebtorEmail:     d.DebtorEmail,
		DebtorPhone:     d.DebtorPhone,
		Description:     d.Description,
		Principal:       d.Principal,
		PaidAmount:      d.PaidAmount,
		RemainingAmount: d.RemainingAmount,
		DueDate:         d.DueDate,
		Status:          d.Status,
		CreditorID:      d.CreditorID,
		UserID:          d.UserID,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func PaymentFromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:          p.ID,
		DebtID:      p.DebtID,
		Amount:      p.Amount,
		Description: p.Description,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
	}
}
