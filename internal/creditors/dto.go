package creditors

import (
	"time"

	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
)

// CreditorDTO is the transport shape for creditor records.
type CreditorDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCreditorInput holds the fields accepted when registering a creditor.
type CreateCreditorInput struct {
	Name     string  `json:"name" validate:"required,max=128"`
	Document string  `json:"document" validate:"required,max=64"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=256"`
	UserID   *int64  `json:"-"`
}

// FilterCreditorsInput is the JSON body accepted by the structured filter
// endpoint. It mirrors the query-string filters of the list endpoint.
type FilterCreditorsInput struct {
	Name     *string `json:"name,omitempty"`
	Document *string `json:"document,omitempty"`
	UserID   *int64  `json:"user_id,omitempty"`
}

// ToFilter converts the body into the internal filter shape.
func (f FilterCreditorsInput) ToFilter() ListFilter {
	return ListFilter{
		Name:     f.Name,
		Document: f.Document,
		UserID:   f.UserID,
	}
}

// UpdateCreditorInput holds the mutable creditor fields.
type UpdateCreditorInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=128"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=256"`
}

func FromModel(c *models.Creditor) *CreditorDTO {
	if c == nil {
		return nil
	}
	return &CreditorDTO{
		ID:        c.ID,
		Name:      c.Name,
		Document:  c.Document,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (in CreateCreditorInput) ToModel() *models.Creditor {
	return &models.Creditor{
		Name:         in.Name,
		Document:     in.Document,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		RecordStatus: enums.RecordStatusActive,
		UserID:       in.UserID,
	}
}
