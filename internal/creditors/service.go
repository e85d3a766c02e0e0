package creditors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/debttrack/debttrack-backend/pkg/db"
	"github.com/debttrack/debttrack-backend/pkg/db/models"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service defines creditor operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateCreditorInput) (*CreditorDTO, error)
	Get(ctx context.Context, id int64) (*CreditorDTO, error)
	List(ctx context.Context, filter ListFilter) ([]CreditorDTO, error)
	Update(ctx context.Context, id int64, input UpdateCreditorInput) (*CreditorDTO, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

// NewService wires a creditors service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("creditors repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCreditorInput) (*CreditorDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Document = strings.TrimSpace(input.Document)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creditor name required")
	}
	if input.Document == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creditor document required")
	}

	creditor := input.ToModel()
	if err := s.repo.Create(ctx, creditor); err != nil {
		if db.IsUniqueViolation(err, "creditors_document_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "creditor with this document already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create creditor")
	}
	return FromModel(creditor), nil
}

func (s *service) Get(ctx context.Context, id int64) (*CreditorDTO, error) {
	creditor, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(creditor), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]CreditorDTO, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list creditors")
	}
	out := make([]CreditorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateCreditorInput) (*CreditorDTO, error) {
	creditor, err := s.findActive(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "creditor name cannot be empty")
		}
		updates["name"] = name
		creditor.Name = name
	}
	if input.Email != nil {
		updates["email"] = input.Email
		creditor.Email = input.Email
	}
	if input.Phone != nil {
		updates["phone"] = input.Phone
		creditor.Phone = input.Phone
	}
	if input.Address != nil {
		updates["address"] = input.Address
		creditor.Address = input.Address
	}
	if len(updates) == 0 {
		return FromModel(creditor), nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update creditor")
	}
	return FromModel(creditor), nil
}

func (s *service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.findActive(ctx, id); err != nil {
		return err
	}
	updates := map[string]any{"record_status": enums.RecordStatusInactive}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate creditor")
	}
	return nil
}

func (s *service) findActive(ctx context.Context, id int64) (*models.Creditor, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creditor id required")
	}
	creditor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "creditor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load creditor")
	}
	return creditor, nil
}
