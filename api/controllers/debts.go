package controllers

import (
	"net/http"
	"strings"

	"github.com/debttrack/debttrack-backend/api/responses"
	"github.com/debttrack/debttrack-backend/api/validators"
	"github.com/debttrack/debttrack-backend/internal/debts"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/logger"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
)

func DebtCreate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		var body debts.CreateDebtInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.UserID = actorID(r)

		created, err := svc.CreateDebt(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func DebtDetail(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debt, err := svc.GetDebt(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debt)
	}
}

func DebtUpdate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body debts.UpdateDebtInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateDebt(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DebtList(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		filter, err := buildDebtFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListDebts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// DebtFilter mirrors DebtList for clients that post structured filters.
func DebtFilter(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		var body debts.FilterDebtsInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := body.ToFilter()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListDebts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// UserDebtList returns debts owned by the user in the path, optionally pinned
// to a single status.
func UserDebtList(svc debts.Service, logg *logger.Logger, status *enums.DebtStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		userID, err := pathID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := debts.ListDebtsFilter{
			UserID:     &userID,
			Status:     status,
			Pagination: params,
		}
		page, err := svc.ListDebts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func DebtDeactivate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateDebt(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

func PaymentCreate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body debts.CreatePaymentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.DebtID = id
		body.UserID = actorID(r)

		result, err := svc.CreatePayment(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func PaymentList(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPayments(r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// DebtMarkPaid clears the remaining balance with a single settlement payment.
func DebtMarkPaid(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "debts service unavailable"))
			return
		}

		id, err := pathID(r, "debtID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settled, err := svc.MarkFullyPaid(r.Context(), id, actorID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, settled)
	}
}

func buildDebtFilter(r *http.Request) (debts.ListDebtsFilter, error) {
	var filter debts.ListDebtsFilter

	params, err := pageParams(r)
	if err != nil {
		return filter, err
	}
	filter.Pagination = params

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseDebtStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").WithDetails(map[string]any{"field": "status"})
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("debtor_name")); raw != "" {
		filter.DebtorName = &raw
	}

	creditorID, err := validators.ParseQueryInt64(r, "creditor_id")
	if err != nil {
		return filter, err
	}
	filter.CreditorID = creditorID

	userID, err := validators.ParseQueryInt64(r, "user_id")
	if err != nil {
		return filter, err
	}
	filter.UserID = userID

	from, err := validators.ParseQueryTime(r, "due_date_from")
	if err != nil {
		return filter, err
	}
	filter.DueDateFrom = from

	to, err := validators.ParseQueryTime(r, "due_date_to")
	if err != nil {
		return filter, err
	}
	filter.DueDateTo = to

	return filter, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
