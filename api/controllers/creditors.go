package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/debttrack/debttrack-backend/api/middleware"
	"github.com/debttrack/debttrack-backend/api/responses"
	"github.com/debttrack/debttrack-backend/api/validators"
	"github.com/debttrack/debttrack-backend/internal/creditors"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/logger"
)

func CreditorCreate(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		var body creditors.CreateCreditorInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.UserID = actorID(r)

		created, err := svc.Create(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func CreditorDetail(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		id, err := pathID(r, "creditorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creditor, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, creditor)
	}
}

func CreditorList(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		var filter creditors.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("name")); raw != "" {
			filter.Name = &raw
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("document")); raw != "" {
			filter.Document = &raw
		}
		userID, err := validators.ParseQueryInt64(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.UserID = userID

		list, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CreditorFilter mirrors CreditorList for clients that post structured filters.
func CreditorFilter(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		var body creditors.FilterCreditorsInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), body.ToFilter())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CreditorUpdate(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		id, err := pathID(r, "creditorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body creditors.UpdateCreditorInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func CreditorDeactivate(svc creditors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "creditors service unavailable"))
			return
		}

		id, err := pathID(r, "creditorID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// pathID parses a positive int64 route parameter.
func pathID(r *http.Request, param string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "id must be a positive integer")
	}
	return id, nil
}

// actorID returns the authenticated user id as a nullable foreign key.
func actorID(r *http.Request) *int64 {
	id := middleware.UserIDFromContext(r.Context())
	if id <= 0 {
		return nil
	}
	return &id
}
