package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/debttrack/debttrack-backend/internal/debts"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	pkgerrors "github.com/debttrack/debttrack-backend/pkg/errors"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
)

type stubDebtsService struct {
	createDebt    func(ctx context.Context, input debts.CreateDebtInput) (*debts.DebtDTO, error)
	createPayment func(ctx context.Context, input debts.CreatePaymentInput) (*debts.CreatePaymentResult, error)
	listDebts     func(ctx context.Context, filter debts.ListDebtsFilter) (*debts.DebtPage, error)
	markPaid      func(ctx context.Context, debtID int64, recordedBy *int64) (*debts.DebtDTO, error)
}

func (s *stubDebtsService) CreateDebt(ctx context.Context, input debts.CreateDebtInput) (*debts.DebtDTO, error) {
	if s.createDebt != nil {
		return s.createDebt(ctx, input)
	}
	return &debts.DebtDTO{ID: 1}, nil
}

func (s *stubDebtsService) GetDebt(ctx context.Context, id int64) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: id}, nil
}

func (s *stubDebtsService) UpdateDebt(ctx context.Context, id int64, input debts.UpdateDebtInput) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: id}, nil
}

func (s *stubDebtsService) CreatePayment(ctx context.Context, input debts.CreatePaymentInput) (*debts.CreatePaymentResult, error) {
	if s.createPayment != nil {
		return s.createPayment(ctx, input)
	}
	return &debts.CreatePaymentResult{}, nil
}

func (s *stubDebtsService) MarkFullyPaid(ctx context.Context, debtID int64, recordedBy *int64) (*debts.DebtDTO, error) {
	if s.markPaid != nil {
		return s.markPaid(ctx, debtID, recordedBy)
	}
	return &debts.DebtDTO{ID: debtID, Status: enums.DebtStatusPaid}, nil
}

func (s *stubDebtsService) ListPayments(ctx context.Context, debtID int64, params pagination.Params) (*debts.PaymentPage, error) {
	return &debts.PaymentPage{}, nil
}

func (s *stubDebtsService) ListDebts(ctx context.Context, filter debts.ListDebtsFilter) (*debts.DebtPage, error) {
	if s.listDebts != nil {
		return s.listDebts(ctx, filter)
	}
	return &debts.DebtPage{}, nil
}

func (s *stubDebtsService) DeactivateDebt(ctx context.Context, id int64) error { return nil }

func (s *stubDebtsService) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func routedRequest(method, target string, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestPaymentCreateReturns201(t *testing.T) {
	var captured debts.CreatePaymentInput
	svc := &stubDebtsService{
		createPayment: func(_ context.Context, input debts.CreatePaymentInput) (*debts.CreatePaymentResult, error) {
			captured = input
			return &debts.CreatePaymentResult{}, nil
		},
	}

	req := routedRequest(http.MethodPost, "/api/v1/debts/7/payments", `{"amount":"50.00"}`, map[string]string{"debtID": "7"})
	resp := httptest.NewRecorder()
	PaymentCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.DebtID != 7 {
		t.Fatalf("expected debt id from path, got %d", captured.DebtID)
	}
	if captured.Amount.String() != "50.00" {
		t.Fatalf("expected amount 50.00, got %s", captured.Amount.String())
	}
}

func TestPaymentCreateMapsRejection(t *testing.T) {
	svc := &stubDebtsService{
		createPayment: func(_ context.Context, _ debts.CreatePaymentInput) (*debts.CreatePaymentResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodePaymentRejected, "payment exceeds remaining balance")
		},
	}

	req := routedRequest(http.MethodPost, "/api/v1/debts/7/payments", `{"amount":"5000.00"}`, map[string]string{"debtID": "7"})
	resp := httptest.NewRecorder()
	PaymentCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error payload: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodePaymentRejected) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if payload.Error.Message != "payment exceeds remaining balance" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}

func TestPaymentCreateRejectsBadDebtID(t *testing.T) {
	svc := &stubDebtsService{}
	req := routedRequest(http.MethodPost, "/api/v1/debts/abc/payments", `{"amount":"50.00"}`, map[string]string{"debtID": "abc"})
	resp := httptest.NewRecorder()
	PaymentCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDebtListParsesFilters(t *testing.T) {
	var captured debts.ListDebtsFilter
	svc := &stubDebtsService{
		listDebts: func(_ context.Context, filter debts.ListDebtsFilter) (*debts.DebtPage, error) {
			captured = filter
			return &debts.DebtPage{}, nil
		},
	}

	target := "/api/v1/debts?status=PENDING&creditor_id=3&debtor_name=ana&limit=10&due_date_from=2026-01-01T00:00:00Z"
	req := routedRequest(http.MethodGet, target, "", nil)
	resp := httptest.NewRecorder()
	DebtList(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Status == nil || *captured.Status != enums.DebtStatusPending {
		t.Fatalf("expected PENDING status filter, got %v", captured.Status)
	}
	if captured.CreditorID == nil || *captured.CreditorID != 3 {
		t.Fatalf("expected creditor filter 3, got %v", captured.CreditorID)
	}
	if captured.DebtorName == nil || *captured.DebtorName != "ana" {
		t.Fatalf("expected debtor name filter, got %v", captured.DebtorName)
	}
	if captured.Pagination.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", captured.Pagination.Limit)
	}
	if captured.DueDateFrom == nil {
		t.Fatalf("expected due date lower bound")
	}
}

func TestDebtListRejectsUnknownStatus(t *testing.T) {
	svc := &stubDebtsService{}
	req := routedRequest(http.MethodGet, "/api/v1/debts?status=BOGUS", "", nil)
	resp := httptest.NewRecorder()
	DebtList(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDebtMarkPaidUsesPathID(t *testing.T) {
	var settledID int64
	svc := &stubDebtsService{
		markPaid: func(_ context.Context, debtID int64, _ *int64) (*debts.DebtDTO, error) {
			settledID = debtID
			return &debts.DebtDTO{ID: debtID, Status: enums.DebtStatusPaid}, nil
		},
	}

	req := routedRequest(http.MethodPost, "/api/v1/debts/9/mark-paid", "", map[string]string{"debtID": "9"})
	resp := httptest.NewRecorder()
	DebtMarkPaid(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if settledID != 9 {
		t.Fatalf("expected settlement of debt 9, got %d", settledID)
	}
}

func TestDebtFilterParsesBody(t *testing.T) {
	var captured debts.ListDebtsFilter
	svc := &stubDebtsService{
		listDebts: func(_ context.Context, filter debts.ListDebtsFilter) (*debts.DebtPage, error) {
			captured = filter
			return &debts.DebtPage{}, nil
		},
	}

	body := `{"status":"PENDING","user_id":5,"limit":10}`
	req := routedRequest(http.MethodPost, "/api/v1/debts/filter", body, nil)
	resp := httptest.NewRecorder()
	DebtFilter(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Status == nil || *captured.Status != enums.DebtStatusPending {
		t.Fatalf("expected PENDING status filter, got %v", captured.Status)
	}
	if captured.UserID == nil || *captured.UserID != 5 {
		t.Fatalf("expected user filter 5, got %v", captured.UserID)
	}
	if captured.Pagination.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", captured.Pagination.Limit)
	}
}

func TestDebtFilterRejectsUnknownStatus(t *testing.T) {
	svc := &stubDebtsService{}
	req := routedRequest(http.MethodPost, "/api/v1/debts/filter", `{"status":"BOGUS"}`, nil)
	resp := httptest.NewRecorder()
	DebtFilter(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUserDebtListPinsStatus(t *testing.T) {
	var captured debts.ListDebtsFilter
	svc := &stubDebtsService{
		listDebts: func(_ context.Context, filter debts.ListDebtsFilter) (*debts.DebtPage, error) {
			captured = filter
			return &debts.DebtPage{}, nil
		},
	}

	pending := enums.DebtStatusPending
	req := routedRequest(http.MethodGet, "/api/v1/users/5/debts/pending", "", map[string]string{"userID": "5"})
	resp := httptest.NewRecorder()
	UserDebtList(svc, nil, &pending)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.UserID == nil || *captured.UserID != 5 {
		t.Fatalf("expected user filter 5, got %v", captured.UserID)
	}
	if captured.Status == nil || *captured.Status != enums.DebtStatusPending {
		t.Fatalf("expected pinned PENDING status, got %v", captured.Status)
	}
}

func TestDebtCreateRejectsUnknownFields(t *testing.T) {
	svc := &stubDebtsService{}
	req := routedRequest(http.MethodPost, "/api/v1/debts", `{"debtor_name":"ana","principal":"100.00","bogus":true}`, nil)
	resp := httptest.NewRecorder()
	DebtCreate(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
