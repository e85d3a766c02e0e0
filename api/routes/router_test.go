package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/debttrack/debttrack-backend/internal/auth"
	"github.com/debttrack/debttrack-backend/internal/creditors"
	"github.com/debttrack/debttrack-backend/internal/debts"
	"github.com/debttrack/debttrack-backend/internal/users"
	pkgAuth "github.com/debttrack/debttrack-backend/pkg/auth"
	"github.com/debttrack/debttrack-backend/pkg/config"
	"github.com/debttrack/debttrack-backend/pkg/logger"
	"github.com/debttrack/debttrack-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{AccessToken: "token"}, nil
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{AccessToken: "token"}, nil
}

func (stubAuthService) Me(_ context.Context, userID int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID, Username: "collector"}, nil
}

type stubUsersService struct{}

func (stubUsersService) List(context.Context) ([]users.UserDTO, error) {
	return []users.UserDTO{{ID: 7, Username: "collector"}}, nil
}

func (stubUsersService) Get(_ context.Context, id int64) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id, Username: "collector"}, nil
}

func (stubUsersService) Update(_ context.Context, id int64, _ users.UpdateUserInput) (*users.UserDTO, error) {
	return &users.UserDTO{ID: id, Username: "collector"}, nil
}

func (stubUsersService) Deactivate(context.Context, int64) error { return nil }

type stubDebtsService struct{}

func (stubDebtsService) CreateDebt(context.Context, debts.CreateDebtInput) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: 1}, nil
}

func (stubDebtsService) GetDebt(_ context.Context, id int64) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: id}, nil
}

func (stubDebtsService) UpdateDebt(_ context.Context, id int64, _ debts.UpdateDebtInput) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: id}, nil
}

func (stubDebtsService) CreatePayment(context.Context, debts.CreatePaymentInput) (*debts.CreatePaymentResult, error) {
	return &debts.CreatePaymentResult{}, nil
}

func (stubDebtsService) MarkFullyPaid(_ context.Context, debtID int64, _ *int64) (*debts.DebtDTO, error) {
	return &debts.DebtDTO{ID: debtID}, nil
}

func (stubDebtsService) ListPayments(context.Context, int64, pagination.Params) (*debts.PaymentPage, error) {
	return &debts.PaymentPage{}, nil
}

func (stubDebtsService) ListDebts(context.Context, debts.ListDebtsFilter) (*debts.DebtPage, error) {
	return &debts.DebtPage{}, nil
}

func (stubDebtsService) DeactivateDebt(context.Context, int64) error { return nil }

func (stubDebtsService) SweepOverdue(context.Context, time.Time) (int, error) { return 0, nil }

type stubCreditorsService struct{}

func (stubCreditorsService) Create(context.Context, creditors.CreateCreditorInput) (*creditors.CreditorDTO, error) {
	return &creditors.CreditorDTO{ID: 1}, nil
}

func (stubCreditorsService) Get(_ context.Context, id int64) (*creditors.CreditorDTO, error) {
	return &creditors.CreditorDTO{ID: id}, nil
}

func (stubCreditorsService) List(context.Context, creditors.ListFilter) ([]creditors.CreditorDTO, error) {
	return nil, nil
}

func (stubCreditorsService) Update(_ context.Context, id int64, _ creditors.UpdateCreditorInput) (*creditors.CreditorDTO, error) {
	return &creditors.CreditorDTO{ID: id}, nil
}

func (stubCreditorsService) Deactivate(context.Context, int64) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "debttrack",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		nil, // idempotency store disabled in routing tests
		stubAuthService{},
		stubUsersService{},
		stubDebtsService{},
		stubCreditorsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   7,
		Username: "collector",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDebtsRequireJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/debts", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestDebtsSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/debts", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCreditorsRequireJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/creditors", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestLoginSucceeds(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"username":"collector","password":"super-secret-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthMeRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUserDebtViewsRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	for _, path := range []string{
		"/api/v1/users/7/debts",
		"/api/v1/users/7/debts/pending",
		"/api/v1/users/7/debts/paid",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d: %s", path, resp.Code, resp.Body.String())
		}
	}
}

func TestUserRoutes(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := buildToken(t, cfg)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/users", ""},
		{http.MethodGet, "/api/v1/users/7", ""},
		{http.MethodPatch, "/api/v1/users/7", `{"full_name":"Maria Silva"}`},
		{http.MethodDelete, "/api/v1/users/7", ""},
	}
	for _, tc := range cases {
		var reader io.Reader
		if tc.body != "" {
			reader = strings.NewReader(tc.body)
		}
		req := httptest.NewRequest(tc.method, tc.path, reader)
		req.Header.Set("Authorization", "Bearer "+token)
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s %s got %d: %s", tc.method, tc.path, resp.Code, resp.Body.String())
		}
	}
}

func TestCreditorFilterRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"user_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/creditors/filter", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPaymentCreateRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"amount":"25.00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/debts/3/payments", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}
