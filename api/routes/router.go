package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/debttrack/debttrack-backend/api/controllers"
	"github.com/debttrack/debttrack-backend/api/middleware"
	"github.com/debttrack/debttrack-backend/internal/auth"
	"github.com/debttrack/debttrack-backend/internal/creditors"
	"github.com/debttrack/debttrack-backend/internal/debts"
	"github.com/debttrack/debttrack-backend/internal/users"
	"github.com/debttrack/debttrack-backend/pkg/config"
	"github.com/debttrack/debttrack-backend/pkg/db"
	"github.com/debttrack/debttrack-backend/pkg/enums"
	"github.com/debttrack/debttrack-backend/pkg/logger"
	pkgredis "github.com/debttrack/debttrack-backend/pkg/redis"
)

var (
	statusPending = enums.DebtStatusPending
	statusPaid    = enums.DebtStatusPaid
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idemStore pkgredis.IdempotencyStore,
	authService auth.Service,
	usersService users.Service,
	debtsService debts.Service,
	creditorsService creditors.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(idemStore, cfg.Eventing.IdempotencyTTL, logg)).
			Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).
			Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, cfg.Eventing.IdempotencyTTL, logg))

		r.Route("/debts", func(r chi.Router) {
			r.Post("/", controllers.DebtCreate(debtsService, logg))
			r.Get("/", controllers.DebtList(debtsService, logg))
			r.Post("/filter", controllers.DebtFilter(debtsService, logg))
			r.Get("/{debtID}", controllers.DebtDetail(debtsService, logg))
			r.Patch("/{debtID}", controllers.DebtUpdate(debtsService, logg))
			r.Delete("/{debtID}", controllers.DebtDeactivate(debtsService, logg))
			r.Post("/{debtID}/payments", controllers.PaymentCreate(debtsService, logg))
			r.Get("/{debtID}/payments", controllers.PaymentList(debtsService, logg))
			r.Post("/{debtID}/mark-paid", controllers.DebtMarkPaid(debtsService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(usersService, logg))
			r.Get("/{userID}", controllers.UserDetail(usersService, logg))
			r.Patch("/{userID}", controllers.UserUpdate(usersService, logg))
			r.Delete("/{userID}", controllers.UserDeactivate(usersService, logg))

			r.Route("/{userID}/debts", func(r chi.Router) {
				r.Get("/", controllers.UserDebtList(debtsService, logg, nil))
				r.Get("/pending", controllers.UserDebtList(debtsService, logg, &statusPending))
				r.Get("/paid", controllers.UserDebtList(debtsService, logg, &statusPaid))
			})
		})

		r.Route("/creditors", func(r chi.Router) {
			r.Post("/", controllers.CreditorCreate(creditorsService, logg))
			r.Get("/", controllers.CreditorList(creditorsService, logg))
			r.Post("/filter", controllers.CreditorFilter(creditorsService, logg))
			r.Get("/{creditorID}", controllers.CreditorDetail(creditorsService, logg))
			r.Patch("/{creditorID}", controllers.CreditorUpdate(creditorsService, logg))
			r.Delete("/{creditorID}", controllers.CreditorDeactivate(creditorsService, logg))
		})
	})

	return r
}
