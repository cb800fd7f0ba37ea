package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-payroll/internal/config"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(app config.AppConfig, JWTService jwt.Service, authorizer user.Authorizer, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  app.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	can := func(action user.Action, resource user.Resource) func(http.Handler) http.Handler {
		return middleware.RequireCapability(authorizer, action, resource)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireCompany)

			r.Route("/payrolls", func(r chi.Router) {
				r.With(can(user.ActionView, user.ResourcePayroll)).Get("/", payrollHandler.ListPayrolls)
				r.With(can(user.ActionCreate, user.ResourcePayroll)).Post("/", payrollHandler.CreatePayroll)

				r.Route("/{id}", func(r chi.Router) {
					r.With(can(user.ActionView, user.ResourcePayroll)).Get("/", payrollHandler.GetPayroll)
					r.With(can(user.ActionDelete, user.ResourcePayroll)).Delete("/", payrollHandler.DeletePayroll)
					r.With(can(user.ActionRun, user.ResourcePayroll)).Post("/run", payrollHandler.RunBatch)
					r.With(can(user.ActionPay, user.ResourcePayroll)).Post("/pay", payrollHandler.MarkPayrollPaid)

					r.With(can(user.ActionView, user.ResourcePayrollEntry)).Get("/entries", payrollHandler.ListEntries)
					r.With(can(user.ActionCompute, user.ResourcePayrollEntry)).Post("/entries", payrollHandler.ComputeEntry)
				})
			})

			r.Route("/payroll-entries/{id}", func(r chi.Router) {
				r.With(can(user.ActionView, user.ResourcePayrollEntry)).Get("/", payrollHandler.GetEntry)
				r.With(can(user.ActionPay, user.ResourcePayrollEntry)).Post("/pay", payrollHandler.MarkEntryPaid)
			})
		})
	})
	return r
}
