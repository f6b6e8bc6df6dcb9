// Package portal собирает HTTP-сервер портала MedLink: маршруты, сессии и клиента backend.
package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/appointments/book"
	appointmentslist "github.com/magabrotheeeer/medlink-portal/internal/http/handlers/appointments/list"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/appointments/status"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/availability/add"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/availability/remove"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/dashboard/redirect"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/dashboard/stream"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/dashboard/view"
	doctorslist "github.com/magabrotheeeer/medlink-portal/internal/http/handlers/doctors/list"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/doctors/read"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/medlink-portal/internal/http/handlers/landing"
	profileread "github.com/magabrotheeeer/medlink-portal/internal/http/handlers/profile/read"
	profileupdate "github.com/magabrotheeeer/medlink-portal/internal/http/handlers/profile/update"
	"github.com/magabrotheeeer/medlink-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medlink-portal/internal/http/viewrouter"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Caller покрывает все, что обработчики ждут от backend
var (
	_ login.Service            = (*medlinkapi.Caller)(nil)
	_ register.Service         = (*medlinkapi.Caller)(nil)
	_ doctorslist.Service      = (*medlinkapi.Caller)(nil)
	_ read.Service             = (*medlinkapi.Caller)(nil)
	_ book.Service             = (*medlinkapi.Caller)(nil)
	_ appointmentslist.Service = (*medlinkapi.Caller)(nil)
	_ redirect.Service         = (*medlinkapi.Caller)(nil)
	_ profileread.Service      = (*medlinkapi.Caller)(nil)
	_ profileupdate.Service    = (*medlinkapi.Caller)(nil)
	_ dashboard.Backend        = (*medlinkapi.Caller)(nil)
)

// Deps зависимости маршрутов
type Deps struct {
	Client   *medlinkapi.Client
	Boards   *dashboard.Service
	Store    session.Store
	Cookie   session.CookieOptions
	Limiter  *middlewarectx.Limiter
	Registry *prometheus.Registry
	Pingers  map[string]health.Pinger
}

// bind привязывает клиента backend к сессии запроса и странице, с которой пришел запрос
func bind[S any](client *medlinkapi.Client) func(*http.Request) S {
	return func(r *http.Request) S {
		return any(client.For(session.FromContext(r.Context()), r.URL.Path)).(S)
	}
}

// RegisterRoutes регистрирует все маршруты портала.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		session.Middleware(d.Store, d.Cookie),
	)

	backend := bind[dashboard.Backend](d.Client)

	// Открытые страницы
	viewrouter.Handle(r, logger, http.MethodGet, routes.Landing, landing.New(logger))
	viewrouter.Handle(r, logger, http.MethodGet, routes.Home, landing.New(logger))
	viewrouter.Handle(r, logger, http.MethodGet, routes.Doctors, doctorslist.New(logger, bind[doctorslist.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodGet, routes.Doctors+"/{id}", read.New(logger, bind[read.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodPost, routes.Logout, logout.New(logger, d.Boards))

	// Вход и регистрация с ограничением частоты
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))
		loginBind := bind[login.Service](d.Client)
		registerBind := bind[register.Service](d.Client)
		viewrouter.Handle(r, logger, http.MethodPost, routes.Login, login.New(logger, models.RolePatient, loginBind))
		viewrouter.Handle(r, logger, http.MethodPost, routes.DoctorLogin, login.New(logger, models.RoleDoctor, loginBind))
		viewrouter.Handle(r, logger, http.MethodPost, routes.Register, register.New(logger, models.RolePatient, registerBind))
		viewrouter.Handle(r, logger, http.MethodPost, routes.DoctorRegister, register.New(logger, models.RoleDoctor, registerBind))
	})

	// Пациент
	viewrouter.Handle(r, logger, http.MethodPost, routes.Booking+"/{doctorId}", book.New(logger, bind[book.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodGet, routes.Appointments,
		appointmentslist.New(logger, d.Boards.Now, bind[appointmentslist.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodGet, routes.PatientDashboard, view.New(logger, models.RolePatient, d.Boards, backend))
	viewrouter.Handle(r, logger, http.MethodGet, routes.PatientDashboard+"/stream", stream.New(logger, models.RolePatient, d.Boards, backend))

	// Врач
	viewrouter.Handle(r, logger, http.MethodGet, routes.DoctorDashboard, view.New(logger, models.RoleDoctor, d.Boards, backend))
	viewrouter.Handle(r, logger, http.MethodGet, routes.DoctorDashboard+"/stream", stream.New(logger, models.RoleDoctor, d.Boards, backend))
	viewrouter.Handle(r, logger, http.MethodPost, routes.DoctorDashboard+"/availability", add.New(logger, d.Boards, backend))
	viewrouter.Handle(r, logger, http.MethodDelete, routes.DoctorDashboard+"/availability/{id}", remove.New(logger, d.Boards, backend))

	// Любая роль
	viewrouter.Handle(r, logger, http.MethodGet, routes.Dashboard, redirect.New(logger, bind[redirect.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodPut, routes.Appointments+"/{id}/status", status.New(logger, d.Boards, backend))
	viewrouter.Handle(r, logger, http.MethodGet, routes.Profile, profileread.New(logger, bind[profileread.Service](d.Client)))
	viewrouter.Handle(r, logger, http.MethodPut, routes.Profile, profileupdate.New(logger, bind[profileupdate.Service](d.Client)))

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/health", health.New(logger, d.Pingers).ServeHTTP)
}
