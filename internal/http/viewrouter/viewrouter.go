// Package viewrouter описывает, какой роли доступна каждая страница портала,
// и применяет эти правила как middleware chi.
package viewrouter

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Access требование к сессии для маршрута
type Access string

const (
	Public        Access = ""
	Authenticated Access = "authenticated"
	Patient       Access = Access(models.RolePatient)
	Doctor        Access = Access(models.RoleDoctor)
)

// Table маршруты портала и требуемый доступ
var Table = map[string]Access{
	routes.Landing:           Public,
	routes.Home:              Public,
	routes.Login:             Public,
	routes.Register:          Public,
	routes.DoctorLogin:       Public,
	routes.DoctorRegister:    Public,
	routes.Logout:            Public,
	routes.Doctors:           Public,
	routes.Doctors + "/{id}": Public,

	routes.Booking + "/{doctorId}":      Patient,
	routes.Appointments:                 Patient,
	routes.PatientDashboard:             Patient,
	routes.PatientDashboard + "/stream": Patient,

	routes.DoctorDashboard:                        Doctor,
	routes.DoctorDashboard + "/stream":            Doctor,
	routes.DoctorDashboard + "/availability":      Doctor,
	routes.DoctorDashboard + "/availability/{id}": Doctor,

	routes.Dashboard:                     Authenticated,
	routes.Appointments + "/{id}/status": Authenticated,
	routes.Profile:                       Authenticated,
}

// Decision результат проверки доступа: отрисовать страницу или уйти на Redirect
type Decision struct {
	Render   bool
	Redirect string
}

// Decide проверяет сессию s против требования required. nil означает отсутствие сессии.
func Decide(required Access, s *models.Session) Decision {
	if required == Public {
		return Decision{Render: true}
	}
	login := routes.LoginFor(models.Role(required))
	if s == nil {
		return Decision{Redirect: login}
	}
	if required != Authenticated && s.Role != models.Role(required) {
		return Decision{Redirect: login}
	}
	return Decision{Render: true}
}

// RequireRole middleware, пропускающий запрос только при подходящей сессии.
// Сессия с истекшим токеном очищается и считается отсутствующей.
func RequireRole(log *slog.Logger, required Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "viewrouter.RequireRole"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("path", r.URL.Path),
			)

			s, err := current(r, time.Now())
			if err != nil {
				log.Error("failed to load session", sl.Err(err))
				response.Fail(w, r, err)
				return
			}

			d := Decide(required, s)
			if !d.Render {
				log.Info("access denied", slog.String("required", string(required)), slog.String("redirect", d.Redirect))
				response.Redirect(w, r, d.Redirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func current(r *http.Request, now time.Time) (*models.Session, error) {
	h := session.FromContext(r.Context())
	if h == nil {
		return nil, nil
	}
	s, ok, err := h.Get(r.Context())
	if err != nil || !ok {
		return nil, err
	}
	if s.Expired(now) {
		if err := h.Clear(r.Context()); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &s, nil
}

// Handle регистрирует обработчик с доступом из Table. Маршрут вне таблицы считается ошибкой разработки.
func Handle(r chi.Router, log *slog.Logger, method, pattern string, h http.Handler) {
	access, ok := Table[pattern]
	if !ok {
		panic(fmt.Sprintf("viewrouter: route %s is not in the access table", pattern))
	}
	if access == Public {
		r.Method(method, pattern, h)
		return
	}
	r.With(RequireRole(log, access)).Method(method, pattern, h)
}
