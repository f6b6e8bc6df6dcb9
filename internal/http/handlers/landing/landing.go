// Package landing отдает главную страницу: навигацию для гостя или для вошедшего пользователя
package landing

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Page данные главной страницы
type Page struct {
	SignedIn bool              `json:"signed_in"`
	Role     models.Role       `json:"role,omitempty"`
	User     *models.User      `json:"user,omitempty"`
	Links    map[string]string `json:"links"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.landing"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess, ok, err := session.FromContext(r.Context()).Get(r.Context())
	if err != nil {
		log.Error("failed to load session", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	page := Page{Links: map[string]string{"doctors": routes.Doctors}}
	if ok && !sess.Expired(time.Now()) {
		user := sess.User
		page.SignedIn = true
		page.Role = sess.Role
		page.User = &user
		page.Links["dashboard"] = routes.DashboardFor(sess.Role)
		page.Links["logout"] = routes.Logout
		page.Links["profile"] = routes.Profile
		if sess.Role == models.RolePatient {
			page.Links["appointments"] = routes.Appointments
		}
	} else {
		page.Links["login"] = routes.Login
		page.Links["register"] = routes.Register
		page.Links["doctor_login"] = routes.DoctorLogin
		page.Links["doctor_register"] = routes.DoctorRegister
	}

	render.JSON(w, r, response.OKWithData(page))
}
