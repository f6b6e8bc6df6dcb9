// Package login реализует вход пациента и врача.
//
// Учетные данные проверяет backend MedLink. При успехе фасад сохраняет токен,
// пользователя и роль в сессии браузера, а обработчик возвращает профиль и
// адрес дашборда роли. 401 на странице входа сессию не очищает.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// Service операции входа, выполняемые от имени сессии запроса
type Service interface {
	PatientLogin(ctx context.Context, req medlinkapi.LoginRequest) (models.User, error)
	DoctorLogin(ctx context.Context, req medlinkapi.LoginRequest) (models.User, error)
}

// Handler обрабатывает POST /login и POST /doctor-login
type Handler struct {
	log  *slog.Logger
	role models.Role
	bind func(*http.Request) Service
}

// New создает обработчик входа для роли role
func New(log *slog.Logger, role models.Role, bind func(*http.Request) Service) *Handler {
	return &Handler{
		log:  log,
		role: role,
		bind: bind,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("role", string(h.role)),
	)

	var req medlinkapi.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	svc := h.bind(r)
	var (
		user models.User
		err  error
	)
	if h.role == models.RoleDoctor {
		user, err = svc.DoctorLogin(r.Context(), req)
	} else {
		user, err = svc.PatientLogin(r.Context(), req)
	}
	if err != nil {
		log.Warn("login failed", slog.String("email", req.Email), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("login success", slog.Int("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":     user,
		"role":     h.role,
		"redirect": routes.DashboardFor(h.role),
	}))
}
