// Package register реализует регистрацию пациента и врача.
// Успешная регистрация сразу открывает сессию, как и вход.
package register

import (
	"context"
	"errors"
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

// Service операции регистрации
type Service interface {
	PatientRegister(ctx context.Context, req medlinkapi.PatientRegisterRequest) (models.User, error)
	DoctorRegister(ctx context.Context, req medlinkapi.DoctorRegisterRequest) (models.User, error)
}

// Handler обрабатывает POST /register и POST /doctor-register
type Handler struct {
	log  *slog.Logger
	role models.Role
	bind func(*http.Request) Service
}

// New создает обработчик регистрации для роли role
func New(log *slog.Logger, role models.Role, bind func(*http.Request) Service) *Handler {
	return &Handler{
		log:  log,
		role: role,
		bind: bind,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("role", string(h.role)),
	)

	user, err := h.register(r)
	if err != nil {
		var decErr decodeError
		if errors.As(err, &decErr) {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		log.Warn("registration failed", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("user registered", slog.Int("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user":     user,
		"role":     h.role,
		"redirect": routes.DashboardFor(h.role),
	}))
}

func (h *Handler) register(r *http.Request) (models.User, error) {
	svc := h.bind(r)
	if h.role == models.RoleDoctor {
		var req medlinkapi.DoctorRegisterRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			return models.User{}, decodeError{err}
		}
		return svc.DoctorRegister(r.Context(), req)
	}
	var req medlinkapi.PatientRegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		return models.User{}, decodeError{err}
	}
	return svc.PatientRegister(r.Context(), req)
}

type decodeError struct{ err error }

func (e decodeError) Error() string { return e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }
