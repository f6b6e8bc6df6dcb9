// Package read отдает профиль владельца сессии
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type Service interface {
	GetProfile(ctx context.Context) (models.User, models.Role, error)
}

// Handler обрабатывает GET /profile
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, role, err := h.bind(r).GetProfile(r.Context())
	if err != nil {
		log.Error("failed to load profile", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Debug("profile loaded", slog.Int("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
		"role": role,
	}))
}
