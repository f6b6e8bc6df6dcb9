// Package update меняет профиль владельца сессии
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type Service interface {
	UpdateProfile(ctx context.Context, req medlinkapi.ProfileUpdate) (models.User, error)
}

// Handler обрабатывает PUT /profile
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req medlinkapi.ProfileUpdate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, err := h.bind(r).UpdateProfile(r.Context(), req)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("profile updated", slog.Int("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{"user": user}))
}
