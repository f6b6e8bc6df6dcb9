// Package redirect уводит с общего /dashboard на дашборд роли владельца токена
package redirect

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

type Service interface {
	CurrentUser(ctx context.Context) (models.User, models.Role, error)
}

// Handler обрабатывает GET /dashboard. Роль берется у backend,
// если он ее не вернул, то из сессии.
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.redirect"

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
	if !ok {
		response.Redirect(w, r, routes.Login)
		return
	}

	_, role, err := h.bind(r).CurrentUser(r.Context())
	if err != nil {
		log.Error("failed to get current user", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if !role.Valid() {
		role = sess.Role
	}
	if role != sess.Role {
		log.Warn("session role differs from backend", slog.String("session", string(sess.Role)), slog.String("backend", string(role)))
	}
	response.Redirect(w, r, routes.DashboardFor(role))
}
