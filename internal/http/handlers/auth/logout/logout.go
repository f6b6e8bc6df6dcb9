// Package logout завершает сессию браузера
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Boards реестр открытых дашбордов
type Boards interface {
	Active(sessionID string) (*dashboard.Board, bool)
	Release(b *dashboard.Board)
}

// Handler обрабатывает POST /logout: закрывает дашборд, очищает сессию и уводит на главную
type Handler struct {
	log    *slog.Logger
	boards Boards
}

func New(log *slog.Logger, boards Boards) *Handler {
	return &Handler{log: log, boards: boards}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	handle := session.FromContext(r.Context())
	if b, ok := h.boards.Active(handle.ID()); ok {
		h.boards.Release(b)
	}
	if err := handle.Clear(r.Context()); err != nil {
		log.Error("failed to clear session", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("logged out")
	response.Redirect(w, r, routes.Landing)
}
