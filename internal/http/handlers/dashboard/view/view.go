// Package view отдает дашборд пациента или врача одним ответом
package view

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Boards реестр дашбордов
type Boards interface {
	Open(sessionID string, role models.Role) *dashboard.Board
	Active(sessionID string) (*dashboard.Board, bool)
	Release(b *dashboard.Board)
	Refresh(ctx context.Context, b *dashboard.Board, backend dashboard.Backend) error
	View(b *dashboard.Board) any
}

// Handler обрабатывает GET /patient-dashboard и GET /doctor-dashboard.
// Если у сессии уже открыт поток той же роли, используется его дашборд.
type Handler struct {
	log    *slog.Logger
	role   models.Role
	boards Boards
	bind   func(*http.Request) dashboard.Backend
}

func New(log *slog.Logger, role models.Role, boards Boards, bind func(*http.Request) dashboard.Backend) *Handler {
	return &Handler{log: log, role: role, boards: boards, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.view"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("role", string(h.role)),
	)

	sid := session.FromContext(r.Context()).ID()
	b, ok := h.boards.Active(sid)
	if !ok || b.Role != h.role {
		b = h.boards.Open(sid, h.role)
		defer h.boards.Release(b)
	}

	if err := h.boards.Refresh(r.Context(), b, h.bind(r)); err != nil {
		log.Error("failed to load dashboard", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(h.boards.View(b)))
}
