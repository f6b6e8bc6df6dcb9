// Package remove удаляет слот доступности врача
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

type Boards interface {
	RemoveSlot(ctx context.Context, sessionID string, backend dashboard.Backend, id int) ([]models.AvailabilitySlot, error)
}

// Handler обрабатывает DELETE /doctor-dashboard/availability/{id}
type Handler struct {
	log    *slog.Logger
	boards Boards
	bind   func(*http.Request) dashboard.Backend
}

func New(log *slog.Logger, boards Boards, bind func(*http.Request) dashboard.Backend) *Handler {
	return &Handler{log: log, boards: boards, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.availability.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	sid := session.FromContext(r.Context()).ID()
	slots, err := h.boards.RemoveSlot(r.Context(), sid, h.bind(r), id)
	if err != nil {
		log.Error("failed to remove availability", slog.Int("slot_id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("availability removed", slog.Int("slot_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{"availability": slots}))
}
