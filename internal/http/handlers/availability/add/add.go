// Package add добавляет врачу слот доступности
package add

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
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

type Boards interface {
	AddSlot(ctx context.Context, sessionID string, backend dashboard.Backend,
		req medlinkapi.AvailabilityRequest) ([]models.AvailabilitySlot, error)
}

// Handler обрабатывает POST /doctor-dashboard/availability
type Handler struct {
	log    *slog.Logger
	boards Boards
	bind   func(*http.Request) dashboard.Backend
}

func New(log *slog.Logger, boards Boards, bind func(*http.Request) dashboard.Backend) *Handler {
	return &Handler{log: log, boards: boards, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.availability.add"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req medlinkapi.AvailabilityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	sid := session.FromContext(r.Context()).ID()
	slots, err := h.boards.AddSlot(r.Context(), sid, h.bind(r), req)
	if err != nil {
		log.Error("failed to add availability", slog.String("date", req.Date), slog.String("time", req.Time), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("availability added", slog.String("date", req.Date), slog.String("time", req.Time))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{"availability": slots}))
}
