// Package status меняет статус записи: врач подтверждает или отклоняет, пациент отменяет
package status

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

// Boards проверяет переход и обновляет открытый дашборд
type Boards interface {
	ChangeStatus(ctx context.Context, sessionID string, backend dashboard.Backend, role models.Role,
		id int, to models.Status) ([]models.Appointment, error)
}

// Handler обрабатывает PUT /appointments/{id}/status
type Handler struct {
	log    *slog.Logger
	boards Boards
	bind   func(*http.Request) dashboard.Backend
}

func New(log *slog.Logger, boards Boards, bind func(*http.Request) dashboard.Backend) *Handler {
	return &Handler{log: log, boards: boards, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.status"

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

	var req medlinkapi.StatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	handle := session.FromContext(r.Context())
	sess, ok, err := handle.Get(r.Context())
	if err != nil {
		log.Error("failed to load session", sl.Err(err))
		response.Fail(w, r, err)
		return
	}
	if !ok {
		response.Fail(w, r, &medlinkapi.AuthError{Status: http.StatusUnauthorized, Message: "session required", Redirect: routes.Login})
		return
	}

	list, err := h.boards.ChangeStatus(r.Context(), handle.ID(), h.bind(r), sess.Role, id, req.Status)
	if err != nil {
		log.Error("failed to change appointment status",
			slog.Int("appointment_id", id), slog.String("to", string(req.Status)), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("appointment status changed",
		slog.Int("appointment_id", id), slog.String("to", string(req.Status)), slog.String("role", string(sess.Role)))
	render.JSON(w, r, response.OKWithData(map[string]any{"appointments": list}))
}
