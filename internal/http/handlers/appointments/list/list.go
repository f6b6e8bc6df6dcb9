// Package list отдает записи пациента, разбитые на предстоящие и прошедшие
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/timeline"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type Service interface {
	PatientAppointments(ctx context.Context) ([]models.Appointment, error)
}

// Handler обрабатывает GET /appointments
type Handler struct {
	log  *slog.Logger
	now  func() time.Time
	bind func(*http.Request) Service
}

// New создает обработчик. now задает текущее время в часовом поясе портала.
func New(log *slog.Logger, now func() time.Time, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, now: now, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.bind(r).PatientAppointments(r.Context())
	if err != nil {
		log.Error("failed to list appointments", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(timeline.Classify(list, h.now())))
}
