// Package read отдает профиль врача и, если передана дата, свободное время на нее
package read

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
)

type Service interface {
	GetDoctor(ctx context.Context, id int) (models.Doctor, error)
	AvailableSlots(ctx context.Context, doctorID int, date string) ([]string, error)
}

// Handler обрабатывает GET /doctors/{id}?date=
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.doctors.read"

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

	svc := h.bind(r)
	doctor, err := svc.GetDoctor(r.Context(), id)
	if err != nil {
		log.Error("failed to get doctor", slog.Int("doctor_id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	data := map[string]any{"doctor": doctor}
	if date := r.URL.Query().Get("date"); date != "" {
		slots, err := svc.AvailableSlots(r.Context(), id, date)
		if err != nil {
			log.Error("failed to get available slots", slog.String("date", date), sl.Err(err))
			response.Fail(w, r, err)
			return
		}
		data["date"] = date
		data["available_slots"] = slots
	}

	render.JSON(w, r, response.OKWithData(data))
}
