// Package list отдает каталог врачей с фильтром по строке поиска и специализации
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/doctorfilter"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type Service interface {
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
}

// Handler обрабатывает GET /doctors?q=&specialty=
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.doctors.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	doctors, err := h.bind(r).ListDoctors(r.Context())
	if err != nil {
		log.Error("failed to list doctors", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	specialty := r.URL.Query().Get("specialty")
	filtered := doctorfilter.Filter(doctors, query, specialty)

	log.Debug("doctors filtered", slog.Int("total", len(doctors)), slog.Int("matched", len(filtered)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"doctors":     filtered,
		"specialties": doctorfilter.Specialties(doctors),
		"total":       len(doctors),
	}))
}
