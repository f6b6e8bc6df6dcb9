// Package book записывает пациента на прием к врачу
package book

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medlink-portal/internal/http/response"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type Service interface {
	CreateAppointment(ctx context.Context, req medlinkapi.BookingRequest) (models.Appointment, error)
}

// Handler обрабатывает POST /book/{doctorId}
type Handler struct {
	log  *slog.Logger
	bind func(*http.Request) Service
}

func New(log *slog.Logger, bind func(*http.Request) Service) *Handler {
	return &Handler{log: log, bind: bind}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointments.book"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	doctorID, err := strconv.Atoi(chi.URLParam(r, "doctorId"))
	if err != nil {
		log.Error("failed to decode doctor id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode doctor id from url"))
		return
	}

	var req medlinkapi.BookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	req.DoctorID = doctorID

	appt, err := h.bind(r).CreateAppointment(r.Context(), req)
	if err != nil {
		log.Error("failed to book appointment", slog.Int("doctor_id", doctorID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("appointment booked", slog.Int("appointment_id", appt.ID), slog.Int("doctor_id", doctorID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(appt))
}
