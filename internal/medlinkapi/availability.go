package medlinkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// AvailabilityRequest новый слот доступности врача
type AvailabilityRequest struct {
	Date string `json:"date" validate:"required,date"`
	Time string `json:"time" validate:"required,clock"`
}

// doctorScope заголовок и параметр, которыми backend определяет врача для слотов
func (cl *Caller) doctorScope(ctx context.Context) (http.Header, url.Values, error) {
	sess, ok, err := cl.Session(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !ok || sess.Role != models.RoleDoctor {
		return nil, nil, nil
	}
	id := strconv.Itoa(sess.User.ID)
	return http.Header{"X-Doctor-ID": {id}}, url.Values{"doctor_id": {id}}, nil
}

// ListAvailability слоты текущего врача
func (cl *Caller) ListAvailability(ctx context.Context) ([]models.AvailabilitySlot, error) {
	const op = "medlinkapi.ListAvailability"
	header, query, err := cl.doctorScope(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var raw json.RawMessage
	err = cl.do(ctx, call{
		endpoint: "availability.list",
		method:   http.MethodGet,
		path:     "/api/doctor/availability",
		query:    query,
		header:   header,
		out:      &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[models.AvailabilitySlot](raw, "availability")
}

// AddAvailability добавляет слот. Дата и время проверяются до обращения к backend.
func (cl *Caller) AddAvailability(ctx context.Context, req AvailabilityRequest) (models.AvailabilitySlot, error) {
	const op = "medlinkapi.AddAvailability"
	if err := cl.c.check(req); err != nil {
		return models.AvailabilitySlot{}, err
	}
	header, _, err := cl.doctorScope(ctx)
	if err != nil {
		return models.AvailabilitySlot{}, fmt.Errorf("%s: %w", op, err)
	}
	var raw json.RawMessage
	err = cl.do(ctx, call{
		endpoint: "availability.add",
		method:   http.MethodPost,
		path:     "/api/doctor/availability",
		header:   header,
		body:     req,
		out:      &raw,
	})
	if err != nil {
		return models.AvailabilitySlot{}, err
	}
	return decodeObject[models.AvailabilitySlot](raw, "availability")
}

// RemoveAvailability удаляет слот врача
func (cl *Caller) RemoveAvailability(ctx context.Context, id int) error {
	const op = "medlinkapi.RemoveAvailability"
	if id <= 0 {
		return invalid("id", "field id must be a positive number")
	}
	header, _, err := cl.doctorScope(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return cl.do(ctx, call{
		endpoint: "availability.remove",
		method:   http.MethodDelete,
		path:     fmt.Sprintf("/api/doctor/availability/%d", id),
		header:   header,
	})
}
