package medlinkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// DoctorsCacheKey ключ кэша каталога врачей, общий для всех сессий
const DoctorsCacheKey = "medlink:doctors"

// ListDoctors каталог врачей. Каталог публичный, поэтому кэшируется на doctorsTTL.
func (cl *Caller) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	c := cl.c
	if c.cache != nil {
		var cached []models.Doctor
		found, err := c.cache.Get(ctx, DoctorsCacheKey, &cached)
		if err != nil {
			c.log.Warn("failed to read doctors from cache", sl.Err(err))
		}
		if found {
			return cached, nil
		}
	}

	var raw json.RawMessage
	err := cl.do(ctx, call{
		endpoint: "doctors.list",
		method:   http.MethodGet,
		path:     "/api/doctors",
		out:      &raw,
		public:   true,
	})
	if err != nil {
		return nil, err
	}
	doctors, err := decodeList[models.Doctor](raw, "doctors")
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.doctorsTTL > 0 {
		if err := c.cache.Set(ctx, DoctorsCacheKey, doctors, c.doctorsTTL); err != nil {
			c.log.Warn("failed to cache doctors", sl.Err(err))
		}
	}
	return doctors, nil
}

// forgetDoctors сбрасывает кэш каталога после изменений в составе или профилях врачей
func (c *Client) forgetDoctors(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx, DoctorsCacheKey); err != nil {
		c.log.Warn("failed to invalidate doctors cache", sl.Err(err))
	}
}

// GetDoctor профиль врача
func (cl *Caller) GetDoctor(ctx context.Context, id int) (models.Doctor, error) {
	if id <= 0 {
		return models.Doctor{}, invalid("id", "field id must be a positive number")
	}
	var raw json.RawMessage
	err := cl.do(ctx, call{
		endpoint: "doctors.get",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/api/doctors/%d", id),
		out:      &raw,
		public:   true,
	})
	if err != nil {
		return models.Doctor{}, err
	}
	return decodeObject[models.Doctor](raw, "doctor")
}

// AvailableSlots свободное время врача на дату в формате HH:MM
func (cl *Caller) AvailableSlots(ctx context.Context, doctorID int, date string) ([]string, error) {
	if doctorID <= 0 {
		return nil, invalid("doctor_id", "field doctor_id must be a positive number")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, invalid("date", "field date must be a date YYYY-MM-DD")
	}
	var resp struct {
		AvailableSlots []string `json:"available_slots"`
	}
	err := cl.do(ctx, call{
		endpoint: "appointments.available_slots",
		method:   http.MethodGet,
		path:     fmt.Sprintf("/api/appointments/doctor/%d/available-slots", doctorID),
		query:    url.Values{"date": {date}},
		out:      &resp,
		public:   true,
	})
	if err != nil {
		return nil, err
	}
	if resp.AvailableSlots == nil {
		return []string{}, nil
	}
	return resp.AvailableSlots, nil
}

// decodeObject принимает объект как есть или в обертке {"<key>": {...}}
func decodeObject[T any](raw json.RawMessage, key string) (T, error) {
	const op = "medlinkapi.decodeObject"
	var out T
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	if inner, ok := wrapped[key]; ok {
		raw = inner
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
