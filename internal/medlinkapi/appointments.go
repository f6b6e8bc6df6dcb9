package medlinkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

const defaultNotes = "General consultation"

// BookingRequest запись пациента к врачу
type BookingRequest struct {
	DoctorID        int    `json:"doctor_id" validate:"gt=0"`
	AppointmentDate string `json:"appointment_date" validate:"required,date"`
	AppointmentTime string `json:"appointment_time" validate:"required,clock"`
	Notes           string `json:"notes"`
}

type bookingPayload struct {
	PatientID int `json:"patient_id"`
	BookingRequest
}

// StatusRequest смена статуса записи
type StatusRequest struct {
	Status models.Status `json:"status" validate:"required,oneof=pending scheduled confirmed cancelled rejected"`
}

// DoctorAppointments записи текущего врача
func (cl *Caller) DoctorAppointments(ctx context.Context) ([]models.Appointment, error) {
	return cl.appointments(ctx, "appointments.doctor", "/api/appointments/doctor")
}

// PatientAppointments записи текущего пациента
func (cl *Caller) PatientAppointments(ctx context.Context) ([]models.Appointment, error) {
	return cl.appointments(ctx, "appointments.patient", "/api/patients/appointments")
}

func (cl *Caller) appointments(ctx context.Context, endpoint, path string) ([]models.Appointment, error) {
	var raw json.RawMessage
	err := cl.do(ctx, call{
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		out:      &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Appointment](raw, "appointments")
}

// CreateAppointment создает запись от имени пациента из сессии.
// Конфликт времени решает backend, его сообщение возвращается как *APIError.
func (cl *Caller) CreateAppointment(ctx context.Context, req BookingRequest) (models.Appointment, error) {
	const op = "medlinkapi.CreateAppointment"
	if err := cl.c.check(req); err != nil {
		return models.Appointment{}, err
	}
	sess, _, err := cl.Session(ctx)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	if req.Notes == "" {
		req.Notes = defaultNotes
	}

	var raw json.RawMessage
	err = cl.do(ctx, call{
		endpoint: "appointments.create",
		method:   http.MethodPost,
		path:     "/api/appointments/",
		body:     bookingPayload{PatientID: sess.User.ID, BookingRequest: req},
		out:      &raw,
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return decodeObject[models.Appointment](raw, "appointment")
}

// UpdateAppointmentStatus переводит запись в новый статус на стороне backend
func (cl *Caller) UpdateAppointmentStatus(ctx context.Context, id int, status models.Status) error {
	if id <= 0 {
		return invalid("id", "field id must be a positive number")
	}
	req := StatusRequest{Status: status}
	if err := cl.c.check(req); err != nil {
		return err
	}
	return cl.do(ctx, call{
		endpoint: "appointments.status",
		method:   http.MethodPut,
		path:     fmt.Sprintf("/api/appointments/%d/status", id),
		body:     req,
	})
}

// DoctorPatients пациенты, записанные к текущему врачу
func (cl *Caller) DoctorPatients(ctx context.Context) ([]models.Patient, error) {
	var raw json.RawMessage
	err := cl.do(ctx, call{
		endpoint: "doctor.patients",
		method:   http.MethodGet,
		path:     "/api/doctor/patients",
		out:      &raw,
	})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Patient](raw, "patients")
}
