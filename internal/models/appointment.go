package models

import "strings"

// Status: статус записи на приём в том виде, в каком его отдаёт backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled" // синоним pending у части эндпоинтов backend
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// Canonical приводит статус к каноническому виду: нижний регистр,
// scheduled считается тем же логическим состоянием, что и pending.
func (s Status) Canonical() Status {
	c := Status(strings.ToLower(strings.TrimSpace(string(s))))
	if c == StatusScheduled {
		return StatusPending
	}
	return c
}

// Appointment: запись пациента на приём к врачу.
// Портал никогда не меняет статус локально: только через backend с повторной загрузкой списка.
type Appointment struct {
	ID              int    `json:"id"`
	PatientID       int    `json:"patient_id"`
	DoctorID        int    `json:"doctor_id"`
	PatientName     string `json:"patient_name,omitempty"`
	DoctorName      string `json:"doctor_name,omitempty"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Status          Status `json:"status"`
	Notes           string `json:"notes,omitempty"`
}
