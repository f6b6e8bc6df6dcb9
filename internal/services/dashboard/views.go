package dashboard

import (
	"time"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/timeline"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// PatientView дашборд пациента на момент отрисовки
type PatientView struct {
	timeline.Split
	Doctors   []models.Doctor `json:"doctors"`
	Version   uint64          `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DoctorView дашборд врача на момент отрисовки
type DoctorView struct {
	timeline.Split
	Today        []models.Appointment      `json:"today"`
	Pending      []models.Appointment      `json:"pending"`
	Availability []models.AvailabilitySlot `json:"availability"`
	Patients     []models.Patient          `json:"patients"`
	Version      uint64                    `json:"version"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// Now текущее время в часовом поясе портала
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// PatientView собирает представление пациента из текущего состояния дашборда
func (s *Service) PatientView(b *Board) PatientView {
	now := s.Now()
	appts, v1 := b.Appointments.Snapshot()
	v := PatientView{
		Split:     timeline.Classify(appts, now),
		Doctors:   []models.Doctor{},
		Version:   v1,
		UpdatedAt: b.Appointments.Updated(),
	}
	if b.Doctors != nil {
		doctors, v2 := b.Doctors.Snapshot()
		if doctors != nil {
			v.Doctors = doctors
		}
		v.Version += v2
	}
	return v
}

// DoctorView собирает представление врача из текущего состояния дашборда
func (s *Service) DoctorView(b *Board) DoctorView {
	now := s.Now()
	appts, v1 := b.Appointments.Snapshot()
	v := DoctorView{
		Split:        timeline.Classify(appts, now),
		Today:        timeline.OnDay(appts, now),
		Pending:      timeline.ByStatus(appts, models.StatusPending),
		Availability: []models.AvailabilitySlot{},
		Patients:     []models.Patient{},
		Version:      v1,
		UpdatedAt:    b.Appointments.Updated(),
	}
	if b.Availability != nil {
		slots, v2 := b.Availability.Snapshot()
		if slots != nil {
			v.Availability = slots
		}
		v.Version += v2
	}
	if b.Patients != nil {
		patients, v3 := b.Patients.Snapshot()
		if patients != nil {
			v.Patients = patients
		}
		v.Version += v3
	}
	return v
}

// View представление дашборда по роли
func (s *Service) View(b *Board) any {
	if b.Role == models.RoleDoctor {
		return s.DoctorView(b)
	}
	return s.PatientView(b)
}
