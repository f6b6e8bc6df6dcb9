package dashboard

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/timeline"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// AddSlot добавляет слот врача и перечитывает список слотов.
// Возвращается список из активного дашборда: если несколько добавлений
// завершились в другом порядке, в нем остается ответ, пришедший последним.
func (s *Service) AddSlot(ctx context.Context, sessionID string, backend Backend, req medlinkapi.AvailabilityRequest) ([]models.AvailabilitySlot, error) {
	if _, err := backend.AddAvailability(ctx, req); err != nil {
		return nil, err
	}
	return s.reloadSlots(ctx, sessionID, backend)
}

// RemoveSlot удаляет слот врача и перечитывает список слотов
func (s *Service) RemoveSlot(ctx context.Context, sessionID string, backend Backend, id int) ([]models.AvailabilitySlot, error) {
	if err := backend.RemoveAvailability(ctx, id); err != nil {
		return nil, err
	}
	return s.reloadSlots(ctx, sessionID, backend)
}

func (s *Service) reloadSlots(ctx context.Context, sessionID string, backend Backend) ([]models.AvailabilitySlot, error) {
	slots, err := backend.ListAvailability(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := s.Active(sessionID)
	if !ok || b.Availability == nil {
		return slots, nil
	}
	apply(b, b.Availability, slots)
	current, _ := b.Availability.Snapshot()
	return current, nil
}

// ChangeStatus проверяет переход статуса по актуальному списку записей и
// выполняет его на backend. Локально статус не меняется: список перечитывается.
func (s *Service) ChangeStatus(ctx context.Context, sessionID string, backend Backend, role models.Role, id int, to models.Status) ([]models.Appointment, error) {
	list, err := s.appointments(ctx, backend, role)
	if err != nil {
		return nil, err
	}

	var current *models.Appointment
	for i := range list {
		if list[i].ID == id {
			current = &list[i]
			break
		}
	}
	if current == nil {
		return nil, &medlinkapi.APIError{Status: http.StatusNotFound, Message: "appointment not found"}
	}
	if role == models.RolePatient && to.Canonical() != models.StatusCancelled {
		return nil, &medlinkapi.ValidationError{Violations: []medlinkapi.Violation{{
			Field:   "status",
			Message: "patients can only cancel appointments",
		}}}
	}
	if !timeline.CanTransition(current.Status, to) {
		return nil, &medlinkapi.ValidationError{Violations: []medlinkapi.Violation{{
			Field:   "status",
			Message: fmt.Sprintf("cannot change status from %s to %s", current.Status.Canonical(), to.Canonical()),
		}}}
	}

	if err := backend.UpdateAppointmentStatus(ctx, id, to); err != nil {
		return nil, err
	}

	list, err = s.appointments(ctx, backend, role)
	if err != nil {
		return nil, err
	}
	if b, ok := s.Active(sessionID); ok && b.Role == role {
		apply(b, b.Appointments, list)
	}
	return list, nil
}

func (s *Service) appointments(ctx context.Context, backend Backend, role models.Role) ([]models.Appointment, error) {
	if role == models.RoleDoctor {
		return backend.DoctorAppointments(ctx)
	}
	return backend.PatientAppointments(ctx)
}
