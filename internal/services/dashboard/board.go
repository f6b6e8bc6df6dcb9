package dashboard

import (
	"sync"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/viewstate"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// Board открытый дашборд одной сессии. Списки обновляются независимо,
// каждый хранит последний завершившийся ответ.
type Board struct {
	Role      models.Role
	SessionID string

	Appointments *viewstate.View[[]models.Appointment]
	Doctors      *viewstate.View[[]models.Doctor]           // только у пациента
	Availability *viewstate.View[[]models.AvailabilitySlot] // только у врача
	Patients     *viewstate.View[[]models.Patient]          // только у врача

	changed   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newBoard(sessionID string, role models.Role) *Board {
	b := &Board{
		Role:         role,
		SessionID:    sessionID,
		Appointments: viewstate.New[[]models.Appointment](),
		changed:      make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	if role == models.RoleDoctor {
		b.Availability = viewstate.New[[]models.AvailabilitySlot]()
		b.Patients = viewstate.New[[]models.Patient]()
	} else {
		b.Doctors = viewstate.New[[]models.Doctor]()
	}
	return b
}

// Changed сигналит после применения любого ответа
func (b *Board) Changed() <-chan struct{} {
	return b.changed
}

// Done закрывается вместе с дашбордом
func (b *Board) Done() <-chan struct{} {
	return b.done
}

// Close закрывает все списки, опоздавшие ответы отбрасываются
func (b *Board) Close() {
	b.closeOnce.Do(func() {
		b.Appointments.Close()
		if b.Doctors != nil {
			b.Doctors.Close()
		}
		if b.Availability != nil {
			b.Availability.Close()
		}
		if b.Patients != nil {
			b.Patients.Close()
		}
		close(b.done)
	})
}

// Closed сообщает, закрыт ли дашборд
func (b *Board) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Board) touch() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// apply записывает результат в список и будит подписчиков
func apply[T any](b *Board, v *viewstate.View[T], value T) bool {
	if v == nil || !v.Apply(value) {
		return false
	}
	b.touch()
	return true
}
