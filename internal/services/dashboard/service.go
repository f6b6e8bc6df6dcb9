// Package dashboard собирает дашборды пациента и врача и держит их свежими,
// пока открыт поток обновлений.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/sl"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/viewstate"
	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// Backend операции backend, нужные дашбордам
type Backend interface {
	PatientAppointments(ctx context.Context) ([]models.Appointment, error)
	DoctorAppointments(ctx context.Context) ([]models.Appointment, error)
	ListDoctors(ctx context.Context) ([]models.Doctor, error)
	ListAvailability(ctx context.Context) ([]models.AvailabilitySlot, error)
	DoctorPatients(ctx context.Context) ([]models.Patient, error)
	AddAvailability(ctx context.Context, req medlinkapi.AvailabilityRequest) (models.AvailabilitySlot, error)
	RemoveAvailability(ctx context.Context, id int) error
	UpdateAppointmentStatus(ctx context.Context, id int, status models.Status) error
}

// Service реестр открытых дашбордов: не больше одного на сессию
type Service struct {
	log      *slog.Logger
	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	mu     sync.Mutex
	boards map[string]*Board
}

// New создает сервис. interval: период опроса backend при открытом потоке.
func New(log *slog.Logger, interval time.Duration, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		log:      log.With(slog.String("component", "dashboard")),
		interval: interval,
		loc:      loc,
		now:      time.Now,
		boards:   make(map[string]*Board),
	}
}

// Open открывает дашборд роли для сессии. Предыдущий дашборд сессии закрывается.
func (s *Service) Open(sessionID string, role models.Role) *Board {
	b := newBoard(sessionID, role)
	s.mu.Lock()
	prev := s.boards[sessionID]
	s.boards[sessionID] = b
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
		s.log.Debug("previous board closed", slog.String("role", string(prev.Role)))
	}
	return b
}

// Release закрывает b и убирает его из реестра, если он все еще активен
func (s *Service) Release(b *Board) {
	s.mu.Lock()
	if s.boards[b.SessionID] == b {
		delete(s.boards, b.SessionID)
	}
	s.mu.Unlock()
	b.Close()
}

// Active активный дашборд сессии
func (s *Service) Active(sessionID string) (*Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.boards[sessionID]
	return b, ok
}

// Refresh загружает все списки дашборда параллельно.
// Каждый ответ применяется по мере завершения, возвращается первая ошибка по порядку списков.
func (s *Service) Refresh(ctx context.Context, b *Board, backend Backend) error {
	const op = "dashboard.Refresh"

	var tasks []func(context.Context) error
	if b.Role == models.RoleDoctor {
		tasks = []func(context.Context) error{
			loader(b, b.Appointments, backend.DoctorAppointments),
			loader(b, b.Availability, backend.ListAvailability),
			loader(b, b.Patients, backend.DoctorPatients),
		}
	} else {
		tasks = []func(context.Context) error{
			loader(b, b.Appointments, backend.PatientAppointments),
			loader(b, b.Doctors, backend.ListDoctors),
		}
	}

	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = task(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func loader[T any](b *Board, v *viewstate.View[T], fetch func(context.Context) (T, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		value, err := fetch(ctx)
		if err != nil {
			return err
		}
		apply(b, v, value)
		return nil
	}
}

// Poll обновляет дашборд каждые interval, пока не отменен ctx или не закрыт дашборд.
// Ошибки только логируются, следующая попытка будет на следующем тике.
// После 401 сессии больше нет, и опрос прекращается.
func (s *Service) Poll(ctx context.Context, b *Board, backend Backend) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log := s.log.With(slog.String("role", string(b.Role)))
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.Done():
			return
		case <-ticker.C:
			err := s.Refresh(ctx, b, backend)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			var authErr *medlinkapi.AuthError
			if errors.As(err, &authErr) {
				log.Info("session ended, polling stopped")
				s.Release(b)
				return
			}
			log.Error("dashboard poll failed", sl.Err(err))
		}
	}
}
