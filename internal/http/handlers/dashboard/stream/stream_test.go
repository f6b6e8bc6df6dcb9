package stream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
	"github.com/magabrotheeeer/medlink-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/medlink-portal/internal/session"
)

type fakeBackend struct {
	err error
}

func (f *fakeBackend) PatientAppointments(context.Context) ([]models.Appointment, error) {
	return []models.Appointment{{ID: 1, AppointmentDate: "2099-01-01", AppointmentTime: "10:00", Status: models.StatusPending}}, f.err
}

func (f *fakeBackend) DoctorAppointments(context.Context) ([]models.Appointment, error) {
	return nil, f.err
}

func (f *fakeBackend) ListDoctors(context.Context) ([]models.Doctor, error) {
	return []models.Doctor{{ID: 1, Name: "Dr. Alice"}}, nil
}

func (f *fakeBackend) ListAvailability(context.Context) ([]models.AvailabilitySlot, error) {
	return nil, nil
}

func (f *fakeBackend) DoctorPatients(context.Context) ([]models.Patient, error) { return nil, nil }

func (f *fakeBackend) AddAvailability(context.Context, medlinkapi.AvailabilityRequest) (models.AvailabilitySlot, error) {
	return models.AvailabilitySlot{}, nil
}

func (f *fakeBackend) RemoveAvailability(context.Context, int) error { return nil }

func (f *fakeBackend) UpdateAppointmentStatus(context.Context, int, models.Status) error { return nil }

type env struct {
	store  *session.MemoryStore
	boards *dashboard.Service
	w      *httptest.ResponseRecorder
	cancel context.CancelFunc
	done   chan struct{}
}

// start запускает поток в отдельной горутине и ждет, пока откроется дашборд
func start(t *testing.T, backend dashboard.Backend) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		store:  session.NewMemoryStore(time.Hour),
		boards: dashboard.New(logger, time.Hour, time.UTC),
		w:      httptest.NewRecorder(),
		done:   make(chan struct{}),
	}
	require.NoError(t, e.store.Save(context.Background(), "sid", models.Session{Token: "t", Role: models.RolePatient}))

	h := New(logger, models.RolePatient, e.boards, func(*http.Request) dashboard.Backend { return backend })
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	req := httptest.NewRequest(http.MethodGet, "/patient-dashboard/stream", nil).WithContext(ctx)
	req.AddCookie(&http.Cookie{Name: "medlink_sid", Value: "sid"})

	go func() {
		defer close(e.done)
		session.Middleware(e.store, session.CookieOptions{Name: "medlink_sid"})(h).ServeHTTP(e.w, req)
	}()
	return e
}

func (e *env) wait(t *testing.T) {
	t.Helper()
	select {
	case <-e.done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}

func TestStream_SendsDashboardUntilClientLeaves(t *testing.T) {
	e := start(t, &fakeBackend{})
	require.Eventually(t, func() bool {
		_, ok := e.boards.Active("sid")
		return ok
	}, time.Second, 5*time.Millisecond)

	e.cancel()
	e.wait(t)

	assert.Equal(t, http.StatusOK, e.w.Code)
	assert.Equal(t, "text/event-stream", e.w.Header().Get("Content-Type"))
	body := e.w.Body.String()
	assert.True(t, strings.HasPrefix(body, "event: dashboard\ndata: {"), body)
	assert.Contains(t, body, `"upcoming":[{"id":1`)

	_, ok := e.boards.Active("sid")
	assert.False(t, ok)
}

func TestStream_RedirectsWhenSessionEnds(t *testing.T) {
	e := start(t, &fakeBackend{})
	var board *dashboard.Board
	require.Eventually(t, func() bool {
		b, ok := e.boards.Active("sid")
		board = b
		return ok
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, e.store.Delete(context.Background(), "sid"))
	e.boards.Release(board)
	e.wait(t)
	e.cancel()

	assert.Contains(t, e.w.Body.String(), "event: redirect\ndata: {\"status\":\"Error\",\"redirect\":\"/login\"}")
}

func TestStream_ClosedWhenReplaced(t *testing.T) {
	e := start(t, &fakeBackend{})
	require.Eventually(t, func() bool {
		_, ok := e.boards.Active("sid")
		return ok
	}, time.Second, 5*time.Millisecond)

	e.boards.Open("sid", models.RolePatient)
	e.wait(t)
	e.cancel()

	assert.Contains(t, e.w.Body.String(), "event: closed\n")
}

func TestStream_FailsBeforeStreaming(t *testing.T) {
	e := start(t, &fakeBackend{err: &medlinkapi.AuthError{Status: http.StatusUnauthorized, Redirect: "/login"}})
	e.wait(t)
	e.cancel()

	assert.Equal(t, http.StatusSeeOther, e.w.Code)
	assert.Equal(t, "/login", e.w.Header().Get("Location"))
	assert.NotContains(t, e.w.Body.String(), "event:")
}
