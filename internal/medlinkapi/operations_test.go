package medlinkapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medlink-portal/internal/cache"
	"github.com/magabrotheeeer/medlink-portal/internal/config"
	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

func TestAddAvailability_ValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name  string
		req   AvailabilityRequest
		field string
	}{
		{name: "missing date", req: AvailabilityRequest{Time: "10:00"}, field: "date"},
		{name: "bad date", req: AvailabilityRequest{Date: "01/02/2099", Time: "10:00"}, field: "date"},
		{name: "bad time", req: AvailabilityRequest{Date: "2099-01-02", Time: "25:99"}, field: "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
			h := newHandle(t, "tok", doctor, models.RoleDoctor)

			_, err := c.For(h, routes.DoctorDashboard).AddAvailability(context.Background(), tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.NotEmpty(t, vErr.Violations)
			assert.Equal(t, tt.field, vErr.Violations[0].Field)
			assert.Zero(t, hits.Load())
		})
	}
}

func TestAddAvailability_SendsDoctorScope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctor/availability", r.URL.Path)
		assert.Equal(t, "42", r.Header.Get("X-Doctor-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body AvailabilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":      "Availability slot added successfully",
			"availability": models.AvailabilitySlot{ID: 5, DoctorID: 42, Date: body.Date, Time: body.Time + ":00"},
		})
	})
	h := newHandle(t, "tok", doctor, models.RoleDoctor)

	slot, err := c.For(h, routes.DoctorDashboard).AddAvailability(context.Background(), AvailabilityRequest{
		Date: "2099-03-01",
		Time: "09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilitySlot{ID: 5, DoctorID: 42, Date: "2099-03-01", Time: "09:30:00"}, slot)
}

func TestListAvailability_BareArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("doctor_id"))
		writeJSON(w, http.StatusOK, []models.AvailabilitySlot{{ID: 1}, {ID: 2, IsBooked: true}})
	})
	h := newHandle(t, "tok", doctor, models.RoleDoctor)

	slots, err := c.For(h, routes.DoctorDashboard).ListAvailability(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[1].IsBooked)
}

func TestRemoveAvailability(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/doctor/availability/7", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Availability slot removed successfully"})
	})
	h := newHandle(t, "tok", doctor, models.RoleDoctor)

	require.NoError(t, c.For(h, routes.DoctorDashboard).RemoveAvailability(context.Background(), 7))
}

func TestCreateAppointment_Payload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(11), body["patient_id"])
		assert.Equal(t, float64(42), body["doctor_id"])
		assert.Equal(t, "2099-01-01", body["appointment_date"])
		assert.Equal(t, "10:00:00", body["appointment_time"])
		assert.Equal(t, "General consultation", body["notes"])

		writeJSON(w, http.StatusCreated, map[string]any{
			"message":     "Appointment booked successfully",
			"appointment": models.Appointment{ID: 99, DoctorID: 42, PatientID: 11, Status: models.StatusScheduled},
		})
	})
	h := newHandle(t, "tok", patient, models.RolePatient)

	a, err := c.For(h, routes.Booking+"/42").CreateAppointment(context.Background(), BookingRequest{
		DoctorID:        42,
		AppointmentDate: "2099-01-01",
		AppointmentTime: "10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 99, a.ID)
	assert.Equal(t, models.StatusPending, a.Status.Canonical())
}

func TestCreateAppointment_RejectsBadTime(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	h := newHandle(t, "tok", patient, models.RolePatient)

	_, err := c.For(h, routes.Booking+"/42").CreateAppointment(context.Background(), BookingRequest{
		DoctorID:        42,
		AppointmentDate: "2099-01-01",
		AppointmentTime: "10am",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "appointment_time", vErr.Violations[0].Field)
	assert.Zero(t, hits.Load())
}

func TestUpdateAppointmentStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/appointments/3/status", r.URL.Path)
		var body StatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.StatusConfirmed, body.Status)
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	caller := c.For(newHandle(t, "tok", doctor, models.RoleDoctor), routes.DoctorDashboard)

	require.NoError(t, caller.UpdateAppointmentStatus(context.Background(), 3, models.StatusConfirmed))

	var vErr *ValidationError
	require.ErrorAs(t, caller.UpdateAppointmentStatus(context.Background(), 3, "archived"), &vErr)
	require.ErrorAs(t, caller.UpdateAppointmentStatus(context.Background(), 0, models.StatusConfirmed), &vErr)
}

func TestAvailableSlots(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/appointments/doctor/42/available-slots", r.URL.Path)
		assert.Equal(t, "2099-05-05", r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, map[string]any{"available_slots": []string{"09:00", "09:30"}})
	})
	caller := c.For(nil, routes.Doctors+"/42")

	slots, err := caller.AvailableSlots(context.Background(), 42, "2099-05-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, slots)

	_, err = caller.AvailableSlots(context.Background(), 42, "tomorrow")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestGetDoctor(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctors/42", r.URL.Path)
		writeJSON(w, http.StatusOK, models.Doctor{ID: 42, Name: "Dr. Bob", Specialization: "Cardiology"})
	})

	d, err := c.For(nil, routes.Doctors+"/42").GetDoctor(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Bob", d.Name)
}

func TestDoctorPatients_Wrapped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctor/patients", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"patients": []models.Patient{{ID: 1, Name: "Ann"}}})
	})

	list, err := c.For(newHandle(t, "tok", doctor, models.RoleDoctor), routes.DoctorDashboard).
		DoctorPatients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Patient{{ID: 1, Name: "Ann"}}, list)
}

func TestCurrentUser(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"user_type": "doctor", "user": doctor})
	})

	u, role, err := c.For(newHandle(t, "tok", doctor, models.RoleDoctor), routes.DoctorDashboard).
		CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, role)
	assert.Equal(t, doctor.ID, u.ID)
}

func TestListDoctors_UsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, []models.Doctor{{ID: 1, Name: "Dr. A"}})
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rc, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		Cache:      rc,
		DoctorsTTL: time.Minute,
	})
	caller := c.For(nil, routes.Doctors)

	for i := 0; i < 3; i++ {
		list, err := caller.ListDoctors(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, mr.Exists(DoctorsCacheKey))

	mr.FastForward(2 * time.Minute)
	_, err = caller.ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPatientRegister(t *testing.T) {
	valid := PatientRegisterRequest{
		Name:        "Ann Patient",
		Email:       "ann@example.com",
		Password:    "secret1",
		Phone:       "+100",
		DateOfBirth: "1990-04-12",
		Gender:      "female",
	}

	tests := []struct {
		name      string
		mutate    func(*PatientRegisterRequest)
		wantField string
	}{
		{name: "valid date of birth", mutate: func(*PatientRegisterRequest) {}},
		{name: "date of birth in wrong format", mutate: func(r *PatientRegisterRequest) { r.DateOfBirth = "12.04.1990" }, wantField: "dateOfBirth"},
		{name: "impossible date of birth", mutate: func(r *PatientRegisterRequest) { r.DateOfBirth = "1990-02-30" }, wantField: "dateOfBirth"},
		{name: "missing date of birth", mutate: func(r *PatientRegisterRequest) { r.DateOfBirth = "" }, wantField: "dateOfBirth"},
		{name: "unknown gender", mutate: func(r *PatientRegisterRequest) { r.Gender = "robot" }, wantField: "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				assert.Equal(t, "/api/auth/patient/register", r.URL.Path)
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "1990-04-12", body["dateOfBirth"])
				writeJSON(w, http.StatusCreated, map[string]any{"access_token": "tok-ann", "patient": patient})
			})
			h := newHandle(t, "", models.User{}, "")
			req := valid
			tt.mutate(&req)

			user, err := c.For(h, routes.Register).PatientRegister(context.Background(), req)

			if tt.wantField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantField, vErr.Violations[0].Field)
				assert.Zero(t, hits.Load())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, patient, user)
			s, ok, err := h.Get(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, models.RolePatient, s.Role)
		})
	}
}

func TestAddAvailability_AcceptsTimeWithSeconds(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body AvailabilityRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "10:00:00", body.Time)
		writeJSON(w, http.StatusCreated, map[string]any{
			"availability": models.AvailabilitySlot{ID: 6, DoctorID: 42, Date: body.Date, Time: body.Time},
		})
	})
	h := newHandle(t, "tok", doctor, models.RoleDoctor)

	slot, err := c.For(h, routes.DoctorDashboard).AddAvailability(context.Background(), AvailabilityRequest{
		Date: "2099-03-01",
		Time: "10:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", slot.Time)
}

func TestCreateAppointment_RejectsBadDate(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	h := newHandle(t, "tok", patient, models.RolePatient)

	_, err := c.For(h, routes.Booking+"/42").CreateAppointment(context.Background(), BookingRequest{
		DoctorID:        42,
		AppointmentDate: "2099/01/01",
		AppointmentTime: "10:00",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "appointment_date", vErr.Violations[0].Field)
	assert.Equal(t, "field appointment_date must be a date YYYY-MM-DD", vErr.Violations[0].Message)
	assert.Zero(t, hits.Load())
}

func TestDoctorRegister_InvalidatesDirectoryCache(t *testing.T) {
	var listHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/doctors":
			listHits.Add(1)
			writeJSON(w, http.StatusOK, []models.Doctor{{ID: 1, Name: "Dr. A"}})
		case "/api/auth/doctor/register":
			writeJSON(w, http.StatusCreated, map[string]any{"access_token": "tok-bob", "doctor": doctor})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rc, err := cache.InitServer(context.Background(), config.RedisConnection{AddressRedis: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	c := New(slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		BaseURL:    srv.URL,
		Timeout:    time.Second,
		Cache:      rc,
		DoctorsTTL: time.Minute,
	})

	_, err = c.For(nil, routes.Doctors).ListDoctors(context.Background())
	require.NoError(t, err)
	require.True(t, mr.Exists(DoctorsCacheKey))

	_, err = c.For(newHandle(t, "", models.User{}, ""), routes.DoctorRegister).
		DoctorRegister(context.Background(), DoctorRegisterRequest{
			Name:            "Dr. Bob",
			Email:           "bob@example.com",
			Password:        "secret1",
			Phone:           "+100",
			Specialization:  "Cardiology",
			ExperienceYears: 12,
			Education:       "MD",
			ConsultationFee: 50,
		})
	require.NoError(t, err)
	assert.False(t, mr.Exists(DoctorsCacheKey))

	_, err = c.For(nil, routes.Doctors).ListDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), listHits.Load())
}
