package medlinkapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

func TestGetProfile_ScopedByRole(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		role     models.Role
		wantPath string
		key      string
	}{
		{name: "patient", user: patient, role: models.RolePatient, wantPath: "/api/patients/profile", key: "patient"},
		{name: "doctor", user: doctor, role: models.RoleDoctor, wantPath: "/api/doctors/profile", key: "doctor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				fresh := tt.user
				fresh.Phone = "+555"
				writeJSON(w, http.StatusOK, map[string]any{tt.key: fresh})
			})
			h := newHandle(t, "tok", tt.user, tt.role)

			user, role, err := c.For(h, routes.Profile).GetProfile(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.role, role)
			assert.Equal(t, tt.user.ID, user.ID)
			assert.Equal(t, "+555", user.Phone)
		})
	}
}

func TestGetProfile_NoSession(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })

	_, _, err := c.For(newHandle(t, "", models.User{}, ""), routes.Profile).GetProfile(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, routes.Login, authErr.Redirect)
	assert.Zero(t, hits.Load())
}

func TestUpdateProfile_RefreshesSessionSnapshot(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/patients/profile", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"phone": "+777", "date_of_birth": "1991-01-01"}, body)

		updated := patient
		updated.Phone = "+777"
		updated.DateOfBirth = "1991-01-01"
		writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "patient": updated})
	})
	h := newHandle(t, "tok", patient, models.RolePatient)
	idBefore := h.ID()

	user, err := c.For(h, routes.Profile).UpdateProfile(context.Background(), ProfileUpdate{
		Phone:       "+777",
		DateOfBirth: "1991-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "+777", user.Phone)

	s, ok, err := h.Get(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "+777", s.User.Phone)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, models.RolePatient, s.Role)
	assert.Equal(t, idBefore, h.ID())
}

func TestUpdateProfile_ValidatesBeforeNetwork(t *testing.T) {
	years := -1
	fee := 40.0

	tests := []struct {
		name   string
		role   models.Role
		user   models.User
		req    ProfileUpdate
		fields []string
	}{
		{name: "bad date of birth", role: models.RolePatient, user: patient, req: ProfileUpdate{DateOfBirth: "1991/01/01"}, fields: []string{"date_of_birth"}},
		{name: "negative experience", role: models.RoleDoctor, user: doctor, req: ProfileUpdate{ExperienceYears: &years}, fields: []string{"experience_years"}},
		{name: "patient edits doctor fields", role: models.RolePatient, user: patient, req: ProfileUpdate{Specialization: "Surgery", ConsultationFee: &fee}, fields: []string{"specialization", "consultation_fee"}},
		{name: "doctor edits patient fields", role: models.RoleDoctor, user: doctor, req: ProfileUpdate{Gender: "male"}, fields: []string{"gender"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
			h := newHandle(t, "tok", tt.user, tt.role)

			_, err := c.For(h, routes.Profile).UpdateProfile(context.Background(), tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			got := make([]string, 0, len(vErr.Violations))
			for _, v := range vErr.Violations {
				got = append(got, v.Field)
			}
			assert.Equal(t, tt.fields, got)
			assert.Zero(t, hits.Load())
		})
	}
}

func TestUpdateProfile_DoctorInvalidatesDirectory(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctors/profile", r.URL.Path)
		updated := doctor
		updated.Specialization = "Neurology"
		writeJSON(w, http.StatusOK, map[string]any{"doctor": updated})
	})
	dc := &recordingCache{}
	c.cache = dc
	h := newHandle(t, "tok", doctor, models.RoleDoctor)

	user, err := c.For(h, routes.Profile).UpdateProfile(context.Background(), ProfileUpdate{Specialization: "Neurology"})
	require.NoError(t, err)
	assert.Equal(t, "Neurology", user.Specialization)
	assert.Equal(t, []string{DoctorsCacheKey}, dc.invalidated)
}

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (c *recordingCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (c *recordingCache) Invalidate(_ context.Context, keys ...string) error {
	c.invalidated = append(c.invalidated, keys...)
	return nil
}
