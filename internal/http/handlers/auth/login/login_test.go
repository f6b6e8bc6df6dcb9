package login

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/medlink-portal/internal/medlinkapi"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) PatientLogin(ctx context.Context, req medlinkapi.LoginRequest) (models.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockService) DoctorLogin(ctx context.Context, req medlinkapi.LoginRequest) (models.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.User), args.Error(1)
}

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := medlinkapi.LoginRequest{Email: "ann@example.com", Password: "secret1"}

	tests := []struct {
		name           string
		role           models.Role
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный вход пациента",
			role: models.RolePatient,
			body: `{"email":"ann@example.com","password":"secret1"}`,
			setupMock: func(m *MockService) {
				m.On("PatientLogin", mock.Anything, creds).Return(models.User{ID: 1, Name: "Ann"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"redirect":"/patient-dashboard"`,
		},
		{
			name: "успешный вход врача",
			role: models.RoleDoctor,
			body: `{"email":"ann@example.com","password":"secret1"}`,
			setupMock: func(m *MockService) {
				m.On("DoctorLogin", mock.Anything, creds).Return(models.User{ID: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"redirect":"/doctor-dashboard"`,
		},
		{
			name:           "некорректный JSON",
			role:           models.RolePatient,
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "неверный пароль без редиректа",
			role: models.RolePatient,
			body: `{"email":"ann@example.com","password":"secret1"}`,
			setupMock: func(m *MockService) {
				m.On("PatientLogin", mock.Anything, creds).
					Return(models.User{}, &medlinkapi.AuthError{Status: 401, Message: "Invalid email or password"})
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Invalid email or password"`,
		},
		{
			name: "ошибка валидации",
			role: models.RolePatient,
			body: `{"email":"nope","password":""}`,
			setupMock: func(m *MockService) {
				m.On("PatientLogin", mock.Anything, mock.Anything).
					Return(models.User{}, &medlinkapi.ValidationError{Violations: []medlinkapi.Violation{{Field: "email", Message: "field email must be a valid email"}}})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field email must be a valid email`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, tt.role, func(*http.Request) Service { return mockService })

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
