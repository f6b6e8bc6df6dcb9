package medlinkapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// LoginRequest учетные данные пациента или врача
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PatientRegisterRequest регистрация пациента
type PatientRegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Phone       string `json:"phone" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,date"`
	Gender      string `json:"gender" validate:"required,oneof=male female other"`
}

// DoctorRegisterRequest регистрация врача
type DoctorRegisterRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=6"`
	Phone           string  `json:"phone" validate:"required"`
	Specialization  string  `json:"specialization" validate:"required"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0"`
	Education       string  `json:"education" validate:"required"`
	ConsultationFee float64 `json:"consultationFee" validate:"gt=0"`
}

// authResponse ответ backend на вход и регистрацию: пользователь лежит под ключом роли
type authResponse struct {
	AccessToken string       `json:"access_token"`
	Patient     *models.User `json:"patient"`
	Doctor      *models.User `json:"doctor"`
}

func (r authResponse) user(role models.Role) (models.User, bool) {
	u := r.Patient
	if role == models.RoleDoctor {
		u = r.Doctor
	}
	if u == nil || r.AccessToken == "" {
		return models.User{}, false
	}
	return *u, true
}

// PatientLogin вход пациента, при успехе сессия заполняется
func (cl *Caller) PatientLogin(ctx context.Context, req LoginRequest) (models.User, error) {
	return cl.authenticate(ctx, "auth.patient.login", "/api/auth/patient/login", models.RolePatient, req)
}

// DoctorLogin вход врача, при успехе сессия заполняется
func (cl *Caller) DoctorLogin(ctx context.Context, req LoginRequest) (models.User, error) {
	return cl.authenticate(ctx, "auth.doctor.login", "/api/auth/doctor/login", models.RoleDoctor, req)
}

// PatientRegister регистрация пациента, сразу открывает сессию
func (cl *Caller) PatientRegister(ctx context.Context, req PatientRegisterRequest) (models.User, error) {
	return cl.authenticate(ctx, "auth.patient.register", "/api/auth/patient/register", models.RolePatient, req)
}

// DoctorRegister регистрация врача, сразу открывает сессию. Новый врач сразу
// виден в каталоге: кэш каталога сбрасывается.
func (cl *Caller) DoctorRegister(ctx context.Context, req DoctorRegisterRequest) (models.User, error) {
	user, err := cl.authenticate(ctx, "auth.doctor.register", "/api/auth/doctor/register", models.RoleDoctor, req)
	if err != nil {
		return models.User{}, err
	}
	cl.c.forgetDoctors(ctx)
	return user, nil
}

func (cl *Caller) authenticate(ctx context.Context, endpoint, path string, role models.Role, req any) (models.User, error) {
	const op = "medlinkapi.authenticate"
	if err := cl.c.check(req); err != nil {
		return models.User{}, err
	}

	var resp authResponse
	err := cl.do(ctx, call{
		endpoint: endpoint,
		method:   http.MethodPost,
		path:     path,
		body:     req,
		out:      &resp,
		public:   true,
	})
	if err != nil {
		return models.User{}, err
	}

	user, ok := resp.user(role)
	if !ok {
		return models.User{}, fmt.Errorf("%s: %s response has no token or %s", op, endpoint, role)
	}
	if cl.handle == nil {
		return user, nil
	}
	if err := cl.handle.Set(ctx, resp.AccessToken, user, role); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// CurrentUser профиль владельца токена по данным backend
func (cl *Caller) CurrentUser(ctx context.Context) (models.User, models.Role, error) {
	var resp struct {
		UserType models.Role `json:"user_type"`
		User     models.User `json:"user"`
	}
	err := cl.do(ctx, call{
		endpoint: "auth.me",
		method:   http.MethodGet,
		path:     "/api/auth/me",
		out:      &resp,
	})
	if err != nil {
		return models.User{}, "", err
	}
	return resp.User, resp.UserType, nil
}
