package medlinkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/magabrotheeeer/medlink-portal/internal/lib/routes"
	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// ProfileUpdate изменяемые поля профиля. Пустые поля не отправляются и backend их не меняет.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`

	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`

	Specialization  string   `json:"specialization,omitempty"`
	ExperienceYears *int     `json:"experience_years,omitempty" validate:"omitempty,gte=0"`
	Education       string   `json:"education,omitempty"`
	ConsultationFee *float64 `json:"consultation_fee,omitempty" validate:"omitempty,gt=0"`
}

// foreignFields поля, которые backend не меняет для роли role
func (u ProfileUpdate) foreignFields(role models.Role) []string {
	var out []string
	if role == models.RoleDoctor {
		if u.DateOfBirth != "" {
			out = append(out, "date_of_birth")
		}
		if u.Gender != "" {
			out = append(out, "gender")
		}
		return out
	}
	if u.Specialization != "" {
		out = append(out, "specialization")
	}
	if u.ExperienceYears != nil {
		out = append(out, "experience_years")
	}
	if u.Education != "" {
		out = append(out, "education")
	}
	if u.ConsultationFee != nil {
		out = append(out, "consultation_fee")
	}
	return out
}

// profileTarget путь профиля и ключ обертки ответа для роли сессии
func (cl *Caller) profileTarget(ctx context.Context) (models.Role, string, error) {
	const op = "medlinkapi.profileTarget"
	sess, ok, err := cl.Session(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", "", &AuthError{Status: http.StatusUnauthorized, Message: "session required", Redirect: routes.Login}
	}
	if sess.Role == models.RoleDoctor {
		return sess.Role, "/api/doctors/profile", nil
	}
	return sess.Role, "/api/patients/profile", nil
}

// GetProfile профиль владельца сессии по данным backend
func (cl *Caller) GetProfile(ctx context.Context) (models.User, models.Role, error) {
	role, path, err := cl.profileTarget(ctx)
	if err != nil {
		return models.User{}, "", err
	}
	var raw json.RawMessage
	err = cl.do(ctx, call{
		endpoint: "profile.get",
		method:   http.MethodGet,
		path:     path,
		out:      &raw,
	})
	if err != nil {
		return models.User{}, "", err
	}
	user, err := decodeObject[models.User](raw, string(role))
	if err != nil {
		return models.User{}, "", err
	}
	return user, role, nil
}

// UpdateProfile меняет профиль владельца сессии. Снимок пользователя в сессии
// обновляется ответом backend.
func (cl *Caller) UpdateProfile(ctx context.Context, req ProfileUpdate) (models.User, error) {
	const op = "medlinkapi.UpdateProfile"
	if err := cl.c.check(req); err != nil {
		return models.User{}, err
	}
	role, path, err := cl.profileTarget(ctx)
	if err != nil {
		return models.User{}, err
	}
	if fields := req.foreignFields(role); len(fields) > 0 {
		vErr := &ValidationError{}
		for _, f := range fields {
			vErr.Violations = append(vErr.Violations, Violation{
				Field:   f,
				Message: fmt.Sprintf("field %s is not editable for %s", f, role),
			})
		}
		return models.User{}, vErr
	}

	var raw json.RawMessage
	err = cl.do(ctx, call{
		endpoint: "profile.update",
		method:   http.MethodPut,
		path:     path,
		body:     req,
		out:      &raw,
	})
	if err != nil {
		return models.User{}, err
	}
	user, err := decodeObject[models.User](raw, string(role))
	if err != nil {
		return models.User{}, err
	}

	if role == models.RoleDoctor {
		cl.c.forgetDoctors(ctx)
	}
	if err := cl.handle.Refresh(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
