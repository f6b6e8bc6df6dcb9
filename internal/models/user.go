// Package models содержит доменные структуры портала MedLink: пользователя,
// врача, слот доступности, запись на приём и сессию браузера.
// Источником истины для всех сущностей служит внешний backend MedLink:
// портал хранит лишь снимки, полученные по REST.
package models

// User представляет снимок профиля пользователя, полученный при входе.
// Поля врача и пациента заполняются в зависимости от роли.
type User struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone,omitempty"`
	Specialization  string  `json:"specialization,omitempty"`   // только для врача
	ExperienceYears int     `json:"experience_years,omitempty"` // только для врача
	Education       string  `json:"education,omitempty"`        // только для врача
	ConsultationFee float64 `json:"consultation_fee,omitempty"` // только для врача
	DateOfBirth     string  `json:"date_of_birth,omitempty"`    // только для пациента
	Gender          string  `json:"gender,omitempty"`           // только для пациента
}
