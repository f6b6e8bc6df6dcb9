package models

// Doctor описывает врача из публичного каталога. Для портала только чтение.
type Doctor struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Specialization  string  `json:"specialization"`
	ExperienceYears int     `json:"experience_years"`
	Education       string  `json:"education,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	Location        string  `json:"location,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	ConsultationFee float64 `json:"consultation_fee"`
}

// Patient: краткая карточка пациента в списке пациентов врача.
type Patient struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Gender      string `json:"gender,omitempty"`
}
