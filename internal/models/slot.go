package models

// AvailabilitySlot: объявленное врачом окно (дата и время) для записи.
// Слот атомарен: его можно только создать или удалить целиком.
type AvailabilitySlot struct {
	ID       int    `json:"id"`
	DoctorID int    `json:"doctor_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM или HH:MM:SS
	IsBooked bool   `json:"is_booked"`
}
