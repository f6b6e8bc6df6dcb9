// Package timeline классифицирует записи на приём относительно текущего момента:
// предстоящие и прошедшие, ближайшая запись, группировка по статусам.
//
// Все функции чистые: зависят только от списка и переданного now.
// Дата и время записи интерпретируются в часовом поясе now.
package timeline

import (
	"time"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04", "15:04:05"}

// Timestamp собирает момент начала записи из appointment_date и appointment_time
// в часовом поясе loc. ok == false, если дата или время отсутствуют или некорректны.
func Timestamp(a models.Appointment, loc *time.Location) (time.Time, bool) {
	date := a.AppointmentDate
	// backend иногда отдаёт дату в формате RFC 3339
	if len(date) > len(dateLayout) && date[len(dateLayout)] == 'T' {
		date = date[:len(dateLayout)]
	}
	d, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		tm, err := time.Parse(layout, a.AppointmentTime)
		if err != nil {
			continue
		}
		return time.Date(d.Year(), d.Month(), d.Day(), tm.Hour(), tm.Minute(), tm.Second(), 0, loc), true
	}
	return time.Time{}, false
}

// IsUpcoming сообщает, начинается ли запись строго позже now.
// Запись с некорректными датой или временем считается прошедшей.
func IsUpcoming(a models.Appointment, now time.Time) bool {
	ts, ok := Timestamp(a, now.Location())
	return ok && ts.After(now)
}

// Upcoming возвращает предстоящие записи в исходном порядке.
func Upcoming(list []models.Appointment, now time.Time) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if IsUpcoming(a, now) {
			out = append(out, a)
		}
	}
	return out
}

// Past возвращает прошедшие записи в исходном порядке: дополнение к Upcoming.
func Past(list []models.Appointment, now time.Time) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if !IsUpcoming(a, now) {
			out = append(out, a)
		}
	}
	return out
}

// Next возвращает ближайшую предстоящую запись. При равных метках времени
// побеждает встреченная первой. ok == false, если предстоящих записей нет.
func Next(list []models.Appointment, now time.Time) (models.Appointment, bool) {
	var (
		best   models.Appointment
		bestTS time.Time
		found  bool
	)
	for _, a := range list {
		ts, ok := Timestamp(a, now.Location())
		if !ok || !ts.After(now) {
			continue
		}
		if !found || ts.Before(bestTS) {
			best, bestTS, found = a, ts, true
		}
	}
	return best, found
}

// ByStatus возвращает записи с заданным статусом. Сравнение идёт по
// каноническому статусу, поэтому pending и scheduled совпадают.
func ByStatus(list []models.Appointment, status models.Status) []models.Appointment {
	want := status.Canonical()
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if a.Status.Canonical() == want {
			out = append(out, a)
		}
	}
	return out
}

// OnDay возвращает записи, чья дата совпадает с календарным днём day
// в часовом поясе day.
func OnDay(list []models.Appointment, day time.Time) []models.Appointment {
	y, m, d := day.Date()
	out := make([]models.Appointment, 0)
	for _, a := range list {
		ts, ok := Timestamp(a, day.Location())
		if !ok {
			continue
		}
		ay, am, ad := ts.Date()
		if ay == y && am == m && ad == d {
			out = append(out, a)
		}
	}
	return out
}

// Counts: количество записей по каноническим статусам.
type Counts struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
	Rejected  int `json:"rejected"`
}

// Count считает записи по статусам. Неизвестные статусы не учитываются.
func Count(list []models.Appointment) Counts {
	var c Counts
	for _, a := range list {
		switch a.Status.Canonical() {
		case models.StatusPending:
			c.Pending++
		case models.StatusConfirmed:
			c.Confirmed++
		case models.StatusCancelled:
			c.Cancelled++
		case models.StatusRejected:
			c.Rejected++
		}
	}
	return c
}

// Split: разбиение списка записей для представлений дашбордов.
type Split struct {
	Upcoming []models.Appointment `json:"upcoming"`
	Past     []models.Appointment `json:"past"`
	Next     *models.Appointment  `json:"next"`
	Counts   Counts               `json:"counts"`
}

// Classify строит Split по списку на момент now.
func Classify(list []models.Appointment, now time.Time) Split {
	s := Split{
		Upcoming: Upcoming(list, now),
		Past:     Past(list, now),
		Counts:   Count(list),
	}
	if next, ok := Next(list, now); ok {
		s.Next = &next
	}
	return s
}
