// Package doctorfilter реализует клиентскую фильтрацию каталога врачей
// по свободному тексту и фасету специализации.
package doctorfilter

import (
	"sort"
	"strings"

	"github.com/magabrotheeeer/medlink-portal/internal/models"
)

// Matches сообщает, подходит ли врач под запрос и фасет.
//
// Фасет сравнивается точно, запрос ищется без учёта регистра
// в имени, специализации и локации врача.
func Matches(d models.Doctor, query, specialty string) bool {
	if specialty != "" && d.Specialization != specialty {
		return false
	}
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{d.Name, d.Specialization, d.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter возвращает новый срез подходящих врачей в исходном порядке.
// Входной срез не изменяется.
func Filter(doctors []models.Doctor, query, specialty string) []models.Doctor {
	out := make([]models.Doctor, 0, len(doctors))
	for _, d := range doctors {
		if Matches(d, query, specialty) {
			out = append(out, d)
		}
	}
	return out
}

// Specialties возвращает отсортированный список различных непустых специализаций.
func Specialties(doctors []models.Doctor) []string {
	seen := make(map[string]struct{}, len(doctors))
	out := make([]string, 0)
	for _, d := range doctors {
		if d.Specialization == "" {
			continue
		}
		if _, ok := seen[d.Specialization]; ok {
			continue
		}
		seen[d.Specialization] = struct{}{}
		out = append(out, d.Specialization)
	}
	sort.Strings(out)
	return out
}
