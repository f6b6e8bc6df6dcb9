package timeline

import "github.com/magabrotheeeer/medlink-portal/internal/models"

// переходы статусов, которые портал готов запросить у backend
var transitions = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusConfirmed, models.StatusRejected, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled},
}

// CanTransition сообщает, допустим ли переход from -> to.
// Cancelled и rejected терминальны.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from.Canonical()] {
		if s == to.Canonical() {
			return true
		}
	}
	return false
}
