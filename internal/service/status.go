package service

import "github.com/Skotchmaster/storefront/internal/models"

// StatusTransitions lists, per current status, the statuses an order may be
// moved to. Every pair is currently allowed; tighten rules here.
var StatusTransitions = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusPending, models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:      {models.StatusPending, models.StatusPaid, models.StatusCancelled},
	models.StatusCancelled: {models.StatusPending, models.StatusPaid, models.StatusCancelled},
}

func CanTransition(from, to models.Status) bool {
	for _, s := range StatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
