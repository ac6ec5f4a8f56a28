package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/keepstreak/internal/models"
	"github.com/julianstephens/keepstreak/internal/utils"
)

// PrepareCompletion fills the identity and bookkeeping fields of a record
// produced by a CompletionFunc so every provider persists the same shape.
func PrepareCompletion(next models.Completion, existing *models.Completion, habitID string, day, now time.Time) models.Completion {
	next.HabitID = habitID
	next.Date = utils.DayOf(day)
	next.UpdatedAt = now
	if existing != nil {
		next.ID = existing.ID
		next.CreatedAt = existing.CreatedAt
	} else {
		next.ID = uuid.New().String()
		next.CreatedAt = now
	}
	return next
}
