package services

import (
	"fmt"
	"time"

	"github.com/fencelab/fencing-system/models"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isValidStatusTransition описывает жизненный цикл турнира:
// Upcoming → Registration Open → In Progress → Completed, с возможностью
// отмены из любого незавершённого статуса. Completed и Cancelled конечны.
func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusUpcoming:         {models.StatusRegistrationOpen, models.StatusCancelled},
		models.StatusRegistrationOpen: {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress:       {models.StatusCompleted, models.StatusCancelled},
		models.StatusCompleted:        {},
		models.StatusCancelled:        {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func validateSeasonDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidationFailed)
	}
	if !start.Before(end) {
		return fmt.Errorf("%w: start %s, end %s", ErrSeasonInvalidDateRange,
			start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return nil
}

func validateWeapon(w models.Weapon) error {
	if !w.Valid() {
		return fmt.Errorf("%w: unknown weapon %q", ErrValidationFailed, w)
	}
	return nil
}

func validateGender(g models.Gender) error {
	if !g.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrValidationFailed, g)
	}
	return nil
}

func validateBracket(b models.Bracket) error {
	if !b.Valid() {
		return fmt.Errorf("%w: unknown bracket %q", ErrValidationFailed, b)
	}
	return nil
}
