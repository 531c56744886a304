package services

import (
	"context"
	"fmt"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/ranking"
	"github.com/fencelab/fencing-system/repositories"
)

// EligibilityChecker решает, может ли фехтовальщик выступать в турнире.
// Проверки идут в фиксированном порядке, и первая неудавшаяся даёт
// человекочитаемую причину отказа.
type EligibilityChecker struct {
	resultRepo repositories.ResultRepository
}

func NewEligibilityChecker(resultRepo repositories.ResultRepository) *EligibilityChecker {
	return &EligibilityChecker{resultRepo: resultRepo}
}

// MatchesEntryRules проверяет атрибутные правила допуска: оружие,
// возрастную категорию на дату турнира и пол (если турнир не открытый).
// Статус и вместимость турнира здесь не учитываются.
func (c *EligibilityChecker) MatchesEntryRules(fencer *models.Fencer, t *models.Tournament) (bool, string, error) {
	if fencer.Weapon != t.Weapon {
		return false, fmt.Sprintf("fencer competes in %s, tournament is %s", fencer.Weapon, t.Weapon), nil
	}

	bracket, err := ranking.CurrentBracket(fencer.DOB, t.Date)
	if err != nil {
		return false, "", fmt.Errorf("failed to derive bracket: %w", err)
	}
	if bracket != t.Bracket {
		return false, fmt.Sprintf("fencer is in %s bracket, tournament is %s", bracket, t.Bracket), nil
	}

	if t.Gender != nil && fencer.Gender != *t.Gender {
		return false, fmt.Sprintf("fencer gender %s does not match tournament gender %s", fencer.Gender, *t.Gender), nil
	}

	return true, "", nil
}

// Check выполняет полную проверку допуска для регистрации: правила
// допуска, свободные места и статус турнира, в этом порядке. Подсчёт
// мест читается через exec, чтобы регистрация видела собственную
// транзакцию.
func (c *EligibilityChecker) Check(ctx context.Context, exec repositories.SQLExecutor, fencer *models.Fencer, t *models.Tournament) (bool, string, error) {
	ok, reason, err := c.MatchesEntryRules(fencer, t)
	if err != nil || !ok {
		return ok, reason, err
	}

	if t.MaxParticipants != nil {
		count, err := c.resultRepo.CountByTournament(ctx, exec, t.ID)
		if err != nil {
			return false, "", fmt.Errorf("failed to count participants: %w", err)
		}
		if count >= *t.MaxParticipants {
			return false, fmt.Sprintf("tournament is full (%d/%d)", count, *t.MaxParticipants), nil
		}
	}

	if !t.Status.AcceptsRegistration() {
		return false, fmt.Sprintf("tournament status is %s, registration is closed", t.Status), nil
	}

	return true, "", nil
}
