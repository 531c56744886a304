package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

func TestEnsureRankingCreatesAndReuses(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	asOf := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	// 12 лет на asOf: категория U13.
	fencer := env.addFencer(
		time.Date(2013, time.May, 20, 0, 0, 0, 0, time.UTC),
		models.GenderFemale, models.WeaponSabre,
	)

	rk, err := env.rankings.EnsureRanking(ctx, nil, fencer, asOf)
	require.NoError(t, err)
	assert.Equal(t, models.BracketU13, rk.Bracket)
	assert.Zero(t, rk.Points)
	assert.Zero(t, rk.TournamentsAttended)

	again, err := env.rankings.EnsureRanking(ctx, nil, fencer, asOf)
	require.NoError(t, err)
	assert.Equal(t, rk.ID, again.ID, "second call returns the same row")

	rows, err := env.rankings.ListByFencer(ctx, fencer.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// Повзрослевший фехтовальщик получает вторую строку в новой категории,
// а старая остаётся нетронутой.
func TestEnsureRankingNewBracketAfterAgingUp(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencer := env.addFencer(
		time.Date(2013, time.May, 20, 0, 0, 0, 0, time.UTC),
		models.GenderFemale, models.WeaponSabre,
	)

	u13, err := env.rankings.EnsureRanking(ctx, nil, fencer, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, models.BracketU13, u13.Bracket)
	require.NoError(t, env.rankings.ApplyPoints(ctx, nil, fencer.ID, models.BracketU13, 120))

	u15, err := env.rankings.EnsureRanking(ctx, nil, fencer, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.BracketU15, u15.Bracket)
	assert.Zero(t, u15.Points, "new bracket starts from zero")

	rows, err := env.rankings.ListByFencer(ctx, fencer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 120, rows[0].Points, "old bracket keeps its points")
}

func TestApplyPointsRequiresExistingRow(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencer := env.addFencer(
		time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
		models.GenderMale, models.WeaponEpee,
	)

	err := env.rankings.ApplyPoints(ctx, nil, fencer.ID, models.BracketSenior, 50)
	assert.ErrorIs(t, err, ErrRankingNotFound)

	err = env.rankings.AdjustAttendance(ctx, nil, fencer.ID, models.BracketSenior, 1)
	assert.ErrorIs(t, err, ErrRankingNotFound)
}

func TestListRejectsUnknownFilterValues(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	badBracket := models.Bracket("Veterans")
	_, err := env.rankings.List(ctx, repositories.ListRankingsFilter{Bracket: &badBracket})
	assert.ErrorIs(t, err, ErrValidationFailed)

	badWeapon := models.Weapon("Broadsword")
	_, err = env.rankings.List(ctx, repositories.ListRankingsFilter{Weapon: &badWeapon})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

// Пересчёт восстанавливает реестр из результатов: порча строк рейтинга
// исправляется, а повторный пересчёт ничего не меняет.
func TestRecomputeForFencerRestoresLedger(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setNow(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))

	fencers := seedSeniorEpee(env, 3)
	playedTournament(t, env, fencers, models.CompetitionNational,
		time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC))

	before, err := env.rankings.ListByFencer(ctx, fencers[0].ID)
	require.NoError(t, err)
	require.Len(t, before, 1)
	require.Equal(t, 150, before[0].Points, "1st place at National is 100 × 1.5")
	require.Equal(t, 1, before[0].TournamentsAttended)

	// Портим реестр мимо сервисов.
	require.NoError(t, env.rankingRepo.SetTotals(ctx, nil, before[0].ID, 9999, 42))

	after, err := env.rankings.RecomputeForFencer(ctx, fencers[0].ID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 150, after[0].Points)
	assert.Equal(t, 1, after[0].TournamentsAttended)

	twice, err := env.rankings.RecomputeForFencer(ctx, fencers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, after, twice, "recompute is idempotent")
}

func TestRecomputeAllAndResetAll(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setNow(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))

	fencers := seedSeniorEpee(env, 4)
	playedTournament(t, env, fencers, models.CompetitionRegional,
		time.Date(2026, time.April, 11, 0, 0, 0, 0, time.UTC))

	count, err := env.rankings.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fencers), count)

	affected, err := env.rankings.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fencers), affected)

	rows, err := env.rankings.List(ctx, repositories.ListRankingsFilter{})
	require.NoError(t, err)
	for _, rk := range rows {
		assert.Zero(t, rk.Points)
		assert.Zero(t, rk.TournamentsAttended)
	}
}

// seedSeniorEpee добавляет n взрослых шпажистов.
func seedSeniorEpee(env *testEnv, n int) []*models.Fencer {
	fencers := make([]*models.Fencer, 0, n)
	for i := 0; i < n; i++ {
		fencers = append(fencers, env.addFencer(
			time.Date(1995+i%5, time.March, 3, 0, 0, 0, 0, time.UTC),
			models.GenderMale, models.WeaponEpee,
		))
	}
	return fencers
}

// playedTournament прогоняет полный цикл: открытый турнир Senior Epee,
// регистрация всех фехтовальщиков, места по порядку списка.
func playedTournament(t *testing.T, env *testEnv, fencers []*models.Fencer, tier models.CompetitionType, date time.Time) *models.Tournament {
	t.Helper()
	ctx := context.Background()

	tournament, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:            "Test Open",
		Date:            date,
		Weapon:          models.WeaponEpee,
		Bracket:         models.BracketSenior,
		CompetitionType: tier,
		Status:          models.StatusRegistrationOpen,
	})
	require.NoError(t, err)

	placements := make(map[int]int, len(fencers))
	for i, f := range fencers {
		_, err := env.tournaments.RegisterFencer(ctx, tournament.ID, f.ID)
		require.NoError(t, err)
		placements[f.ID] = i + 1
	}

	_, err = env.tournaments.UpdateStatus(ctx, tournament.ID, models.StatusInProgress)
	require.NoError(t, err)
	require.NoError(t, env.tournaments.RecordResults(ctx, tournament.ID, placements))
	return tournament
}
