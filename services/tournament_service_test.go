package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fencelab/fencing-system/models"
)

func TestCreateTournamentValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	date := time.Date(2026, time.May, 9, 0, 0, 0, 0, time.UTC)

	valid := CreateTournamentInput{
		Name:            "Spring Open",
		Date:            date,
		Weapon:          models.WeaponFoil,
		Bracket:         models.BracketJunior,
		CompetitionType: models.CompetitionRegional,
	}

	cases := []struct {
		name    string
		mutate  func(in *CreateTournamentInput)
		wantErr error
	}{
		{"empty name", func(in *CreateTournamentInput) { in.Name = "" }, ErrValidationFailed},
		{"zero date", func(in *CreateTournamentInput) { in.Date = time.Time{} }, ErrTournamentInvalidDate},
		{"unknown weapon", func(in *CreateTournamentInput) { in.Weapon = "Longsword" }, ErrValidationFailed},
		{"unknown bracket", func(in *CreateTournamentInput) { in.Bracket = "Masters" }, ErrValidationFailed},
		{"unknown tier", func(in *CreateTournamentInput) { in.CompetitionType = "Galactic" }, ErrValidationFailed},
		{"zero capacity", func(in *CreateTournamentInput) { in.MaxParticipants = intPtr(0) }, ErrTournamentInvalidCapacity},
		{"unknown status", func(in *CreateTournamentInput) { in.Status = "Paused" }, ErrTournamentInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := env.tournaments.CreateTournament(ctx, input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	created, err := env.tournaments.CreateTournament(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, created.Status, "status defaults to Upcoming")
}

func TestUpdateTournamentImmutableFields(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:            "City Cup",
		Date:            time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC),
		Weapon:          models.WeaponSabre,
		Bracket:         models.BracketCadet,
		CompetitionType: models.CompetitionLocal,
	})
	require.NoError(t, err)

	name := "City Cup Renamed"
	updated, err := env.tournaments.UpdateTournament(ctx, created.ID, UpdateTournamentInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, models.WeaponSabre, updated.Weapon)
	assert.Equal(t, models.BracketCadet, updated.Bracket)
	assert.Equal(t, models.CompetitionLocal, updated.CompetitionType)
}

func TestUpdateStatusTransitions(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cases := []struct {
		from    models.TournamentStatus
		to      models.TournamentStatus
		allowed bool
	}{
		{models.StatusUpcoming, models.StatusRegistrationOpen, true},
		{models.StatusUpcoming, models.StatusCancelled, true},
		{models.StatusUpcoming, models.StatusInProgress, false},
		{models.StatusRegistrationOpen, models.StatusInProgress, true},
		{models.StatusRegistrationOpen, models.StatusCompleted, false},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusCancelled, true},
		{models.StatusCompleted, models.StatusInProgress, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusUpcoming, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+" to "+string(tc.to), func(t *testing.T) {
			tournament := env.addTournament(models.Tournament{
				Name: "Transition", Date: time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
				Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
				CompetitionType: models.CompetitionRegional, Status: tc.from,
			})
			_, err := env.tournaments.UpdateStatus(ctx, tournament.ID, tc.to)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
			}
		})
	}
}

func TestRegisterFencer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	date := time.Date(2026, time.May, 16, 0, 0, 0, 0, time.UTC)

	fencer := env.addFencer(
		time.Date(1999, time.November, 11, 0, 0, 0, 0, time.UTC),
		models.GenderFemale, models.WeaponFoil,
	)
	tournament := env.addTournament(models.Tournament{
		Name: "Foil Challenge", Date: date, Weapon: models.WeaponFoil,
		Bracket: models.BracketSenior, CompetitionType: models.CompetitionNational,
		Status: models.StatusRegistrationOpen, MaxParticipants: intPtr(2),
	})

	res, err := env.tournaments.RegisterFencer(ctx, tournament.ID, fencer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlacementUnscored, res.Placement)
	assert.False(t, res.Scored())

	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, fencer.ID)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	wrongWeapon := env.addFencer(
		time.Date(1999, time.November, 11, 0, 0, 0, 0, time.UTC),
		models.GenderFemale, models.WeaponSabre,
	)
	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, wrongWeapon.ID)
	require.ErrorIs(t, err, ErrFencerNotEligible)

	filler := env.addFencer(
		time.Date(1997, time.February, 2, 0, 0, 0, 0, time.UTC),
		models.GenderMale, models.WeaponFoil,
	)
	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, filler.ID)
	require.NoError(t, err)

	overflow := env.addFencer(
		time.Date(1995, time.August, 8, 0, 0, 0, 0, time.UTC),
		models.GenderMale, models.WeaponFoil,
	)
	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, overflow.ID)
	require.ErrorIs(t, err, ErrFencerNotEligible)
	assert.ErrorContains(t, err, "tournament is full (2/2)")

	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, 9999)
	assert.ErrorIs(t, err, ErrFencerNotFound)
	_, err = env.tournaments.RegisterFencer(ctx, 9999, fencer.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestUnregisterFencer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencer := env.addFencer(
		time.Date(2001, time.June, 30, 0, 0, 0, 0, time.UTC),
		models.GenderMale, models.WeaponEpee,
	)
	tournament := env.addTournament(models.Tournament{
		Name: "Epee Open", Date: time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionLocal, Status: models.StatusRegistrationOpen,
	})

	_, err := env.tournaments.RegisterFencer(ctx, tournament.ID, fencer.ID)
	require.NoError(t, err)
	require.NoError(t, env.tournaments.UnregisterFencer(ctx, tournament.ID, fencer.ID))

	err = env.tournaments.UnregisterFencer(ctx, tournament.ID, fencer.ID)
	assert.ErrorIs(t, err, ErrNotRegistered)

	_, err = env.tournaments.RegisterFencer(ctx, tournament.ID, fencer.ID)
	require.NoError(t, err)
	_, err = env.tournaments.UpdateStatus(ctx, tournament.ID, models.StatusInProgress)
	require.NoError(t, err)

	err = env.tournaments.UnregisterFencer(ctx, tournament.ID, fencer.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)
}

func TestRecordResultsChampionship(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	date := time.Date(2026, time.November, 21, 0, 0, 0, 0, time.UTC)

	fencers := seedSeniorEpee(env, 5)
	tournament := env.addTournament(models.Tournament{
		Name: "National Championship", Date: date, Weapon: models.WeaponEpee,
		Bracket: models.BracketSenior, CompetitionType: models.CompetitionChampionship,
		Status: models.StatusRegistrationOpen,
	})

	placements := make(map[int]int, len(fencers))
	for i, f := range fencers {
		_, err := env.tournaments.RegisterFencer(ctx, tournament.ID, f.ID)
		require.NoError(t, err)
		placements[f.ID] = i + 1
	}
	_, err := env.tournaments.UpdateStatus(ctx, tournament.ID, models.StatusInProgress)
	require.NoError(t, err)

	require.NoError(t, env.tournaments.RecordResults(ctx, tournament.ID, placements))

	// Очки Championship: база × 2.
	wantPoints := []int{200, 150, 100, 60, 40}
	results, err := env.tournaments.GetResults(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, results, len(fencers))
	for i, res := range results {
		assert.Equal(t, i+1, res.Placement)
		assert.Equal(t, wantPoints[i], res.PointsAwarded)
	}

	for i, f := range fencers {
		rows, err := env.rankings.ListByFencer(ctx, f.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, models.BracketSenior, rows[0].Bracket)
		assert.Equal(t, wantPoints[i], rows[0].Points)
		assert.Equal(t, 1, rows[0].TournamentsAttended)
	}

	updated, err := env.tournaments.GetTournament(ctx, tournament.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	assert.Equal(t, []models.Bracket{models.BracketSenior}, env.notifier.brackets)

	// Перезапись итогов завершённого турнира: места в обратном порядке,
	// реестр отражает только новые начисления, без двойного счёта.
	reversed := make(map[int]int, len(fencers))
	for i, f := range fencers {
		reversed[f.ID] = len(fencers) - i
	}
	require.NoError(t, env.tournaments.RecordResults(ctx, tournament.ID, reversed))

	for i, f := range fencers {
		rows, err := env.rankings.ListByFencer(ctx, f.ID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, wantPoints[len(fencers)-1-i], rows[0].Points)
		assert.Equal(t, 1, rows[0].TournamentsAttended)
	}
	assert.Equal(t, []models.Bracket{models.BracketSenior, models.BracketSenior}, env.notifier.brackets)
}

// Перезапись, выводящая место за пределы 32-го, снимает и очки, и
// зачтённое посещение.
func TestRecordResultsRescoreBeyondScoringZone(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencers := seedSeniorEpee(env, 2)
	tournament := env.addTournament(models.Tournament{
		Name: "Club Evening", Date: time.Date(2026, time.April, 4, 0, 0, 0, 0, time.UTC),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionLocal, Status: models.StatusRegistrationOpen,
	})
	for _, f := range fencers {
		_, err := env.tournaments.RegisterFencer(ctx, tournament.ID, f.ID)
		require.NoError(t, err)
	}
	_, err := env.tournaments.UpdateStatus(ctx, tournament.ID, models.StatusInProgress)
	require.NoError(t, err)

	require.NoError(t, env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1, fencers[1].ID: 2,
	}))
	rows, err := env.rankings.ListByFencer(ctx, fencers[1].ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 38, rows[0].Points, "Local второе место: 75 × 0.5 с округлением вверх")
	assert.Equal(t, 1, rows[0].TournamentsAttended)

	// Пересмотр: второй участник дисквалифицирован в конец протокола.
	require.NoError(t, env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1, fencers[1].ID: 33,
	}))
	rows, err = env.rankings.ListByFencer(ctx, fencers[1].ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Points)
	assert.Zero(t, rows[0].TournamentsAttended)
}

func TestRecordResultsValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencers := seedSeniorEpee(env, 2)
	tournament := env.addTournament(models.Tournament{
		Name: "Strict Open", Date: time.Date(2026, time.June, 13, 0, 0, 0, 0, time.UTC),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionRegional, Status: models.StatusRegistrationOpen,
	})
	for _, f := range fencers {
		_, err := env.tournaments.RegisterFencer(ctx, tournament.ID, f.ID)
		require.NoError(t, err)
	}

	// Статус ещё Registration Open.
	err := env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1, fencers[1].ID: 2,
	})
	assert.ErrorIs(t, err, ErrResultsNotAllowed)

	_, err = env.tournaments.UpdateStatus(ctx, tournament.ID, models.StatusInProgress)
	require.NoError(t, err)

	err = env.tournaments.RecordResults(ctx, tournament.ID, nil)
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 0, fencers[1].ID: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	err = env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1, fencers[1].ID: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicatePlacement)

	err = env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1,
	})
	assert.ErrorIs(t, err, ErrRegistrantMismatch)

	err = env.tournaments.RecordResults(ctx, tournament.ID, map[int]int{
		fencers[0].ID: 1, fencers[1].ID: 2, 9999: 3,
	})
	assert.ErrorIs(t, err, ErrRegistrantMismatch)

	// После всех отказов результаты так и не зафиксированы.
	results, err := env.tournaments.GetResults(ctx, tournament.ID)
	require.NoError(t, err)
	for _, res := range results {
		assert.False(t, res.Scored())
	}
}

func TestAutoUpdateStatusesByDate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	env.setNow(now)

	insideWindow := env.addTournament(models.Tournament{
		Name: "Opens Soon", Date: now.AddDate(0, 0, 10),
		Weapon: models.WeaponFoil, Bracket: models.BracketJunior,
		CompetitionType: models.CompetitionRegional, Status: models.StatusUpcoming,
	})
	farAway := env.addTournament(models.Tournament{
		Name: "Distant", Date: now.AddDate(0, 0, 60),
		Weapon: models.WeaponFoil, Bracket: models.BracketJunior,
		CompetitionType: models.CompetitionRegional, Status: models.StatusUpcoming,
	})
	dayArrived := env.addTournament(models.Tournament{
		Name: "Today", Date: now.Add(-2 * time.Hour),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionLocal, Status: models.StatusRegistrationOpen,
	})

	require.NoError(t, env.tournaments.AutoUpdateStatusesByDate(ctx))

	assertStatus := func(id int, want models.TournamentStatus) {
		got, err := env.tournaments.GetTournament(ctx, id, false)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}
	assertStatus(insideWindow.ID, models.StatusRegistrationOpen)
	assertStatus(farAway.ID, models.StatusUpcoming)
	assertStatus(dayArrived.ID, models.StatusInProgress)
}
