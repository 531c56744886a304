package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fencelab/fencing-system/models"
)

func TestCreateFencer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setNow(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))

	fencer, err := env.fencers.CreateFencer(ctx, CreateFencerInput{
		FirstName: "Astrid",
		LastName:  "Berg",
		DOB:       time.Date(2014, time.October, 2, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderFemale,
		Weapon:    models.WeaponFoil,
	})
	require.NoError(t, err)
	require.Len(t, fencer.Rankings, 1, "a ranking row is created immediately")
	// 11 лет на момент создания.
	assert.Equal(t, models.BracketU13, fencer.Rankings[0].Bracket)
	assert.Zero(t, fencer.Rankings[0].Points)
}

func TestCreateFencerValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	env.setNow(now)

	valid := CreateFencerInput{
		FirstName: "Astrid",
		LastName:  "Berg",
		DOB:       time.Date(2000, time.April, 1, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderFemale,
		Weapon:    models.WeaponFoil,
	}

	cases := []struct {
		name   string
		mutate func(in *CreateFencerInput)
	}{
		{"missing first name", func(in *CreateFencerInput) { in.FirstName = "" }},
		{"missing last name", func(in *CreateFencerInput) { in.LastName = "" }},
		{"zero dob", func(in *CreateFencerInput) { in.DOB = time.Time{} }},
		{"future dob", func(in *CreateFencerInput) { in.DOB = now.AddDate(1, 0, 0) }},
		{"unknown gender", func(in *CreateFencerInput) { in.Gender = "X" }},
		{"unknown weapon", func(in *CreateFencerInput) { in.Weapon = "Rapier" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := env.fencers.CreateFencer(ctx, input)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}

	unknownClub := "FC-NOWHERE"
	input := valid
	input.ClubID = &unknownClub
	_, err := env.fencers.CreateFencer(ctx, input)
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestUpdateFencerClubMembership(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setNow(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))

	club, err := env.clubs.CreateClub(ctx, CreateClubInput{ID: "FC-OSLO", Name: "Oslo Fencing Club"})
	require.NoError(t, err)

	fencer, err := env.fencers.CreateFencer(ctx, CreateFencerInput{
		FirstName: "Jon",
		LastName:  "Moen",
		DOB:       time.Date(1998, time.May, 5, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderMale,
		Weapon:    models.WeaponEpee,
	})
	require.NoError(t, err)

	joined, err := env.fencers.UpdateFencer(ctx, fencer.ID, UpdateFencerInput{ClubID: &club.ID})
	require.NoError(t, err)
	require.NotNil(t, joined.ClubID)
	assert.Equal(t, club.ID, *joined.ClubID)

	left, err := env.fencers.UpdateFencer(ctx, fencer.ID, UpdateFencerInput{LeaveClub: true})
	require.NoError(t, err)
	assert.Nil(t, left.ClubID)
}

func TestGetFencerLoadsRankingsAndClub(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setNow(time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))

	club, err := env.clubs.CreateClub(ctx, CreateClubInput{ID: "FC-BERGEN", Name: "Bergen Fencers"})
	require.NoError(t, err)

	created, err := env.fencers.CreateFencer(ctx, CreateFencerInput{
		FirstName: "Ida",
		LastName:  "Haug",
		DOB:       time.Date(2002, time.August, 20, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderFemale,
		Weapon:    models.WeaponSabre,
		ClubID:    &club.ID,
	})
	require.NoError(t, err)

	fencer, err := env.fencers.GetFencer(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, fencer.Club)
	assert.Equal(t, "Bergen Fencers", fencer.Club.Name)
	require.Len(t, fencer.Rankings, 1)
	assert.Equal(t, models.BracketSenior, fencer.Rankings[0].Bracket)

	_, err = env.fencers.GetFencer(ctx, 9999)
	assert.ErrorIs(t, err, ErrFencerNotFound)
}

// В списке предстоящих — только незавершённые турниры с регистрацией
// фехтовальщика, ближайшие первыми.
func TestGetFencerUpcomingTournaments(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	fencers := seedSeniorEpee(env, 2)
	playedTournament(t, env, fencers, models.CompetitionLocal,
		time.Date(2026, time.February, 7, 0, 0, 0, 0, time.UTC))

	later := env.addTournament(models.Tournament{
		Name: "Autumn Cup", Date: time.Date(2026, time.October, 10, 0, 0, 0, 0, time.UTC),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionRegional, Status: models.StatusRegistrationOpen,
	})
	sooner := env.addTournament(models.Tournament{
		Name: "Spring Open", Date: time.Date(2026, time.May, 9, 0, 0, 0, 0, time.UTC),
		Weapon: models.WeaponEpee, Bracket: models.BracketSenior,
		CompetitionType: models.CompetitionNational, Status: models.StatusUpcoming,
	})
	for _, tid := range []int{later.ID, sooner.ID} {
		_, err := env.tournaments.RegisterFencer(ctx, tid, fencers[0].ID)
		require.NoError(t, err)
	}

	upcoming, err := env.fencers.GetFencerUpcomingTournaments(ctx, fencers[0].ID)
	require.NoError(t, err)
	require.Len(t, upcoming, 2, "завершённый турнир в список не входит")
	assert.Equal(t, "Spring Open", upcoming[0].Name)
	assert.Equal(t, "Autumn Cup", upcoming[1].Name)

	_, err = env.fencers.GetFencerUpcomingTournaments(ctx, 9999)
	assert.ErrorIs(t, err, ErrFencerNotFound)
}
