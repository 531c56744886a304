package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fencelab/fencing-system/models"
)

func TestBasePoints(t *testing.T) {
	cases := []struct {
		placement int
		want      int
	}{
		{1, 100},
		{2, 75},
		{3, 50},
		{4, 30},
		{5, 20},
		{8, 20},
		{9, 10},
		{16, 10},
		{17, 5},
		{32, 5},
		{33, 0},
		{100, 0},
	}

	for _, tc := range cases {
		got, err := BasePoints(tc.placement)
		require.NoError(t, err, "placement %d", tc.placement)
		assert.Equal(t, tc.want, got, "placement %d", tc.placement)
	}
}

func TestBasePointsInvalid(t *testing.T) {
	for _, placement := range []int{0, -1, -32} {
		_, err := BasePoints(placement)
		assert.ErrorIs(t, err, ErrInvalidPlacement, "placement %d", placement)
	}
}

func TestMultiplier(t *testing.T) {
	cases := map[models.CompetitionType]float64{
		models.CompetitionLocal:         0.5,
		models.CompetitionRegional:      1.0,
		models.CompetitionNational:      1.5,
		models.CompetitionChampionship:  2.0,
		models.CompetitionInternational: 2.5,
	}

	for tier, want := range cases {
		got, err := Multiplier(tier)
		require.NoError(t, err, "tier %s", tier)
		assert.InDelta(t, want, got, 1e-9, "tier %s", tier)
	}

	_, err := Multiplier(models.CompetitionType("galactic"))
	assert.ErrorIs(t, err, ErrUnknownCompetitionType)
}

func TestCalculatePoints(t *testing.T) {
	cases := []struct {
		name      string
		placement int
		tier      models.CompetitionType
		want      int
	}{
		{"regional win", 1, models.CompetitionRegional, 100},
		{"championship win", 1, models.CompetitionChampionship, 200},
		{"international win", 1, models.CompetitionInternational, 250},
		{"local second", 2, models.CompetitionLocal, 38},
		{"national third", 3, models.CompetitionNational, 75},
		{"local fourth", 4, models.CompetitionLocal, 15},
		{"national quarterfinal", 8, models.CompetitionNational, 30},
		// 5 × 0.5 = 2.5 rounds half away from zero, not to even.
		{"local 17th", 17, models.CompetitionLocal, 3},
		{"international 9th", 9, models.CompetitionInternational, 25},
		{"beyond table", 40, models.CompetitionChampionship, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculatePoints(tc.placement, tc.tier)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCalculatePointsErrors(t *testing.T) {
	_, err := CalculatePoints(0, models.CompetitionRegional)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = CalculatePoints(1, models.CompetitionType(""))
	assert.ErrorIs(t, err, ErrUnknownCompetitionType)
}
