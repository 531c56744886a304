package ranking

import (
	"errors"
	"fmt"
	"math"

	"github.com/fencelab/fencing-system/models"
)

var (
	ErrInvalidPlacement       = errors.New("placement must be a positive integer")
	ErrUnknownCompetitionType = errors.New("unknown competition type")
)

// Competition type multipliers applied to base points. Regional is the
// baseline.
var competitionMultipliers = map[models.CompetitionType]float64{
	models.CompetitionLocal:         0.5,
	models.CompetitionRegional:      1.0,
	models.CompetitionNational:      1.5,
	models.CompetitionChampionship:  2.0,
	models.CompetitionInternational: 2.5,
}

// BasePoints returns the Regional-equivalent points for a placement.
// Placements share values in bands: 5th-8th, 9th-16th and 17th-32nd are
// tied, anything beyond 32nd earns nothing.
func BasePoints(placement int) (int, error) {
	if placement <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidPlacement, placement)
	}
	switch {
	case placement == 1:
		return 100, nil
	case placement == 2:
		return 75, nil
	case placement == 3:
		return 50, nil
	case placement == 4:
		return 30, nil
	case placement <= 8:
		return 20, nil
	case placement <= 16:
		return 10, nil
	case placement <= 32:
		return 5, nil
	default:
		return 0, nil
	}
}

// Multiplier returns the point multiplier for a competition type.
// An unknown type is a configuration error, never a silent default.
func Multiplier(tier models.CompetitionType) (float64, error) {
	m, ok := competitionMultipliers[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompetitionType, tier)
	}
	return m, nil
}

// CalculatePoints returns the points awarded for a placement at the
// given competition level: round(base × multiplier). Rounding is
// half-away-from-zero (math.Round); with this base table exact .5
// products only arise from the Local multiplier (e.g. 5 × 0.5 → 3).
func CalculatePoints(placement int, tier models.CompetitionType) (int, error) {
	base, err := BasePoints(placement)
	if err != nil {
		return 0, err
	}
	mult, err := Multiplier(tier)
	if err != nil {
		return 0, err
	}
	return int(math.Round(float64(base) * mult)), nil
}
