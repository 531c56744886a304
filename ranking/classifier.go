// Package ranking contains the pure scoring rules of the federation:
// the age-bracket classifier and the tournament points table.
package ranking

import (
	"errors"
	"fmt"
	"time"

	"github.com/fencelab/fencing-system/models"
)

var ErrNegativeAge = errors.New("age cannot be negative")

type ageRange struct {
	bracket models.Bracket
	min     int
	max     int
}

// Age ranges are inclusive and partition every non-negative age into
// exactly one bracket.
var ageBrackets = []ageRange{
	{models.BracketU11, 0, 10},
	{models.BracketU13, 11, 12},
	{models.BracketU15, 13, 14},
	{models.BracketCadet, 15, 16},
	{models.BracketJunior, 17, 19},
	{models.BracketSenior, 20, 1<<31 - 1},
}

// BracketForAge returns the single bracket the given age falls into.
func BracketForAge(age int) (models.Bracket, error) {
	if age < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeAge, age)
	}
	for _, r := range ageBrackets {
		if age >= r.min && age <= r.max {
			return r.bracket, nil
		}
	}
	// Unreachable: the Senior range is open-ended.
	return "", fmt.Errorf("no bracket defined for age %d", age)
}

// AgeAt returns whole elapsed years between dob and ref, decremented by
// one if the birthday has not yet occurred in ref's year.
func AgeAt(dob, ref time.Time) int {
	years := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		years--
	}
	return years
}

// CurrentBracket derives a fencer's bracket from their date of birth as
// of the reference date. The bracket is always recomputed from DOB, it
// is never read back from stored state.
func CurrentBracket(dob, ref time.Time) (models.Bracket, error) {
	return BracketForAge(AgeAt(dob, ref))
}
