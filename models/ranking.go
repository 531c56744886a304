package models

import "time"

// Bracket представляет возрастную категорию, соответствующую ENUM в БД.
type Bracket string

const (
	BracketU11    Bracket = "U11"
	BracketU13    Bracket = "U13"
	BracketU15    Bracket = "U15"
	BracketCadet  Bracket = "Cadet"
	BracketJunior Bracket = "Junior"
	BracketSenior Bracket = "Senior"
)

func (b Bracket) Valid() bool {
	switch b {
	case BracketU11, BracketU13, BracketU15, BracketCadet, BracketJunior, BracketSenior:
		return true
	}
	return false
}

// Ranking хранит накопленные очки фехтовальщика в его текущей возрастной
// категории. На пару (fencer_id, bracket) существует не более одной записи.
type Ranking struct {
	ID                  int       `json:"id" db:"id"`
	FencerID            int       `json:"fencer_id" db:"fencer_id"`
	Bracket             Bracket   `json:"bracket" db:"bracket"`
	Points              int       `json:"points" db:"points"`
	TournamentsAttended int       `json:"tournaments_attended" db:"tournaments_attended"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`

	Fencer *Fencer `json:"fencer,omitempty" db:"-"`
}
