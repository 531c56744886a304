package models

import "time"

// PlacementUnscored — значение placement для зарегистрированного, но ещё не
// получившего результат участника.
const PlacementUnscored = 0

// TournamentResult представляет результат фехтовальщика в турнире.
// На пару (tournament_id, fencer_id) существует не более одной записи.
type TournamentResult struct {
	ID            int       `json:"id" db:"id"`
	TournamentID  int       `json:"tournament_id" db:"tournament_id"`
	FencerID      int       `json:"fencer_id" db:"fencer_id"`
	Placement     int       `json:"placement" db:"placement"`
	PointsAwarded int       `json:"points_awarded" db:"points_awarded"`
	PoolRecord    *string   `json:"pool_record,omitempty" db:"pool_record"`
	Seeding       *int      `json:"seeding,omitempty" db:"seeding"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	Fencer     *Fencer     `json:"fencer,omitempty" db:"-"`
	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}

// Scored сообщает, зафиксирован ли результат (placement > 0).
func (r *TournamentResult) Scored() bool {
	return r.Placement > PlacementUnscored
}
