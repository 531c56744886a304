package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming         TournamentStatus = "Upcoming"
	StatusRegistrationOpen TournamentStatus = "Registration Open"
	StatusInProgress       TournamentStatus = "In Progress"
	StatusCompleted        TournamentStatus = "Completed"
	StatusCancelled        TournamentStatus = "Cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusRegistrationOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// AcceptsRegistration сообщает, можно ли регистрировать участников.
func (s TournamentStatus) AcceptsRegistration() bool {
	return s == StatusUpcoming || s == StatusRegistrationOpen
}

// CanRecordResults сообщает, можно ли фиксировать результаты.
// Completed входит: итоги завершённого турнира можно исправить,
// реестр рейтингов при этом корректируется на разницу.
func (s TournamentStatus) CanRecordResults() bool {
	return s == StatusInProgress || s == StatusCompleted
}

// CompetitionType представляет уровень турнира, влияющий на множитель очков.
type CompetitionType string

const (
	CompetitionLocal         CompetitionType = "Local"
	CompetitionRegional      CompetitionType = "Regional"
	CompetitionNational      CompetitionType = "National"
	CompetitionChampionship  CompetitionType = "Championship"
	CompetitionInternational CompetitionType = "International"
)

func (c CompetitionType) Valid() bool {
	switch c {
	case CompetitionLocal, CompetitionRegional, CompetitionNational,
		CompetitionChampionship, CompetitionInternational:
		return true
	}
	return false
}

// Tournament представляет турнир федерации.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Date            time.Time        `json:"date" db:"date"`
	Weapon          Weapon           `json:"weapon" db:"weapon"`
	Bracket         Bracket          `json:"bracket" db:"bracket"`
	Gender          *Gender          `json:"gender,omitempty" db:"gender"`
	CompetitionType CompetitionType  `json:"competition_type" db:"competition_type"`
	Status          TournamentStatus `json:"status" db:"status"`
	Location        *string          `json:"location,omitempty" db:"location"`
	MaxParticipants *int             `json:"max_participants,omitempty" db:"max_participants"`
	Description     *string          `json:"description,omitempty" db:"description"`
	SeasonID        *int             `json:"season_id,omitempty" db:"season_id"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Season  *Season            `json:"season,omitempty" db:"-"`
	Results []TournamentResult `json:"results,omitempty" db:"-"`
}
