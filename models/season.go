package models

import "time"

// SeasonStatus представляет статус сезона.
type SeasonStatus string

const (
	SeasonUpcoming  SeasonStatus = "Upcoming"
	SeasonActive    SeasonStatus = "Active"
	SeasonCompleted SeasonStatus = "Completed"
)

func (s SeasonStatus) Valid() bool {
	switch s {
	case SeasonUpcoming, SeasonActive, SeasonCompleted:
		return true
	}
	return false
}

// Season представляет соревновательный сезон (например, "2024-2025").
// Имя сезона уникально. Удаление сезона не удаляет его турниры,
// а обнуляет их season_id.
type Season struct {
	ID          int          `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	StartDate   time.Time    `json:"start_date" db:"start_date"`
	EndDate     time.Time    `json:"end_date" db:"end_date"`
	Status      SeasonStatus `json:"status" db:"status"`
	Description *string      `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
