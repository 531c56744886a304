package models

import "time"

// ClubStatus представляет операционный статус клуба.
type ClubStatus string

const (
	ClubActive    ClubStatus = "Active"
	ClubInactive  ClubStatus = "Inactive"
	ClubPending   ClubStatus = "Pending"
	ClubSuspended ClubStatus = "Suspended"
)

func (s ClubStatus) Valid() bool {
	switch s {
	case ClubActive, ClubInactive, ClubPending, ClubSuspended:
		return true
	}
	return false
}

// Club представляет фехтовальный клуб.
type Club struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	FoundedYear *int       `json:"founded_year,omitempty" db:"founded_year"`
	WeaponFocus *Weapon    `json:"weapon_focus,omitempty" db:"weapon_focus"`
	Status      ClubStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	Fencers []Fencer `json:"fencers,omitempty" db:"-"`
}
