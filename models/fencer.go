package models

import "time"

// Weapon представляет оружейную дисциплину, соответствующую ENUM в БД.
type Weapon string

const (
	WeaponSabre Weapon = "Sabre"
	WeaponFoil  Weapon = "Foil"
	WeaponEpee  Weapon = "Epee"
)

func (w Weapon) Valid() bool {
	switch w {
	case WeaponSabre, WeaponFoil, WeaponEpee:
		return true
	}
	return false
}

// Gender представляет гендерную категорию фехтовальщика.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Fencer представляет фехтовальщика федерации.
type Fencer struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	DOB       time.Time `json:"dob" db:"dob"`
	Gender    Gender    `json:"gender" db:"gender"`
	Weapon    Weapon    `json:"weapon" db:"weapon"`
	ClubID    *string   `json:"club_id,omitempty" db:"club_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Club     *Club     `json:"club,omitempty" db:"-"`
	Rankings []Ranking `json:"rankings,omitempty" db:"-"`
}

func (f *Fencer) FullName() string {
	return f.FirstName + " " + f.LastName
}
