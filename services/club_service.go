package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// Идентификатор клуба задаётся федерацией: короткий код вида "FC-OSLO".
var clubIDPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,31}$`)

// ClubService инкапсулирует бизнес-логику для клубов.
type ClubService struct {
	clubRepo   repositories.ClubRepository
	fencerRepo repositories.FencerRepository
}

func NewClubService(clubRepo repositories.ClubRepository, fencerRepo repositories.FencerRepository) *ClubService {
	return &ClubService{clubRepo: clubRepo, fencerRepo: fencerRepo}
}

type CreateClubInput struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	FoundedYear *int               `json:"founded_year,omitempty"`
	WeaponFocus *models.Weapon     `json:"weapon_focus,omitempty"`
	Status      *models.ClubStatus `json:"status,omitempty"`
}

func (s *ClubService) CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, error) {
	if !clubIDPattern.MatchString(input.ID) {
		return nil, fmt.Errorf("%w: club id must match %s", ErrValidationFailed, clubIDPattern)
	}
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.FoundedYear != nil {
		if year := *input.FoundedYear; year < 1800 || year > time.Now().Year() {
			return nil, fmt.Errorf("%w: founded year %d is out of range", ErrValidationFailed, year)
		}
	}
	if input.WeaponFocus != nil {
		if err := validateWeapon(*input.WeaponFocus); err != nil {
			return nil, err
		}
	}

	status := models.ClubActive
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown club status %q", ErrValidationFailed, *input.Status)
		}
		status = *input.Status
	}

	club := &models.Club{
		ID:          input.ID,
		Name:        input.Name,
		FoundedYear: input.FoundedYear,
		WeaponFocus: input.WeaponFocus,
		Status:      status,
	}
	if err := s.clubRepo.Create(ctx, nil, club); err != nil {
		if errors.Is(err, repositories.ErrClubIDTaken) {
			return nil, ErrClubIDConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

// GetClub возвращает клуб вместе со списком его фехтовальщиков.
func (s *ClubService) GetClub(ctx context.Context, id string) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	fencers, err := s.fencerRepo.List(ctx, repositories.ListFencersFilter{ClubID: &club.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load club members: %w", err)
	}
	club.Fencers = fencers
	return club, nil
}

func (s *ClubService) ListClubs(ctx context.Context, status *models.ClubStatus) ([]models.Club, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown club status %q", ErrValidationFailed, *status)
	}
	return s.clubRepo.List(ctx, status)
}

type UpdateClubInput struct {
	Name        *string            `json:"name,omitempty"`
	FoundedYear *int               `json:"founded_year,omitempty"`
	WeaponFocus *models.Weapon     `json:"weapon_focus,omitempty"`
	Status      *models.ClubStatus `json:"status,omitempty"`
}

func (s *ClubService) UpdateClub(ctx context.Context, id string, input UpdateClubInput) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
		}
		club.Name = *input.Name
	}
	if input.FoundedYear != nil {
		club.FoundedYear = input.FoundedYear
	}
	if input.WeaponFocus != nil {
		if err := validateWeapon(*input.WeaponFocus); err != nil {
			return nil, err
		}
		club.WeaponFocus = input.WeaponFocus
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown club status %q", ErrValidationFailed, *input.Status)
		}
		club.Status = *input.Status
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return club, nil
}

func (s *ClubService) DeleteClub(ctx context.Context, id string) error {
	err := s.clubRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrClubNotFound) {
		return ErrClubNotFound
	}
	return err
}

// ClubStanding — суммарные очки клуба, опционально по одной категории.
type ClubStanding struct {
	ClubID      string          `json:"club_id"`
	Bracket     *models.Bracket `json:"bracket,omitempty"`
	TotalPoints int             `json:"total_points"`
}

func (s *ClubService) GetClubStanding(ctx context.Context, id string, bracket *models.Bracket) (*ClubStanding, error) {
	if bracket != nil {
		if err := validateBracket(*bracket); err != nil {
			return nil, err
		}
	}
	if _, err := s.clubRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	total, err := s.clubRepo.TotalPoints(ctx, id, bracket)
	if err != nil {
		return nil, err
	}
	return &ClubStanding{ClubID: id, Bracket: bracket, TotalPoints: total}, nil
}
