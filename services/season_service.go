package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// SeasonService инкапсулирует бизнес-логику для сезонов.
type SeasonService struct {
	seasonRepo     repositories.SeasonRepository
	tournamentRepo repositories.TournamentRepository
}

func NewSeasonService(seasonRepo repositories.SeasonRepository, tournamentRepo repositories.TournamentRepository) *SeasonService {
	return &SeasonService{seasonRepo: seasonRepo, tournamentRepo: tournamentRepo}
}

type CreateSeasonInput struct {
	Name        string               `json:"name"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     time.Time            `json:"end_date"`
	Status      *models.SeasonStatus `json:"status,omitempty"`
	Description *string              `json:"description,omitempty"`
}

func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (*models.Season, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if err := validateSeasonDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	status := models.SeasonUpcoming
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown season status %q", ErrValidationFailed, *input.Status)
		}
		status = *input.Status
	}

	season := &models.Season{
		Name:        input.Name,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      status,
		Description: input.Description,
	}
	if err := s.seasonRepo.Create(ctx, nil, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonNameConflict) {
			return nil, ErrSeasonNameConflict
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *SeasonService) GetSeason(ctx context.Context, id int) (*models.Season, error) {
	season, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return season, nil
}

func (s *SeasonService) ListSeasons(ctx context.Context) ([]models.Season, error) {
	return s.seasonRepo.List(ctx)
}

func (s *SeasonService) DeleteSeason(ctx context.Context, id int) error {
	err := s.seasonRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrSeasonNotFound) {
		return ErrSeasonNotFound
	}
	return err
}

// GetSeasonTournaments возвращает турниры сезона.
func (s *SeasonService) GetSeasonTournaments(ctx context.Context, id int) ([]models.Tournament, error) {
	if _, err := s.GetSeason(ctx, id); err != nil {
		return nil, err
	}
	return s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{SeasonID: &id})
}
