package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// FencerService инкапсулирует бизнес-логику для фехтовальщиков.
type FencerService struct {
	fencerRepo  repositories.FencerRepository
	clubRepo    repositories.ClubRepository
	resultRepo  repositories.ResultRepository
	rankingRepo repositories.RankingRepository
	rankings    *RankingService
	tx          repositories.Transactor
	logger      *slog.Logger

	now func() time.Time
}

func NewFencerService(
	fencerRepo repositories.FencerRepository,
	clubRepo repositories.ClubRepository,
	resultRepo repositories.ResultRepository,
	rankingRepo repositories.RankingRepository,
	rankings *RankingService,
	tx repositories.Transactor,
	logger *slog.Logger,
) *FencerService {
	return &FencerService{
		fencerRepo:  fencerRepo,
		clubRepo:    clubRepo,
		resultRepo:  resultRepo,
		rankingRepo: rankingRepo,
		rankings:    rankings,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

type CreateFencerInput struct {
	FirstName string        `json:"first_name"`
	LastName  string        `json:"last_name"`
	DOB       time.Time     `json:"dob"`
	Gender    models.Gender `json:"gender"`
	Weapon    models.Weapon `json:"weapon"`
	ClubID    *string       `json:"club_id,omitempty"`
}

// CreateFencer создаёт фехтовальщика и сразу его строку рейтинга в
// текущей возрастной категории, в одной транзакции.
func (s *FencerService) CreateFencer(ctx context.Context, input CreateFencerInput) (*models.Fencer, error) {
	if input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidationFailed)
	}
	if input.DOB.IsZero() {
		return nil, fmt.Errorf("%w: date of birth is required", ErrValidationFailed)
	}
	if input.DOB.After(s.now()) {
		return nil, fmt.Errorf("%w: date of birth is in the future", ErrValidationFailed)
	}
	if err := validateGender(input.Gender); err != nil {
		return nil, err
	}
	if err := validateWeapon(input.Weapon); err != nil {
		return nil, err
	}

	fencer := &models.Fencer{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		DOB:       input.DOB,
		Gender:    input.Gender,
		Weapon:    input.Weapon,
		ClubID:    input.ClubID,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fencerRepo.Create(ctx, exec, fencer); err != nil {
			if errors.Is(err, repositories.ErrFencerInvalidClub) {
				return fmt.Errorf("%w: %s", ErrClubNotFound, derefString(input.ClubID))
			}
			return fmt.Errorf("failed to create fencer: %w", err)
		}
		rk, err := s.rankings.EnsureRanking(ctx, exec, fencer, s.now())
		if err != nil {
			return err
		}
		fencer.Rankings = []models.Ranking{*rk}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fencer created",
		slog.Int("fencer_id", fencer.ID),
		slog.String("name", fencer.FullName()),
		slog.String("bracket", string(fencer.Rankings[0].Bracket)),
	)
	return fencer, nil
}

// GetFencer возвращает фехтовальщика со строками рейтинга и клубом.
func (s *FencerService) GetFencer(ctx context.Context, id int) (*models.Fencer, error) {
	fencer, err := s.fencerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}

	rankings, err := s.rankingRepo.ListByFencer(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load rankings: %w", err)
	}
	fencer.Rankings = rankings

	if fencer.ClubID != nil {
		club, err := s.clubRepo.GetByID(ctx, *fencer.ClubID)
		if err == nil {
			fencer.Club = club
		} else if !errors.Is(err, repositories.ErrClubNotFound) {
			return nil, err
		}
	}
	return fencer, nil
}

func (s *FencerService) ListFencers(ctx context.Context, filter repositories.ListFencersFilter) ([]models.Fencer, error) {
	if filter.Weapon != nil {
		if err := validateWeapon(*filter.Weapon); err != nil {
			return nil, err
		}
	}
	if filter.Gender != nil {
		if err := validateGender(*filter.Gender); err != nil {
			return nil, err
		}
	}
	return s.fencerRepo.List(ctx, filter)
}

type UpdateFencerInput struct {
	FirstName *string        `json:"first_name,omitempty"`
	LastName  *string        `json:"last_name,omitempty"`
	Weapon    *models.Weapon `json:"weapon,omitempty"`
	ClubID    *string        `json:"club_id,omitempty"`
	LeaveClub bool           `json:"leave_club,omitempty"`
}

// UpdateFencer обновляет изменяемые поля. Дата рождения и пол —
// идентичность фехтовальщика и не редактируются.
func (s *FencerService) UpdateFencer(ctx context.Context, id int, input UpdateFencerInput) (*models.Fencer, error) {
	fencer, err := s.fencerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, fmt.Errorf("%w: first name cannot be empty", ErrValidationFailed)
		}
		fencer.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, fmt.Errorf("%w: last name cannot be empty", ErrValidationFailed)
		}
		fencer.LastName = *input.LastName
	}
	if input.Weapon != nil {
		if err := validateWeapon(*input.Weapon); err != nil {
			return nil, err
		}
		fencer.Weapon = *input.Weapon
	}
	switch {
	case input.LeaveClub:
		fencer.ClubID = nil
	case input.ClubID != nil:
		fencer.ClubID = input.ClubID
	}

	if err := s.fencerRepo.Update(ctx, fencer); err != nil {
		switch {
		case errors.Is(err, repositories.ErrFencerNotFound):
			return nil, ErrFencerNotFound
		case errors.Is(err, repositories.ErrFencerInvalidClub):
			return nil, fmt.Errorf("%w: %s", ErrClubNotFound, derefString(input.ClubID))
		}
		return nil, err
	}
	return fencer, nil
}

func (s *FencerService) DeleteFencer(ctx context.Context, id int) error {
	err := s.fencerRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrFencerNotFound) {
		return ErrFencerNotFound
	}
	return err
}

// GetFencerResults возвращает историю результатов фехтовальщика,
// новые — первыми.
func (s *FencerService) GetFencerResults(ctx context.Context, id int) ([]models.TournamentResult, error) {
	if _, err := s.fencerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}
	return s.resultRepo.ListByFencer(ctx, id)
}

// GetFencerUpcomingTournaments возвращает ещё не завершённые турниры,
// на которые фехтовальщик зарегистрирован, ближайшие — первыми.
func (s *FencerService) GetFencerUpcomingTournaments(ctx context.Context, id int) ([]models.Tournament, error) {
	if _, err := s.fencerRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}
	return s.resultRepo.ListUpcomingTournaments(ctx, id)
}
