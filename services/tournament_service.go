package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/ranking"
	"github.com/fencelab/fencing-system/repositories"
)

// Окно автоматического открытия регистрации перед датой турнира.
const registrationOpenWindow = 30 * 24 * time.Hour

// StandingsNotifier получает уведомление после фиксации результатов,
// чтобы разослать обновлённую таблицу подписчикам категории.
type StandingsNotifier interface {
	NotifyBracket(bracket models.Bracket)
}

// TournamentService управляет жизненным циклом турниров: создание,
// регистрация участников, фиксация результатов и переходы статусов.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	resultRepo     repositories.ResultRepository
	fencerRepo     repositories.FencerRepository
	rankings       *RankingService
	eligibility    *EligibilityChecker
	tx             repositories.Transactor
	notifier       StandingsNotifier
	logger         *slog.Logger

	now func() time.Time
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	resultRepo repositories.ResultRepository,
	fencerRepo repositories.FencerRepository,
	rankings *RankingService,
	eligibility *EligibilityChecker,
	tx repositories.Transactor,
	notifier StandingsNotifier,
	logger *slog.Logger,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		resultRepo:     resultRepo,
		fencerRepo:     fencerRepo,
		rankings:       rankings,
		eligibility:    eligibility,
		tx:             tx,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

type CreateTournamentInput struct {
	Name            string                  `json:"name"`
	Date            time.Time               `json:"date"`
	Weapon          models.Weapon           `json:"weapon"`
	Bracket         models.Bracket          `json:"bracket"`
	Gender          *models.Gender          `json:"gender,omitempty"`
	CompetitionType models.CompetitionType  `json:"competition_type"`
	Status          models.TournamentStatus `json:"status,omitempty"`
	Location        *string                 `json:"location,omitempty"`
	MaxParticipants *int                    `json:"max_participants,omitempty"`
	Description     *string                 `json:"description,omitempty"`
	SeasonID        *int                    `json:"season_id,omitempty"`
}

// CreateTournament создаёт турнир. Дата в прошлом допустима (ввод
// исторических результатов), но логируется предупреждением.
func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.Date.IsZero() {
		return nil, ErrTournamentInvalidDate
	}
	if err := validateWeapon(input.Weapon); err != nil {
		return nil, err
	}
	if err := validateBracket(input.Bracket); err != nil {
		return nil, err
	}
	if input.Gender != nil {
		if err := validateGender(*input.Gender); err != nil {
			return nil, err
		}
	}
	if _, err := ranking.Multiplier(input.CompetitionType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		return nil, ErrTournamentInvalidCapacity
	}

	status := input.Status
	if status == "" {
		status = models.StatusUpcoming
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, status)
	}

	t := &models.Tournament{
		Name:            input.Name,
		Date:            input.Date,
		Weapon:          input.Weapon,
		Bracket:         input.Bracket,
		Gender:          input.Gender,
		CompetitionType: input.CompetitionType,
		Status:          status,
		Location:        input.Location,
		MaxParticipants: input.MaxParticipants,
		Description:     input.Description,
		SeasonID:        input.SeasonID,
	}

	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidSeason) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if t.Date.Before(s.now()) {
		s.logger.WarnContext(ctx, "tournament created with a past date",
			slog.Int("tournament_id", t.ID),
			slog.Time("date", t.Date),
		)
	}
	return t, nil
}

// GetTournament возвращает турнир, при withResults — вместе с
// зарегистрированными результатами.
func (s *TournamentService) GetTournament(ctx context.Context, id int, withResults bool) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if withResults {
		results, err := s.resultRepo.ListByTournament(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load tournament results: %w", err)
		}
		t.Results = results
	}
	return t, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, *filter.Status)
	}
	if filter.Weapon != nil {
		if err := validateWeapon(*filter.Weapon); err != nil {
			return nil, err
		}
	}
	if filter.Bracket != nil {
		if err := validateBracket(*filter.Bracket); err != nil {
			return nil, err
		}
	}
	return s.tournamentRepo.List(ctx, filter)
}

type UpdateTournamentInput struct {
	Name            *string                  `json:"name,omitempty"`
	Date            *time.Time               `json:"date,omitempty"`
	Status          *models.TournamentStatus `json:"status,omitempty"`
	Location        *string                  `json:"location,omitempty"`
	MaxParticipants *int                     `json:"max_participants,omitempty"`
	Description     *string                  `json:"description,omitempty"`
	SeasonID        *int                     `json:"season_id,omitempty"`
}

// UpdateTournament обновляет изменяемые поля. Оружие, категория, пол и
// уровень турнира после создания не меняются: на них завязаны
// регистрации и начисленные очки.
func (s *TournamentService) UpdateTournament(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.GetTournament(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidationFailed)
		}
		t.Name = *input.Name
	}
	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, ErrTournamentInvalidDate
		}
		t.Date = *input.Date
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, *input.Status)
		}
		if !isValidStatusTransition(t.Status, *input.Status) {
			return nil, fmt.Errorf("%w: %s → %s", ErrTournamentInvalidStatusTransition, t.Status, *input.Status)
		}
		t.Status = *input.Status
	}
	if input.Location != nil {
		t.Location = input.Location
	}
	if input.MaxParticipants != nil {
		if *input.MaxParticipants <= 0 {
			return nil, ErrTournamentInvalidCapacity
		}
		t.MaxParticipants = input.MaxParticipants
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.SeasonID != nil {
		t.SeasonID = input.SeasonID
	}

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentInvalidSeason):
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return t, nil
}

// UpdateStatus переводит турнир в новый статус по правилам жизненного
// цикла.
func (s *TournamentService) UpdateStatus(ctx context.Context, id int, next models.TournamentStatus) (*models.Tournament, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrTournamentInvalidStatus, next)
	}
	t, err := s.GetTournament(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, next) {
		return nil, fmt.Errorf("%w: %s → %s", ErrTournamentInvalidStatusTransition, t.Status, next)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.Status = next
	return t, nil
}

func (s *TournamentService) DeleteTournament(ctx context.Context, id int) error {
	err := s.tournamentRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentInUse):
		return fmt.Errorf("%w: results are recorded for this tournament", ErrValidationFailed)
	}
	return err
}

// RegisterFencer регистрирует фехтовальщика в турнире: полная проверка
// допуска и вставка незакрытого результата (placement = 0) идут в одной
// транзакции, чтобы лимит мест держался и под конкурентной записью.
func (s *TournamentService) RegisterFencer(ctx context.Context, tournamentID, fencerID int) (*models.TournamentResult, error) {
	fencer, err := s.fencerRepo.GetByID(ctx, fencerID)
	if err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}

	var res *models.TournamentResult
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		ok, reason, err := s.eligibility.Check(ctx, exec, fencer, t)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrFencerNotEligible, reason)
		}

		res = &models.TournamentResult{
			TournamentID: t.ID,
			FencerID:     fencer.ID,
			Placement:    models.PlacementUnscored,
		}
		if err := s.resultRepo.Create(ctx, exec, res); err != nil {
			if errors.Is(err, repositories.ErrResultExists) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("failed to register fencer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fencer registered",
		slog.Int("tournament_id", tournamentID),
		slog.Int("fencer_id", fencerID),
	)
	return res, nil
}

// UnregisterFencer снимает фехтовальщика с турнира, пока регистрация
// ещё открыта.
func (s *TournamentService) UnregisterFencer(ctx context.Context, tournamentID, fencerID int) error {
	t, err := s.GetTournament(ctx, tournamentID, false)
	if err != nil {
		return err
	}
	if !t.Status.AcceptsRegistration() {
		return fmt.Errorf("%w: status is %s", ErrRegistrationNotOpen, t.Status)
	}
	if err := s.resultRepo.DeleteByTournamentAndFencer(ctx, tournamentID, fencerID); err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	return nil
}

// RecordResults фиксирует итоги турнира: каждому зарегистрированному
// участнику — место и очки, затем обновление реестра рейтингов и
// перевод турнира в Completed. Всё в одной транзакции: либо проходит
// целиком, либо не меняет ничего.
//
// Повторный вызов по завершённому турниру перезаписывает итоги:
// в реестр попадает разница между новыми и прежними очками, так что
// двойного начисления не происходит.
//
// placements — отображение ID фехтовальщика в занятое место. Ключи
// обязаны совпадать с множеством зарегистрированных, места — быть
// положительными и попарно различными.
func (s *TournamentService) RecordResults(ctx context.Context, tournamentID int, placements map[int]int) error {
	if len(placements) == 0 {
		return fmt.Errorf("%w: no placements provided", ErrValidationFailed)
	}
	seen := make(map[int]int, len(placements))
	for fencerID, placement := range placements {
		if placement <= 0 {
			return fmt.Errorf("%w: fencer %d got placement %d", ErrInvalidPlacement, fencerID, placement)
		}
		if other, dup := seen[placement]; dup {
			return fmt.Errorf("%w: fencers %d and %d both placed %d", ErrDuplicatePlacement, other, fencerID, placement)
		}
		seen[placement] = fencerID
	}

	var bracket models.Bracket
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if !t.Status.CanRecordResults() {
			return fmt.Errorf("%w: status is %s", ErrResultsNotAllowed, t.Status)
		}

		registered, err := s.resultRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if len(registered) == 0 {
			return fmt.Errorf("%w: tournament has no registered fencers", ErrValidationFailed)
		}
		if err := checkRegistrantSet(registered, placements); err != nil {
			return err
		}

		for i := range registered {
			res := &registered[i]
			placement := placements[res.FencerID]
			points, err := ranking.CalculatePoints(placement, t.CompetitionType)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			prevPoints := 0
			if res.Placement != models.PlacementUnscored {
				prevPoints = res.PointsAwarded
			}
			if err := s.resultRepo.UpdateScore(ctx, exec, res.ID, placement, points); err != nil {
				return fmt.Errorf("failed to score fencer %d: %w", res.FencerID, err)
			}

			fencer, err := s.fencerRepo.GetByID(ctx, res.FencerID)
			if err != nil {
				return fmt.Errorf("failed to load fencer %d: %w", res.FencerID, err)
			}
			// Категория на дату турнира совпадает с категорией на момент
			// регистрации: допуск проверялся той же датой.
			if _, err := s.rankings.EnsureRanking(ctx, exec, fencer, t.Date); err != nil {
				return err
			}
			// В реестр идёт разница с прежним начислением; при первой
			// фиксации prevPoints равен нулю и разница — сами очки.
			// Места за пределами 32-го очков не приносят и посещаемость
			// не увеличивают: пересчёт из результатов даёт тот же итог.
			if delta := points - prevPoints; delta != 0 {
				if err := s.rankings.ApplyPoints(ctx, exec, res.FencerID, t.Bracket, delta); err != nil {
					return err
				}
			}
			switch {
			case prevPoints == 0 && points > 0:
				err = s.rankings.AdjustAttendance(ctx, exec, res.FencerID, t.Bracket, 1)
			case prevPoints > 0 && points == 0:
				err = s.rankings.AdjustAttendance(ctx, exec, res.FencerID, t.Bracket, -1)
			}
			if err != nil {
				return err
			}
		}

		if t.Status != models.StatusCompleted {
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.StatusCompleted); err != nil {
				return err
			}
		}
		bracket = t.Bracket
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "tournament results recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("results", len(placements)),
		slog.String("bracket", string(bracket)),
	)
	if s.notifier != nil {
		s.notifier.NotifyBracket(bracket)
	}
	return nil
}

// checkRegistrantSet требует точного совпадения множества ключей
// placements с множеством зарегистрированных участников.
func checkRegistrantSet(registered []models.TournamentResult, placements map[int]int) error {
	regSet := make(map[int]struct{}, len(registered))
	var missing, unknown []int
	for i := range registered {
		regSet[registered[i].FencerID] = struct{}{}
		if _, ok := placements[registered[i].FencerID]; !ok {
			missing = append(missing, registered[i].FencerID)
		}
	}
	for fencerID := range placements {
		if _, ok := regSet[fencerID]; !ok {
			unknown = append(unknown, fencerID)
		}
	}
	if len(missing) == 0 && len(unknown) == 0 {
		return nil
	}
	sort.Ints(missing)
	sort.Ints(unknown)
	return fmt.Errorf("%w: missing placements for fencers %v, placements for unregistered fencers %v",
		ErrRegistrantMismatch, missing, unknown)
}

// GetResults возвращает результаты турнира в порядке занятых мест.
func (s *TournamentService) GetResults(ctx context.Context, tournamentID int) ([]models.TournamentResult, error) {
	if _, err := s.GetTournament(ctx, tournamentID, false); err != nil {
		return nil, err
	}
	return s.resultRepo.ListByTournament(ctx, nil, tournamentID)
}

// AutoUpdateStatusesByDate продвигает статусы по календарю: за
// registrationOpenWindow до даты открывается регистрация, в день
// турнира он переходит в In Progress. Вызывается планировщиком.
func (s *TournamentService) AutoUpdateStatusesByDate(ctx context.Context) error {
	now := s.now()
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		due, err := s.tournamentRepo.ListForAutoStatusUpdate(ctx, exec, now, registrationOpenWindow)
		if err != nil {
			return err
		}
		for _, t := range due {
			var next models.TournamentStatus
			switch t.Status {
			case models.StatusUpcoming:
				next = models.StatusRegistrationOpen
			case models.StatusRegistrationOpen:
				next = models.StatusInProgress
			default:
				continue
			}
			if err := s.tournamentRepo.UpdateStatus(ctx, exec, t.ID, next); err != nil {
				return err
			}
			s.logger.InfoContext(ctx, "tournament status advanced by schedule",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(next)),
			)
		}
		return nil
	})
}
