package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/ranking"
	"github.com/fencelab/fencing-system/repositories"
)

// RankingService ведёт реестр рейтингов: одна строка на пару
// (фехтовальщик, возрастная категория). Строки создаются лениво через
// EnsureRanking; начисления идут только в уже существующие строки.
type RankingService struct {
	rankingRepo repositories.RankingRepository
	resultRepo  repositories.ResultRepository
	fencerRepo  repositories.FencerRepository
	tx          repositories.Transactor
	logger      *slog.Logger

	now func() time.Time
}

func NewRankingService(
	rankingRepo repositories.RankingRepository,
	resultRepo repositories.ResultRepository,
	fencerRepo repositories.FencerRepository,
	tx repositories.Transactor,
	logger *slog.Logger,
) *RankingService {
	return &RankingService{
		rankingRepo: rankingRepo,
		resultRepo:  resultRepo,
		fencerRepo:  fencerRepo,
		tx:          tx,
		logger:      logger,
		now:         time.Now,
	}
}

// EnsureRanking возвращает строку рейтинга фехтовальщика в категории,
// определяемой его датой рождения на момент asOf, создавая её при
// необходимости. Повторный вызов ничего не меняет. Гонку на вставке
// разрешает уникальный индекс: проигравший перечитывает строку.
func (s *RankingService) EnsureRanking(ctx context.Context, exec repositories.SQLExecutor, fencer *models.Fencer, asOf time.Time) (*models.Ranking, error) {
	bracket, err := ranking.CurrentBracket(fencer.DOB, asOf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	rk, err := s.rankingRepo.GetByFencerAndBracket(ctx, exec, fencer.ID, bracket)
	if err == nil {
		return rk, nil
	}
	if !errors.Is(err, repositories.ErrRankingNotFound) {
		return nil, fmt.Errorf("failed to look up ranking: %w", err)
	}

	rk = &models.Ranking{FencerID: fencer.ID, Bracket: bracket}
	if createErr := s.rankingRepo.Create(ctx, exec, rk); createErr != nil {
		if errors.Is(createErr, repositories.ErrRankingExists) {
			return s.rankingRepo.GetByFencerAndBracket(ctx, exec, fencer.ID, bracket)
		}
		if errors.Is(createErr, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, fmt.Errorf("failed to create ranking: %w", createErr)
	}
	return rk, nil
}

// ApplyPoints добавляет дельту к существующей строке рейтинга.
// Отсутствие строки — ошибка программиста: сначала EnsureRanking.
func (s *RankingService) ApplyPoints(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	if err := s.rankingRepo.AddPoints(ctx, exec, fencerID, bracket, delta); err != nil {
		if errors.Is(err, repositories.ErrRankingNotFound) {
			return fmt.Errorf("%w: no ranking row for fencer %d in bracket %s", ErrRankingNotFound, fencerID, bracket)
		}
		return err
	}
	return nil
}

// AdjustAttendance меняет счётчик турниров существующей строки на
// дельту. Отрицательная дельта нужна при перезаписи итогов, когда
// место выпадает за зачётную зону.
func (s *RankingService) AdjustAttendance(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	if err := s.rankingRepo.AddAttendance(ctx, exec, fencerID, bracket, delta); err != nil {
		if errors.Is(err, repositories.ErrRankingNotFound) {
			return fmt.Errorf("%w: no ranking row for fencer %d in bracket %s", ErrRankingNotFound, fencerID, bracket)
		}
		return err
	}
	return nil
}

// ListByFencer возвращает все строки рейтинга фехтовальщика.
func (s *RankingService) ListByFencer(ctx context.Context, fencerID int) ([]models.Ranking, error) {
	if _, err := s.fencerRepo.GetByID(ctx, fencerID); err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}
	return s.rankingRepo.ListByFencer(ctx, nil, fencerID)
}

// List возвращает таблицу рейтинга, отсортированную по очкам.
func (s *RankingService) List(ctx context.Context, filter repositories.ListRankingsFilter) ([]models.Ranking, error) {
	if filter.Bracket != nil {
		if err := validateBracket(*filter.Bracket); err != nil {
			return nil, err
		}
	}
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
	return s.rankingRepo.List(ctx, filter)
}

// RecomputeForFencer пересчитывает каждую строку рейтинга фехтовальщика
// из сохранённых результатов турниров: очки — сумма положительных
// начислений в турнирах той же категории, посещаемость — число таких
// результатов. Чтение и запись идут в одной транзакции, поэтому
// повторный пересчёт без новых результатов ничего не меняет.
func (s *RankingService) RecomputeForFencer(ctx context.Context, fencerID int) ([]models.Ranking, error) {
	if _, err := s.fencerRepo.GetByID(ctx, fencerID); err != nil {
		if errors.Is(err, repositories.ErrFencerNotFound) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}

	var recomputed []models.Ranking
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		rankings, err := s.rankingRepo.ListByFencer(ctx, exec, fencerID)
		if err != nil {
			return err
		}
		for i := range rankings {
			rk := &rankings[i]
			totals, err := s.resultRepo.TotalsByBracket(ctx, exec, fencerID, rk.Bracket)
			if err != nil {
				return fmt.Errorf("failed to total results for bracket %s: %w", rk.Bracket, err)
			}
			if err := s.rankingRepo.SetTotals(ctx, exec, rk.ID, totals.Points, totals.TournamentsAttended); err != nil {
				return err
			}
			rk.Points = totals.Points
			rk.TournamentsAttended = totals.TournamentsAttended
		}
		recomputed = rankings
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "rankings recomputed",
		slog.Int("fencer_id", fencerID),
		slog.Int("brackets", len(recomputed)),
	)
	return recomputed, nil
}

// RecomputeAll пересчитывает рейтинги всех фехтовальщиков, по одной
// транзакции на человека. Возвращает число обработанных фехтовальщиков.
func (s *RankingService) RecomputeAll(ctx context.Context) (int, error) {
	fencers, err := s.fencerRepo.List(ctx, repositories.ListFencersFilter{})
	if err != nil {
		return 0, err
	}
	for _, f := range fencers {
		if _, err := s.RecomputeForFencer(ctx, f.ID); err != nil {
			return 0, fmt.Errorf("recompute failed for fencer %d: %w", f.ID, err)
		}
	}
	return len(fencers), nil
}

// ResetAll обнуляет очки и посещаемость во всех строках рейтинга.
// Сами строки остаются.
func (s *RankingService) ResetAll(ctx context.Context) (int, error) {
	var affected int
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var txErr error
		affected, txErr = s.rankingRepo.ResetAll(ctx, exec)
		return txErr
	})
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "all rankings reset", slog.Int("rows", affected))
	return affected, nil
}
