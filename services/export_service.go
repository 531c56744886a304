package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
	"github.com/fencelab/fencing-system/storage"
)

// Сколько турниров читается параллельно при сборке выгрузки.
const exportFetchConcurrency = 4

// SeasonExport — полный снимок сезона: турниры с результатами, все
// фехтовальщики и текущая таблица рейтинга.
type SeasonExport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Season      models.Season       `json:"season"`
	Tournaments []models.Tournament `json:"tournaments"`
	Fencers     []models.Fencer     `json:"fencers"`
	Rankings    []models.Ranking    `json:"rankings"`
}

// ExportService собирает снимок сезона и публикует его в объектное
// хранилище как JSON-файл.
type ExportService struct {
	seasonRepo     repositories.SeasonRepository
	tournamentRepo repositories.TournamentRepository
	resultRepo     repositories.ResultRepository
	fencerRepo     repositories.FencerRepository
	rankingRepo    repositories.RankingRepository
	uploader       storage.FileUploader
	logger         *slog.Logger

	now func() time.Time
}

func NewExportService(
	seasonRepo repositories.SeasonRepository,
	tournamentRepo repositories.TournamentRepository,
	resultRepo repositories.ResultRepository,
	fencerRepo repositories.FencerRepository,
	rankingRepo repositories.RankingRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *ExportService {
	return &ExportService{
		seasonRepo:     seasonRepo,
		tournamentRepo: tournamentRepo,
		resultRepo:     resultRepo,
		fencerRepo:     fencerRepo,
		rankingRepo:    rankingRepo,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

// BuildSeasonExport читает снимок сезона. Результаты турниров, список
// фехтовальщиков и рейтинги загружаются параллельно.
func (s *ExportService) BuildSeasonExport(ctx context.Context, seasonID int) (*SeasonExport, error) {
	season, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeasonNotFound) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{SeasonID: &seasonID})
	if err != nil {
		return nil, fmt.Errorf("failed to list season tournaments: %w", err)
	}

	export := &SeasonExport{
		GeneratedAt: s.now().UTC(),
		Season:      *season,
		Tournaments: tournaments,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportFetchConcurrency)

	for i := range export.Tournaments {
		g.Go(func() error {
			results, err := s.resultRepo.ListByTournament(gctx, nil, export.Tournaments[i].ID)
			if err != nil {
				return fmt.Errorf("failed to load results for tournament %d: %w", export.Tournaments[i].ID, err)
			}
			export.Tournaments[i].Results = results
			return nil
		})
	}
	g.Go(func() error {
		fencers, err := s.fencerRepo.List(gctx, repositories.ListFencersFilter{})
		if err != nil {
			return fmt.Errorf("failed to list fencers: %w", err)
		}
		export.Fencers = fencers
		return nil
	})
	g.Go(func() error {
		rankings, err := s.rankingRepo.List(gctx, repositories.ListRankingsFilter{})
		if err != nil {
			return fmt.Errorf("failed to list rankings: %w", err)
		}
		export.Rankings = rankings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return export, nil
}

// ExportSeason собирает снимок и загружает его в хранилище. Возвращает
// ключ и публичный URL файла.
func (s *ExportService) ExportSeason(ctx context.Context, seasonID int) (*storage.UploadResult, error) {
	export, err := s.BuildSeasonExport(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal season export: %w", err)
	}

	key := fmt.Sprintf("exports/season_%d_%s.json", seasonID, export.GeneratedAt.Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to upload season export: %w", err)
	}

	s.logger.InfoContext(ctx, "season export uploaded",
		slog.Int("season_id", seasonID),
		slog.String("key", result.Key),
		slog.Int("bytes", len(payload)),
	)
	return result, nil
}
