package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// Возраст генерируемых фехтовальщиков: от детских категорий до ветеранов.
const (
	rosterMinAge = 8
	rosterMaxAge = 55

	// Доля фехтовальщиков, приписанных к клубу.
	rosterClubRate = 0.9
)

var rosterClubSuffixes = []string{
	"Fencing Club", "Fencing Academy", "Blades", "En Garde", "Salle",
}

type RosterSeedParams struct {
	NumClubs   int    `json:"num_clubs"`
	NumFencers int    `json:"num_fencers"`
	Seed       uint64 `json:"seed,omitempty"`
}

type RosterSeedSummary struct {
	ClubsCreated   int `json:"clubs_created"`
	FencersCreated int `json:"fencers_created"`
}

// RosterService наполняет базу правдоподобным составом: клубы и
// фехтовальщики со случайными, но реалистичными атрибутами. Нужен для
// демо-стендов и как сырьё для симулятора сезона.
type RosterService struct {
	clubRepo   repositories.ClubRepository
	fencerRepo repositories.FencerRepository
	rankings   *RankingService
	tx         repositories.Transactor
	logger     *slog.Logger

	now func() time.Time
}

func NewRosterService(
	clubRepo repositories.ClubRepository,
	fencerRepo repositories.FencerRepository,
	rankings *RankingService,
	tx repositories.Transactor,
	logger *slog.Logger,
) *RosterService {
	return &RosterService{
		clubRepo:   clubRepo,
		fencerRepo: fencerRepo,
		rankings:   rankings,
		tx:         tx,
		logger:     logger,
		now:        time.Now,
	}
}

// Seed создаёт клубы и фехтовальщиков. Каждый фехтовальщик сразу
// получает строку рейтинга в своей текущей категории.
func (s *RosterService) Seed(ctx context.Context, params RosterSeedParams) (*RosterSeedSummary, error) {
	if params.NumClubs < 0 || params.NumFencers <= 0 {
		return nil, fmt.Errorf("%w: num_fencers must be positive", ErrValidationFailed)
	}

	faker := gofakeit.New(params.Seed)
	summary := &RosterSeedSummary{}

	clubIDs := make([]string, 0, params.NumClubs)
	for i := 0; i < params.NumClubs; i++ {
		club, err := s.seedClub(ctx, faker)
		if err != nil {
			return nil, err
		}
		clubIDs = append(clubIDs, club.ID)
		summary.ClubsCreated++
	}

	now := s.now()
	for i := 0; i < params.NumFencers; i++ {
		fencer := &models.Fencer{
			FirstName: faker.FirstName(),
			LastName:  faker.LastName(),
			DOB:       randomDOB(faker, now),
			Gender:    randomGender(faker),
			Weapon:    randomWeapon(faker),
		}
		if len(clubIDs) > 0 && faker.Float64Range(0, 1) < rosterClubRate {
			fencer.ClubID = &clubIDs[faker.IntRange(0, len(clubIDs)-1)]
		}

		err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.fencerRepo.Create(ctx, exec, fencer); err != nil {
				return fmt.Errorf("failed to seed fencer: %w", err)
			}
			_, err := s.rankings.EnsureRanking(ctx, exec, fencer, now)
			return err
		})
		if err != nil {
			return nil, err
		}
		summary.FencersCreated++
	}

	s.logger.InfoContext(ctx, "roster seeded",
		slog.Int("clubs", summary.ClubsCreated),
		slog.Int("fencers", summary.FencersCreated),
	)
	return summary, nil
}

// seedClub генерирует клуб с уникальным кодом; коллизии кода по городу
// разрешаются добавлением случайного суффикса.
func (s *RosterService) seedClub(ctx context.Context, faker *gofakeit.Faker) (*models.Club, error) {
	for attempt := 0; attempt < 5; attempt++ {
		city := faker.City()
		club := &models.Club{
			ID:     clubCode(city, faker.IntRange(10, 99)),
			Name:   fmt.Sprintf("%s %s", city, rosterClubSuffixes[faker.IntRange(0, len(rosterClubSuffixes)-1)]),
			Status: models.ClubActive,
		}
		year := faker.IntRange(1920, time.Now().Year()-1)
		club.FoundedYear = &year
		if faker.Float64Range(0, 1) < 0.5 {
			focus := randomWeapon(faker)
			club.WeaponFocus = &focus
		}

		err := s.clubRepo.Create(ctx, nil, club)
		if err == nil {
			return club, nil
		}
		if !errors.Is(err, repositories.ErrClubIDTaken) {
			return nil, fmt.Errorf("failed to seed club: %w", err)
		}
	}
	return nil, fmt.Errorf("%w: could not generate a unique club code", ErrValidationFailed)
}

// clubCode строит код клуба вида "FC-OSLO-42" из названия города.
func clubCode(city string, n int) string {
	compact := strings.ToUpper(strings.ReplaceAll(city, " ", ""))
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return fmt.Sprintf("FC-%s-%d", compact, n)
}

func randomDOB(faker *gofakeit.Faker, now time.Time) time.Time {
	oldest := now.AddDate(-rosterMaxAge-1, 0, 1)
	youngest := now.AddDate(-rosterMinAge, 0, 0)
	return faker.DateRange(oldest, youngest)
}

func randomGender(faker *gofakeit.Faker) models.Gender {
	if faker.Bool() {
		return models.GenderMale
	}
	return models.GenderFemale
}

func randomWeapon(faker *gofakeit.Faker) models.Weapon {
	weapons := []models.Weapon{models.WeaponSabre, models.WeaponFoil, models.WeaponEpee}
	return weapons[faker.IntRange(0, len(weapons)-1)]
}
