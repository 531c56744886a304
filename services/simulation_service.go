package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// Параметры генератора сезона. Веса уровней отражают реальный
// календарь: локальных и региональных турниров большинство.
const (
	simMaxConfigAttempts = 3
	simMinEligiblePool   = 8
	simMinFillRate       = 0.5
	simUnlimitedFloor    = 4
	simRateVariance      = 0.15
	simWeekendBias       = 0.7
)

var simTierWeights = []struct {
	tier   models.CompetitionType
	weight float64
}{
	{models.CompetitionLocal, 0.30},
	{models.CompetitionRegional, 0.40},
	{models.CompetitionNational, 0.20},
	{models.CompetitionChampionship, 0.07},
	{models.CompetitionInternational, 0.03},
}

// Базовая доля допущенных, которая реально регистрируется: чем выше
// уровень турнира, тем дисциплинированнее участие.
var simParticipationRates = map[models.CompetitionType]float64{
	models.CompetitionLocal:         0.50,
	models.CompetitionRegional:      0.65,
	models.CompetitionNational:      0.75,
	models.CompetitionChampionship:  0.85,
	models.CompetitionInternational: 0.95,
}

var simNamePrefixes = []string{
	"Northern", "Riverside", "Capital", "Golden Blade", "Silver Mask",
	"Autumn", "Winter", "Spring", "Harbour", "Old Town",
}

var simNameSuffixes = map[models.CompetitionType][]string{
	models.CompetitionLocal:         {"Open", "Friendly", "Club Trophy"},
	models.CompetitionRegional:      {"Regional Open", "Cup", "Challenge"},
	models.CompetitionNational:      {"National Cup", "Masters", "Grand Prix"},
	models.CompetitionChampionship:  {"Championship", "Title Event"},
	models.CompetitionInternational: {"International", "World Cup Leg"},
}

type SimulationParams struct {
	SeasonName     string    `json:"season_name"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	NumTournaments int       `json:"num_tournaments"`
	ResetRankings  bool      `json:"reset_rankings"`
	Seed           int64     `json:"seed,omitempty"`
}

// SimulationStats — сводка прогона: сколько турниров создано, сыграно
// и отменено, и как распределилась заполняемость.
type SimulationStats struct {
	SeasonID             int     `json:"season_id"`
	SeasonName           string  `json:"season_name"`
	TournamentsCreated   int     `json:"tournaments_created"`
	TournamentsCompleted int     `json:"tournaments_completed"`
	TournamentsCancelled int     `json:"tournaments_cancelled"`
	TournamentsSkipped   int     `json:"tournaments_skipped"`
	TotalResults         int     `json:"total_results"`
	AvgParticipants      float64 `json:"avg_participants"`
	AvgFillRate          float64 `json:"avg_fill_rate"`
	LowAttendance        int     `json:"low_attendance"`
	MediumAttendance     int     `json:"medium_attendance"`
	HighAttendance       int     `json:"high_attendance"`
	UnlimitedCapacity    int     `json:"unlimited_capacity"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
}

// SimulationService генерирует сезон целиком: создаёт турниры с
// правдоподобными параметрами и прогоняет их через обычные регистрацию
// и фиксацию результатов, ничего не записывая в обход сервисов.
type SimulationService struct {
	seasonRepo     repositories.SeasonRepository
	fencerRepo     repositories.FencerRepository
	tournamentRepo repositories.TournamentRepository
	tournaments    *TournamentService
	eligibility    *EligibilityChecker
	rankings       *RankingService
	logger         *slog.Logger
}

func NewSimulationService(
	seasonRepo repositories.SeasonRepository,
	fencerRepo repositories.FencerRepository,
	tournamentRepo repositories.TournamentRepository,
	tournaments *TournamentService,
	eligibility *EligibilityChecker,
	rankings *RankingService,
	logger *slog.Logger,
) *SimulationService {
	return &SimulationService{
		seasonRepo:     seasonRepo,
		fencerRepo:     fencerRepo,
		tournamentRepo: tournamentRepo,
		tournaments:    tournaments,
		eligibility:    eligibility,
		rankings:       rankings,
		logger:         logger,
	}
}

// Run создаёт сезон и симулирует его турниры. Турнир, не набравший
// минимальной заполняемости, отменяется, а не играется полупустым.
func (s *SimulationService) Run(ctx context.Context, params SimulationParams) (*SimulationStats, error) {
	if params.SeasonName == "" {
		return nil, fmt.Errorf("%w: season name is required", ErrValidationFailed)
	}
	if err := validateSeasonDates(params.StartDate, params.EndDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSimulationInvalidRange, err)
	}
	if params.NumTournaments <= 0 {
		return nil, fmt.Errorf("%w: num_tournaments must be positive", ErrValidationFailed)
	}

	season := &models.Season{
		Name:      params.SeasonName,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Status:    models.SeasonActive,
	}
	if err := s.seasonRepo.Create(ctx, nil, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonNameConflict) {
			return nil, ErrSeasonNameConflict
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}

	if params.ResetRankings {
		if _, err := s.rankings.ResetAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset rankings: %w", err)
		}
	}

	seed := params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	fencers, err := s.fencerRepo.List(ctx, repositories.ListFencersFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load fencers: %w", err)
	}
	if len(fencers) == 0 {
		return nil, fmt.Errorf("%w: no fencers to simulate with", ErrValidationFailed)
	}

	stats := &SimulationStats{
		SeasonID:   season.ID,
		SeasonName: season.Name,
		StartDate:  params.StartDate.Format("2006-01-02"),
		EndDate:    params.EndDate.Format("2006-01-02"),
	}
	var participantsTotal int
	var fillRateSum float64
	var cappedCompleted int

	for i := 0; i < params.NumTournaments; i++ {
		cfg, pool := s.drawConfig(rng, fencers, params.StartDate, params.EndDate)
		if cfg == nil {
			stats.TournamentsSkipped++
			continue
		}

		cfg.SeasonID = &season.ID
		t, err := s.tournaments.CreateTournament(ctx, *cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create simulated tournament: %w", err)
		}
		stats.TournamentsCreated++

		target, floor := s.drawAttendance(rng, t, len(pool))
		if target < floor {
			if _, err := s.tournaments.UpdateStatus(ctx, t.ID, models.StatusCancelled); err != nil {
				return nil, err
			}
			stats.TournamentsCancelled++
			continue
		}

		entrants := samplePool(rng, pool, target)
		registered := make([]int, 0, len(entrants))
		for _, f := range entrants {
			if _, err := s.tournaments.RegisterFencer(ctx, t.ID, f.ID); err != nil {
				if errors.Is(err, ErrFencerNotEligible) || errors.Is(err, ErrAlreadyRegistered) {
					s.logger.WarnContext(ctx, "simulated registration rejected",
						slog.Int("tournament_id", t.ID),
						slog.Int("fencer_id", f.ID),
						slog.Any("error", err),
					)
					continue
				}
				return nil, err
			}
			registered = append(registered, f.ID)
		}
		if len(registered) < floor {
			if _, err := s.tournaments.UpdateStatus(ctx, t.ID, models.StatusCancelled); err != nil {
				return nil, err
			}
			stats.TournamentsCancelled++
			continue
		}

		if _, err := s.tournaments.UpdateStatus(ctx, t.ID, models.StatusInProgress); err != nil {
			return nil, err
		}

		placements := make(map[int]int, len(registered))
		for idx, pos := range rng.Perm(len(registered)) {
			placements[registered[idx]] = pos + 1
		}
		if err := s.tournaments.RecordResults(ctx, t.ID, placements); err != nil {
			return nil, fmt.Errorf("failed to record simulated results: %w", err)
		}

		stats.TournamentsCompleted++
		stats.TotalResults += len(registered)
		participantsTotal += len(registered)
		if t.MaxParticipants == nil {
			stats.UnlimitedCapacity++
		} else {
			fill := float64(len(registered)) / float64(*t.MaxParticipants)
			fillRateSum += fill
			cappedCompleted++
			switch {
			case fill < 0.5:
				stats.LowAttendance++
			case fill < 0.8:
				stats.MediumAttendance++
			default:
				stats.HighAttendance++
			}
		}
	}

	if stats.TournamentsCompleted > 0 {
		stats.AvgParticipants = round2(float64(participantsTotal) / float64(stats.TournamentsCompleted))
	}
	if cappedCompleted > 0 {
		stats.AvgFillRate = round2(fillRateSum / float64(cappedCompleted))
	}

	s.logger.InfoContext(ctx, "season simulation finished",
		slog.Int("season_id", season.ID),
		slog.Int("completed", stats.TournamentsCompleted),
		slog.Int("cancelled", stats.TournamentsCancelled),
		slog.Int("skipped", stats.TournamentsSkipped),
		slog.Int64("seed", seed),
	)
	return stats, nil
}

// drawConfig подбирает параметры турнира с достаточным пулом допущенных.
// После нескольких неудачных попыток турнир пропускается: в базе просто
// нет людей под такую комбинацию.
func (s *SimulationService) drawConfig(rng *rand.Rand, fencers []models.Fencer, start, end time.Time) (*CreateTournamentInput, []models.Fencer) {
	weapons := []models.Weapon{models.WeaponSabre, models.WeaponFoil, models.WeaponEpee}
	brackets := []models.Bracket{
		models.BracketU11, models.BracketU13, models.BracketU15,
		models.BracketCadet, models.BracketJunior, models.BracketSenior,
	}

	for attempt := 0; attempt < simMaxConfigAttempts; attempt++ {
		tier := drawTier(rng)
		prototype := models.Tournament{
			Weapon:  weapons[rng.Intn(len(weapons))],
			Bracket: brackets[rng.Intn(len(brackets))],
			Gender:  drawGender(rng),
			Date:    drawDate(rng, start, end),
		}

		pool := s.eligiblePool(fencers, &prototype)
		if len(pool) < simMinEligiblePool {
			continue
		}

		name := fmt.Sprintf("%s %s %s",
			simNamePrefixes[rng.Intn(len(simNamePrefixes))],
			prototype.Weapon,
			pick(rng, simNameSuffixes[tier]),
		)
		return &CreateTournamentInput{
			Name:            name,
			Date:            prototype.Date,
			Weapon:          prototype.Weapon,
			Bracket:         prototype.Bracket,
			Gender:          prototype.Gender,
			CompetitionType: tier,
			Status:          models.StatusRegistrationOpen,
			MaxParticipants: drawCapacity(rng, len(pool)),
		}, pool
	}
	return nil, nil
}

// drawAttendance выбирает целевое число участников и минимум, ниже
// которого турнир отменяется. Доля участия зажимается снизу минимальной
// заполняемостью, а при лимите мест цель поднимается до порога, пока
// пул это позволяет: отмена — только когда порог недостижим в принципе.
func (s *SimulationService) drawAttendance(rng *rand.Rand, t *models.Tournament, poolSize int) (target, floor int) {
	rate := simParticipationRates[t.CompetitionType]
	rate += rng.Float64()*2*simRateVariance - simRateVariance
	rate = math.Max(simMinFillRate, math.Min(1.0, rate))

	target = int(float64(poolSize) * rate)
	if t.MaxParticipants != nil {
		limit := *t.MaxParticipants
		floor = int(math.Ceil(float64(limit) * simMinFillRate))
		if target > limit {
			target = limit
		}
		if target < floor {
			target = floor
		}
	} else {
		floor = simUnlimitedFloor
	}
	if target > poolSize {
		target = poolSize
	}
	return target, floor
}

// eligiblePool отбирает фехтовальщиков по атрибутным правилам допуска
// на дату турнира, теми же проверками, что и реальная регистрация.
func (s *SimulationService) eligiblePool(fencers []models.Fencer, prototype *models.Tournament) []models.Fencer {
	pool := make([]models.Fencer, 0)
	for i := range fencers {
		ok, _, err := s.eligibility.MatchesEntryRules(&fencers[i], prototype)
		if err != nil || !ok {
			continue
		}
		pool = append(pool, fencers[i])
	}
	return pool
}

func drawTier(rng *rand.Rand) models.CompetitionType {
	roll := rng.Float64()
	cumulative := 0.0
	for _, tw := range simTierWeights {
		cumulative += tw.weight
		if roll < cumulative {
			return tw.tier
		}
	}
	return simTierWeights[len(simTierWeights)-1].tier
}

// drawGender: мужские и женские турниры поровну, каждый десятый — открытый.
func drawGender(rng *rand.Rand) *models.Gender {
	roll := rng.Float64()
	switch {
	case roll < 0.45:
		g := models.GenderMale
		return &g
	case roll < 0.90:
		g := models.GenderFemale
		return &g
	default:
		return nil
	}
}

// drawDate выбирает день в пределах сезона со сдвигом к выходным:
// будний день с вероятностью simWeekendBias переносится на субботу.
func drawDate(rng *rand.Rand, start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	date := start.AddDate(0, 0, rng.Intn(days))
	if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday && rng.Float64() < simWeekendBias {
		shift := (int(time.Saturday) - int(wd) + 7) % 7
		shifted := date.AddDate(0, 0, shift)
		if !shifted.After(end) {
			date = shifted
		}
	}
	return date
}

// drawCapacity выбирает лимит мест по размеру пула; крупные пулы могут
// получить турнир без лимита.
func drawCapacity(rng *rand.Rand, poolSize int) *int {
	var choices []int
	switch {
	case poolSize < 20:
		choices = []int{16}
	case poolSize < 40:
		choices = []int{16, 32}
	case poolSize < 70:
		choices = []int{32, 64}
	default:
		if rng.Float64() < 1.0/3.0 {
			return nil
		}
		choices = []int{32, 64}
	}
	limit := choices[rng.Intn(len(choices))]
	return &limit
}

func samplePool(rng *rand.Rand, pool []models.Fencer, n int) []models.Fencer {
	if n > len(pool) {
		n = len(pool)
	}
	perm := rng.Perm(len(pool))
	sample := make([]models.Fencer, 0, n)
	for _, idx := range perm[:n] {
		sample = append(sample, pool[idx])
	}
	return sample
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
