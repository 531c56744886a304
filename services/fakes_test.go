package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/fencelab/fencing-system/repositories"
)

// memStore — общее in-memory хранилище для фейковых репозиториев.
// Транзакций нет: фейковый Transactor просто вызывает функцию, поэтому
// тесты проверяют состояние только после успешных операций.
type memStore struct {
	mu          sync.Mutex
	fencers     map[int]models.Fencer
	tournaments map[int]models.Tournament
	results     map[int]models.TournamentResult
	rankings    map[int]models.Ranking
	seasons     map[int]models.Season
	clubs       map[string]models.Club
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{
		fencers:     make(map[int]models.Fencer),
		tournaments: make(map[int]models.Tournament),
		results:     make(map[int]models.TournamentResult),
		rankings:    make(map[int]models.Ranking),
		seasons:     make(map[int]models.Season),
		clubs:       make(map[string]models.Club),
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// --- fencers ---

type fakeFencerRepo struct{ s *memStore }

func (r *fakeFencerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, f *models.Fencer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if f.ClubID != nil {
		if _, ok := r.s.clubs[*f.ClubID]; !ok {
			return repositories.ErrFencerInvalidClub
		}
	}
	f.ID = r.s.id()
	f.CreatedAt = time.Now()
	r.s.fencers[f.ID] = *f
	return nil
}

func (r *fakeFencerRepo) GetByID(ctx context.Context, id int) (*models.Fencer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.fencers[id]
	if !ok {
		return nil, repositories.ErrFencerNotFound
	}
	return &f, nil
}

func (r *fakeFencerRepo) List(ctx context.Context, filter repositories.ListFencersFilter) ([]models.Fencer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Fencer
	for _, f := range r.s.fencers {
		if filter.Weapon != nil && f.Weapon != *filter.Weapon {
			continue
		}
		if filter.Gender != nil && f.Gender != *filter.Gender {
			continue
		}
		if filter.ClubID != nil && (f.ClubID == nil || *f.ClubID != *filter.ClubID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(f.FullName()), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return applyPaging(out, filter.Limit, filter.Offset), nil
}

func (r *fakeFencerRepo) Update(ctx context.Context, f *models.Fencer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fencers[f.ID]; !ok {
		return repositories.ErrFencerNotFound
	}
	if f.ClubID != nil {
		if _, ok := r.s.clubs[*f.ClubID]; !ok {
			return repositories.ErrFencerInvalidClub
		}
	}
	r.s.fencers[f.ID] = *f
	return nil
}

func (r *fakeFencerRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fencers[id]; !ok {
		return repositories.ErrFencerNotFound
	}
	delete(r.s.fencers, id)
	return nil
}

// --- tournaments ---

type fakeTournamentRepo struct{ s *memStore }

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.SeasonID != nil {
		if _, ok := r.s.seasons[*t.SeasonID]; !ok {
			return repositories.ErrTournamentInvalidSeason
		}
	}
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.s.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Weapon != nil && t.Weapon != *filter.Weapon {
			continue
		}
		if filter.Bracket != nil && t.Bracket != *filter.Bracket {
			continue
		}
		if filter.SeasonID != nil && (t.SeasonID == nil || *t.SeasonID != *filter.SeasonID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return applyPaging(out, filter.Limit, filter.Offset), nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.SeasonID != nil {
		if _, ok := r.s.seasons[*t.SeasonID]; !ok {
			return repositories.ErrTournamentInvalidSeason
		}
	}
	r.s.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.s.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, res := range r.s.results {
		if res.TournamentID == id {
			return repositories.ErrTournamentInUse
		}
	}
	delete(r.s.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) ListForAutoStatusUpdate(ctx context.Context, exec repositories.SQLExecutor, currentTime time.Time, registrationWindow time.Duration) ([]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	windowEnd := currentTime.Add(registrationWindow)
	var out []*models.Tournament
	for _, t := range r.s.tournaments {
		t := t
		switch {
		case t.Status == models.StatusUpcoming && !t.Date.After(windowEnd):
			out = append(out, &t)
		case t.Status == models.StatusRegistrationOpen && !t.Date.After(currentTime):
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- results ---

type fakeResultRepo struct{ s *memStore }

func (r *fakeResultRepo) Create(ctx context.Context, exec repositories.SQLExecutor, res *models.TournamentResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.results {
		if existing.TournamentID == res.TournamentID && existing.FencerID == res.FencerID {
			return repositories.ErrResultExists
		}
	}
	res.ID = r.s.id()
	res.CreatedAt = time.Now()
	r.s.results[res.ID] = *res
	return nil
}

func (r *fakeResultRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.TournamentResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TournamentResult
	for _, res := range r.s.results {
		if res.TournamentID == tournamentID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Placement != out[j].Placement {
			return out[i].Placement < out[j].Placement
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeResultRepo) ListByFencer(ctx context.Context, fencerID int) ([]models.TournamentResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TournamentResult
	for _, res := range r.s.results {
		if res.FencerID == fencerID {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeResultRepo) ListUpcomingTournaments(ctx context.Context, fencerID int) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Tournament
	for _, res := range r.s.results {
		if res.FencerID != fencerID {
			continue
		}
		t, ok := r.s.tournaments[res.TournamentID]
		if !ok {
			continue
		}
		switch t.Status {
		case models.StatusUpcoming, models.StatusRegistrationOpen, models.StatusInProgress:
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeResultRepo) CountByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, res := range r.s.results {
		if res.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeResultRepo) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, resultID, placement, pointsAwarded int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.results[resultID]
	if !ok {
		return repositories.ErrResultNotFound
	}
	res.Placement = placement
	res.PointsAwarded = pointsAwarded
	r.s.results[resultID] = res
	return nil
}

func (r *fakeResultRepo) DeleteByTournamentAndFencer(ctx context.Context, tournamentID, fencerID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, res := range r.s.results {
		if res.TournamentID == tournamentID && res.FencerID == fencerID {
			delete(r.s.results, id)
			return nil
		}
	}
	return repositories.ErrResultNotFound
}

func (r *fakeResultRepo) TotalsByBracket(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket) (repositories.BracketTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var totals repositories.BracketTotals
	for _, res := range r.s.results {
		if res.FencerID != fencerID || res.PointsAwarded <= 0 {
			continue
		}
		t, ok := r.s.tournaments[res.TournamentID]
		if !ok || t.Bracket != bracket {
			continue
		}
		totals.Points += res.PointsAwarded
		totals.TournamentsAttended++
	}
	return totals, nil
}

// --- rankings ---

type fakeRankingRepo struct{ s *memStore }

func (r *fakeRankingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, rk *models.Ranking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fencers[rk.FencerID]; !ok {
		return repositories.ErrFencerNotFound
	}
	for _, existing := range r.s.rankings {
		if existing.FencerID == rk.FencerID && existing.Bracket == rk.Bracket {
			return repositories.ErrRankingExists
		}
	}
	rk.ID = r.s.id()
	rk.CreatedAt = time.Now()
	r.s.rankings[rk.ID] = *rk
	return nil
}

func (r *fakeRankingRepo) GetByFencerAndBracket(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket) (*models.Ranking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rk := range r.s.rankings {
		if rk.FencerID == fencerID && rk.Bracket == bracket {
			rk := rk
			return &rk, nil
		}
	}
	return nil, repositories.ErrRankingNotFound
}

func (r *fakeRankingRepo) ListByFencer(ctx context.Context, exec repositories.SQLExecutor, fencerID int) ([]models.Ranking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Ranking
	for _, rk := range r.s.rankings {
		if rk.FencerID == fencerID {
			out = append(out, rk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeRankingRepo) List(ctx context.Context, filter repositories.ListRankingsFilter) ([]models.Ranking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Ranking
	for _, rk := range r.s.rankings {
		if filter.Bracket != nil && rk.Bracket != *filter.Bracket {
			continue
		}
		f, ok := r.s.fencers[rk.FencerID]
		if !ok {
			continue
		}
		if filter.Weapon != nil && f.Weapon != *filter.Weapon {
			continue
		}
		if filter.Gender != nil && f.Gender != *filter.Gender {
			continue
		}
		out = append(out, rk)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].ID < out[j].ID
	})
	return applyPaging(out, filter.Limit, filter.Offset), nil
}

func (r *fakeRankingRepo) AddPoints(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rk := range r.s.rankings {
		if rk.FencerID == fencerID && rk.Bracket == bracket {
			rk.Points += delta
			r.s.rankings[id] = rk
			return nil
		}
	}
	return repositories.ErrRankingNotFound
}

func (r *fakeRankingRepo) AddAttendance(ctx context.Context, exec repositories.SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rk := range r.s.rankings {
		if rk.FencerID == fencerID && rk.Bracket == bracket {
			rk.TournamentsAttended += delta
			r.s.rankings[id] = rk
			return nil
		}
	}
	return repositories.ErrRankingNotFound
}

func (r *fakeRankingRepo) SetTotals(ctx context.Context, exec repositories.SQLExecutor, rankingID, points, tournamentsAttended int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rk, ok := r.s.rankings[rankingID]
	if !ok {
		return repositories.ErrRankingNotFound
	}
	rk.Points = points
	rk.TournamentsAttended = tournamentsAttended
	r.s.rankings[rankingID] = rk
	return nil
}

func (r *fakeRankingRepo) ResetAll(ctx context.Context, exec repositories.SQLExecutor) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rk := range r.s.rankings {
		rk.Points = 0
		rk.TournamentsAttended = 0
		r.s.rankings[id] = rk
	}
	return len(r.s.rankings), nil
}

// --- seasons ---

type fakeSeasonRepo struct{ s *memStore }

func (r *fakeSeasonRepo) Create(ctx context.Context, exec repositories.SQLExecutor, season *models.Season) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.seasons {
		if existing.Name == season.Name {
			return repositories.ErrSeasonNameConflict
		}
	}
	season.ID = r.s.id()
	season.CreatedAt = time.Now()
	r.s.seasons[season.ID] = *season
	return nil
}

func (r *fakeSeasonRepo) GetByID(ctx context.Context, id int) (*models.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	season, ok := r.s.seasons[id]
	if !ok {
		return nil, repositories.ErrSeasonNotFound
	}
	return &season, nil
}

func (r *fakeSeasonRepo) GetByName(ctx context.Context, name string) (*models.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, season := range r.s.seasons {
		if season.Name == name {
			season := season
			return &season, nil
		}
	}
	return nil, repositories.ErrSeasonNotFound
}

func (r *fakeSeasonRepo) List(ctx context.Context) ([]models.Season, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Season
	for _, season := range r.s.seasons {
		out = append(out, season)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSeasonRepo) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.seasons[id]; !ok {
		return repositories.ErrSeasonNotFound
	}
	delete(r.s.seasons, id)
	for tid, t := range r.s.tournaments {
		if t.SeasonID != nil && *t.SeasonID == id {
			t.SeasonID = nil
			r.s.tournaments[tid] = t
		}
	}
	return nil
}

// --- clubs ---

type fakeClubRepo struct{ s *memStore }

func (r *fakeClubRepo) Create(ctx context.Context, exec repositories.SQLExecutor, c *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[c.ID]; ok {
		return repositories.ErrClubIDTaken
	}
	c.CreatedAt = time.Now()
	r.s.clubs[c.ID] = *c
	return nil
}

func (r *fakeClubRepo) GetByID(ctx context.Context, id string) (*models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clubs[id]
	if !ok {
		return nil, repositories.ErrClubNotFound
	}
	return &c, nil
}

func (r *fakeClubRepo) List(ctx context.Context, status *models.ClubStatus) ([]models.Club, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Club
	for _, c := range r.s.clubs {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeClubRepo) Update(ctx context.Context, c *models.Club) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[c.ID]; !ok {
		return repositories.ErrClubNotFound
	}
	r.s.clubs[c.ID] = *c
	return nil
}

func (r *fakeClubRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[id]; !ok {
		return repositories.ErrClubNotFound
	}
	delete(r.s.clubs, id)
	return nil
}

func (r *fakeClubRepo) TotalPoints(ctx context.Context, clubID string, bracket *models.Bracket) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clubs[clubID]; !ok {
		return 0, repositories.ErrClubNotFound
	}
	total := 0
	for _, rk := range r.s.rankings {
		f, ok := r.s.fencers[rk.FencerID]
		if !ok || f.ClubID == nil || *f.ClubID != clubID {
			continue
		}
		if bracket != nil && rk.Bracket != *bracket {
			continue
		}
		total += rk.Points
	}
	return total, nil
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]models.User
	next  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return repositories.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.next++
	u.ID = r.next
	u.CreatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func applyPaging[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// --- test environment ---

type fakeNotifier struct {
	mu       sync.Mutex
	brackets []models.Bracket
}

func (n *fakeNotifier) NotifyBracket(bracket models.Bracket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.brackets = append(n.brackets, bracket)
}

// testEnv собирает сервисный слой поверх общего in-memory хранилища.
type testEnv struct {
	store       *memStore
	fencerRepo  repositories.FencerRepository
	clubRepo    repositories.ClubRepository
	tournRepo   repositories.TournamentRepository
	resultRepo  repositories.ResultRepository
	rankingRepo repositories.RankingRepository
	seasonRepo  repositories.SeasonRepository
	notifier    *fakeNotifier

	rankings    *RankingService
	eligibility *EligibilityChecker
	tournaments *TournamentService
	fencers     *FencerService
	clubs       *ClubService
	seasons     *SeasonService
	simulation  *SimulationService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := fakeTransactor{}

	env := &testEnv{
		store:       store,
		fencerRepo:  &fakeFencerRepo{s: store},
		clubRepo:    &fakeClubRepo{s: store},
		tournRepo:   &fakeTournamentRepo{s: store},
		resultRepo:  &fakeResultRepo{s: store},
		rankingRepo: &fakeRankingRepo{s: store},
		seasonRepo:  &fakeSeasonRepo{s: store},
		notifier:    &fakeNotifier{},
	}

	env.rankings = NewRankingService(env.rankingRepo, env.resultRepo, env.fencerRepo, tx, logger)
	env.eligibility = NewEligibilityChecker(env.resultRepo)
	env.tournaments = NewTournamentService(
		env.tournRepo, env.resultRepo, env.fencerRepo,
		env.rankings, env.eligibility, tx, env.notifier, logger,
	)
	env.fencers = NewFencerService(
		env.fencerRepo, env.clubRepo, env.resultRepo, env.rankingRepo,
		env.rankings, tx, logger,
	)
	env.clubs = NewClubService(env.clubRepo, env.fencerRepo)
	env.seasons = NewSeasonService(env.seasonRepo, env.tournRepo)
	env.simulation = NewSimulationService(
		env.seasonRepo, env.fencerRepo, env.tournRepo,
		env.tournaments, env.eligibility, env.rankings, logger,
	)
	return env
}

// setNow фиксирует часы всех сервисов, зависящих от времени.
func (env *testEnv) setNow(now time.Time) {
	clock := func() time.Time { return now }
	env.rankings.now = clock
	env.tournaments.now = clock
	env.fencers.now = clock
}

func (env *testEnv) addFencer(dob time.Time, gender models.Gender, weapon models.Weapon) *models.Fencer {
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	f := models.Fencer{
		ID:        env.store.id(),
		FirstName: "Test",
		LastName:  "Fencer",
		DOB:       dob,
		Gender:    gender,
		Weapon:    weapon,
		CreatedAt: time.Now(),
	}
	env.store.fencers[f.ID] = f
	return &f
}

func (env *testEnv) addTournament(t models.Tournament) *models.Tournament {
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	t.ID = env.store.id()
	t.CreatedAt = time.Now()
	env.store.tournaments[t.ID] = t
	return &t
}

func intPtr(v int) *int { return &v }

func genderPtr(g models.Gender) *models.Gender { return &g }
