package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fencelab/fencing-system/models"
	"github.com/lib/pq"
)

var (
	ErrResultNotFound = errors.New("tournament result not found")
	ErrResultExists   = errors.New("fencer is already registered for this tournament")
)

// BracketTotals is the recomputed ground truth for one ranking row:
// the sum of positive points the fencer earned in tournaments of that
// bracket, and the count of those scoring results.
type BracketTotals struct {
	Points              int
	TournamentsAttended int
}

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.TournamentResult) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentResult, error)
	ListByFencer(ctx context.Context, fencerID int) ([]models.TournamentResult, error)
	ListUpcomingTournaments(ctx context.Context, fencerID int) ([]models.Tournament, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, resultID, placement, pointsAwarded int) error
	DeleteByTournamentAndFencer(ctx context.Context, tournamentID, fencerID int) error
	TotalsByBracket(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket) (BracketTotals, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const resultColumns = `id, tournament_id, fencer_id, placement, points_awarded, pool_record, seeding, created_at`

func scanResult(row interface{ Scan(dest ...interface{}) error }, res *models.TournamentResult) error {
	return row.Scan(
		&res.ID, &res.TournamentID, &res.FencerID, &res.Placement,
		&res.PointsAwarded, &res.PoolRecord, &res.Seeding, &res.CreatedAt,
	)
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.TournamentResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_results (tournament_id, fencer_id, placement, points_awarded, pool_record, seeding)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		res.TournamentID, res.FencerID, res.Placement, res.PointsAwarded, res.PoolRecord, res.Seeding,
	).Scan(&res.ID, &res.CreatedAt)

	return r.handleResultError(err)
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentResult, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + resultColumns + ` FROM tournament_results WHERE tournament_id = $1 ORDER BY placement ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResults(rows)
}

func (r *postgresResultRepository) ListByFencer(ctx context.Context, fencerID int) ([]models.TournamentResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM tournament_results
		WHERE fencer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, fencerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectResults(rows)
}

// ListUpcomingTournaments returns the tournaments the fencer is
// registered for that have not finished yet, nearest date first.
func (r *postgresResultRepository) ListUpcomingTournaments(ctx context.Context, fencerID int) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.name, t.date, t.weapon, t.bracket, t.gender, t.competition_type,
			t.status, t.location, t.max_participants, t.description, t.season_id, t.created_at
		FROM tournament_results tr
		JOIN tournaments t ON t.id = tr.tournament_id
		WHERE tr.fencer_id = $1 AND t.status IN ($2, $3, $4)
		ORDER BY t.date ASC`

	rows, err := r.db.QueryContext(ctx, query, fencerID,
		models.StatusUpcoming, models.StatusRegistrationOpen, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		scanErr := rows.Scan(
			&t.ID, &t.Name, &t.Date, &t.Weapon, &t.Bracket, &t.Gender, &t.CompetitionType,
			&t.Status, &t.Location, &t.MaxParticipants, &t.Description, &t.SeasonID, &t.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func collectResults(rows *sql.Rows) ([]models.TournamentResult, error) {
	results := make([]models.TournamentResult, 0)
	for rows.Next() {
		var res models.TournamentResult
		if scanErr := scanResult(rows, &res); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postgresResultRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tournament_results WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresResultRepository) UpdateScore(ctx context.Context, exec SQLExecutor, resultID, placement, pointsAwarded int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournament_results SET placement = $1, points_awarded = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, placement, pointsAwarded, resultID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

func (r *postgresResultRepository) DeleteByTournamentAndFencer(ctx context.Context, tournamentID, fencerID int) error {
	query := `DELETE FROM tournament_results WHERE tournament_id = $1 AND fencer_id = $2`
	result, err := r.db.ExecContext(ctx, query, tournamentID, fencerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrResultNotFound)
}

// TotalsByBracket sums the fencer's positive awarded points across
// tournaments of the given bracket. This aggregate is the ground truth
// the ranking ledger is reconciled against.
func (r *postgresResultRepository) TotalsByBracket(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket) (BracketTotals, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(SUM(tr.points_awarded), 0), COUNT(*)
		FROM tournament_results tr
		JOIN tournaments t ON t.id = tr.tournament_id
		WHERE tr.fencer_id = $1 AND t.bracket = $2 AND tr.points_awarded > 0`

	var totals BracketTotals
	err := executor.QueryRowContext(ctx, query, fencerID, bracket).Scan(
		&totals.Points, &totals.TournamentsAttended,
	)
	if err != nil {
		return BracketTotals{}, err
	}
	return totals, nil
}

func (r *postgresResultRepository) handleResultError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournament_results_tournament_id_fencer_id_key" {
				return ErrResultExists
			}
		case "23503":
			switch pqErr.Constraint {
			case "tournament_results_tournament_id_fkey":
				return ErrTournamentNotFound
			case "tournament_results_fencer_id_fkey":
				return ErrFencerNotFound
			}
		}
	}
	return err
}
