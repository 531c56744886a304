package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fencelab/fencing-system/models"
	"github.com/lib/pq"
)

var (
	ErrRankingNotFound = errors.New("ranking not found")
	// ErrRankingExists is returned when an insert races another writer on
	// the same (fencer, bracket) key; the unique constraint is the final
	// arbiter.
	ErrRankingExists = errors.New("ranking already exists for this fencer and bracket")
)

type ListRankingsFilter struct {
	Bracket *models.Bracket
	Weapon  *models.Weapon
	Gender  *models.Gender
	Limit   int
	Offset  int
}

type RankingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, ranking *models.Ranking) error
	GetByFencerAndBracket(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket) (*models.Ranking, error)
	ListByFencer(ctx context.Context, exec SQLExecutor, fencerID int) ([]models.Ranking, error)
	List(ctx context.Context, filter ListRankingsFilter) ([]models.Ranking, error)
	AddPoints(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket, delta int) error
	AddAttendance(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket, delta int) error
	SetTotals(ctx context.Context, exec SQLExecutor, rankingID, points, tournamentsAttended int) error
	ResetAll(ctx context.Context, exec SQLExecutor) (int, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) Create(ctx context.Context, exec SQLExecutor, rk *models.Ranking) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rankings (fencer_id, bracket, points, tournaments_attended)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		rk.FencerID, rk.Bracket, rk.Points, rk.TournamentsAttended,
	).Scan(&rk.ID, &rk.CreatedAt)

	return r.handleRankingError(err)
}

func (r *postgresRankingRepository) GetByFencerAndBracket(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket) (*models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, fencer_id, bracket, points, tournaments_attended, created_at
		FROM rankings
		WHERE fencer_id = $1 AND bracket = $2`

	rk := &models.Ranking{}
	err := executor.QueryRowContext(ctx, query, fencerID, bracket).Scan(
		&rk.ID, &rk.FencerID, &rk.Bracket, &rk.Points, &rk.TournamentsAttended, &rk.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, err
	}
	return rk, nil
}

func (r *postgresRankingRepository) ListByFencer(ctx context.Context, exec SQLExecutor, fencerID int) ([]models.Ranking, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, fencer_id, bracket, points, tournaments_attended, created_at
		FROM rankings
		WHERE fencer_id = $1
		ORDER BY bracket ASC`

	rows, err := executor.QueryContext(ctx, query, fencerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRankings(rows, false)
}

// List returns rankings ordered by points, optionally filtered by the
// fencer's weapon/gender (requires a join on fencers).
func (r *postgresRankingRepository) List(ctx context.Context, filter ListRankingsFilter) ([]models.Ranking, error) {
	query := `
		SELECT
			r.id, r.fencer_id, r.bracket, r.points, r.tournaments_attended, r.created_at,
			f.id, f.first_name, f.last_name, f.dob, f.gender, f.weapon, f.club_id, f.created_at
		FROM rankings r
		JOIN fencers f ON f.id = r.fencer_id
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Bracket != nil {
		query += fmt.Sprintf(" AND r.bracket = $%d", argID)
		args = append(args, *filter.Bracket)
		argID++
	}
	if filter.Weapon != nil {
		query += fmt.Sprintf(" AND f.weapon = $%d", argID)
		args = append(args, *filter.Weapon)
		argID++
	}
	if filter.Gender != nil {
		query += fmt.Sprintf(" AND f.gender = $%d", argID)
		args = append(args, *filter.Gender)
		argID++
	}

	query += " ORDER BY r.points DESC, r.tournaments_attended DESC, f.last_name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRankings(rows, true)
}

func scanRankings(rows *sql.Rows, withFencer bool) ([]models.Ranking, error) {
	rankings := make([]models.Ranking, 0)
	for rows.Next() {
		var rk models.Ranking
		var scanErr error
		if withFencer {
			var f models.Fencer
			scanErr = rows.Scan(
				&rk.ID, &rk.FencerID, &rk.Bracket, &rk.Points, &rk.TournamentsAttended, &rk.CreatedAt,
				&f.ID, &f.FirstName, &f.LastName, &f.DOB, &f.Gender, &f.Weapon, &f.ClubID, &f.CreatedAt,
			)
			rk.Fencer = &f
		} else {
			scanErr = rows.Scan(
				&rk.ID, &rk.FencerID, &rk.Bracket, &rk.Points, &rk.TournamentsAttended, &rk.CreatedAt,
			)
		}
		if scanErr != nil {
			return nil, scanErr
		}
		rankings = append(rankings, rk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rankings, nil
}

// AddPoints applies a delta (possibly negative) to an existing ranking
// row. A missing row is reported, never created here.
func (r *postgresRankingRepository) AddPoints(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE rankings SET points = points + $1 WHERE fencer_id = $2 AND bracket = $3`
	result, err := executor.ExecContext(ctx, query, delta, fencerID, bracket)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRankingNotFound)
}

func (r *postgresRankingRepository) AddAttendance(ctx context.Context, exec SQLExecutor, fencerID int, bracket models.Bracket, delta int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE rankings SET tournaments_attended = tournaments_attended + $1 WHERE fencer_id = $2 AND bracket = $3`
	result, err := executor.ExecContext(ctx, query, delta, fencerID, bracket)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRankingNotFound)
}

func (r *postgresRankingRepository) SetTotals(ctx context.Context, exec SQLExecutor, rankingID, points, tournamentsAttended int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE rankings SET points = $1, tournaments_attended = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, points, tournamentsAttended, rankingID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRankingNotFound)
}

func (r *postgresRankingRepository) ResetAll(ctx context.Context, exec SQLExecutor) (int, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE rankings SET points = 0, tournaments_attended = 0`)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(affected), nil
}

func (r *postgresRankingRepository) handleRankingError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "rankings_fencer_id_bracket_key" {
				return ErrRankingExists
			}
		case "23503":
			return ErrFencerNotFound
		}
	}
	return err
}
