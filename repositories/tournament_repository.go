package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fencelab/fencing-system/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrTournamentInvalidSeason = errors.New("invalid season reference")
	ErrTournamentInUse         = errors.New("tournament is in use (results exist)")
)

type ListTournamentsFilter struct {
	Status   *models.TournamentStatus
	Weapon   *models.Weapon
	Bracket  *models.Bracket
	SeasonID *int
	Search   string
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	Delete(ctx context.Context, id int) error
	ListForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time, registrationWindow time.Duration) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, name, date, weapon, bracket, gender, competition_type,
		status, location, max_participants, description, season_id, created_at`

func scanTournament(row interface{ Scan(dest ...interface{}) error }, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Date, &t.Weapon, &t.Bracket, &t.Gender, &t.CompetitionType,
		&t.Status, &t.Location, &t.MaxParticipants, &t.Description, &t.SeasonID, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (
			name, date, weapon, bracket, gender, competition_type,
			status, location, max_participants, description, season_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Date, t.Weapon, t.Bracket, t.Gender, t.CompetitionType,
		t.Status, t.Location, t.MaxParticipants, t.Description, t.SeasonID,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Weapon != nil {
		query += fmt.Sprintf(" AND weapon = $%d", argID)
		args = append(args, *filter.Weapon)
		argID++
	}
	if filter.Bracket != nil {
		query += fmt.Sprintf(" AND bracket = $%d", argID)
		args = append(args, *filter.Bracket)
		argID++
	}
	if filter.SeasonID != nil {
		query += fmt.Sprintf(" AND season_id = $%d", argID)
		args = append(args, *filter.SeasonID)
		argID++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += " ORDER BY date ASC, created_at ASC"

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

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			date = $2,
			weapon = $3,
			bracket = $4,
			gender = $5,
			competition_type = $6,
			status = $7,
			location = $8,
			max_participants = $9,
			description = $10,
			season_id = $11
		WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		t.Name, t.Date, t.Weapon, t.Bracket, t.Gender, t.CompetitionType,
		t.Status, t.Location, t.MaxParticipants, t.Description, t.SeasonID,
		t.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// Delete removes the tournament; its results cascade at the store level.
func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// ListForAutoStatusUpdate returns tournaments whose status should advance
// based on the clock: Upcoming tournaments inside the registration
// window, and Registration Open tournaments whose date has arrived.
// Completion is never reached this way; only result recording completes
// a tournament.
func (r *postgresTournamentRepository) ListForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, currentTime time.Time, registrationWindow time.Duration) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + tournamentColumns + `
		FROM tournaments
		WHERE
			(status = $1 AND date <= $3) OR
			(status = $2 AND date <= $4)`

	windowEnd := currentTime.Add(registrationWindow)
	rows, err := executor.QueryContext(ctx, query,
		models.StatusUpcoming,         // $1: entering the registration window
		models.StatusRegistrationOpen, // $2: tournament day reached
		windowEnd,
		currentTime,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for auto status update: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament for auto status update: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration for auto status update: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "tournaments_season_id_fkey":
				return ErrTournamentInvalidSeason
			default:
				return ErrTournamentInUse
			}
		}
	}
	return err
}
