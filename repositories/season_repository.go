package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fencelab/fencing-system/models"
	"github.com/lib/pq"
)

var (
	ErrSeasonNotFound     = errors.New("season not found")
	ErrSeasonNameConflict = errors.New("season name already exists")
)

type SeasonRepository interface {
	Create(ctx context.Context, exec SQLExecutor, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	GetByName(ctx context.Context, name string) (*models.Season, error)
	List(ctx context.Context) ([]models.Season, error)
	Delete(ctx context.Context, id int) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const seasonColumns = `id, name, start_date, end_date, status, description, created_at`

func scanSeason(row interface{ Scan(dest ...interface{}) error }, s *models.Season) error {
	return row.Scan(&s.ID, &s.Name, &s.StartDate, &s.EndDate, &s.Status, &s.Description, &s.CreatedAt)
}

func (r *postgresSeasonRepository) Create(ctx context.Context, exec SQLExecutor, s *models.Season) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO seasons (name, start_date, end_date, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		s.Name, s.StartDate, s.EndDate, s.Status, s.Description,
	).Scan(&s.ID, &s.CreatedAt)

	return r.handleSeasonError(err)
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	s := &models.Season{}
	err := scanSeason(r.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE id = $1`, id), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSeasonRepository) GetByName(ctx context.Context, name string) (*models.Season, error) {
	s := &models.Season{}
	err := scanSeason(r.db.QueryRowContext(ctx, `SELECT `+seasonColumns+` FROM seasons WHERE name = $1`, name), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSeasonRepository) List(ctx context.Context) ([]models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seasonColumns+` FROM seasons ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seasons := make([]models.Season, 0)
	for rows.Next() {
		var s models.Season
		if scanErr := scanSeason(rows, &s); scanErr != nil {
			return nil, scanErr
		}
		seasons = append(seasons, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return seasons, nil
}

// Delete removes the season; its tournaments survive with season_id set
// to NULL at the store level.
func (r *postgresSeasonRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seasons WHERE id = $1`, id)
	if err != nil {
		return r.handleSeasonError(err)
	}
	return checkAffectedRows(result, ErrSeasonNotFound)
}

func (r *postgresSeasonRepository) handleSeasonError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "seasons_name_key" {
			return ErrSeasonNameConflict
		}
	}
	return err
}
