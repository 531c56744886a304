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
	ErrClubNotFound = errors.New("club not found")
	ErrClubIDTaken  = errors.New("club id is already taken")
)

type ClubRepository interface {
	Create(ctx context.Context, exec SQLExecutor, club *models.Club) error
	GetByID(ctx context.Context, id string) (*models.Club, error)
	List(ctx context.Context, status *models.ClubStatus) ([]models.Club, error)
	Update(ctx context.Context, club *models.Club) error
	Delete(ctx context.Context, id string) error
	TotalPoints(ctx context.Context, clubID string, bracket *models.Bracket) (int, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClubRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Club) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO clubs (id, name, founded_year, weapon_focus, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := executor.QueryRowContext(ctx, query,
		c.ID, c.Name, c.FoundedYear, c.WeaponFocus, c.Status,
	).Scan(&c.CreatedAt)

	return r.handleClubError(err)
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id string) (*models.Club, error) {
	query := `SELECT id, name, founded_year, weapon_focus, status, created_at FROM clubs WHERE id = $1`

	c := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.FoundedYear, &c.WeaponFocus, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresClubRepository) List(ctx context.Context, status *models.ClubStatus) ([]models.Club, error) {
	query := `SELECT id, name, founded_year, weapon_focus, status, created_at FROM clubs`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var c models.Club
		if scanErr := rows.Scan(&c.ID, &c.Name, &c.FoundedYear, &c.WeaponFocus, &c.Status, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, c *models.Club) error {
	query := `
		UPDATE clubs SET
			name = $1,
			founded_year = $2,
			weapon_focus = $3,
			status = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.FoundedYear, c.WeaponFocus, c.Status, c.ID)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

// Delete removes the club; member fencers keep their rows with club_id
// set to NULL at the store level.
func (r *postgresClubRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return r.handleClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

// TotalPoints sums ranking points of the club's members, optionally for
// one bracket only.
func (r *postgresClubRepository) TotalPoints(ctx context.Context, clubID string, bracket *models.Bracket) (int, error) {
	query := `
		SELECT COALESCE(SUM(r.points), 0)
		FROM rankings r
		JOIN fencers f ON f.id = r.fencer_id
		WHERE f.club_id = $1`
	args := []interface{}{clubID}
	if bracket != nil {
		query += ` AND r.bracket = $2`
		args = append(args, *bracket)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum club points: %w", err)
	}
	return total, nil
}

func (r *postgresClubRepository) handleClubError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "clubs_pkey" {
			return ErrClubIDTaken
		}
	}
	return err
}
