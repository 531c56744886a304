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
	ErrFencerNotFound    = errors.New("fencer not found")
	ErrFencerInvalidClub = errors.New("invalid club reference")
)

type ListFencersFilter struct {
	Weapon *models.Weapon
	Gender *models.Gender
	ClubID *string
	Search string
	Limit  int
	Offset int
}

type FencerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fencer *models.Fencer) error
	GetByID(ctx context.Context, id int) (*models.Fencer, error)
	List(ctx context.Context, filter ListFencersFilter) ([]models.Fencer, error)
	Update(ctx context.Context, fencer *models.Fencer) error
	Delete(ctx context.Context, id int) error
}

type postgresFencerRepository struct {
	db *sql.DB
}

func NewPostgresFencerRepository(db *sql.DB) FencerRepository {
	return &postgresFencerRepository{db: db}
}

func (r *postgresFencerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const fencerColumns = `id, first_name, last_name, dob, gender, weapon, club_id, created_at`

func scanFencer(row interface{ Scan(dest ...interface{}) error }, f *models.Fencer) error {
	return row.Scan(
		&f.ID, &f.FirstName, &f.LastName, &f.DOB,
		&f.Gender, &f.Weapon, &f.ClubID, &f.CreatedAt,
	)
}

func (r *postgresFencerRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fencer) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO fencers (first_name, last_name, dob, gender, weapon, club_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		f.FirstName, f.LastName, f.DOB, f.Gender, f.Weapon, f.ClubID,
	).Scan(&f.ID, &f.CreatedAt)

	return r.handleFencerError(err)
}

func (r *postgresFencerRepository) GetByID(ctx context.Context, id int) (*models.Fencer, error) {
	query := `SELECT ` + fencerColumns + ` FROM fencers WHERE id = $1`

	f := &models.Fencer{}
	err := scanFencer(r.db.QueryRowContext(ctx, query, id), f)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFencerNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *postgresFencerRepository) List(ctx context.Context, filter ListFencersFilter) ([]models.Fencer, error) {
	query := `SELECT ` + fencerColumns + ` FROM fencers WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Weapon != nil {
		query += fmt.Sprintf(" AND weapon = $%d", argID)
		args = append(args, *filter.Weapon)
		argID++
	}
	if filter.Gender != nil {
		query += fmt.Sprintf(" AND gender = $%d", argID)
		args = append(args, *filter.Gender)
		argID++
	}
	if filter.ClubID != nil {
		query += fmt.Sprintf(" AND club_id = $%d", argID)
		args = append(args, *filter.ClubID)
		argID++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d)", argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += " ORDER BY last_name ASC, first_name ASC"

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

	fencers := make([]models.Fencer, 0)
	for rows.Next() {
		var f models.Fencer
		if scanErr := scanFencer(rows, &f); scanErr != nil {
			return nil, scanErr
		}
		fencers = append(fencers, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return fencers, nil
}

func (r *postgresFencerRepository) Update(ctx context.Context, f *models.Fencer) error {
	query := `
		UPDATE fencers SET
			first_name = $1,
			last_name = $2,
			dob = $3,
			gender = $4,
			weapon = $5,
			club_id = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		f.FirstName, f.LastName, f.DOB, f.Gender, f.Weapon, f.ClubID, f.ID,
	)
	if err != nil {
		return r.handleFencerError(err)
	}
	return checkAffectedRows(result, ErrFencerNotFound)
}

// Delete removes the fencer; rankings and tournament results cascade at
// the store level.
func (r *postgresFencerRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fencers WHERE id = $1`, id)
	if err != nil {
		return r.handleFencerError(err)
	}
	return checkAffectedRows(result, ErrFencerNotFound)
}

func (r *postgresFencerRepository) handleFencerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "fencers_club_id_fkey" {
			return ErrFencerInvalidClub
		}
	}
	return err
}
