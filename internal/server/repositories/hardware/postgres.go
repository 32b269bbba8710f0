package hardware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository implements hardware storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const hardwareColumns = `id, name, display_name, make, type, multiplier, average_ppd, created_at`

func (r *PostgresRepository) Create(ctx context.Context, hw *models.Hardware) error {
	query := `
		INSERT INTO hardware (id, name, display_name, make, type, multiplier, average_ppd, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		hw.ID, hw.Name, hw.DisplayName, hw.Make, hw.Type, hw.Multiplier, hw.AveragePPD, hw.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Hardware, error) {
	var hw models.Hardware
	err := row.Scan(&hw.ID, &hw.Name, &hw.DisplayName, &hw.Make, &hw.Type, &hw.Multiplier, &hw.AveragePPD, &hw.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &hw, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware WHERE id=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware WHERE name=$1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Hardware, error) {
	query := `SELECT ` + hardwareColumns + ` FROM hardware ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select hardware: %w", err)
	}
	defer rows.Close()

	var result []*models.Hardware
	for rows.Next() {
		var hw models.Hardware
		if err := rows.Scan(&hw.ID, &hw.Name, &hw.DisplayName, &hw.Make, &hw.Type, &hw.Multiplier, &hw.AveragePPD, &hw.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &hw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, hw *models.Hardware) error {
	query := `
		UPDATE hardware
		SET display_name=$2, make=$3, type=$4, multiplier=$5, average_ppd=$6
		WHERE id=$1
	`
	res, err := r.db.ExecContext(ctx, query,
		hw.ID, hw.DisplayName, hw.Make, hw.Type, hw.Multiplier, hw.AveragePPD)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM hardware WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
