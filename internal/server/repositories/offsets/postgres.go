package offsets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository implements offset storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, userID string, points, multipliedPoints, units int64) error {
	query := `
		INSERT INTO offsets (user_id, points, multiplied_points, units)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			points = offsets.points + EXCLUDED.points,
			multiplied_points = offsets.multiplied_points + EXCLUDED.multiplied_points,
			units = offsets.units + EXCLUDED.units
	`
	_, err := r.db.ExecContext(ctx, query, userID, points, multipliedPoints, units)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Offset, error) {
	query := `SELECT user_id, points, multiplied_points, units FROM offsets WHERE user_id=$1`

	var offset models.Offset
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&offset.UserID, &offset.Points, &offset.MultipliedPoints, &offset.Units)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.Offset{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &offset, nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM offsets WHERE user_id=$1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM offsets`)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
