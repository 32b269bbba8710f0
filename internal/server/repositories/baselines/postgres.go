package baselines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository implements baseline storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, baseline *models.Baseline) error {
	query := `
		INSERT INTO baselines (user_id, points, units, captured_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			points = EXCLUDED.points,
			units = EXCLUDED.units,
			captured_at = EXCLUDED.captured_at
	`
	_, err := r.db.ExecContext(ctx, query,
		baseline.UserID, baseline.Points, baseline.Units, baseline.CapturedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Baseline, error) {
	query := `SELECT user_id, points, units, captured_at FROM baselines WHERE user_id=$1`

	var baseline models.Baseline
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&baseline.UserID, &baseline.Points, &baseline.Units, &baseline.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &baseline, nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM baselines WHERE user_id=$1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
