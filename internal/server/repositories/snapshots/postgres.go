package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository implements time-series storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, snapshot *models.StatsSnapshot) error {
	query := `
		INSERT INTO stats_snapshots (user_id, ts, points, multiplied_points, units)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.UserID, snapshot.Timestamp, snapshot.Points, snapshot.MultipliedPoints, snapshot.Units)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*models.StatsSnapshot, error) {
	query := `
		SELECT user_id, ts, points, multiplied_points, units
		FROM stats_snapshots
		WHERE user_id=$1
		ORDER BY ts DESC
		LIMIT 1
	`
	var snapshot models.StatsSnapshot
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&snapshot.UserID, &snapshot.Timestamp, &snapshot.Points, &snapshot.MultipliedPoints, &snapshot.Units)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &snapshot, nil
}

func (r *PostgresRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.StatsSnapshot, error) {
	query := `
		SELECT user_id, ts, points, multiplied_points, units
		FROM stats_snapshots
		WHERE user_id=$1 AND ts >= $2 AND ts < $3
		ORDER BY ts
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshots: %w", err)
	}
	defer rows.Close()

	var result []*models.StatsSnapshot
	for rows.Next() {
		var snapshot models.StatsSnapshot
		if err := rows.Scan(
			&snapshot.UserID, &snapshot.Timestamp, &snapshot.Points, &snapshot.MultipliedPoints, &snapshot.Units,
		); err != nil {
			return nil, err
		}
		result = append(result, &snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stats_snapshots WHERE user_id=$1`, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stats_snapshots`)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
