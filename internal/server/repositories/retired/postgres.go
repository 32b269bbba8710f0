package retired

import (
	"context"
	"fmt"

	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository implements retired-snapshot storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, snapshot *models.RetiredUserSnapshot) error {
	query := `
		INSERT INTO retired_user_snapshots (id, team_id, display_name, masked_name, multiplied_points, units, retired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.TeamID, snapshot.DisplayName, snapshot.MaskedName,
		snapshot.MultipliedPoints, snapshot.Units, snapshot.RetiredAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) selectSnapshots(ctx context.Context, query string, args ...any) ([]*models.RetiredUserSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select retired snapshots: %w", err)
	}
	defer rows.Close()

	var result []*models.RetiredUserSnapshot
	for rows.Next() {
		var snapshot models.RetiredUserSnapshot
		if err := rows.Scan(
			&snapshot.ID, &snapshot.TeamID, &snapshot.DisplayName, &snapshot.MaskedName,
			&snapshot.MultipliedPoints, &snapshot.Units, &snapshot.RetiredAt,
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

const retiredColumns = `id, team_id, display_name, masked_name, multiplied_points, units, retired_at`

func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.RetiredUserSnapshot, error) {
	query := `SELECT ` + retiredColumns + ` FROM retired_user_snapshots WHERE team_id=$1 ORDER BY retired_at, id`
	return r.selectSnapshots(ctx, query, teamID)
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM retired_user_snapshots`)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
