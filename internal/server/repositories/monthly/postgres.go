package monthly

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/teamcomp/internal/common"
	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/models"
)

// PostgresRepository stores monthly results as JSONB rows keyed (year, month).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, result *models.MonthlyResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal monthly result: %w", err)
	}

	query := `
		INSERT INTO monthly_results (year, month, result, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = r.db.ExecContext(ctx, query, result.Year, int(result.Month), payload, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, year int, month time.Month) (*models.MonthlyResult, error) {
	query := `SELECT result FROM monthly_results WHERE year=$1 AND month=$2`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, year, int(month)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	var result models.MonthlyResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal monthly result: %w", err)
	}
	return &result, nil
}
