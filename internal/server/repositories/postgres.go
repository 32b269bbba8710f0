package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avolkovs/teamcomp/internal/dbx"
	"github.com/avolkovs/teamcomp/internal/server/migrations"
	"github.com/avolkovs/teamcomp/internal/server/repositories/baselines"
	"github.com/avolkovs/teamcomp/internal/server/repositories/hardware"
	"github.com/avolkovs/teamcomp/internal/server/repositories/monthly"
	"github.com/avolkovs/teamcomp/internal/server/repositories/offsets"
	"github.com/avolkovs/teamcomp/internal/server/repositories/retired"
	"github.com/avolkovs/teamcomp/internal/server/repositories/snapshots"
	"github.com/avolkovs/teamcomp/internal/server/repositories/teams"
	"github.com/avolkovs/teamcomp/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresManager binds all repositories to one *sql.DB (or, inside InTx,
// to one *sql.Tx).
type PostgresManager struct {
	db   *sql.DB
	conn dbx.DBTX

	teams     *teams.PostgresRepository
	hardware  *hardware.PostgresRepository
	users     *users.PostgresRepository
	baselines *baselines.PostgresRepository
	offsets   *offsets.PostgresRepository
	snapshots *snapshots.PostgresRepository
	retired   *retired.PostgresRepository
	monthly   *monthly.PostgresRepository
}

func NewPostgresManager(dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	m := newPostgresManagerOver(db)
	m.db = db
	return m, nil
}

func newPostgresManagerOver(conn dbx.DBTX) *PostgresManager {
	return &PostgresManager{
		conn:      conn,
		teams:     teams.NewPostgresRepository(conn),
		hardware:  hardware.NewPostgresRepository(conn),
		users:     users.NewPostgresRepository(conn),
		baselines: baselines.NewPostgresRepository(conn),
		offsets:   offsets.NewPostgresRepository(conn),
		snapshots: snapshots.NewPostgresRepository(conn),
		retired:   retired.NewPostgresRepository(conn),
		monthly:   monthly.NewPostgresRepository(conn),
	}
}

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	if m.db == nil {
		return fmt.Errorf("migrations require a root connection")
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

func (m *PostgresManager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *PostgresManager) Teams() teams.Repository          { return m.teams }
func (m *PostgresManager) Hardware() hardware.Repository    { return m.hardware }
func (m *PostgresManager) Users() users.Repository          { return m.users }
func (m *PostgresManager) Baselines() baselines.Repository  { return m.baselines }
func (m *PostgresManager) Offsets() offsets.Repository      { return m.offsets }
func (m *PostgresManager) Snapshots() snapshots.Repository  { return m.snapshots }
func (m *PostgresManager) Retired() retired.Repository      { return m.retired }
func (m *PostgresManager) MonthlyResults() monthly.Repository { return m.monthly }

func (m *PostgresManager) InTx(ctx context.Context, fn func(Manager) error) error {
	if m.db == nil {
		// Already inside a transaction; reuse it.
		return fn(m)
	}
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(newPostgresManagerOver(tx))
	})
}
