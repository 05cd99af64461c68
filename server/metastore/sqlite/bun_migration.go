package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/metastore/sqlite/migrations"
	"github.com/gear6io/metacat/server/metastore/sqlite/rows"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
)

// Migration interface that all migration files must implement
type Migration interface {
	Version() int
	Name() string
	Description() string
	Up(ctx context.Context, tx bun.Tx) error
}

// MigrationStatus represents the status of a migration
type MigrationStatus struct {
	Version     int    `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AppliedAt   string `json:"applied_at"`
}

// MigrationManager applies the schema migrations to a bun DB
type MigrationManager struct {
	db         *bun.DB
	logger     zerolog.Logger
	migrations []Migration
}

// NewMigrationManager creates a manager over db. It does not migrate.
func NewMigrationManager(db *bun.DB, logger zerolog.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger.With().Str("component", "metastore_migrations").Logger(),
		migrations: []Migration{
			&migrations.Migration001{}, // from migrations/001_start.go
		},
	}
}

// MigrateToLatest runs all pending migrations in one transaction, so either
// all of them apply or none do.
func (mm *MigrationManager) MigrateToLatest(ctx context.Context) error {
	mm.logger.Debug().Msg("Running metastore migrations")

	currentVersion, err := mm.GetCurrentVersion(ctx)
	if err != nil {
		return errors.New(SQLiteMigrationFailed, "failed to get current version", err)
	}

	var pending []Migration
	for _, migration := range mm.migrations {
		if migration.Version() > currentVersion {
			pending = append(pending, migration)
		}
	}

	if len(pending) == 0 {
		mm.logger.Debug().Int("version", currentVersion).Msg("No pending migrations")
		return nil
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New(SQLiteMigrationFailed, "failed to begin transaction for migrations", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, migration := range pending {
		mm.logger.Info().Int("version", migration.Version()).Str("name", migration.Name()).Msg("Running migration")

		if err := migration.Up(ctx, tx); err != nil {
			mm.rollback(tx)
			return errors.New(SQLiteMigrationFailed, "migration failed", err).
				AddContext("version", strconv.Itoa(migration.Version())).
				AddContext("name", migration.Name())
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bun_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
			migration.Version(), migration.Name(), now); err != nil {
			mm.rollback(tx)
			return errors.New(SQLiteMigrationFailed, "failed to record migration", err).
				AddContext("version", strconv.Itoa(migration.Version()))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New(SQLiteMigrationFailed, "failed to commit migrations", err)
	}

	mm.logger.Info().Int("applied", len(pending)).Msg("Metastore migrations completed")
	return nil
}

func (mm *MigrationManager) rollback(tx bun.Tx) {
	if err := tx.Rollback(); err != nil {
		mm.logger.Warn().Err(err).Msg("Failed to rollback migration transaction")
	}
}

// GetCurrentVersion returns the highest applied migration version
func (mm *MigrationManager) GetCurrentVersion(ctx context.Context) (int, error) {
	exists, err := mm.tableExists(ctx, "bun_migrations")
	if err != nil {
		return 0, errors.New(SQLiteMigrationFailed, "failed to check migrations table", err)
	}

	if !exists {
		if err := mm.createMigrationsTable(ctx); err != nil {
			return 0, errors.New(SQLiteMigrationFailed, "failed to create migrations table", err)
		}
		return 0, nil
	}

	var version int
	err = mm.db.NewSelect().
		ColumnExpr("COALESCE(MAX(version), 0)").
		Table("bun_migrations").
		Scan(ctx, &version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, errors.New(SQLiteMigrationFailed, "failed to get current version", err)
	}

	return version, nil
}

func (mm *MigrationManager) createMigrationsTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model(&struct {
			bun.BaseModel `bun:"table:bun_migrations"`
			Version       int    `bun:"version,pk,type:integer"`
			Name          string `bun:"name,type:text,notnull"`
			AppliedAt     string `bun:"applied_at,type:text,notnull"`
		}{}).
		IfNotExists().
		Exec(ctx)
	return err
}

// GetMigrationStatus lists the applied migrations in order
func (mm *MigrationManager) GetMigrationStatus(ctx context.Context) ([]MigrationStatus, error) {
	exists, err := mm.tableExists(ctx, "bun_migrations")
	if err != nil {
		return nil, errors.New(SQLiteMigrationFailed, "failed to check migrations table", err)
	}

	if !exists {
		return []MigrationStatus{}, nil
	}

	var applied []struct {
		Version   int    `bun:"version"`
		Name      string `bun:"name"`
		AppliedAt string `bun:"applied_at"`
	}

	err = mm.db.NewSelect().
		Column("version", "name", "applied_at").
		Table("bun_migrations").
		Order("version ASC").
		Scan(ctx, &applied)
	if err != nil {
		return nil, errors.New(SQLiteMigrationFailed, "failed to query migrations", err)
	}

	descriptions := make(map[int]string, len(mm.migrations))
	for _, m := range mm.migrations {
		descriptions[m.Version()] = m.Description()
	}

	status := make([]MigrationStatus, len(applied))
	for i, m := range applied {
		status[i] = MigrationStatus{
			Version:     m.Version,
			Name:        m.Name,
			Description: descriptions[m.Version],
			Status:      "applied",
			AppliedAt:   m.AppliedAt,
		}
	}

	return status, nil
}

// VerifySchema checks that every expected table exists
func (mm *MigrationManager) VerifySchema(ctx context.Context) error {
	for _, tableName := range rows.TableNames {
		exists, err := mm.tableExists(ctx, tableName)
		if err != nil {
			return errors.New(SQLiteSchemaVerificationFailed, "failed to verify table", err).AddContext("table", tableName)
		}
		if !exists {
			return errors.New(SQLiteSchemaVerificationFailed, "expected table does not exist", nil).AddContext("table", tableName)
		}
	}
	return nil
}

func (mm *MigrationManager) tableExists(ctx context.Context, tableName string) (bool, error) {
	var exists int
	err := mm.db.NewRaw("SELECT 1 FROM sqlite_master WHERE type='table' AND name=?", tableName).Scan(ctx, &exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
