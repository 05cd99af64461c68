// Package sqlite is an embedded metastore client persisted in a SQLite file
// through bun. Every call is a single statement or a single transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/metastore"
	"github.com/gear6io/metacat/server/metastore/sqlite/rows"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// DefaultVersion is recorded for new metastore files when none is configured
const DefaultVersion = "3.1.2"

const versionProperty = "metastore_version"

// Options configures an embedded metastore
type Options struct {
	// Path of the SQLite file; ":memory:" keeps it in memory
	Path string
	// Version overrides the version recorded in the file
	Version string
}

// Store implements metastore.Client on SQLite
type Store struct {
	db       *bun.DB
	version  string
	logger   zerolog.Logger
	migrator *MigrationManager
}

var _ metastore.Client = (*Store)(nil)

// Open opens or creates the metastore file, migrates it to the latest schema
// and resolves the version it reports.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New(SQLiteOpenFailed, "metastore path is required", nil)
	}
	if opts.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, errors.New(SQLiteOpenFailed, "failed to create metastore directory", err).AddContext("path", opts.Path)
		}
	}

	sqldb, err := sql.Open("sqlite3", opts.Path+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.New(SQLiteOpenFailed, "failed to open SQLite database", err).AddContext("path", opts.Path)
	}
	if opts.Path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqldb.SetMaxOpenConns(1)
	}

	store := newStore(bun.NewDB(sqldb, sqlitedialect.New()), logger)

	if err := store.migrator.MigrateToLatest(ctx); err != nil {
		store.db.Close()
		return nil, err
	}
	if err := store.migrator.VerifySchema(ctx); err != nil {
		store.db.Close()
		return nil, err
	}
	if err := store.resolveVersion(ctx, opts.Version); err != nil {
		store.db.Close()
		return nil, err
	}

	store.logger.Info().Str("path", opts.Path).Str("version", store.version).Msg("Embedded metastore opened")
	return store, nil
}

func newStore(db *bun.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:       db,
		logger:   logger.With().Str("component", "sqlite_metastore").Logger(),
		migrator: NewMigrationManager(db, logger),
	}
}

// resolveVersion records configured in the file, or reads the recorded one
func (s *Store) resolveVersion(ctx context.Context, configured string) error {
	prop := &rows.Property{Name: versionProperty}
	err := s.db.NewSelect().Model(prop).WherePK().Scan(ctx)
	switch {
	case err == sql.ErrNoRows:
		if configured == "" {
			configured = DefaultVersion
		}
	case err != nil:
		return queryFailed("read metastore version", err)
	case configured == "" || configured == prop.Value:
		s.version = prop.Value
		return nil
	}

	prop.Value = configured
	if _, err := s.db.NewInsert().Model(prop).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx); err != nil {
		return queryFailed("record metastore version", err)
	}
	s.version = configured
	return nil
}

// Migrations exposes the migration manager, e.g. for status reporting
func (s *Store) Migrations() *MigrationManager {
	return s.migrator
}

func (s *Store) Version(ctx context.Context) (string, error) {
	return s.version, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.New(SQLiteEncodingFailed, "failed to encode column", err)
	}
	return string(b), nil
}

func decodeJSON(s string, v interface{}) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return errors.New(SQLiteEncodingFailed, "failed to decode column", err)
	}
	return nil
}

func (s *Store) databaseRow(ctx context.Context, idb bun.IDB, name string) (*rows.Database, error) {
	row := new(rows.Database)
	err := idb.NewSelect().Model(row).Where("name = ?", name).Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, metastore.NewNoSuchObject("database", name)
	}
	if err != nil {
		return nil, queryFailed("get database", err).AddContext("database", name)
	}
	return row, nil
}

func (s *Store) tableRow(ctx context.Context, idb bun.IDB, dbName, tableName string) (*rows.Table, error) {
	dbRow, err := s.databaseRow(ctx, idb, dbName)
	if err != nil {
		return nil, err
	}
	row := new(rows.Table)
	err = idb.NewSelect().Model(row).
		Where("database_id = ?", dbRow.ID).
		Where("name = ?", tableName).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, metastore.NewNoSuchObject("table", dbName+"."+tableName)
	}
	if err != nil {
		return nil, queryFailed("get table", err).AddContext("table", dbName+"."+tableName)
	}
	return row, nil
}

func (s *Store) CreateDatabase(ctx context.Context, db *metastore.Database) error {
	if db == nil || db.Name == "" {
		return metastore.NewInvalidObject("database name is required")
	}
	params, err := encodeJSON(db.Parameters)
	if err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*rows.Database)(nil)).Where("name = ?", db.Name).Exists(ctx)
		if err != nil {
			return queryFailed("check database", err)
		}
		if exists {
			return metastore.NewAlreadyExists("database", db.Name)
		}

		row := &rows.Database{
			Name:        db.Name,
			Description: db.Description,
			LocationURI: db.LocationURI,
			OwnerName:   db.OwnerName,
			Parameters:  params,
		}
		row.Touch(time.Now().UTC())
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return queryFailed("create database", err).AddContext("database", db.Name)
		}
		return nil
	})
}

func (s *Store) GetDatabase(ctx context.Context, name string) (*metastore.Database, error) {
	row, err := s.databaseRow(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	out := &metastore.Database{
		Name:        row.Name,
		Description: row.Description,
		LocationURI: row.LocationURI,
		OwnerName:   row.OwnerName,
	}
	if err := decodeJSON(row.Parameters, &out.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AlterDatabase(ctx context.Context, name string, db *metastore.Database) error {
	params, err := encodeJSON(db.Parameters)
	if err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.databaseRow(ctx, tx, name)
		if err != nil {
			return err
		}
		row.Description = db.Description
		row.LocationURI = db.LocationURI
		row.OwnerName = db.OwnerName
		row.Parameters = params
		row.Touch(time.Now().UTC())
		if _, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("alter database", err).AddContext("database", name)
		}
		return nil
	})
}

// DropDatabase deletes the database row; with cascade the foreign keys take
// its tables, functions and everything below them.
func (s *Store) DropDatabase(ctx context.Context, name string, cascade bool) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.databaseRow(ctx, tx, name)
		if err != nil {
			return err
		}
		if !cascade {
			tables, err := tx.NewSelect().Model((*rows.Table)(nil)).Where("database_id = ?", row.ID).Count(ctx)
			if err != nil {
				return queryFailed("count tables", err)
			}
			functions, err := tx.NewSelect().Model((*rows.Function)(nil)).Where("database_id = ?", row.ID).Count(ctx)
			if err != nil {
				return queryFailed("count functions", err)
			}
			if tables+functions > 0 {
				return metastore.NewNotEmpty("database", name)
			}
		}
		if _, err := tx.NewDelete().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("drop database", err).AddContext("database", name)
		}
		return nil
	})
}

func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.NewSelect().Model((*rows.Database)(nil)).Column("name").Order("name ASC").Scan(ctx, &names)
	if err != nil {
		return nil, queryFailed("list databases", err)
	}
	return names, nil
}

func (s *Store) CreateTable(ctx context.Context, tbl *metastore.Table) error {
	return s.CreateTableWithConstraints(ctx, tbl, nil, nil)
}

func (s *Store) CreateTableWithConstraints(ctx context.Context, tbl *metastore.Table, pks []metastore.PrimaryKey, notNulls []metastore.NotNullConstraint) error {
	if tbl == nil || tbl.TableName == "" {
		return metastore.NewInvalidObject("table name is required")
	}
	row, err := tableToRow(tbl)
	if err != nil {
		return err
	}
	if row.CreateTime == 0 {
		row.CreateTime = time.Now().Unix()
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dbRow, err := s.databaseRow(ctx, tx, tbl.DBName)
		if err != nil {
			return err
		}
		exists, err := tx.NewSelect().Model((*rows.Table)(nil)).
			Where("database_id = ?", dbRow.ID).
			Where("name = ?", tbl.TableName).
			Exists(ctx)
		if err != nil {
			return queryFailed("check table", err)
		}
		if exists {
			return metastore.NewAlreadyExists("table", tbl.DBName+"."+tbl.TableName)
		}

		row.DatabaseID = dbRow.ID
		row.Touch(time.Now().UTC())
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return queryFailed("create table", err).AddContext("table", tbl.DBName+"."+tbl.TableName)
		}

		constraints := constraintRows(row.ID, pks, notNulls)
		if len(constraints) > 0 {
			if _, err := tx.NewInsert().Model(&constraints).Exec(ctx); err != nil {
				return queryFailed("create table constraints", err).AddContext("table", tbl.DBName+"."+tbl.TableName)
			}
		}
		return nil
	})
}

func constraintRows(tableID int64, pks []metastore.PrimaryKey, notNulls []metastore.NotNullConstraint) []rows.TableConstraint {
	var out []rows.TableConstraint
	for _, pk := range pks {
		out = append(out, rows.TableConstraint{
			TableID:        tableID,
			Kind:           rows.ConstraintPrimaryKey,
			ConstraintName: pk.Name,
			ColumnName:     pk.ColumnName,
			KeySeq:         pk.KeySeq,
			Enabled:        pk.Enable,
			Validated:      pk.Validate,
			Relied:         pk.Rely,
		})
	}
	for _, nn := range notNulls {
		out = append(out, rows.TableConstraint{
			TableID:        tableID,
			Kind:           rows.ConstraintNotNull,
			ConstraintName: nn.Name,
			ColumnName:     nn.ColumnName,
			Enabled:        nn.Enable,
			Validated:      nn.Validate,
			Relied:         nn.Rely,
		})
	}
	return out
}

func tableToRow(tbl *metastore.Table) (*rows.Table, error) {
	storage, err := encodeJSON(tbl.SD)
	if err != nil {
		return nil, err
	}
	partKeys, err := encodeJSON(tbl.PartitionKeys)
	if err != nil {
		return nil, err
	}
	params, err := encodeJSON(tbl.Parameters)
	if err != nil {
		return nil, err
	}
	return &rows.Table{
		Name:             tbl.TableName,
		Owner:            tbl.Owner,
		CreateTime:       tbl.CreateTime,
		TableType:        tbl.TableType,
		Storage:          storage,
		PartitionKeys:    partKeys,
		Parameters:       params,
		ViewOriginalText: tbl.ViewOriginalText,
		ViewExpandedText: tbl.ViewExpandedText,
	}, nil
}

func rowToTable(dbName string, row *rows.Table) (*metastore.Table, error) {
	out := &metastore.Table{
		DBName:           dbName,
		TableName:        row.Name,
		Owner:            row.Owner,
		CreateTime:       row.CreateTime,
		TableType:        row.TableType,
		ViewOriginalText: row.ViewOriginalText,
		ViewExpandedText: row.ViewExpandedText,
	}
	if err := decodeJSON(row.Storage, &out.SD); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.PartitionKeys, &out.PartitionKeys); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.Parameters, &out.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetTable(ctx context.Context, dbName, tableName string) (*metastore.Table, error) {
	row, err := s.tableRow(ctx, s.db, dbName, tableName)
	if err != nil {
		return nil, err
	}
	return rowToTable(dbName, row)
}

func (s *Store) AlterTable(ctx context.Context, dbName, tableName string, tbl *metastore.Table) error {
	updated, err := tableToRow(tbl)
	if err != nil {
		return err
	}
	if updated.Name == "" {
		updated.Name = tableName
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.tableRow(ctx, tx, dbName, tableName)
		if err != nil {
			return err
		}
		if updated.Name != tableName {
			exists, err := tx.NewSelect().Model((*rows.Table)(nil)).
				Where("database_id = ?", row.DatabaseID).
				Where("name = ?", updated.Name).
				Exists(ctx)
			if err != nil {
				return queryFailed("check table", err)
			}
			if exists {
				return metastore.NewAlreadyExists("table", dbName+"."+updated.Name)
			}
		}

		updated.ID = row.ID
		updated.DatabaseID = row.DatabaseID
		updated.CreatedAt = row.CreatedAt
		updated.Touch(time.Now().UTC())
		if _, err := tx.NewUpdate().Model(updated).WherePK().Exec(ctx); err != nil {
			return queryFailed("alter table", err).AddContext("table", dbName+"."+tableName)
		}
		return nil
	})
}

func (s *Store) DropTable(ctx context.Context, dbName, tableName string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.tableRow(ctx, tx, dbName, tableName)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("drop table", err).AddContext("table", dbName+"."+tableName)
		}
		return nil
	})
}

func (s *Store) ListTables(ctx context.Context, dbName string) ([]string, error) {
	return s.ListTablesByType(ctx, dbName, "")
}

// ListTablesByType lists table names in dbName; an empty tableType matches all
func (s *Store) ListTablesByType(ctx context.Context, dbName, tableType string) ([]string, error) {
	dbRow, err := s.databaseRow(ctx, s.db, dbName)
	if err != nil {
		return nil, err
	}
	q := s.db.NewSelect().Model((*rows.Table)(nil)).Column("name").Where("database_id = ?", dbRow.ID)
	if tableType != "" {
		q = q.Where("table_type = ?", tableType)
	}
	var names []string
	if err := q.Order("name ASC").Scan(ctx, &names); err != nil {
		return nil, queryFailed("list tables", err).AddContext("database", dbName)
	}
	return names, nil
}

func (s *Store) constraints(ctx context.Context, dbName, tableName, kind string) ([]rows.TableConstraint, error) {
	row, err := s.tableRow(ctx, s.db, dbName, tableName)
	if err != nil {
		return nil, err
	}
	var out []rows.TableConstraint
	err = s.db.NewSelect().Model(&out).
		Where("table_id = ?", row.ID).
		Where("kind = ?", kind).
		Order("key_seq ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, queryFailed("get constraints", err).AddContext("table", dbName+"."+tableName)
	}
	return out, nil
}

func (s *Store) GetPrimaryKeys(ctx context.Context, dbName, tableName string) ([]metastore.PrimaryKey, error) {
	found, err := s.constraints(ctx, dbName, tableName, rows.ConstraintPrimaryKey)
	if err != nil {
		return nil, err
	}
	out := make([]metastore.PrimaryKey, len(found))
	for i, c := range found {
		out[i] = metastore.PrimaryKey{
			DBName:     dbName,
			TableName:  tableName,
			ColumnName: c.ColumnName,
			KeySeq:     c.KeySeq,
			Name:       c.ConstraintName,
			Enable:     c.Enabled,
			Validate:   c.Validated,
			Rely:       c.Relied,
		}
	}
	return out, nil
}

func (s *Store) GetNotNullConstraints(ctx context.Context, dbName, tableName string) ([]metastore.NotNullConstraint, error) {
	found, err := s.constraints(ctx, dbName, tableName, rows.ConstraintNotNull)
	if err != nil {
		return nil, err
	}
	out := make([]metastore.NotNullConstraint, len(found))
	for i, c := range found {
		out[i] = metastore.NotNullConstraint{
			DBName:     dbName,
			TableName:  tableName,
			ColumnName: c.ColumnName,
			Name:       c.ConstraintName,
			Enable:     c.Enabled,
			Validate:   c.Validated,
			Rely:       c.Relied,
		}
	}
	return out, nil
}
