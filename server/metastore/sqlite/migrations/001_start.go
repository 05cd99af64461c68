package migrations

import (
	"context"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/metastore/sqlite/rows"
	"github.com/uptrace/bun"
)

// Package-specific error codes for migrations
var (
	MigrationTableCreationFailed = errors.MustNewCode("migrations.table_creation_failed")
	MigrationIndexCreationFailed = errors.MustNewCode("migrations.index_creation_failed")
)

// Migration001 creates the initial metastore schema
type Migration001 struct{}

func (m *Migration001) Version() int {
	return 1
}

func (m *Migration001) Name() string {
	return "initial_metastore_schema"
}

func (m *Migration001) Description() string {
	return "Databases, tables, partitions, functions, constraints and column statistics"
}

// Up runs the migration
func (m *Migration001) Up(ctx context.Context, tx bun.Tx) error {
	type tableDef struct {
		name        string
		model       interface{}
		foreignKeys []string
	}

	tables := []tableDef{
		{name: "metastore_properties", model: (*rows.Property)(nil)},
		{name: "databases", model: (*rows.Database)(nil)},
		{
			name:        "tables",
			model:       (*rows.Table)(nil),
			foreignKeys: []string{`("database_id") REFERENCES "databases" ("id") ON DELETE CASCADE`},
		},
		{
			name:        "table_constraints",
			model:       (*rows.TableConstraint)(nil),
			foreignKeys: []string{`("table_id") REFERENCES "tables" ("id") ON DELETE CASCADE`},
		},
		{
			name:        "partitions",
			model:       (*rows.Partition)(nil),
			foreignKeys: []string{`("table_id") REFERENCES "tables" ("id") ON DELETE CASCADE`},
		},
		{
			name:        "functions",
			model:       (*rows.Function)(nil),
			foreignKeys: []string{`("database_id") REFERENCES "databases" ("id") ON DELETE CASCADE`},
		},
		{
			name:        "table_column_statistics",
			model:       (*rows.TableColumnStatistics)(nil),
			foreignKeys: []string{`("table_id") REFERENCES "tables" ("id") ON DELETE CASCADE`},
		},
		{
			name:        "partition_column_statistics",
			model:       (*rows.PartitionColumnStatistics)(nil),
			foreignKeys: []string{`("partition_id") REFERENCES "partitions" ("id") ON DELETE CASCADE`},
		},
	}

	for _, def := range tables {
		q := tx.NewCreateTable().Model(def.model).IfNotExists()
		for _, fk := range def.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return errors.New(MigrationTableCreationFailed, "failed to create "+def.name+" table", err).AddContext("table", def.name)
		}
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tables_database_name ON tables(database_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_tables_type ON tables(database_id, table_type)`,
		`CREATE INDEX IF NOT EXISTS idx_table_constraints_table ON table_constraints(table_id, kind)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_partitions_table_values ON partitions(table_id, part_values)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_functions_database_name ON functions(database_id, name)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_table_column_statistics_column ON table_column_statistics(table_id, column_name)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_partition_column_statistics_column ON partition_column_statistics(partition_id, column_name)`,
	}
	for _, indexSQL := range indexes {
		if _, err := tx.ExecContext(ctx, indexSQL); err != nil {
			return errors.New(MigrationIndexCreationFailed, "failed to create index", err).AddContext("sql", indexSQL)
		}
	}

	return nil
}
