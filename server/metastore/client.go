package metastore

import "context"

// Client is the surface of the external metastore that the catalog consumes.
// Implementations report absent objects with ErrNoSuchObject and duplicates
// with ErrAlreadyExists. Timeouts and retries, if any, are the client's own.
type Client interface {
	// Version reports the metastore version string, e.g. "3.1.2"
	Version(ctx context.Context) (string, error)

	CreateDatabase(ctx context.Context, db *Database) error
	GetDatabase(ctx context.Context, name string) (*Database, error)
	AlterDatabase(ctx context.Context, name string, db *Database) error
	DropDatabase(ctx context.Context, name string, cascade bool) error
	ListDatabases(ctx context.Context) ([]string, error)

	// CreateTable stores a table with no constraints
	CreateTable(ctx context.Context, tbl *Table) error
	// CreateTableWithConstraints is only available on metastores that store constraints
	CreateTableWithConstraints(ctx context.Context, tbl *Table, pks []PrimaryKey, notNulls []NotNullConstraint) error
	GetTable(ctx context.Context, dbName, tableName string) (*Table, error)
	// AlterTable replaces the table stored under tableName; tbl.TableName may differ to rename it
	AlterTable(ctx context.Context, dbName, tableName string, tbl *Table) error
	DropTable(ctx context.Context, dbName, tableName string) error
	ListTables(ctx context.Context, dbName string) ([]string, error)
	ListTablesByType(ctx context.Context, dbName, tableType string) ([]string, error)
	GetPrimaryKeys(ctx context.Context, dbName, tableName string) ([]PrimaryKey, error)
	GetNotNullConstraints(ctx context.Context, dbName, tableName string) ([]NotNullConstraint, error)

	AddPartition(ctx context.Context, part *Partition) error
	GetPartition(ctx context.Context, dbName, tableName string, values []string) (*Partition, error)
	AlterPartition(ctx context.Context, dbName, tableName string, part *Partition) error
	DropPartition(ctx context.Context, dbName, tableName string, values []string) error
	ListPartitions(ctx context.Context, dbName, tableName string) ([]*Partition, error)

	CreateFunction(ctx context.Context, fn *Function) error
	GetFunction(ctx context.Context, dbName, name string) (*Function, error)
	AlterFunction(ctx context.Context, dbName, name string, fn *Function) error
	DropFunction(ctx context.Context, dbName, name string) error
	ListFunctions(ctx context.Context, dbName string) ([]string, error)

	// Column statistics updates upsert by column name
	GetTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) ([]ColumnStatisticsObj, error)
	UpdateTableColumnStatistics(ctx context.Context, dbName, tableName string, stats []ColumnStatisticsObj) error
	// DeleteTableColumnStatistics removes the statistics of the named columns
	DeleteTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) error
	GetPartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, columns []string) ([]ColumnStatisticsObj, error)
	UpdatePartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, stats []ColumnStatisticsObj) error

	Close() error
}
