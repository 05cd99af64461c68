// Package rows holds the bun models of the embedded metastore schema.
// JSON-valued columns are stored as text and decoded by the store.
package rows

import (
	"time"

	"github.com/uptrace/bun"
)

// TimeAuditable provides common timestamp fields for auditable rows
type TimeAuditable struct {
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// Touch sets UpdatedAt, and CreatedAt when unset
func (t *TimeAuditable) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Property is a key/value row describing the metastore itself
type Property struct {
	bun.BaseModel `bun:"table:metastore_properties"`

	Name  string `bun:"name,pk" json:"name"`
	Value string `bun:"value,notnull" json:"value"`
}

type Database struct {
	bun.BaseModel `bun:"table:databases"`
	TimeAuditable

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	Name        string `bun:"name,notnull,unique" json:"name"`
	Description string `bun:"description" json:"description"`
	LocationURI string `bun:"location_uri" json:"location_uri"`
	OwnerName   string `bun:"owner_name" json:"owner_name"`
	Parameters  string `bun:"parameters,notnull,default:'{}'" json:"parameters"`
}

// Table stores tables and views. Storage and PartitionKeys hold JSON.
type Table struct {
	bun.BaseModel `bun:"table:tables"`
	TimeAuditable

	ID               int64  `bun:"id,pk,autoincrement" json:"id"`
	DatabaseID       int64  `bun:"database_id,notnull" json:"database_id"`
	Name             string `bun:"name,notnull" json:"name"`
	Owner            string `bun:"owner" json:"owner"`
	CreateTime       int64  `bun:"create_time,notnull" json:"create_time"`
	TableType        string `bun:"table_type,notnull" json:"table_type"`
	Storage          string `bun:"storage,notnull,default:'{}'" json:"storage"`
	PartitionKeys    string `bun:"partition_keys,notnull,default:'[]'" json:"partition_keys"`
	Parameters       string `bun:"parameters,notnull,default:'{}'" json:"parameters"`
	ViewOriginalText string `bun:"view_original_text" json:"view_original_text"`
	ViewExpandedText string `bun:"view_expanded_text" json:"view_expanded_text"`
}

// Constraint kinds
const (
	ConstraintPrimaryKey = "primary_key"
	ConstraintNotNull    = "not_null"
)

// TableConstraint is one column of a primary key or NOT NULL constraint
type TableConstraint struct {
	bun.BaseModel `bun:"table:table_constraints"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	TableID        int64  `bun:"table_id,notnull" json:"table_id"`
	Kind           string `bun:"kind,notnull" json:"kind"`
	ConstraintName string `bun:"constraint_name" json:"constraint_name"`
	ColumnName     string `bun:"column_name,notnull" json:"column_name"`
	KeySeq         int    `bun:"key_seq,notnull" json:"key_seq"`
	Enabled        bool   `bun:"enabled,notnull" json:"enabled"`
	Validated      bool   `bun:"validated,notnull" json:"validated"`
	Relied         bool   `bun:"relied,notnull" json:"relied"`
}

// Partition values are a JSON array, unique per table
type Partition struct {
	bun.BaseModel `bun:"table:partitions"`
	TimeAuditable

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	TableID    int64  `bun:"table_id,notnull" json:"table_id"`
	PartValues string `bun:"part_values,notnull" json:"part_values"`
	CreateTime int64  `bun:"create_time,notnull" json:"create_time"`
	Storage    string `bun:"storage,notnull,default:'{}'" json:"storage"`
	Parameters string `bun:"parameters,notnull,default:'{}'" json:"parameters"`
}

type Function struct {
	bun.BaseModel `bun:"table:functions"`
	TimeAuditable

	ID           int64  `bun:"id,pk,autoincrement" json:"id"`
	DatabaseID   int64  `bun:"database_id,notnull" json:"database_id"`
	Name         string `bun:"name,notnull" json:"name"`
	ClassName    string `bun:"class_name,notnull" json:"class_name"`
	OwnerName    string `bun:"owner_name" json:"owner_name"`
	FunctionType string `bun:"function_type,notnull" json:"function_type"`
	CreateTime   int64  `bun:"create_time,notnull" json:"create_time"`
}

// TableColumnStatistics holds one column's statistics union as JSON
type TableColumnStatistics struct {
	bun.BaseModel `bun:"table:table_column_statistics"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	TableID    int64  `bun:"table_id,notnull" json:"table_id"`
	ColumnName string `bun:"column_name,notnull" json:"column_name"`
	ColumnType string `bun:"column_type,notnull" json:"column_type"`
	StatsData  string `bun:"stats_data,notnull" json:"stats_data"`
}

type PartitionColumnStatistics struct {
	bun.BaseModel `bun:"table:partition_column_statistics"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	PartitionID int64  `bun:"partition_id,notnull" json:"partition_id"`
	ColumnName  string `bun:"column_name,notnull" json:"column_name"`
	ColumnType  string `bun:"column_type,notnull" json:"column_type"`
	StatsData   string `bun:"stats_data,notnull" json:"stats_data"`
}

// TableNames lists every table the migrations create, migrations bookkeeping included
var TableNames = []string{
	"bun_migrations",
	"metastore_properties",
	"databases",
	"tables",
	"table_constraints",
	"partitions",
	"functions",
	"table_column_statistics",
	"partition_column_statistics",
}
