package memory

import (
	"context"
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/metastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore("")
	require.NoError(t, s.CreateDatabase(context.Background(), &metastore.Database{Name: "db1", Parameters: map[string]string{"k": "v"}}))
	return s
}

func partitionedTable() *metastore.Table {
	return &metastore.Table{
		DBName:    "db1",
		TableName: "events",
		TableType: metastore.TableTypeManaged,
		SD: metastore.StorageDescriptor{
			Cols: []metastore.FieldSchema{{Name: "id", Type: "bigint"}},
		},
		PartitionKeys: []metastore.FieldSchema{{Name: "dt", Type: "string"}, {Name: "hr", Type: "int"}},
		Parameters:    map[string]string{"a": "1"},
	}
}

func TestDatabaseLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	version, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultVersion, version)

	err = s.CreateDatabase(ctx, &metastore.Database{Name: "db1"})
	assert.True(t, metastore.IsAlreadyExists(err))

	db, err := s.GetDatabase(ctx, "db1")
	require.NoError(t, err)
	db.Parameters["k"] = "mutated"

	again, err := s.GetDatabase(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Parameters["k"], "returned records must be copies")

	require.NoError(t, s.AlterDatabase(ctx, "db1", &metastore.Database{Name: "ignored", Description: "d"}))
	again, err = s.GetDatabase(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, "db1", again.Name)
	assert.Equal(t, "d", again.Description)

	names, err := s.ListDatabases(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"db1"}, names)

	_, err = s.GetDatabase(ctx, "missing")
	assert.True(t, metastore.IsNoSuchObject(err))
}

func TestDropDatabaseRestrictAndCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))

	err := s.DropDatabase(ctx, "db1", false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, metastore.ErrNotEmpty))

	require.NoError(t, s.DropDatabase(ctx, "db1", true))
	_, err = s.GetTable(ctx, "db1", "events")
	assert.True(t, metastore.IsNoSuchObject(err))
}

func TestTableRenameMovesDependents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	pks := []metastore.PrimaryKey{{DBName: "db1", TableName: "events", ColumnName: "id", KeySeq: 1, Name: "pk"}}
	require.NoError(t, s.CreateTableWithConstraints(ctx, partitionedTable(), pks, nil))
	require.NoError(t, s.AddPartition(ctx, &metastore.Partition{DBName: "db1", TableName: "events", Values: []string{"2024-01-01", "3"}}))

	tbl, err := s.GetTable(ctx, "db1", "events")
	require.NoError(t, err)
	assert.NotZero(t, tbl.CreateTime)

	tbl.TableName = "events_v2"
	require.NoError(t, s.AlterTable(ctx, "db1", "events", tbl))

	_, err = s.GetTable(ctx, "db1", "events")
	assert.True(t, metastore.IsNoSuchObject(err))

	parts, err := s.ListPartitions(ctx, "db1", "events_v2")
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "events_v2", parts[0].TableName)

	got, err := s.GetPrimaryKeys(ctx, "db1", "events_v2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "events_v2", got[0].TableName)
}

func TestRenameOntoExistingTableFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))
	other := partitionedTable()
	other.TableName = "other"
	require.NoError(t, s.CreateTable(ctx, other))

	tbl, err := s.GetTable(ctx, "db1", "events")
	require.NoError(t, err)
	tbl.TableName = "other"
	err = s.AlterTable(ctx, "db1", "events", tbl)
	assert.True(t, metastore.IsAlreadyExists(err))
}

func TestListTablesByType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))
	require.NoError(t, s.CreateTable(ctx, &metastore.Table{DBName: "db1", TableName: "v", TableType: metastore.TableTypeView}))

	all, err := s.ListTables(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "v"}, all)

	views, err := s.ListTablesByType(ctx, "db1", metastore.TableTypeView)
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, views)

	_, err = s.ListTables(ctx, "nope")
	assert.True(t, metastore.IsNoSuchObject(err))
}

func TestPartitions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))

	err := s.AddPartition(ctx, &metastore.Partition{DBName: "db1", TableName: "events", Values: []string{"only-one"}})
	require.Error(t, err)

	part := &metastore.Partition{DBName: "db1", TableName: "events", Values: []string{"2024-01-01", "3"}, Parameters: map[string]string{"x": "1"}}
	require.NoError(t, s.AddPartition(ctx, part))
	assert.True(t, metastore.IsAlreadyExists(s.AddPartition(ctx, part)))

	part.Parameters = map[string]string{"x": "2"}
	require.NoError(t, s.AlterPartition(ctx, "db1", "events", part))

	got, err := s.GetPartition(ctx, "db1", "events", []string{"2024-01-01", "3"})
	require.NoError(t, err)
	assert.Equal(t, "2", got.Parameters["x"])

	_, err = s.GetPartition(ctx, "db1", "events", []string{"2024-01-01", "4"})
	assert.True(t, metastore.IsNoSuchObject(err))

	require.NoError(t, s.DropPartition(ctx, "db1", "events", []string{"2024-01-01", "3"}))
	parts, err := s.ListPartitions(ctx, "db1", "events")
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestFunctions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	fn := &metastore.Function{DBName: "db1", FunctionName: "f", ClassName: "com.example.F", FunctionType: metastore.FunctionTypeJava}
	require.NoError(t, s.CreateFunction(ctx, fn))
	assert.True(t, metastore.IsAlreadyExists(s.CreateFunction(ctx, fn)))

	fn.ClassName = "com.example.G"
	require.NoError(t, s.AlterFunction(ctx, "db1", "f", fn))
	got, err := s.GetFunction(ctx, "db1", "f")
	require.NoError(t, err)
	assert.Equal(t, "com.example.G", got.ClassName)

	names, err := s.ListFunctions(ctx, "db1")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, names)

	require.NoError(t, s.DropFunction(ctx, "db1", "f"))
	assert.True(t, metastore.IsNoSuchObject(s.DropFunction(ctx, "db1", "f")))
}

func TestColumnStatisticsUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))

	n := int64(5)
	first := []metastore.ColumnStatisticsObj{
		{ColName: "id", ColType: "bigint", Data: metastore.ColumnStatisticsData{Long: &metastore.LongColumnStats{NumNulls: &n}}},
	}
	require.NoError(t, s.UpdateTableColumnStatistics(ctx, "db1", "events", first))
	n = 99

	got, err := s.GetTableColumnStatistics(ctx, "db1", "events", []string{"id", "absent"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), *got[0].Data.Long.NumNulls)

	values := []string{"2024-01-01", "3"}
	require.NoError(t, s.AddPartition(ctx, &metastore.Partition{DBName: "db1", TableName: "events", Values: values}))
	require.NoError(t, s.UpdatePartitionColumnStatistics(ctx, "db1", "events", values, first))

	got, err = s.GetPartitionColumnStatistics(ctx, "db1", "events", values, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id", got[0].ColName)
}

func TestDeleteTableColumnStatistics(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateTable(ctx, partitionedTable()))

	n := int64(1)
	require.NoError(t, s.UpdateTableColumnStatistics(ctx, "db1", "events", []metastore.ColumnStatisticsObj{
		{ColName: "id", ColType: "bigint", Data: metastore.ColumnStatisticsData{Long: &metastore.LongColumnStats{NumNulls: &n}}},
	}))
	require.NoError(t, s.DeleteTableColumnStatistics(ctx, "db1", "events", []string{"id", "absent"}))

	got, err := s.GetTableColumnStatistics(ctx, "db1", "events", nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = s.DeleteTableColumnStatistics(ctx, "db1", "missing", []string{"id"})
	assert.True(t, metastore.IsNoSuchObject(err))
}
