package hive

import (
	"context"
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/merge"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partitionedTable() *model.Table {
	return &model.Table{
		Columns: []model.Column{
			{Name: "first", Type: model.String()},
			{Name: "second", Type: model.String()},
			{Name: "third", Type: model.Int()},
		},
		PartitionKeys: []string{"second", "third"},
	}
}

var spec = model.PartitionSpec{"second": "2010-04-21 09:45:00", "third": "2000"}

func openWithPartitionedTable(t *testing.T, version string) *Catalog {
	t.Helper()
	c := openWithDatabase(t, version)
	require.NoError(t, c.CreateTable(context.Background(), t1, partitionedTable(), false))
	return c
}

func TestPartitionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")

	require.NoError(t, c.CreatePartition(ctx, t1, spec, &model.Partition{
		Properties: map[string]string{"k0": "v0"},
		Comment:    "april",
	}, false))

	exists, err := c.PartitionExists(ctx, t1, spec)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.AlterPartition(ctx, t1, spec, &model.Partition{
		Properties: map[string]string{merge.TableOpKey: "CHANGE_TBL_PROPS", "k": "v"},
	}, merge.OpNone, false))

	specs, err := c.ListPartitions(ctx, t1, nil)
	require.NoError(t, err)
	assert.Equal(t, []model.PartitionSpec{spec}, specs)

	got, err := c.GetPartition(ctx, t1, spec)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k0": "v0", "k": "v"}, got.Properties)
	assert.Equal(t, "april", got.Comment)
	assert.Equal(t, warehouse+"/db1.db/t1/second=2010-04-21 09%3A45%3A00/third=2000", got.Storage.Location)

	require.NoError(t, c.DropPartition(ctx, t1, spec, false))
	exists, err = c.PartitionExists(ctx, t1, spec)
	require.NoError(t, err)
	assert.False(t, exists)

	err = c.DropPartition(ctx, t1, spec, false)
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))
	assert.NoError(t, c.DropPartition(ctx, t1, spec, true))
}

func TestCreatePartitionDuplicate(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")
	require.NoError(t, c.CreatePartition(ctx, t1, spec, &model.Partition{}, false))

	err := c.CreatePartition(ctx, t1, spec, &model.Partition{}, false)
	assert.True(t, errors.HasCode(err, shared.CatalogAlreadyExists))
	assert.NoError(t, c.CreatePartition(ctx, t1, spec, &model.Partition{}, true))
}

func TestListPartitionsByPartialSpec(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")

	specs := []model.PartitionSpec{
		{"second": "a", "third": "1"},
		{"second": "a", "third": "2"},
		{"second": "b", "third": "1"},
	}
	for _, s := range specs {
		require.NoError(t, c.CreatePartition(ctx, t1, s, &model.Partition{}, false))
	}

	got, err := c.ListPartitions(ctx, t1, model.PartitionSpec{"second": "a"})
	require.NoError(t, err)
	assert.ElementsMatch(t, specs[:2], got)

	got, err = c.ListPartitions(ctx, t1, model.PartitionSpec{"third": "1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.PartitionSpec{specs[0], specs[2]}, got)

	got, err = c.ListPartitions(ctx, t1, model.PartitionSpec{"second": "c"})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.ListPartitions(ctx, t1, model.PartitionSpec{"first": "x"})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}

func TestPartitionSpecMustCoverKeys(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")

	err := c.CreatePartition(ctx, t1, model.PartitionSpec{"second": "a"}, &model.Partition{}, false)
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	exists, err := c.PartitionExists(ctx, t1, model.PartitionSpec{"second": "a"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPartitionsRequirePartitionedTable(t *testing.T) {
	ctx := context.Background()
	c := openWithDatabase(t, "3.1.2")
	require.NoError(t, c.CreateTable(ctx, t1, simpleTable(), false))

	err := c.CreatePartition(ctx, t1, spec, &model.Partition{}, false)
	assert.True(t, errors.HasCode(err, shared.CatalogTableNotPartitioned))

	_, err = c.ListPartitions(ctx, t1, nil)
	assert.True(t, errors.HasCode(err, shared.CatalogTableNotPartitioned))

	exists, err := c.PartitionExists(ctx, t1, spec)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = c.PartitionExists(ctx, model.NewObjectPath("db1", "missing"), spec)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAlterPartitionMissing(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")

	err := c.AlterPartition(ctx, t1, spec, &model.Partition{}, merge.OpChangeProps, false)
	assert.True(t, errors.HasCode(err, shared.CatalogNotFound))
	assert.NoError(t, c.AlterPartition(ctx, t1, spec, &model.Partition{}, merge.OpChangeProps, true))
}

func TestAlterPartitionRejectsColumnChanges(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")
	require.NoError(t, c.CreatePartition(ctx, t1, spec, &model.Partition{}, false))

	err := c.AlterPartition(ctx, t1, spec, &model.Partition{}, merge.OpChangeColumns, false)
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}

func TestAlterTablePartitionKeysFixedOncePartitioned(t *testing.T) {
	ctx := context.Background()
	c := openWithPartitionedTable(t, "3.1.2")
	require.NoError(t, c.CreatePartition(ctx, t1, spec, &model.Partition{}, false))

	repartitioned := partitionedTable()
	repartitioned.PartitionKeys = []string{"third"}
	err := c.AlterTable(ctx, t1, repartitioned, merge.OpChangeColumns, false)
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}
