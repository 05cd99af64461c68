package hive

import (
	"context"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/codec"
	"github.com/gear6io/metacat/server/catalog/merge"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/stats"
	"github.com/gear6io/metacat/server/metastore"
)

// partitionedTable loads a native partitioned table
func (c *Catalog) partitionedTable(ctx context.Context, operation string, path model.ObjectPath) (*metastore.Table, error) {
	tbl, err := c.client.GetTable(ctx, path.Database, path.Object)
	if err != nil {
		return nil, c.mapErr(operation, err)
	}
	if codec.IsView(tbl) {
		return nil, shared.NewCatalogWrongObjectType(path.FullName(), "table", "view")
	}
	if codec.IsGeneric(tbl) || len(tbl.PartitionKeys) == 0 {
		return nil, shared.NewCatalogTableNotPartitioned(path.FullName())
	}
	return tbl, nil
}

func partitionName(path model.ObjectPath, spec model.PartitionSpec) string {
	return path.FullName() + spec.String()
}

// getPartition loads the partition of a table, reporting absence as a
// catalog not found error
func (c *Catalog) getPartition(ctx context.Context, operation string, path model.ObjectPath, tbl *metastore.Table, spec model.PartitionSpec) (*metastore.Partition, error) {
	values, err := codec.PartitionValues(tbl, spec)
	if err != nil {
		return nil, err
	}
	part, err := c.client.GetPartition(ctx, path.Database, path.Object, values)
	if err != nil {
		if metastore.IsNoSuchObject(err) {
			return nil, shared.NewCatalogNotFound("partition", partitionName(path, spec)).WithCause(err)
		}
		return nil, c.mapErr(operation, err)
	}
	return part, nil
}

func (c *Catalog) CreatePartition(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec, p *model.Partition, ignoreIfExists bool) (err error) {
	defer func(start time.Time) { c.observe("create_partition", path.FullName(), start, err) }(time.Now())

	if err := codec.CheckReserved(p.Properties, merge.TableOpKey); err != nil {
		return err
	}
	tbl, err := c.partitionedTable(ctx, "create_partition", path)
	if err != nil {
		return err
	}
	part, err := c.codec.EncodePartition(tbl, spec, p)
	if err != nil {
		return err
	}
	stats.StripUngathered(part.Parameters)
	if err := c.client.AddPartition(ctx, part); err != nil {
		if metastore.IsAlreadyExists(err) {
			if ignoreIfExists {
				return nil
			}
			return shared.NewCatalogAlreadyExists("partition", partitionName(path, spec)).WithCause(err)
		}
		return c.mapErr("create_partition", err)
	}
	return nil
}

func (c *Catalog) GetPartition(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec) (p *model.Partition, err error) {
	defer func(start time.Time) { c.observe("get_partition", path.FullName(), start, err) }(time.Now())

	tbl, err := c.partitionedTable(ctx, "get_partition", path)
	if err != nil {
		return nil, err
	}
	part, err := c.getPartition(ctx, "get_partition", path, tbl, spec)
	if err != nil {
		return nil, err
	}
	_, p, err = c.codec.DecodePartition(tbl, part)
	return p, err
}

// PartitionExists is false for missing tables and for specs that do not
// match the table's partition keys
func (c *Catalog) PartitionExists(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec) (bool, error) {
	_, err := c.GetPartition(ctx, path, spec)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err), errors.HasCode(err, shared.CatalogInvalidInput), errors.HasCode(err, shared.CatalogTableNotPartitioned):
		return false, nil
	default:
		return false, err
	}
}

// ListPartitions lists partition specs in metastore order. A non-empty
// partial spec keeps only partitions matching all of its entries.
func (c *Catalog) ListPartitions(ctx context.Context, path model.ObjectPath, partial model.PartitionSpec) (specs []model.PartitionSpec, err error) {
	defer func(start time.Time) { c.observe("list_partitions", path.FullName(), start, err) }(time.Now())

	tbl, err := c.partitionedTable(ctx, "list_partitions", path)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(tbl.PartitionKeys))
	for _, k := range codec.PartitionKeys(tbl) {
		keys[k] = true
	}
	for k := range partial {
		if !keys[k] {
			return nil, shared.NewCatalogInvalidInput("partition_spec", k+" is not a partition key of "+path.FullName())
		}
	}

	parts, err := c.client.ListPartitions(ctx, path.Database, path.Object)
	if err != nil {
		return nil, c.mapErr("list_partitions", err)
	}
	specs = []model.PartitionSpec{}
	for _, part := range parts {
		spec, _, err := c.codec.DecodePartition(tbl, part)
		if err != nil {
			return nil, err
		}
		if spec.Contains(partial) {
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// AlterPartition merges p into the stored partition. op may also arrive as an
// alter.table.op property.
func (c *Catalog) AlterPartition(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec, p *model.Partition, op merge.Operation, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_partition", path.FullName(), start, err) }(time.Now())

	requested := *p
	requested.Properties = model.CloneProperties(p.Properties)
	if op, err = merge.Resolve(op, requested.Properties, merge.TableOpKey); err != nil {
		return err
	}

	tbl, err := c.partitionedTable(ctx, "alter_partition", path)
	if err != nil {
		return err
	}
	part, err := c.getPartition(ctx, "alter_partition", path, tbl, spec)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	_, existing, err := c.codec.DecodePartition(tbl, part)
	if err != nil {
		return err
	}

	merged, err := merge.Partition(existing, &requested, op)
	if err != nil {
		return err
	}
	updated, err := c.codec.EncodePartition(tbl, spec, merged)
	if err != nil {
		return err
	}
	updated.CreateTime = part.CreateTime
	if err := c.client.AlterPartition(ctx, path.Database, path.Object, updated); err != nil {
		return c.mapErr("alter_partition", err)
	}
	return nil
}

func (c *Catalog) DropPartition(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("drop_partition", path.FullName(), start, err) }(time.Now())

	tbl, err := c.partitionedTable(ctx, "drop_partition", path)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	values, err := codec.PartitionValues(tbl, spec)
	if err != nil {
		return err
	}
	if err := c.client.DropPartition(ctx, path.Database, path.Object, values); err != nil {
		if metastore.IsNoSuchObject(err) {
			if ignoreIfNotExists {
				return nil
			}
			return shared.NewCatalogNotFound("partition", partitionName(path, spec)).WithCause(err)
		}
		return c.mapErr("drop_partition", err)
	}
	return nil
}
