package hive

import (
	"context"
	"time"

	"github.com/gear6io/metacat/server/catalog/codec"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/stats"
	"github.com/gear6io/metacat/server/metastore"
)

// GetTableStatistics reads the table level counters. Partitioned tables keep
// theirs per partition, so the table level is unknown.
func (c *Catalog) GetTableStatistics(ctx context.Context, path model.ObjectPath) (st model.TableStatistics, err error) {
	defer func(start time.Time) { c.observe("get_table_statistics", path.FullName(), start, err) }(time.Now())

	rec, t, err := c.getTableRecord(ctx, "get_table_statistics", path)
	if err != nil {
		return model.UnknownTableStatistics, err
	}
	if !t.Generic && t.IsPartitioned() {
		return model.UnknownTableStatistics, nil
	}
	return stats.FromProperties(rec.Table.Parameters), nil
}

// AlterTableStatistics writes the counters and the stats-generated marker.
// Nothing is written when the counters are unchanged.
func (c *Catalog) AlterTableStatistics(ctx context.Context, path model.ObjectPath, st model.TableStatistics, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_table_statistics", path.FullName(), start, err) }(time.Now())

	rec, t, err := c.getTableRecord(ctx, "alter_table_statistics", path)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	if !t.Generic && t.IsPartitioned() {
		return shared.NewCatalogInvalidInput("table_statistics", "statistics of partitioned table "+path.FullName()+" are kept per partition")
	}
	if !stats.Changed(rec.Table.Parameters, st) {
		return nil
	}
	rec.Table.Parameters = stats.Apply(rec.Table.Parameters, st, c.shim)
	if err := c.client.AlterTable(ctx, path.Database, path.Object, rec.Table); err != nil {
		return c.mapErr("alter_table_statistics", err)
	}
	return nil
}

// nativeTable loads a native table for column statistics
func (c *Catalog) nativeTable(ctx context.Context, operation string, path model.ObjectPath) (*codec.TableRecord, *model.Table, error) {
	rec, t, err := c.getTableRecord(ctx, operation, path)
	if err != nil {
		return nil, nil, err
	}
	if t.Generic {
		return nil, nil, shared.NewCatalogInvalidInput("column_statistics", "generic table "+path.FullName()+" keeps no column statistics")
	}
	return rec, t, nil
}

func columnNames(columns []model.Column) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

// currentStats keeps the entries of cs whose column still exists and whose
// variant still describes the column's type
func currentStats(columns []model.Column, cs model.ColumnStatistics) model.ColumnStatistics {
	current := make(model.ColumnStatistics, len(cs))
	for _, col := range columns {
		data, ok := cs[col.Name]
		if !ok {
			continue
		}
		if kind, ok := col.Type.StatisticsKind(); ok && kind == data.Kind() {
			current[col.Name] = data
		}
	}
	return current
}

// mergeStored merges requested into the still valid entries of existing
func mergeStored(columns []model.Column, existing, requested model.ColumnStatistics) model.ColumnStatistics {
	return stats.MergeColumnStatistics(currentStats(columns, existing), requested)
}

// retypedColumns names the columns of after whose type differs in before
func retypedColumns(before, after []model.Column) []string {
	types := make(map[string]string, len(before))
	for _, col := range before {
		types[col.Name] = col.Type.AsNullable().String()
	}
	var names []string
	for _, col := range after {
		if typ, ok := types[col.Name]; ok && typ != col.Type.AsNullable().String() {
			names = append(names, col.Name)
		}
	}
	return names
}

func (c *Catalog) GetTableColumnStatistics(ctx context.Context, path model.ObjectPath) (cs model.ColumnStatistics, err error) {
	defer func(start time.Time) { c.observe("get_table_column_statistics", path.FullName(), start, err) }(time.Now())

	_, t, err := c.getTableRecord(ctx, "get_table_column_statistics", path)
	if err != nil {
		return nil, err
	}
	if t.Generic {
		return model.ColumnStatistics{}, nil
	}
	columns := t.DataColumns()
	objs, err := c.client.GetTableColumnStatistics(ctx, path.Database, path.Object, columnNames(columns))
	if err != nil {
		return nil, c.mapErr("get_table_column_statistics", err)
	}
	cs, err = c.codec.DecodeColumnStatistics(path.FullName(), objs)
	if err != nil {
		return nil, err
	}
	return currentStats(columns, cs), nil
}

// AlterTableColumnStatistics replaces the statistics of the named columns and
// keeps those of every other column
func (c *Catalog) AlterTableColumnStatistics(ctx context.Context, path model.ObjectPath, cs model.ColumnStatistics, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_table_column_statistics", path.FullName(), start, err) }(time.Now())

	_, t, err := c.nativeTable(ctx, "alter_table_column_statistics", path)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	if err := stats.ValidateColumnStatistics(t.Columns, t.PartitionKeys, cs, c.shim); err != nil {
		return err
	}
	columns := t.DataColumns()
	objs, err := c.client.GetTableColumnStatistics(ctx, path.Database, path.Object, columnNames(columns))
	if err != nil {
		return c.mapErr("alter_table_column_statistics", err)
	}
	existing, err := c.codec.DecodeColumnStatistics(path.FullName(), objs)
	if err != nil {
		return err
	}
	encoded, err := c.codec.EncodeColumnStatistics(columns, mergeStored(columns, existing, cs))
	if err != nil {
		return err
	}
	if err := c.client.UpdateTableColumnStatistics(ctx, path.Database, path.Object, encoded); err != nil {
		return c.mapErr("alter_table_column_statistics", err)
	}
	return nil
}

func (c *Catalog) partitionWithTable(ctx context.Context, operation string, path model.ObjectPath, spec model.PartitionSpec) (*metastore.Table, *metastore.Partition, error) {
	tbl, err := c.partitionedTable(ctx, operation, path)
	if err != nil {
		return nil, nil, err
	}
	part, err := c.getPartition(ctx, operation, path, tbl, spec)
	if err != nil {
		return nil, nil, err
	}
	return tbl, part, nil
}

func (c *Catalog) GetPartitionStatistics(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec) (st model.TableStatistics, err error) {
	defer func(start time.Time) { c.observe("get_partition_statistics", path.FullName(), start, err) }(time.Now())

	_, part, err := c.partitionWithTable(ctx, "get_partition_statistics", path, spec)
	if err != nil {
		return model.UnknownTableStatistics, err
	}
	return stats.FromProperties(part.Parameters), nil
}

func (c *Catalog) AlterPartitionStatistics(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec, st model.TableStatistics, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_partition_statistics", path.FullName(), start, err) }(time.Now())

	_, part, err := c.partitionWithTable(ctx, "alter_partition_statistics", path, spec)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	if !stats.Changed(part.Parameters, st) {
		return nil
	}
	part.Parameters = stats.Apply(part.Parameters, st, c.shim)
	if err := c.client.AlterPartition(ctx, path.Database, path.Object, part); err != nil {
		return c.mapErr("alter_partition_statistics", err)
	}
	return nil
}

// tableColumns decodes the owning table for its columns and partition keys
func (c *Catalog) tableColumns(tbl *metastore.Table) ([]model.Column, []string, error) {
	t, err := c.codec.DecodeTable(&codec.TableRecord{Table: tbl})
	if err != nil {
		return nil, nil, err
	}
	return t.Columns, t.PartitionKeys, nil
}

func (c *Catalog) GetPartitionColumnStatistics(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec) (cs model.ColumnStatistics, err error) {
	defer func(start time.Time) { c.observe("get_partition_column_statistics", path.FullName(), start, err) }(time.Now())

	tbl, part, err := c.partitionWithTable(ctx, "get_partition_column_statistics", path, spec)
	if err != nil {
		return nil, err
	}
	columns, partitionKeys, err := c.tableColumns(tbl)
	if err != nil {
		return nil, err
	}
	data := (&model.Table{Columns: columns, PartitionKeys: partitionKeys}).DataColumns()
	objs, err := c.client.GetPartitionColumnStatistics(ctx, path.Database, path.Object, part.Values, columnNames(data))
	if err != nil {
		return nil, c.mapErr("get_partition_column_statistics", err)
	}
	cs, err = c.codec.DecodeColumnStatistics(partitionName(path, spec), objs)
	if err != nil {
		return nil, err
	}
	return currentStats(data, cs), nil
}

func (c *Catalog) AlterPartitionColumnStatistics(ctx context.Context, path model.ObjectPath, spec model.PartitionSpec, cs model.ColumnStatistics, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_partition_column_statistics", path.FullName(), start, err) }(time.Now())

	tbl, part, err := c.partitionWithTable(ctx, "alter_partition_column_statistics", path, spec)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	columns, partitionKeys, err := c.tableColumns(tbl)
	if err != nil {
		return err
	}
	if err := stats.ValidateColumnStatistics(columns, partitionKeys, cs, c.shim); err != nil {
		return err
	}
	data := (&model.Table{Columns: columns, PartitionKeys: partitionKeys}).DataColumns()
	objs, err := c.client.GetPartitionColumnStatistics(ctx, path.Database, path.Object, part.Values, columnNames(data))
	if err != nil {
		return c.mapErr("alter_partition_column_statistics", err)
	}
	existing, err := c.codec.DecodeColumnStatistics(partitionName(path, spec), objs)
	if err != nil {
		return err
	}
	encoded, err := c.codec.EncodeColumnStatistics(data, mergeStored(data, existing, cs))
	if err != nil {
		return err
	}
	if err := c.client.UpdatePartitionColumnStatistics(ctx, path.Database, path.Object, part.Values, encoded); err != nil {
		return c.mapErr("alter_partition_column_statistics", err)
	}
	return nil
}
