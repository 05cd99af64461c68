package hive

import (
	"context"
	"sort"
	"time"

	"github.com/gear6io/metacat/server/catalog/codec"
	"github.com/gear6io/metacat/server/catalog/merge"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/shim"
	"github.com/gear6io/metacat/server/catalog/stats"
	"github.com/gear6io/metacat/server/metastore"
)

// getRecord loads a table or view with the constraints stored beside it
func (c *Catalog) getRecord(ctx context.Context, operation string, path model.ObjectPath) (*codec.TableRecord, error) {
	tbl, err := c.client.GetTable(ctx, path.Database, path.Object)
	if err != nil {
		return nil, c.mapErr(operation, err)
	}
	rec := &codec.TableRecord{Table: tbl}
	if codec.IsView(tbl) || codec.IsGeneric(tbl) || !c.shim.Supports(shim.TableConstraints) {
		return rec, nil
	}
	if rec.PrimaryKeys, err = c.client.GetPrimaryKeys(ctx, path.Database, path.Object); err != nil {
		return nil, c.mapErr(operation, err)
	}
	if rec.NotNulls, err = c.client.GetNotNullConstraints(ctx, path.Database, path.Object); err != nil {
		return nil, c.mapErr(operation, err)
	}
	return rec, nil
}

// getTableRecord is getRecord that rejects views
func (c *Catalog) getTableRecord(ctx context.Context, operation string, path model.ObjectPath) (*codec.TableRecord, *model.Table, error) {
	rec, err := c.getRecord(ctx, operation, path)
	if err != nil {
		return nil, nil, err
	}
	t, err := c.codec.DecodeTable(rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, t, nil
}

func (c *Catalog) databaseLocation(ctx context.Context, operation, name string) (string, error) {
	db, err := c.client.GetDatabase(ctx, name)
	if err != nil {
		return "", c.mapErr(operation, err)
	}
	return db.LocationURI, nil
}

// CreateTable stores t under path. Table statistics may be supplied as
// numRows, numFiles, totalSize and rawDataSize properties; four zeros without
// a stats-generated marker are treated as never gathered.
func (c *Catalog) CreateTable(ctx context.Context, path model.ObjectPath, t *model.Table, ignoreIfExists bool) (err error) {
	defer func(start time.Time) { c.observe("create_table", path.FullName(), start, err) }(time.Now())

	if err := requirePath(path); err != nil {
		return err
	}
	if err := codec.CheckReserved(t.Properties, merge.TableOpKey); err != nil {
		return err
	}
	dbLocation, err := c.databaseLocation(ctx, "create_table", path.Database)
	if err != nil {
		return err
	}
	rec, err := c.codec.EncodeTable(path, t, dbLocation)
	if err != nil {
		return err
	}
	stats.StripUngathered(rec.Table.Parameters)

	if rec.HasConstraints() {
		err = c.client.CreateTableWithConstraints(ctx, rec.Table, rec.PrimaryKeys, rec.NotNulls)
	} else {
		err = c.client.CreateTable(ctx, rec.Table)
	}
	if err != nil {
		err = c.mapErr("create_table", err)
		if ignoreIfExists && isAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Catalog) GetTable(ctx context.Context, path model.ObjectPath) (t *model.Table, err error) {
	defer func(start time.Time) { c.observe("get_table", path.FullName(), start, err) }(time.Now())

	_, t, err = c.getTableRecord(ctx, "get_table", path)
	return t, err
}

// TableExists reports whether a table or view exists under path
func (c *Catalog) TableExists(ctx context.Context, path model.ObjectPath) (bool, error) {
	_, err := c.client.GetTable(ctx, path.Database, path.Object)
	switch {
	case err == nil:
		return true, nil
	case metastore.IsNoSuchObject(err):
		return false, nil
	default:
		return false, c.mapErr("table_exists", err)
	}
}

// ListTables lists tables and views of a database
func (c *Catalog) ListTables(ctx context.Context, database string) (names []string, err error) {
	defer func(start time.Time) { c.observe("list_tables", database, start, err) }(time.Now())

	if _, err := c.databaseLocation(ctx, "list_tables", database); err != nil {
		return nil, err
	}
	names, err = c.client.ListTables(ctx, database)
	if err != nil {
		return nil, c.mapErr("list_tables", err)
	}
	return names, nil
}

func sameConstraints(a, b *codec.TableRecord) bool {
	if len(a.PrimaryKeys) != len(b.PrimaryKeys) || len(a.NotNulls) != len(b.NotNulls) {
		return false
	}
	pkCols := func(rec *codec.TableRecord) []string {
		pks := append([]metastore.PrimaryKey(nil), rec.PrimaryKeys...)
		sort.Slice(pks, func(i, j int) bool { return pks[i].KeySeq < pks[j].KeySeq })
		out := make([]string, 0, len(pks)+1)
		for _, pk := range pks {
			out = append(out, pk.Name+"."+pk.ColumnName)
		}
		return out
	}
	notNullCols := func(rec *codec.TableRecord) []string {
		out := make([]string, 0, len(rec.NotNulls))
		for _, nn := range rec.NotNulls {
			out = append(out, nn.ColumnName)
		}
		sort.Strings(out)
		return out
	}
	return equalStrings(pkCols(a), pkCols(b)) && equalStrings(notNullCols(a), notNullCols(b))
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AlterTable merges t into the stored table according to op, which may also
// arrive as an alter.table.op property. Constraints are fixed at creation
// and a table keeps its generic or native kind. See the package comment for
// the lost update caveat.
func (c *Catalog) AlterTable(ctx context.Context, path model.ObjectPath, t *model.Table, op merge.Operation, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_table", path.FullName(), start, err) }(time.Now())

	requested := *t
	requested.Properties = model.CloneProperties(t.Properties)
	if op, err = merge.Resolve(op, requested.Properties, merge.TableOpKey); err != nil {
		return err
	}
	flagged, err := codec.TakeGenericFlag(requested.Properties)
	if err != nil {
		return err
	}
	requested.Generic = requested.Generic || flagged

	rec, existing, err := c.getTableRecord(ctx, "alter_table", path)
	if err != nil {
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}

	merged, err := merge.Table(existing, &requested, op)
	if err != nil {
		return err
	}
	updated, err := c.codec.EncodeTable(path, merged, "")
	if err != nil {
		return err
	}
	stats.StripUngathered(updated.Table.Parameters)
	if !merged.Generic && !sameConstraints(rec, updated) {
		return shared.NewCatalogInvalidInput("constraints", "primary key and NOT NULL constraints cannot be altered")
	}
	if !equalStrings(existing.PartitionKeys, merged.PartitionKeys) {
		parts, err := c.client.ListPartitions(ctx, path.Database, path.Object)
		if err != nil {
			return c.mapErr("alter_table", err)
		}
		if len(parts) > 0 {
			return shared.NewCatalogInvalidInput("partition_keys", "partition keys of a table with partitions cannot change")
		}
	}

	updated.Table.Owner = rec.Table.Owner
	updated.Table.CreateTime = rec.Table.CreateTime
	updated.Table.TableType = rec.Table.TableType
	if err := c.client.AlterTable(ctx, path.Database, path.Object, updated.Table); err != nil {
		return c.mapErr("alter_table", err)
	}
	// statistics gathered under the old type no longer describe the column
	if retyped := retypedColumns(existing.Columns, merged.Columns); len(retyped) > 0 && !merged.Generic {
		if err := c.client.DeleteTableColumnStatistics(ctx, path.Database, path.Object, retyped); err != nil {
			return c.mapErr("alter_table", err)
		}
	}
	return nil
}

// RenameTable renames a table or view within its database
func (c *Catalog) RenameTable(ctx context.Context, path model.ObjectPath, newName string, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("rename_table", path.FullName(), start, err) }(time.Now())

	if err := requireName("new_name", newName); err != nil {
		return err
	}
	tbl, err := c.client.GetTable(ctx, path.Database, path.Object)
	if err != nil {
		err = c.mapErr("rename_table", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	target := model.NewObjectPath(path.Database, newName)
	exists, err := c.TableExists(ctx, target)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewCatalogAlreadyExists("table", target.FullName())
	}

	// a managed table in its default location moves with its name
	if tbl.TableType == metastore.TableTypeManaged && tbl.SD.Location != "" {
		dbLocation, err := c.databaseLocation(ctx, "rename_table", path.Database)
		if err != nil {
			return err
		}
		if tbl.SD.Location == c.codec.DefaultTableLocation(path, dbLocation) {
			tbl.SD.Location = c.codec.DefaultTableLocation(target, dbLocation)
		}
	}
	tbl.TableName = newName
	if err := c.client.AlterTable(ctx, path.Database, path.Object, tbl); err != nil {
		return c.mapErr("rename_table", err)
	}
	return nil
}

// DropTable drops a table or view together with its partitions and statistics
func (c *Catalog) DropTable(ctx context.Context, path model.ObjectPath, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("drop_table", path.FullName(), start, err) }(time.Now())

	if err := c.client.DropTable(ctx, path.Database, path.Object); err != nil {
		err = c.mapErr("drop_table", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Catalog) CreateView(ctx context.Context, path model.ObjectPath, v *model.View, ignoreIfExists bool) (err error) {
	defer func(start time.Time) { c.observe("create_view", path.FullName(), start, err) }(time.Now())

	if err := requirePath(path); err != nil {
		return err
	}
	if err := codec.CheckReserved(v.Properties, merge.TableOpKey); err != nil {
		return err
	}
	rec, err := c.codec.EncodeView(path, v)
	if err != nil {
		return err
	}
	if err := c.client.CreateTable(ctx, rec); err != nil {
		err = c.mapErr("create_view", err)
		if ignoreIfExists && isAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Catalog) GetView(ctx context.Context, path model.ObjectPath) (v *model.View, err error) {
	defer func(start time.Time) { c.observe("get_view", path.FullName(), start, err) }(time.Now())

	tbl, err := c.client.GetTable(ctx, path.Database, path.Object)
	if err != nil {
		return nil, c.mapErr("get_view", err)
	}
	return c.codec.DecodeView(tbl)
}

// ListViews lists the views of a database. Metastores without server side
// listing by type are filtered here, one lookup per table.
func (c *Catalog) ListViews(ctx context.Context, database string) (names []string, err error) {
	defer func(start time.Time) { c.observe("list_views", database, start, err) }(time.Now())

	if _, err := c.databaseLocation(ctx, "list_views", database); err != nil {
		return nil, err
	}
	if c.shim.Supports(shim.ViewListing) {
		names, err = c.client.ListTablesByType(ctx, database, metastore.TableTypeView)
		if err != nil {
			return nil, c.mapErr("list_views", err)
		}
		return names, nil
	}

	all, err := c.client.ListTables(ctx, database)
	if err != nil {
		return nil, c.mapErr("list_views", err)
	}
	names = []string{}
	for _, name := range all {
		tbl, err := c.client.GetTable(ctx, database, name)
		if err != nil {
			if metastore.IsNoSuchObject(err) {
				continue
			}
			return nil, c.mapErr("list_views", err)
		}
		if codec.IsView(tbl) {
			names = append(names, name)
		}
	}
	return names, nil
}
