package hive

import (
	"context"
	"time"

	"github.com/gear6io/metacat/server/catalog/codec"
	"github.com/gear6io/metacat/server/catalog/merge"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
)

func (c *Catalog) CreateDatabase(ctx context.Context, name string, db *model.Database, ignoreIfExists bool) (err error) {
	defer func(start time.Time) { c.observe("create_database", name, start, err) }(time.Now())

	if err := requireName("database", name); err != nil {
		return err
	}
	if err := codec.CheckReserved(db.Properties, merge.DatabaseOpKey); err != nil {
		return err
	}
	rec := c.codec.EncodeDatabase(name, db)
	if err := c.client.CreateDatabase(ctx, rec); err != nil {
		err = c.mapErr("create_database", err)
		if ignoreIfExists && isAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Catalog) GetDatabase(ctx context.Context, name string) (db *model.Database, err error) {
	defer func(start time.Time) { c.observe("get_database", name, start, err) }(time.Now())

	rec, err := c.client.GetDatabase(ctx, name)
	if err != nil {
		return nil, c.mapErr("get_database", err)
	}
	return c.codec.DecodeDatabase(rec), nil
}

func (c *Catalog) DatabaseExists(ctx context.Context, name string) (bool, error) {
	_, err := c.GetDatabase(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (c *Catalog) ListDatabases(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) { c.observe("list_databases", "", start, err) }(time.Now())

	names, err = c.client.ListDatabases(ctx)
	if err != nil {
		return nil, c.mapErr("list_databases", err)
	}
	return names, nil
}

// AlterDatabase merges db into the stored database. op may also arrive as an
// alter.database.op property, which is stripped before anything is stored.
func (c *Catalog) AlterDatabase(ctx context.Context, name string, db *model.Database, op merge.Operation, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_database", name, start, err) }(time.Now())

	requested := &model.Database{
		Properties: model.CloneProperties(db.Properties),
		Comment:    db.Comment,
		Location:   db.Location,
	}
	if op, err = merge.Resolve(op, requested.Properties, merge.DatabaseOpKey); err != nil {
		return err
	}
	if err := codec.CheckReserved(requested.Properties); err != nil {
		return err
	}

	rec, err := c.client.GetDatabase(ctx, name)
	if err != nil {
		err = c.mapErr("alter_database", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}

	merged, err := merge.Database(c.codec.DecodeDatabase(rec), requested, op)
	if err != nil {
		return err
	}
	updated := c.codec.EncodeDatabase(name, merged)
	updated.OwnerName = rec.OwnerName
	if err := c.client.AlterDatabase(ctx, name, updated); err != nil {
		return c.mapErr("alter_database", err)
	}
	return nil
}

// DropDatabase removes a database. Without cascade a database holding tables
// or functions is not dropped.
func (c *Catalog) DropDatabase(ctx context.Context, name string, ignoreIfNotExists, cascade bool) (err error) {
	defer func(start time.Time) { c.observe("drop_database", name, start, err) }(time.Now())

	if name == c.defaultDatabase {
		return shared.NewCatalogInvalidInput("database", "the default database cannot be dropped")
	}
	if err := c.client.DropDatabase(ctx, name, cascade); err != nil {
		err = c.mapErr("drop_database", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}
