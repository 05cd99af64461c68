package hive

import (
	"context"
	"time"

	"github.com/gear6io/metacat/server/catalog/model"
)

func (c *Catalog) CreateFunction(ctx context.Context, path model.ObjectPath, fn *model.Function, ignoreIfExists bool) (err error) {
	defer func(start time.Time) { c.observe("create_function", path.FullName(), start, err) }(time.Now())

	if err := requirePath(path); err != nil {
		return err
	}
	rec, err := c.codec.EncodeFunction(path, fn)
	if err != nil {
		return err
	}
	if err := c.client.CreateFunction(ctx, rec); err != nil {
		err = c.mapErr("create_function", err)
		if ignoreIfExists && isAlreadyExists(err) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Catalog) GetFunction(ctx context.Context, path model.ObjectPath) (fn *model.Function, err error) {
	defer func(start time.Time) { c.observe("get_function", path.FullName(), start, err) }(time.Now())

	rec, err := c.client.GetFunction(ctx, path.Database, path.Object)
	if err != nil {
		return nil, c.mapErr("get_function", err)
	}
	return c.codec.DecodeFunction(rec), nil
}

func (c *Catalog) FunctionExists(ctx context.Context, path model.ObjectPath) (bool, error) {
	_, err := c.GetFunction(ctx, path)
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (c *Catalog) ListFunctions(ctx context.Context, database string) (names []string, err error) {
	defer func(start time.Time) { c.observe("list_functions", database, start, err) }(time.Now())

	if _, err := c.databaseLocation(ctx, "list_functions", database); err != nil {
		return nil, err
	}
	names, err = c.client.ListFunctions(ctx, database)
	if err != nil {
		return nil, c.mapErr("list_functions", err)
	}
	return names, nil
}

// AlterFunction replaces the stored function
func (c *Catalog) AlterFunction(ctx context.Context, path model.ObjectPath, fn *model.Function, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("alter_function", path.FullName(), start, err) }(time.Now())

	existing, err := c.client.GetFunction(ctx, path.Database, path.Object)
	if err != nil {
		err = c.mapErr("alter_function", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	rec, err := c.codec.EncodeFunction(path, fn)
	if err != nil {
		return err
	}
	rec.OwnerName = existing.OwnerName
	rec.CreateTime = existing.CreateTime
	if err := c.client.AlterFunction(ctx, path.Database, path.Object, rec); err != nil {
		return c.mapErr("alter_function", err)
	}
	return nil
}

func (c *Catalog) DropFunction(ctx context.Context, path model.ObjectPath, ignoreIfNotExists bool) (err error) {
	defer func(start time.Time) { c.observe("drop_function", path.FullName(), start, err) }(time.Now())

	if err := c.client.DropFunction(ctx, path.Database, path.Object); err != nil {
		err = c.mapErr("drop_function", err)
		if ignoreIfNotExists && isNotFound(err) {
			return nil
		}
		return err
	}
	return nil
}
