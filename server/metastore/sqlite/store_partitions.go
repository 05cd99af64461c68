package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/gear6io/metacat/server/metastore"
	"github.com/gear6io/metacat/server/metastore/sqlite/rows"
	"github.com/uptrace/bun"
)

func (s *Store) partitionRow(ctx context.Context, idb bun.IDB, dbName, tableName string, values []string) (*rows.Partition, *rows.Table, error) {
	tblRow, err := s.tableRow(ctx, idb, dbName, tableName)
	if err != nil {
		return nil, nil, err
	}
	key, err := encodeJSON(values)
	if err != nil {
		return nil, nil, err
	}
	row := new(rows.Partition)
	err = idb.NewSelect().Model(row).
		Where("table_id = ?", tblRow.ID).
		Where("part_values = ?", key).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil, metastore.NewNoSuchObject("partition", dbName+"."+tableName+"/"+key)
	}
	if err != nil {
		return nil, nil, queryFailed("get partition", err).AddContext("table", dbName+"."+tableName)
	}
	return row, tblRow, nil
}

func partitionToRow(part *metastore.Partition) (*rows.Partition, error) {
	key, err := encodeJSON(part.Values)
	if err != nil {
		return nil, err
	}
	storage, err := encodeJSON(part.SD)
	if err != nil {
		return nil, err
	}
	params, err := encodeJSON(part.Parameters)
	if err != nil {
		return nil, err
	}
	return &rows.Partition{
		PartValues: key,
		CreateTime: part.CreateTime,
		Storage:    storage,
		Parameters: params,
	}, nil
}

func rowToPartition(dbName, tableName string, row *rows.Partition) (*metastore.Partition, error) {
	out := &metastore.Partition{
		DBName:     dbName,
		TableName:  tableName,
		CreateTime: row.CreateTime,
	}
	if err := decodeJSON(row.PartValues, &out.Values); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.Storage, &out.SD); err != nil {
		return nil, err
	}
	if err := decodeJSON(row.Parameters, &out.Parameters); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AddPartition(ctx context.Context, part *metastore.Partition) error {
	row, err := partitionToRow(part)
	if err != nil {
		return err
	}
	if row.CreateTime == 0 {
		row.CreateTime = time.Now().Unix()
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tblRow, err := s.tableRow(ctx, tx, part.DBName, part.TableName)
		if err != nil {
			return err
		}
		var keys []metastore.FieldSchema
		if err := decodeJSON(tblRow.PartitionKeys, &keys); err != nil {
			return err
		}
		if len(part.Values) != len(keys) {
			return metastore.NewInvalidObject("partition value count does not match partition keys of " + part.DBName + "." + part.TableName)
		}

		exists, err := tx.NewSelect().Model((*rows.Partition)(nil)).
			Where("table_id = ?", tblRow.ID).
			Where("part_values = ?", row.PartValues).
			Exists(ctx)
		if err != nil {
			return queryFailed("check partition", err)
		}
		if exists {
			return metastore.NewAlreadyExists("partition",
				part.DBName+"."+part.TableName+"/"+metastore.PartitionName(keys, part.Values))
		}

		row.TableID = tblRow.ID
		row.Touch(time.Now().UTC())
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return queryFailed("add partition", err).AddContext("table", part.DBName+"."+part.TableName)
		}
		return nil
	})
}

func (s *Store) GetPartition(ctx context.Context, dbName, tableName string, values []string) (*metastore.Partition, error) {
	row, _, err := s.partitionRow(ctx, s.db, dbName, tableName, values)
	if err != nil {
		return nil, err
	}
	return rowToPartition(dbName, tableName, row)
}

func (s *Store) AlterPartition(ctx context.Context, dbName, tableName string, part *metastore.Partition) error {
	updated, err := partitionToRow(part)
	if err != nil {
		return err
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, _, err := s.partitionRow(ctx, tx, dbName, tableName, part.Values)
		if err != nil {
			return err
		}
		updated.ID = row.ID
		updated.TableID = row.TableID
		updated.CreatedAt = row.CreatedAt
		if updated.CreateTime == 0 {
			updated.CreateTime = row.CreateTime
		}
		updated.Touch(time.Now().UTC())
		if _, err := tx.NewUpdate().Model(updated).WherePK().Exec(ctx); err != nil {
			return queryFailed("alter partition", err).AddContext("table", dbName+"."+tableName)
		}
		return nil
	})
}

func (s *Store) DropPartition(ctx context.Context, dbName, tableName string, values []string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, _, err := s.partitionRow(ctx, tx, dbName, tableName, values)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("drop partition", err).AddContext("table", dbName+"."+tableName)
		}
		return nil
	})
}

// ListPartitions returns partitions in insertion order
func (s *Store) ListPartitions(ctx context.Context, dbName, tableName string) ([]*metastore.Partition, error) {
	tblRow, err := s.tableRow(ctx, s.db, dbName, tableName)
	if err != nil {
		return nil, err
	}
	var found []rows.Partition
	if err := s.db.NewSelect().Model(&found).Where("table_id = ?", tblRow.ID).Order("id ASC").Scan(ctx); err != nil {
		return nil, queryFailed("list partitions", err).AddContext("table", dbName+"."+tableName)
	}
	out := make([]*metastore.Partition, 0, len(found))
	for i := range found {
		p, err := rowToPartition(dbName, tableName, &found[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) functionRow(ctx context.Context, idb bun.IDB, dbName, name string) (*rows.Function, error) {
	dbRow, err := s.databaseRow(ctx, idb, dbName)
	if err != nil {
		return nil, err
	}
	row := new(rows.Function)
	err = idb.NewSelect().Model(row).
		Where("database_id = ?", dbRow.ID).
		Where("name = ?", name).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, metastore.NewNoSuchObject("function", dbName+"."+name)
	}
	if err != nil {
		return nil, queryFailed("get function", err).AddContext("function", dbName+"."+name)
	}
	return row, nil
}

func (s *Store) CreateFunction(ctx context.Context, fn *metastore.Function) error {
	if fn == nil || fn.FunctionName == "" {
		return metastore.NewInvalidObject("function name is required")
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dbRow, err := s.databaseRow(ctx, tx, fn.DBName)
		if err != nil {
			return err
		}
		exists, err := tx.NewSelect().Model((*rows.Function)(nil)).
			Where("database_id = ?", dbRow.ID).
			Where("name = ?", fn.FunctionName).
			Exists(ctx)
		if err != nil {
			return queryFailed("check function", err)
		}
		if exists {
			return metastore.NewAlreadyExists("function", fn.DBName+"."+fn.FunctionName)
		}

		row := &rows.Function{
			DatabaseID:   dbRow.ID,
			Name:         fn.FunctionName,
			ClassName:    fn.ClassName,
			OwnerName:    fn.OwnerName,
			FunctionType: fn.FunctionType,
			CreateTime:   fn.CreateTime,
		}
		if row.CreateTime == 0 {
			row.CreateTime = time.Now().Unix()
		}
		row.Touch(time.Now().UTC())
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return queryFailed("create function", err).AddContext("function", fn.DBName+"."+fn.FunctionName)
		}
		return nil
	})
}

func (s *Store) GetFunction(ctx context.Context, dbName, name string) (*metastore.Function, error) {
	row, err := s.functionRow(ctx, s.db, dbName, name)
	if err != nil {
		return nil, err
	}
	return &metastore.Function{
		DBName:       dbName,
		FunctionName: row.Name,
		ClassName:    row.ClassName,
		OwnerName:    row.OwnerName,
		FunctionType: row.FunctionType,
		CreateTime:   row.CreateTime,
	}, nil
}

func (s *Store) AlterFunction(ctx context.Context, dbName, name string, fn *metastore.Function) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.functionRow(ctx, tx, dbName, name)
		if err != nil {
			return err
		}
		row.ClassName = fn.ClassName
		row.OwnerName = fn.OwnerName
		row.FunctionType = fn.FunctionType
		row.Touch(time.Now().UTC())
		if _, err := tx.NewUpdate().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("alter function", err).AddContext("function", dbName+"."+name)
		}
		return nil
	})
}

func (s *Store) DropFunction(ctx context.Context, dbName, name string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.functionRow(ctx, tx, dbName, name)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model(row).WherePK().Exec(ctx); err != nil {
			return queryFailed("drop function", err).AddContext("function", dbName+"."+name)
		}
		return nil
	})
}

func (s *Store) ListFunctions(ctx context.Context, dbName string) ([]string, error) {
	dbRow, err := s.databaseRow(ctx, s.db, dbName)
	if err != nil {
		return nil, err
	}
	var names []string
	err = s.db.NewSelect().Model((*rows.Function)(nil)).
		Column("name").
		Where("database_id = ?", dbRow.ID).
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, queryFailed("list functions", err).AddContext("database", dbName)
	}
	return names, nil
}
