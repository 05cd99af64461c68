package sqlite

import (
	"context"

	"github.com/gear6io/metacat/server/metastore"
	"github.com/gear6io/metacat/server/metastore/sqlite/rows"
	"github.com/uptrace/bun"
)

// statsRow is the shape shared by both statistics tables
type statsRow struct {
	ColumnName string `bun:"column_name"`
	ColumnType string `bun:"column_type"`
	StatsData  string `bun:"stats_data"`
}

func decodeStats(found []statsRow) ([]metastore.ColumnStatisticsObj, error) {
	out := make([]metastore.ColumnStatisticsObj, 0, len(found))
	for _, r := range found {
		obj := metastore.ColumnStatisticsObj{ColName: r.ColumnName, ColType: r.ColumnType}
		if err := decodeJSON(r.StatsData, &obj.Data); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}

func selectStats(q *bun.SelectQuery, columns []string) *bun.SelectQuery {
	q = q.Column("column_name", "column_type", "stats_data")
	if len(columns) > 0 {
		q = q.Where("column_name IN (?)", bun.In(columns))
	}
	return q.Order("column_name ASC")
}

func (s *Store) GetTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) ([]metastore.ColumnStatisticsObj, error) {
	tblRow, err := s.tableRow(ctx, s.db, dbName, tableName)
	if err != nil {
		return nil, err
	}
	var found []statsRow
	q := s.db.NewSelect().Model((*rows.TableColumnStatistics)(nil)).Where("table_id = ?", tblRow.ID)
	if err := selectStats(q, columns).Scan(ctx, &found); err != nil {
		return nil, queryFailed("get table column statistics", err).AddContext("table", dbName+"."+tableName)
	}
	return decodeStats(found)
}

// UpdateTableColumnStatistics upserts one row per column
func (s *Store) UpdateTableColumnStatistics(ctx context.Context, dbName, tableName string, stats []metastore.ColumnStatisticsObj) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		tblRow, err := s.tableRow(ctx, tx, dbName, tableName)
		if err != nil {
			return err
		}
		for _, obj := range stats {
			data, err := encodeJSON(obj.Data)
			if err != nil {
				return err
			}
			row := &rows.TableColumnStatistics{
				TableID:    tblRow.ID,
				ColumnName: obj.ColName,
				ColumnType: obj.ColType,
				StatsData:  data,
			}
			_, err = tx.NewInsert().Model(row).
				On("CONFLICT (table_id, column_name) DO UPDATE").
				Set("column_type = EXCLUDED.column_type").
				Set("stats_data = EXCLUDED.stats_data").
				Exec(ctx)
			if err != nil {
				return queryFailed("update table column statistics", err).
					AddContext("table", dbName+"."+tableName).
					AddContext("column", obj.ColName)
			}
		}
		return nil
	})
}

func (s *Store) DeleteTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	tblRow, err := s.tableRow(ctx, s.db, dbName, tableName)
	if err != nil {
		return err
	}
	_, err = s.db.NewDelete().Model((*rows.TableColumnStatistics)(nil)).
		Where("table_id = ?", tblRow.ID).
		Where("column_name IN (?)", bun.In(columns)).
		Exec(ctx)
	if err != nil {
		return queryFailed("delete table column statistics", err).AddContext("table", dbName+"."+tableName)
	}
	return nil
}

func (s *Store) GetPartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, columns []string) ([]metastore.ColumnStatisticsObj, error) {
	partRow, _, err := s.partitionRow(ctx, s.db, dbName, tableName, values)
	if err != nil {
		return nil, err
	}
	var found []statsRow
	q := s.db.NewSelect().Model((*rows.PartitionColumnStatistics)(nil)).Where("partition_id = ?", partRow.ID)
	if err := selectStats(q, columns).Scan(ctx, &found); err != nil {
		return nil, queryFailed("get partition column statistics", err).AddContext("table", dbName+"."+tableName)
	}
	return decodeStats(found)
}

func (s *Store) UpdatePartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, stats []metastore.ColumnStatisticsObj) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		partRow, _, err := s.partitionRow(ctx, tx, dbName, tableName, values)
		if err != nil {
			return err
		}
		for _, obj := range stats {
			data, err := encodeJSON(obj.Data)
			if err != nil {
				return err
			}
			row := &rows.PartitionColumnStatistics{
				PartitionID: partRow.ID,
				ColumnName:  obj.ColName,
				ColumnType:  obj.ColType,
				StatsData:   data,
			}
			_, err = tx.NewInsert().Model(row).
				On("CONFLICT (partition_id, column_name) DO UPDATE").
				Set("column_type = EXCLUDED.column_type").
				Set("stats_data = EXCLUDED.stats_data").
				Exec(ctx)
			if err != nil {
				return queryFailed("update partition column statistics", err).
					AddContext("table", dbName+"."+tableName).
					AddContext("column", obj.ColName)
			}
		}
		return nil
	})
}
