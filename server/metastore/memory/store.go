// Package memory is an in-process metastore client. It keeps every record in
// maps guarded by a single RWMutex and copies records on the way in and out.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gear6io/metacat/server/metastore"
)

// DefaultVersion is reported when no version is configured
const DefaultVersion = "3.1.2"

type tableKey struct {
	db   string
	name string
}

type tableEntry struct {
	table      *metastore.Table
	pks        []metastore.PrimaryKey
	notNulls   []metastore.NotNullConstraint
	partitions map[string]*partitionEntry
	colStats   map[string]metastore.ColumnStatisticsObj
}

type partitionEntry struct {
	partition *metastore.Partition
	colStats  map[string]metastore.ColumnStatisticsObj
}

// Store implements metastore.Client in memory
type Store struct {
	mu        sync.RWMutex
	version   string
	databases map[string]*metastore.Database
	tables    map[tableKey]*tableEntry
	functions map[tableKey]*metastore.Function
}

var _ metastore.Client = (*Store)(nil)

// NewStore creates an empty store that reports version
func NewStore(version string) *Store {
	if version == "" {
		version = DefaultVersion
	}
	return &Store{
		version:   version,
		databases: make(map[string]*metastore.Database),
		tables:    make(map[tableKey]*tableEntry),
		functions: make(map[tableKey]*metastore.Function),
	}
}

func (s *Store) Version(ctx context.Context) (string, error) {
	return s.version, nil
}

// Close is a no-op; the store lives as long as the process
func (s *Store) Close() error {
	return nil
}

func valuesKey(values []string) string {
	return strings.Join(values, "\x00")
}

func (s *Store) CreateDatabase(ctx context.Context, db *metastore.Database) error {
	if db == nil || db.Name == "" {
		return metastore.NewInvalidObject("database name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[db.Name]; ok {
		return metastore.NewAlreadyExists("database", db.Name)
	}
	s.databases[db.Name] = db.Clone()
	return nil
}

func (s *Store) GetDatabase(ctx context.Context, name string) (*metastore.Database, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, ok := s.databases[name]
	if !ok {
		return nil, metastore.NewNoSuchObject("database", name)
	}
	return db.Clone(), nil
}

func (s *Store) AlterDatabase(ctx context.Context, name string, db *metastore.Database) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[name]; !ok {
		return metastore.NewNoSuchObject("database", name)
	}
	updated := db.Clone()
	updated.Name = name
	s.databases[name] = updated
	return nil
}

func (s *Store) DropDatabase(ctx context.Context, name string, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[name]; !ok {
		return metastore.NewNoSuchObject("database", name)
	}

	var tables, functions []tableKey
	for k := range s.tables {
		if k.db == name {
			tables = append(tables, k)
		}
	}
	for k := range s.functions {
		if k.db == name {
			functions = append(functions, k)
		}
	}
	if !cascade && (len(tables) > 0 || len(functions) > 0) {
		return metastore.NewNotEmpty("database", name)
	}

	for _, k := range tables {
		delete(s.tables, k)
	}
	for _, k := range functions {
		delete(s.functions, k)
	}
	delete(s.databases, name)
	return nil
}

func (s *Store) ListDatabases(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) CreateTable(ctx context.Context, tbl *metastore.Table) error {
	return s.CreateTableWithConstraints(ctx, tbl, nil, nil)
}

func (s *Store) CreateTableWithConstraints(ctx context.Context, tbl *metastore.Table, pks []metastore.PrimaryKey, notNulls []metastore.NotNullConstraint) error {
	if tbl == nil || tbl.TableName == "" {
		return metastore.NewInvalidObject("table name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[tbl.DBName]; !ok {
		return metastore.NewNoSuchObject("database", tbl.DBName)
	}
	key := tableKey{tbl.DBName, tbl.TableName}
	if _, ok := s.tables[key]; ok {
		return metastore.NewAlreadyExists("table", tbl.DBName+"."+tbl.TableName)
	}

	stored := tbl.Clone()
	if stored.CreateTime == 0 {
		stored.CreateTime = time.Now().Unix()
	}
	s.tables[key] = &tableEntry{
		table:      stored,
		pks:        append([]metastore.PrimaryKey(nil), pks...),
		notNulls:   append([]metastore.NotNullConstraint(nil), notNulls...),
		partitions: make(map[string]*partitionEntry),
		colStats:   make(map[string]metastore.ColumnStatisticsObj),
	}
	return nil
}

func (s *Store) entry(dbName, tableName string) (*tableEntry, error) {
	e, ok := s.tables[tableKey{dbName, tableName}]
	if !ok {
		return nil, metastore.NewNoSuchObject("table", dbName+"."+tableName)
	}
	return e, nil
}

func (s *Store) GetTable(ctx context.Context, dbName, tableName string) (*metastore.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	return e.table.Clone(), nil
}

func (s *Store) AlterTable(ctx context.Context, dbName, tableName string, tbl *metastore.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}

	updated := tbl.Clone()
	updated.DBName = dbName
	if updated.TableName == "" {
		updated.TableName = tableName
	}
	if updated.TableName != tableName {
		newKey := tableKey{dbName, updated.TableName}
		if _, exists := s.tables[newKey]; exists {
			return metastore.NewAlreadyExists("table", dbName+"."+updated.TableName)
		}
		delete(s.tables, tableKey{dbName, tableName})
		s.tables[newKey] = e
		for i := range e.pks {
			e.pks[i].TableName = updated.TableName
		}
		for i := range e.notNulls {
			e.notNulls[i].TableName = updated.TableName
		}
		for _, p := range e.partitions {
			p.partition.TableName = updated.TableName
		}
	}
	e.table = updated
	return nil
}

func (s *Store) DropTable(ctx context.Context, dbName, tableName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.entry(dbName, tableName); err != nil {
		return err
	}
	delete(s.tables, tableKey{dbName, tableName})
	return nil
}

func (s *Store) ListTables(ctx context.Context, dbName string) ([]string, error) {
	return s.ListTablesByType(ctx, dbName, "")
}

// ListTablesByType lists table names in dbName; an empty tableType matches all
func (s *Store) ListTablesByType(ctx context.Context, dbName, tableType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.databases[dbName]; !ok {
		return nil, metastore.NewNoSuchObject("database", dbName)
	}
	var names []string
	for k, e := range s.tables {
		if k.db != dbName {
			continue
		}
		if tableType != "" && e.table.TableType != tableType {
			continue
		}
		names = append(names, k.name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) GetPrimaryKeys(ctx context.Context, dbName, tableName string) ([]metastore.PrimaryKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	pks := append([]metastore.PrimaryKey(nil), e.pks...)
	sort.Slice(pks, func(i, j int) bool { return pks[i].KeySeq < pks[j].KeySeq })
	return pks, nil
}

func (s *Store) GetNotNullConstraints(ctx context.Context, dbName, tableName string) ([]metastore.NotNullConstraint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	return append([]metastore.NotNullConstraint(nil), e.notNulls...), nil
}

func (s *Store) partitionEntry(e *tableEntry, values []string) (*partitionEntry, error) {
	p, ok := e.partitions[valuesKey(values)]
	if !ok {
		return nil, metastore.NewNoSuchObject("partition",
			e.table.DBName+"."+e.table.TableName+"/"+metastore.PartitionName(e.table.PartitionKeys, values))
	}
	return p, nil
}

func (s *Store) AddPartition(ctx context.Context, part *metastore.Partition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(part.DBName, part.TableName)
	if err != nil {
		return err
	}
	if len(part.Values) != len(e.table.PartitionKeys) {
		return metastore.NewInvalidObject("partition value count does not match partition keys of " + part.DBName + "." + part.TableName)
	}
	key := valuesKey(part.Values)
	if _, ok := e.partitions[key]; ok {
		return metastore.NewAlreadyExists("partition",
			part.DBName+"."+part.TableName+"/"+metastore.PartitionName(e.table.PartitionKeys, part.Values))
	}
	stored := part.Clone()
	if stored.CreateTime == 0 {
		stored.CreateTime = time.Now().Unix()
	}
	e.partitions[key] = &partitionEntry{
		partition: stored,
		colStats:  make(map[string]metastore.ColumnStatisticsObj),
	}
	return nil
}

func (s *Store) GetPartition(ctx context.Context, dbName, tableName string, values []string) (*metastore.Partition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	p, err := s.partitionEntry(e, values)
	if err != nil {
		return nil, err
	}
	return p.partition.Clone(), nil
}

func (s *Store) AlterPartition(ctx context.Context, dbName, tableName string, part *metastore.Partition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}
	p, err := s.partitionEntry(e, part.Values)
	if err != nil {
		return err
	}
	updated := part.Clone()
	updated.DBName = dbName
	updated.TableName = tableName
	p.partition = updated
	return nil
}

func (s *Store) DropPartition(ctx context.Context, dbName, tableName string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}
	if _, err := s.partitionEntry(e, values); err != nil {
		return err
	}
	delete(e.partitions, valuesKey(values))
	return nil
}

// ListPartitions returns partitions ordered by their values
func (s *Store) ListPartitions(ctx context.Context, dbName, tableName string) ([]*metastore.Partition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(e.partitions))
	for k := range e.partitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*metastore.Partition, len(keys))
	for i, k := range keys {
		out[i] = e.partitions[k].partition.Clone()
	}
	return out, nil
}

func (s *Store) CreateFunction(ctx context.Context, fn *metastore.Function) error {
	if fn == nil || fn.FunctionName == "" {
		return metastore.NewInvalidObject("function name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[fn.DBName]; !ok {
		return metastore.NewNoSuchObject("database", fn.DBName)
	}
	key := tableKey{fn.DBName, fn.FunctionName}
	if _, ok := s.functions[key]; ok {
		return metastore.NewAlreadyExists("function", fn.DBName+"."+fn.FunctionName)
	}
	stored := fn.Clone()
	if stored.CreateTime == 0 {
		stored.CreateTime = time.Now().Unix()
	}
	s.functions[key] = stored
	return nil
}

func (s *Store) GetFunction(ctx context.Context, dbName, name string) (*metastore.Function, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.functions[tableKey{dbName, name}]
	if !ok {
		return nil, metastore.NewNoSuchObject("function", dbName+"."+name)
	}
	return fn.Clone(), nil
}

func (s *Store) AlterFunction(ctx context.Context, dbName, name string, fn *metastore.Function) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tableKey{dbName, name}
	if _, ok := s.functions[key]; !ok {
		return metastore.NewNoSuchObject("function", dbName+"."+name)
	}
	updated := fn.Clone()
	updated.DBName = dbName
	updated.FunctionName = name
	s.functions[key] = updated
	return nil
}

func (s *Store) DropFunction(ctx context.Context, dbName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tableKey{dbName, name}
	if _, ok := s.functions[key]; !ok {
		return metastore.NewNoSuchObject("function", dbName+"."+name)
	}
	delete(s.functions, key)
	return nil
}

func (s *Store) ListFunctions(ctx context.Context, dbName string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.databases[dbName]; !ok {
		return nil, metastore.NewNoSuchObject("database", dbName)
	}
	var names []string
	for k := range s.functions {
		if k.db == dbName {
			names = append(names, k.name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// selectStats returns the stored objects for columns, or all of them when
// columns is empty. Columns without statistics are skipped.
func selectStats(stored map[string]metastore.ColumnStatisticsObj, columns []string) []metastore.ColumnStatisticsObj {
	if len(columns) == 0 {
		for name := range stored {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}
	var out []metastore.ColumnStatisticsObj
	for _, c := range columns {
		if obj, ok := stored[c]; ok {
			out = append(out, obj.Clone())
		}
	}
	return out
}

func upsertStats(stored map[string]metastore.ColumnStatisticsObj, stats []metastore.ColumnStatisticsObj) {
	for _, obj := range stats {
		stored[obj.ColName] = obj.Clone()
	}
}

func (s *Store) GetTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) ([]metastore.ColumnStatisticsObj, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	return selectStats(e.colStats, columns), nil
}

func (s *Store) UpdateTableColumnStatistics(ctx context.Context, dbName, tableName string, stats []metastore.ColumnStatisticsObj) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}
	upsertStats(e.colStats, stats)
	return nil
}

func (s *Store) DeleteTableColumnStatistics(ctx context.Context, dbName, tableName string, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}
	for _, c := range columns {
		delete(e.colStats, c)
	}
	return nil
}

func (s *Store) GetPartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, columns []string) ([]metastore.ColumnStatisticsObj, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return nil, err
	}
	p, err := s.partitionEntry(e, values)
	if err != nil {
		return nil, err
	}
	return selectStats(p.colStats, columns), nil
}

func (s *Store) UpdatePartitionColumnStatistics(ctx context.Context, dbName, tableName string, values []string, stats []metastore.ColumnStatisticsObj) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.entry(dbName, tableName)
	if err != nil {
		return err
	}
	p, err := s.partitionEntry(e, values)
	if err != nil {
		return err
	}
	upsertStats(p.colStats, stats)
	return nil
}
