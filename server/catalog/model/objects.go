package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gear6io/metacat/server/catalog/shared"
)

// Database is an engine-neutral database
type Database struct {
	Properties map[string]string
	Comment    string
	Location   string
}

// Column is a named, typed table column
type Column struct {
	Name    string
	Type    DataType
	Comment string
}

// PrimaryKey is a named, ordered list of NOT NULL columns
type PrimaryKey struct {
	Name    string
	Columns []string
}

// StorageFormat describes how a native table's files are laid out. Format is
// a short name ("orc", "parquet", ...); the class names are derived from it
// when left empty.
type StorageFormat struct {
	Format           string
	InputFormat      string
	OutputFormat     string
	SerializationLib string
	SerdeProperties  map[string]string
	Location         string
}

// Table is an engine-neutral table. Generic tables are stored opaquely and
// interpreted only by the owning engine; native tables are fully mapped to the
// metastore's storage model.
type Table struct {
	Columns       []Column
	PrimaryKey    *PrimaryKey
	PartitionKeys []string
	Properties    map[string]string
	Comment       string
	Generic       bool
	Storage       StorageFormat
}

// Column looks a column up by name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) IsPartitioned() bool {
	return len(t.PartitionKeys) > 0
}

// DataColumns returns the columns that are not partition keys, in order
func (t *Table) DataColumns() []Column {
	parts := make(map[string]bool, len(t.PartitionKeys))
	for _, k := range t.PartitionKeys {
		parts[k] = true
	}
	var out []Column
	for _, c := range t.Columns {
		if !parts[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

// Validate checks the structural invariants of a table definition
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return shared.NewCatalogInvalidInput("columns", "table must declare at least one column")
	}

	seen := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if c.Name == "" {
			return shared.NewCatalogInvalidInput("columns", fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := seen[c.Name]; dup {
			return shared.NewCatalogInvalidInput("columns", "duplicate column "+c.Name)
		}
		seen[c.Name] = i
	}

	if pk := t.PrimaryKey; pk != nil {
		if pk.Name == "" {
			return shared.NewCatalogInvalidInput("primary_key", "primary key must be named")
		}
		if len(pk.Columns) == 0 {
			return shared.NewCatalogInvalidInput("primary_key", "primary key must list at least one column")
		}
		used := make(map[string]bool, len(pk.Columns))
		for _, name := range pk.Columns {
			idx, ok := seen[name]
			if !ok {
				return shared.NewCatalogInvalidInput("primary_key", "primary key column "+name+" is not declared")
			}
			if used[name] {
				return shared.NewCatalogInvalidInput("primary_key", "primary key repeats column "+name)
			}
			used[name] = true
			if t.Columns[idx].Type.Nullable {
				return shared.NewCatalogInvalidInput("primary_key", "primary key column "+name+" must be NOT NULL")
			}
		}
	}

	last := -1
	used := make(map[string]bool, len(t.PartitionKeys))
	for _, key := range t.PartitionKeys {
		idx, ok := seen[key]
		if !ok {
			return shared.NewCatalogInvalidInput("partition_keys", "partition key "+key+" is not a declared column")
		}
		if used[key] {
			return shared.NewCatalogInvalidInput("partition_keys", "partition key "+key+" is repeated")
		}
		if idx < last {
			return shared.NewCatalogInvalidInput("partition_keys", "partition keys must follow column order")
		}
		used[key] = true
		last = idx
	}
	if len(t.PartitionKeys) > 0 && len(t.PartitionKeys) == len(t.Columns) {
		return shared.NewCatalogInvalidInput("partition_keys", "at least one column must not be a partition key")
	}

	return nil
}

// View is a stored query
type View struct {
	Columns       []Column
	OriginalQuery string
	ExpandedQuery string
	Properties    map[string]string
	Comment       string
}

// Partition has no identity of its own; it is addressed by table and spec
type Partition struct {
	Properties map[string]string
	Comment    string
	Storage    StorageFormat
}

// PartitionSpec maps partition key names to values
type PartitionSpec map[string]string

// Values orders the spec by keys and fails unless it covers exactly those keys
func (s PartitionSpec) Values(keys []string) ([]string, error) {
	if len(s) != len(keys) {
		return nil, shared.NewCatalogInvalidInput("partition_spec",
			fmt.Sprintf("partition spec has %d keys, table is partitioned by %s", len(s), strings.Join(keys, ", ")))
	}
	values := make([]string, len(keys))
	for i, k := range keys {
		v, ok := s[k]
		if !ok {
			return nil, shared.NewCatalogInvalidInput("partition_spec", "partition spec is missing key "+k)
		}
		values[i] = v
	}
	return values, nil
}

// Contains reports whether every entry of partial is present in s
func (s PartitionSpec) Contains(partial PartitionSpec) bool {
	for k, v := range partial {
		if got, ok := s[k]; !ok || got != v {
			return false
		}
	}
	return true
}

func (s PartitionSpec) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s[k]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SpecFromValues zips keys and values into a spec
func SpecFromValues(keys, values []string) PartitionSpec {
	spec := make(PartitionSpec, len(keys))
	for i, k := range keys {
		spec[k] = values[i]
	}
	return spec
}

// FunctionLanguage is the implementation language of a function
type FunctionLanguage string

const (
	LanguageJava   FunctionLanguage = "JAVA"
	LanguageScala  FunctionLanguage = "SCALA"
	LanguagePython FunctionLanguage = "PYTHON"
)

// Function is a user defined function reference
type Function struct {
	ClassName string
	Language  FunctionLanguage
}

// ObjectPath names an object inside a catalog
type ObjectPath struct {
	Database string
	Object   string
}

func NewObjectPath(database, object string) ObjectPath {
	return ObjectPath{Database: database, Object: object}
}

// ParseObjectPath parses "database.object"
func ParseObjectPath(s string) (ObjectPath, error) {
	db, obj, ok := strings.Cut(s, ".")
	if !ok || db == "" || obj == "" {
		return ObjectPath{}, shared.NewCatalogInvalidInput("path", "expected <database>.<object>, got "+s)
	}
	return ObjectPath{Database: db, Object: obj}, nil
}

func (p ObjectPath) FullName() string {
	return p.Database + "." + p.Object
}

func (p ObjectPath) String() string {
	return p.FullName()
}

// Identifier is a fully qualified (catalog, database, object) triple
type Identifier struct {
	Catalog string
	ObjectPath
}

func NewIdentifier(catalog, database, object string) Identifier {
	return Identifier{Catalog: catalog, ObjectPath: ObjectPath{Database: database, Object: object}}
}

func (id Identifier) String() string {
	return id.Catalog + "." + id.FullName()
}

// CloneProperties copies a property map; nil becomes an empty map
func CloneProperties(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
