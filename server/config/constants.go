package config

// Metastore backend types
const (
	// In-process metastore, lost on exit
	METASTORE_TYPE_MEMORY = "memory"

	// Embedded SQLite metastore
	METASTORE_TYPE_SQLITE = "sqlite"
)

// Catalog defaults
const (
	DEFAULT_CATALOG_NAME   = "metacat"
	DEFAULT_DATABASE       = "default"
	DEFAULT_STORAGE_FORMAT = "textfile"
	DEFAULT_WAREHOUSE      = "file:///tmp/metacat/warehouse"
	DEFAULT_METASTORE_PATH = "data/metastore.db"
)

// IsValidMetastoreType checks if a metastore type is supported
func IsValidMetastoreType(t string) bool {
	return t == METASTORE_TYPE_MEMORY || t == METASTORE_TYPE_SQLITE
}

// GetMetastoreTypes returns the supported metastore types
func GetMetastoreTypes() []string {
	return []string{METASTORE_TYPE_MEMORY, METASTORE_TYPE_SQLITE}
}
