package sqlite

import "github.com/gear6io/metacat/pkg/errors"

// Package-specific error codes for the embedded metastore
var (
	SQLiteMigrationFailed          = errors.MustNewCode("metastore.sqlite.migration_failed")
	SQLiteSchemaVerificationFailed = errors.MustNewCode("metastore.sqlite.schema_verification_failed")
	SQLiteQueryFailed              = errors.MustNewCode("metastore.sqlite.query_failed")
	SQLiteEncodingFailed           = errors.MustNewCode("metastore.sqlite.encoding_failed")
	SQLiteOpenFailed               = errors.MustNewCode("metastore.sqlite.open_failed")
)

func queryFailed(operation string, err error) *errors.Error {
	return errors.New(SQLiteQueryFailed, "failed to "+operation, err).AddContext("operation", operation)
}
