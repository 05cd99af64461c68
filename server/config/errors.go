package config

import "github.com/gear6io/metacat/pkg/errors"

// Config-specific error codes
var (
	ErrConfigFileReadFailed      = errors.MustNewCode("config.file_read_failed")
	ErrConfigFileParseFailed     = errors.MustNewCode("config.file_parse_failed")
	ErrConfigValidationFailed    = errors.MustNewCode("config.validation_failed")
	ErrConfigFileMarshalFailed   = errors.MustNewCode("config.file_marshal_failed")
	ErrConfigFileWriteFailed     = errors.MustNewCode("config.file_write_failed")
	ErrCatalogValidationFailed   = errors.MustNewCode("config.catalog_validation_failed")
	ErrCatalogNameRequired       = errors.MustNewCode("config.catalog_name_required")
	ErrCatalogNameInvalid        = errors.MustNewCode("config.catalog_name_invalid")
	ErrMetastoreValidationFailed = errors.MustNewCode("config.metastore_validation_failed")
	ErrMetastoreTypeInvalid      = errors.MustNewCode("config.metastore_type_invalid")
	ErrMetastorePathRequired     = errors.MustNewCode("config.metastore_path_required")

	// Logging-specific error codes
	ErrLogDirectoryCreationFailed = errors.MustNewCode("config.log_directory_creation_failed")
	ErrLogFileOpenFailed          = errors.MustNewCode("config.log_file_open_failed")
	ErrLogFileStatFailed          = errors.MustNewCode("config.log_file_stat_failed")
	ErrLogRotationFailed          = errors.MustNewCode("config.log_rotation_failed")
	ErrLogBackupReadFailed        = errors.MustNewCode("config.log_backup_read_failed")
	ErrLogBackupRemoveFailed      = errors.MustNewCode("config.log_backup_remove_failed")
	ErrLogFileWriterSetupFailed   = errors.MustNewCode("config.log_file_writer_setup_failed")
)
