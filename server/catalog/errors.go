package catalog

import "github.com/gear6io/metacat/pkg/errors"

// Catalog-specific error codes
var (
	ErrUnsupportedMetastoreType = errors.MustNewCode("catalog.unsupported_metastore_type")
)
