package shared

import (
	"github.com/gear6io/metacat/pkg/errors"
)

// Catalog-level error codes. Every error returned by the catalog façade carries
// one of these.
var (
	CatalogNotFound               = errors.MustNewCode("catalog.not_found")
	CatalogAlreadyExists          = errors.MustNewCode("catalog.already_exists")
	CatalogNotEmpty               = errors.MustNewCode("catalog.not_empty")
	CatalogInvalidInput           = errors.MustNewCode("catalog.invalid_input")
	CatalogReservedProperty       = errors.MustNewCode("catalog.reserved_property")
	CatalogWrongObjectType        = errors.MustNewCode("catalog.wrong_object_type")
	CatalogUnsupportedConstraint  = errors.MustNewCode("catalog.unsupported_constraint")
	CatalogCapabilityUnsupported  = errors.MustNewCode("catalog.capability_unsupported")
	CatalogCorruptObject          = errors.MustNewCode("catalog.corrupt_object")
	CatalogVersionDetection       = errors.MustNewCode("catalog.version_detection")
	CatalogStatisticsTypeMismatch = errors.MustNewCode("catalog.statistics_type_mismatch")
	CatalogTableNotPartitioned    = errors.MustNewCode("catalog.table_not_partitioned")
	CatalogMetastore              = errors.MustNewCode("catalog.metastore_call_failed")
)

func NewCatalogNotFound(objectType, name string) *errors.Error {
	return errors.New(CatalogNotFound, objectType+" does not exist", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewCatalogAlreadyExists(objectType, name string) *errors.Error {
	return errors.New(CatalogAlreadyExists, objectType+" already exists", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewCatalogNotEmpty(objectType, name string) *errors.Error {
	return errors.New(CatalogNotEmpty, objectType+" is not empty", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewCatalogInvalidInput(field, message string) *errors.Error {
	return errors.New(CatalogInvalidInput, message, nil).AddContext("field", field)
}

func NewCatalogReservedProperty(key string) *errors.Error {
	return errors.New(CatalogReservedProperty, "property key is reserved by the catalog", nil).AddContext("key", key)
}

func NewCatalogWrongObjectType(name, expected, actual string) *errors.Error {
	return errors.New(CatalogWrongObjectType, name+" is a "+actual+", not a "+expected, nil).
		AddContext("expected", expected).
		AddContext("actual", actual)
}

// NewUnsupportedConstraint reports a constraint the connected metastore cannot store
func NewUnsupportedConstraint(constraint, version string) *errors.Error {
	return errors.New(CatalogUnsupportedConstraint, "metastore version does not support "+constraint+" constraints", nil).
		AddContext("constraint", constraint).
		AddContext("metastore_version", version)
}

// NewCapabilityUnsupported reports a feature the connected metastore version lacks
func NewCapabilityUnsupported(feature, version string) *errors.Error {
	return errors.New(CatalogCapabilityUnsupported, "metastore version does not support "+feature, nil).
		AddContext("feature", feature).
		AddContext("metastore_version", version)
}

func NewCorruptObject(object, message string) *errors.Error {
	return errors.New(CatalogCorruptObject, message, nil).AddContext("object", object)
}

func NewVersionDetection(version string, cause error) *errors.Error {
	return errors.New(CatalogVersionDetection, "cannot detect metastore version", cause).AddContext("reported_version", version)
}

func NewStatisticsTypeMismatch(column, columnType, statsKind string) *errors.Error {
	return errors.New(CatalogStatisticsTypeMismatch, "statistics kind does not match column type", nil).
		AddContext("column", column).
		AddContext("column_type", columnType).
		AddContext("statistics_kind", statsKind)
}

func NewCatalogTableNotPartitioned(name string) *errors.Error {
	return errors.New(CatalogTableNotPartitioned, "table "+name+" is not partitioned", nil).AddContext("name", name)
}

// NewMetastoreFailure wraps a failed external call; it is never retried
func NewMetastoreFailure(operation string, cause error) *errors.Error {
	return errors.New(CatalogMetastore, "metastore call failed", cause).AddContext("operation", operation)
}
