package metastore

import (
	"github.com/gear6io/metacat/pkg/errors"
)

// Codes shared by every metastore client implementation
var (
	ErrNoSuchObject    = errors.MustNewCode("metastore.no_such_object")
	ErrAlreadyExists   = errors.MustNewCode("metastore.already_exists")
	ErrInvalidObject   = errors.MustNewCode("metastore.invalid_object")
	ErrNotEmpty        = errors.MustNewCode("metastore.not_empty")
	ErrUnsupportedCall = errors.MustNewCode("metastore.unsupported_call")
)

func NewNoSuchObject(objectType, name string) *errors.Error {
	return errors.New(ErrNoSuchObject, objectType+" "+name+" does not exist", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewAlreadyExists(objectType, name string) *errors.Error {
	return errors.New(ErrAlreadyExists, objectType+" "+name+" already exists", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewInvalidObject(message string) *errors.Error {
	return errors.New(ErrInvalidObject, message, nil)
}

func NewNotEmpty(objectType, name string) *errors.Error {
	return errors.New(ErrNotEmpty, objectType+" "+name+" is not empty", nil).
		AddContext("object_type", objectType).
		AddContext("name", name)
}

func NewUnsupportedCall(call, version string) *errors.Error {
	return errors.New(ErrUnsupportedCall, call+" is not available on metastore "+version, nil).
		AddContext("call", call).
		AddContext("metastore_version", version)
}

// IsNoSuchObject reports whether err means the object is absent
func IsNoSuchObject(err error) bool {
	return errors.HasCode(err, ErrNoSuchObject)
}

// IsAlreadyExists reports whether err means the object already exists
func IsAlreadyExists(err error) bool {
	return errors.HasCode(err, ErrAlreadyExists)
}
