// Package merge computes what an alter call persists from the stored object,
// the requested object and an explicit operation.
package merge

import (
	"strings"

	"github.com/gear6io/metacat/server/catalog/shared"
)

// Operation selects how an alter request is combined with the stored object
type Operation int

const (
	// OpNone is the default. Databases merge properties, everything else is
	// replaced verbatim.
	OpNone Operation = iota
	OpReplaceAll
	OpChangeProps
	OpChangeStorage
	OpChangeLocation
	OpChangeColumns
)

// Property keys DDL layers use to smuggle an operation through a property map
const (
	DatabaseOpKey = "alter.database.op"
	TableOpKey    = "alter.table.op"
)

var operationNames = map[Operation]string{
	OpNone:           "NONE",
	OpReplaceAll:     "REPLACE_ALL",
	OpChangeProps:    "CHANGE_PROPS",
	OpChangeStorage:  "CHANGE_STORAGE",
	OpChangeLocation: "CHANGE_LOCATION",
	OpChangeColumns:  "CHANGE_COLUMNS",
}

// sentinels also accepts the names DDL executors write under the op keys
var sentinels = map[string]Operation{
	"NONE":               OpNone,
	"REPLACE_ALL":        OpReplaceAll,
	"CHANGE_PROPS":       OpChangeProps,
	"CHANGE_TBL_PROPS":   OpChangeProps,
	"CHANGE_STORAGE":     OpChangeStorage,
	"CHANGE_FILE_FORMAT": OpChangeStorage,
	"CHANGE_SERDE_PROPS": OpChangeStorage,
	"CHANGE_LOCATION":    OpChangeLocation,
	"CHANGE_COLUMNS":     OpChangeColumns,
	"ALTER_COLUMNS":      OpChangeColumns,
}

func (op Operation) String() string {
	if name, ok := operationNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseOperation accepts canonical and DDL sentinel names, case-insensitively
func ParseOperation(s string) (Operation, error) {
	op, ok := sentinels[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return OpNone, shared.NewCatalogInvalidInput("operation", "unknown alter operation "+s)
	}
	return op, nil
}

// ExtractOperation removes the sentinel under key from props and returns the
// operation it names. A missing key yields OpNone.
func ExtractOperation(props map[string]string, key string) (Operation, error) {
	v, ok := props[key]
	if !ok {
		return OpNone, nil
	}
	delete(props, key)
	return ParseOperation(v)
}

// Resolve combines an explicit operation with one extracted from props. An
// explicit operation wins over a missing sentinel; two different operations
// are rejected.
func Resolve(explicit Operation, props map[string]string, key string) (Operation, error) {
	smuggled, err := ExtractOperation(props, key)
	if err != nil {
		return OpNone, err
	}
	switch {
	case smuggled == OpNone:
		return explicit, nil
	case explicit == OpNone || explicit == smuggled:
		return smuggled, nil
	default:
		return OpNone, shared.NewCatalogInvalidInput("operation",
			"alter operation "+explicit.String()+" conflicts with "+key+"="+smuggled.String())
	}
}

func invalidOperation(op Operation, kind string) error {
	return shared.NewCatalogInvalidInput("operation", op.String()+" does not apply to a "+kind)
}
