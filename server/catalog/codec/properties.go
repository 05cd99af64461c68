package codec

import (
	"strconv"
	"strings"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
)

// Property keys the catalog itself writes into metastore parameter maps
const (
	// PropIsGeneric marks tables whose schema lives in properties
	PropIsGeneric = "is_generic"
	// PropComment carries table, view and partition comments
	PropComment = "comment"
	// GenericPrefix is reserved for serialized generic schemas
	GenericPrefix = "generic."
)

const (
	schemaPrefix         = GenericPrefix + "schema."
	schemaPrimaryKeyName = GenericPrefix + "schema.primary-key.name"
	schemaPrimaryKeyCols = GenericPrefix + "schema.primary-key.columns."
	partitionKeyPrefix   = GenericPrefix + "partition.keys."
)

func schemaKey(i int, field string) string {
	return schemaPrefix + strconv.Itoa(i) + "." + field
}

func primaryKeyColumnKey(i int) string {
	return schemaPrimaryKeyCols + strconv.Itoa(i)
}

func partitionKeyKey(i int) string {
	return partitionKeyPrefix + strconv.Itoa(i) + ".name"
}

// CheckReserved rejects caller properties that collide with keys the catalog
// writes itself. extra names further reserved keys.
func CheckReserved(props map[string]string, extra ...string) error {
	for k := range props {
		if strings.HasPrefix(k, GenericPrefix) {
			return shared.NewCatalogReservedProperty(k)
		}
		for _, e := range extra {
			if k == e {
				return shared.NewCatalogReservedProperty(k)
			}
		}
	}
	return nil
}

// TakeGenericFlag removes is_generic from props and reports its value
func TakeGenericFlag(props map[string]string) (bool, error) {
	v, ok := props[PropIsGeneric]
	if !ok {
		return false, nil
	}
	delete(props, PropIsGeneric)
	generic, err := strconv.ParseBool(v)
	if err != nil {
		return false, shared.NewCatalogInvalidInput(PropIsGeneric, "is_generic must be true or false, got "+v)
	}
	return generic, nil
}

// encodeGenericSchema writes columns, primary key and partition keys of a
// generic table into props
func encodeGenericSchema(t *model.Table, props map[string]string) {
	for i, c := range t.Columns {
		props[schemaKey(i, "name")] = c.Name
		props[schemaKey(i, "data-type")] = c.Type.String()
		if c.Comment != "" {
			props[schemaKey(i, "comment")] = c.Comment
		}
	}
	if pk := t.PrimaryKey; pk != nil {
		props[schemaPrimaryKeyName] = pk.Name
		for i, col := range pk.Columns {
			props[primaryKeyColumnKey(i)] = col
		}
	}
	for i, k := range t.PartitionKeys {
		props[partitionKeyKey(i)] = k
	}
}

// decodeGenericSchema reads the schema back and strips every generic key
func decodeGenericSchema(object string, props map[string]string) (*model.Table, error) {
	t := &model.Table{}
	for i := 0; ; i++ {
		name, ok := props[schemaKey(i, "name")]
		if !ok {
			break
		}
		typeString, ok := props[schemaKey(i, "data-type")]
		if !ok {
			return nil, shared.NewCorruptObject(object, "generic column "+name+" has no data type")
		}
		typ, err := model.ParseDataType(typeString)
		if err != nil {
			return nil, shared.NewCorruptObject(object, "generic column "+name+" has an unparsable data type").WithCause(err)
		}
		t.Columns = append(t.Columns, model.Column{Name: name, Type: typ, Comment: props[schemaKey(i, "comment")]})
	}
	if len(t.Columns) == 0 {
		return nil, shared.NewCorruptObject(object, "generic table has no schema properties")
	}

	if name, ok := props[schemaPrimaryKeyName]; ok {
		pk := &model.PrimaryKey{Name: name}
		for i := 0; ; i++ {
			col, ok := props[primaryKeyColumnKey(i)]
			if !ok {
				break
			}
			pk.Columns = append(pk.Columns, col)
		}
		if len(pk.Columns) == 0 {
			return nil, shared.NewCorruptObject(object, "generic primary key "+name+" lists no columns")
		}
		t.PrimaryKey = pk
	}

	for i := 0; ; i++ {
		key, ok := props[partitionKeyKey(i)]
		if !ok {
			break
		}
		t.PartitionKeys = append(t.PartitionKeys, key)
	}

	for k := range props {
		if strings.HasPrefix(k, GenericPrefix) {
			delete(props, k)
		}
	}
	return t, nil
}
