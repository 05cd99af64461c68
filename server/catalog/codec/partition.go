package codec

import (
	"strconv"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/metastore"
)

// PartitionKeys returns the partition key names of a table record
func PartitionKeys(tbl *metastore.Table) []string {
	keys := make([]string, len(tbl.PartitionKeys))
	for i, k := range tbl.PartitionKeys {
		keys[i] = k.Name
	}
	return keys
}

// PartitionValues orders spec by the table's partition keys
func PartitionValues(tbl *metastore.Table, spec model.PartitionSpec) ([]string, error) {
	return spec.Values(PartitionKeys(tbl))
}

// EncodePartition builds the partition record for spec of tbl. A partition
// without its own storage format inherits the table's.
func (c *Codec) EncodePartition(tbl *metastore.Table, spec model.PartitionSpec, p *model.Partition) (*metastore.Partition, error) {
	keys := PartitionKeys(tbl)
	values, err := spec.Values(keys)
	if err != nil {
		return nil, err
	}
	props := model.CloneProperties(p.Properties)
	if err := CheckReserved(props, PropComment, PropIsGeneric); err != nil {
		return nil, err
	}
	if p.Comment != "" {
		props[PropComment] = p.Comment
	}

	location := p.Storage.Location
	if location == "" && tbl.SD.Location != "" {
		if c.paths != nil {
			location = c.paths.PartitionLocation(tbl.SD.Location, keys, values)
		} else {
			location = shared.JoinLocation(tbl.SD.Location, shared.MakePartitionName(keys, values))
		}
	}

	var sd metastore.StorageDescriptor
	if p.Storage.Format == "" && p.Storage.InputFormat == "" {
		sd = tbl.SD.Clone()
		sd.Location = location
	} else {
		sd, err = c.storageDescriptor(p.Storage, location)
		if err != nil {
			return nil, err
		}
		sd.Cols = tbl.SD.Clone().Cols
	}

	return &metastore.Partition{
		DBName:     tbl.DBName,
		TableName:  tbl.TableName,
		Values:     values,
		SD:         sd,
		Parameters: props,
	}, nil
}

// DecodePartition rebuilds a partition and its spec
func (c *Codec) DecodePartition(tbl *metastore.Table, rec *metastore.Partition) (model.PartitionSpec, *model.Partition, error) {
	keys := PartitionKeys(tbl)
	if len(rec.Values) != len(keys) {
		return nil, nil, shared.NewCorruptObject(tbl.DBName+"."+tbl.TableName,
			"partition has "+strconv.Itoa(len(rec.Values))+" values for "+strconv.Itoa(len(keys))+" partition keys")
	}
	props := model.CloneProperties(rec.Parameters)
	comment := props[PropComment]
	delete(props, PropComment)

	return model.SpecFromValues(keys, rec.Values), &model.Partition{
		Properties: props,
		Comment:    comment,
		Storage:    storageFormat(rec.SD),
	}, nil
}
