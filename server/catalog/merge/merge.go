package merge

import (
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
)

// mergeProperties returns existing overlaid with requested
func mergeProperties(existing, requested map[string]string) map[string]string {
	out := model.CloneProperties(existing)
	for k, v := range requested {
		out[k] = v
	}
	return out
}

func cloneStorage(sf model.StorageFormat) model.StorageFormat {
	if sf.SerdeProperties != nil {
		sf.SerdeProperties = model.CloneProperties(sf.SerdeProperties)
	}
	return sf
}

// Database computes the database to persist. Properties are merged by default
// since several tools tend to annotate one database.
func Database(existing, requested *model.Database, op Operation) (*model.Database, error) {
	out := &model.Database{
		Properties: model.CloneProperties(existing.Properties),
		Comment:    existing.Comment,
		Location:   existing.Location,
	}
	switch op {
	case OpNone, OpChangeProps:
		out.Properties = mergeProperties(existing.Properties, requested.Properties)
		if requested.Comment != "" {
			out.Comment = requested.Comment
		}
	case OpChangeLocation:
		if requested.Location == "" {
			return nil, shared.NewCatalogInvalidInput("location", "CHANGE_LOCATION needs a location")
		}
		out.Location = requested.Location
	case OpReplaceAll:
		out.Properties = model.CloneProperties(requested.Properties)
		out.Comment = requested.Comment
		if requested.Location != "" {
			out.Location = requested.Location
		}
	default:
		return nil, invalidOperation(op, "database")
	}
	return out, nil
}

func cloneTable(t *model.Table) *model.Table {
	out := *t
	out.Columns = append([]model.Column(nil), t.Columns...)
	out.PartitionKeys = append([]string(nil), t.PartitionKeys...)
	out.Properties = model.CloneProperties(t.Properties)
	out.Storage = cloneStorage(t.Storage)
	if t.PrimaryKey != nil {
		pk := *t.PrimaryKey
		pk.Columns = append([]string(nil), t.PrimaryKey.Columns...)
		out.PrimaryKey = &pk
	}
	return &out
}

// Table computes the table to persist. A table cannot switch between generic
// and native.
func Table(existing, requested *model.Table, op Operation) (*model.Table, error) {
	if existing.Generic != requested.Generic && op != OpChangeProps && op != OpChangeLocation {
		return nil, shared.NewCatalogInvalidInput("generic", "a table cannot change between generic and native")
	}
	out := cloneTable(existing)
	switch op {
	case OpNone, OpReplaceAll:
		out = cloneTable(requested)
		out.Generic = existing.Generic
		if out.Storage.Location == "" {
			out.Storage.Location = existing.Storage.Location
		}
	case OpChangeProps:
		out.Properties = mergeProperties(existing.Properties, requested.Properties)
		if requested.Comment != "" {
			out.Comment = requested.Comment
		}
	case OpChangeStorage:
		out.Storage = cloneStorage(requested.Storage)
		if out.Storage.Location == "" {
			out.Storage.Location = existing.Storage.Location
		}
	case OpChangeLocation:
		if requested.Storage.Location == "" {
			return nil, shared.NewCatalogInvalidInput("location", "CHANGE_LOCATION needs a location")
		}
		out.Storage.Location = requested.Storage.Location
	case OpChangeColumns:
		r := cloneTable(requested)
		out.Columns = r.Columns
		out.PrimaryKey = r.PrimaryKey
		out.PartitionKeys = r.PartitionKeys
	default:
		return nil, invalidOperation(op, "table")
	}
	return out, nil
}

// Partition computes the partition to persist
func Partition(existing, requested *model.Partition, op Operation) (*model.Partition, error) {
	out := &model.Partition{
		Properties: model.CloneProperties(existing.Properties),
		Comment:    existing.Comment,
		Storage:    cloneStorage(existing.Storage),
	}
	switch op {
	case OpNone, OpReplaceAll:
		out.Properties = model.CloneProperties(requested.Properties)
		out.Comment = requested.Comment
		out.Storage = cloneStorage(requested.Storage)
		if out.Storage.Location == "" {
			out.Storage.Location = existing.Storage.Location
		}
	case OpChangeProps:
		out.Properties = mergeProperties(existing.Properties, requested.Properties)
		if requested.Comment != "" {
			out.Comment = requested.Comment
		}
	case OpChangeStorage:
		out.Storage = cloneStorage(requested.Storage)
		if out.Storage.Location == "" {
			out.Storage.Location = existing.Storage.Location
		}
	case OpChangeLocation:
		if requested.Storage.Location == "" {
			return nil, shared.NewCatalogInvalidInput("location", "CHANGE_LOCATION needs a location")
		}
		out.Storage.Location = requested.Storage.Location
	default:
		return nil, invalidOperation(op, "partition")
	}
	return out, nil
}
