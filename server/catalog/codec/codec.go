// Package codec translates engine-neutral catalog objects to metastore
// records and back. Encoding is capability aware: what the connected
// metastore cannot store is either dropped with a degradation notice or
// rejected, never silently mangled. Decoding fails only when a record is
// structurally inconsistent.
package codec

import (
	"sort"
	"strings"

	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/shim"
	"github.com/gear6io/metacat/server/metastore"
)

// DegradeFunc is told about every capability that was silently degraded
type DegradeFunc func(feature shim.Feature, object string)

// Options configure a Codec
type Options struct {
	// DefaultStorageFormat applies to native tables that name no format
	DefaultStorageFormat string
	// Paths resolves default locations; nil leaves locations to the metastore
	Paths shared.PathManager
	// OnDegrade may be nil
	OnDegrade DegradeFunc
}

// Codec converts between model objects and metastore records for one
// resolved metastore version. It holds no mutable state.
type Codec struct {
	shim          *shim.Shim
	defaultFormat string
	paths         shared.PathManager
	onDegrade     DegradeFunc
}

func New(s *shim.Shim, opts Options) (*Codec, error) {
	format := strings.ToLower(opts.DefaultStorageFormat)
	if format == "" {
		format = DefaultStorageFormat
	}
	if !IsKnownStorageFormat(format) {
		return nil, shared.NewCatalogInvalidInput("default_storage_format",
			"unknown storage format "+opts.DefaultStorageFormat+", expected one of "+strings.Join(KnownStorageFormats(), ", "))
	}
	return &Codec{
		shim:          s,
		defaultFormat: format,
		paths:         opts.Paths,
		onDegrade:     opts.OnDegrade,
	}, nil
}

func (c *Codec) degrade(feature shim.Feature, object string) {
	if c.onDegrade != nil {
		c.onDegrade(feature, object)
	}
}

// TableRecord is a metastore table together with the constraints stored beside it
type TableRecord struct {
	Table       *metastore.Table
	PrimaryKeys []metastore.PrimaryKey
	NotNulls    []metastore.NotNullConstraint
}

// HasConstraints reports whether the record needs a constraint-aware create
func (r *TableRecord) HasConstraints() bool {
	return len(r.PrimaryKeys) > 0 || len(r.NotNulls) > 0
}

func (c *Codec) EncodeDatabase(name string, db *model.Database) *metastore.Database {
	location := db.Location
	if location == "" && c.paths != nil {
		location = c.paths.DatabaseLocation(name)
	}
	return &metastore.Database{
		Name:        name,
		Description: db.Comment,
		LocationURI: location,
		Parameters:  model.CloneProperties(db.Properties),
	}
}

func (c *Codec) DecodeDatabase(rec *metastore.Database) *model.Database {
	return &model.Database{
		Properties: model.CloneProperties(rec.Parameters),
		Comment:    rec.Description,
		Location:   rec.LocationURI,
	}
}

// tableLocation picks the explicit location, else one under the database
func (c *Codec) tableLocation(explicit string, path model.ObjectPath, dbLocation string) string {
	switch {
	case explicit != "":
		return explicit
	case dbLocation != "":
		return shared.JoinLocation(dbLocation, strings.ToLower(path.Object))
	case c.paths != nil:
		return c.paths.TableLocation(path.Database, path.Object)
	default:
		return ""
	}
}

// DefaultTableLocation is the location a table at path gets when none is given
func (c *Codec) DefaultTableLocation(path model.ObjectPath, dbLocation string) string {
	return c.tableLocation("", path, dbLocation)
}

func (c *Codec) storageDescriptor(sf model.StorageFormat, location string) (metastore.StorageDescriptor, error) {
	format := strings.ToLower(sf.Format)
	if format == "" {
		format = c.defaultFormat
	}
	fc, ok := storageFormats[format]
	if !ok {
		return metastore.StorageDescriptor{}, shared.NewCatalogInvalidInput("storage.format",
			"unknown storage format "+sf.Format+", expected one of "+strings.Join(KnownStorageFormats(), ", "))
	}
	sd := metastore.StorageDescriptor{
		Location:     location,
		InputFormat:  fc.input,
		OutputFormat: fc.output,
		SerDeInfo: metastore.SerDeInfo{
			SerializationLib: fc.serde,
			Parameters:       model.CloneProperties(sf.SerdeProperties),
		},
	}
	if sf.InputFormat != "" {
		sd.InputFormat = sf.InputFormat
	}
	if sf.OutputFormat != "" {
		sd.OutputFormat = sf.OutputFormat
	}
	if sf.SerializationLib != "" {
		sd.SerDeInfo.SerializationLib = sf.SerializationLib
	}
	return sd, nil
}

func storageFormat(sd metastore.StorageDescriptor) model.StorageFormat {
	return model.StorageFormat{
		Format:           formatOf(sd.InputFormat, sd.OutputFormat),
		InputFormat:      sd.InputFormat,
		OutputFormat:     sd.OutputFormat,
		SerializationLib: sd.SerDeInfo.SerializationLib,
		SerdeProperties:  model.CloneProperties(sd.SerDeInfo.Parameters),
		Location:         sd.Location,
	}
}

func fieldSchema(c model.Column) (metastore.FieldSchema, error) {
	typ, err := HiveTypeString(c.Type)
	if err != nil {
		return metastore.FieldSchema{}, shared.NewCatalogInvalidInput("columns", "column "+c.Name+": "+err.Error())
	}
	return metastore.FieldSchema{Name: c.Name, Type: typ, Comment: c.Comment}, nil
}

// EncodeTable builds the metastore record of t. dbLocation is the location of
// the owning database, used for the default table location.
func (c *Codec) EncodeTable(path model.ObjectPath, t *model.Table, dbLocation string) (*TableRecord, error) {
	props := model.CloneProperties(t.Properties)
	if err := CheckReserved(props, PropComment); err != nil {
		return nil, err
	}
	flagged, err := TakeGenericFlag(props)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.Comment != "" {
		props[PropComment] = t.Comment
	}

	location := c.tableLocation(t.Storage.Location, path, dbLocation)
	sd, err := c.storageDescriptor(t.Storage, location)
	if err != nil {
		return nil, err
	}

	rec := &metastore.Table{
		DBName:     path.Database,
		TableName:  path.Object,
		TableType:  metastore.TableTypeManaged,
		SD:         sd,
		Parameters: props,
	}

	if t.Generic || flagged {
		// the metastore sees no columns, so its constraint limits do not apply
		encodeGenericSchema(t, props)
		props[PropIsGeneric] = "true"
		return &TableRecord{Table: rec}, nil
	}

	supportsConstraints := c.shim.Supports(shim.TableConstraints)
	if t.PrimaryKey != nil && !supportsConstraints {
		return nil, shared.NewUnsupportedConstraint("PRIMARY KEY", c.shim.Version())
	}

	out := &TableRecord{Table: rec}
	partition := make(map[string]bool, len(t.PartitionKeys))
	for _, k := range t.PartitionKeys {
		partition[k] = true
	}

	degraded := false
	for _, col := range t.Columns {
		fs, err := fieldSchema(col)
		if err != nil {
			return nil, err
		}
		if partition[col.Name] {
			rec.PartitionKeys = append(rec.PartitionKeys, fs)
		} else {
			rec.SD.Cols = append(rec.SD.Cols, fs)
		}

		if col.Type.Nullable {
			continue
		}
		if !supportsConstraints {
			degraded = true
			continue
		}
		out.NotNulls = append(out.NotNulls, metastore.NotNullConstraint{
			DBName:     path.Database,
			TableName:  path.Object,
			ColumnName: col.Name,
			Enable:     true,
			Validate:   false,
			Rely:       true,
		})
	}
	if degraded {
		c.degrade(shim.TableConstraints, path.FullName())
	}

	if pk := t.PrimaryKey; pk != nil {
		for i, name := range pk.Columns {
			out.PrimaryKeys = append(out.PrimaryKeys, metastore.PrimaryKey{
				DBName:     path.Database,
				TableName:  path.Object,
				ColumnName: name,
				KeySeq:     i + 1,
				Name:       pk.Name,
				Enable:     true,
				Validate:   false,
				Rely:       true,
			})
		}
	}
	return out, nil
}

// DecodeTable rebuilds a table from its record. Views are rejected with a
// wrong-object-type error.
func (c *Codec) DecodeTable(rec *TableRecord) (*model.Table, error) {
	tbl := rec.Table
	object := tbl.DBName + "." + tbl.TableName
	if tbl.TableType == metastore.TableTypeView {
		return nil, shared.NewCatalogWrongObjectType(object, "table", "view")
	}

	props := model.CloneProperties(tbl.Parameters)
	comment := props[PropComment]
	delete(props, PropComment)

	generic, err := TakeGenericFlag(props)
	if err != nil {
		return nil, shared.NewCorruptObject(object, "unparsable is_generic property").WithCause(err)
	}

	var t *model.Table
	if generic {
		t, err = decodeGenericSchema(object, props)
		if err != nil {
			return nil, err
		}
		t.Generic = true
	} else {
		t, err = c.decodeNativeSchema(object, rec)
		if err != nil {
			return nil, err
		}
	}

	t.Properties = props
	t.Comment = comment
	t.Storage = storageFormat(tbl.SD)
	if err := t.Validate(); err != nil {
		return nil, shared.NewCorruptObject(object, "stored table is not a valid definition").WithCause(err)
	}
	return t, nil
}

func (c *Codec) decodeNativeSchema(object string, rec *TableRecord) (*model.Table, error) {
	tbl := rec.Table
	t := &model.Table{}
	index := make(map[string]int)

	add := func(fs metastore.FieldSchema) error {
		if _, dup := index[fs.Name]; dup {
			return shared.NewCorruptObject(object, "duplicate column "+fs.Name)
		}
		typ, err := ParseHiveType(fs.Type)
		if err != nil {
			return shared.NewCorruptObject(object, "column "+fs.Name+" has an unparsable type").WithCause(err)
		}
		index[fs.Name] = len(t.Columns)
		t.Columns = append(t.Columns, model.Column{Name: fs.Name, Type: typ, Comment: fs.Comment})
		return nil
	}

	for _, fs := range tbl.SD.Cols {
		if err := add(fs); err != nil {
			return nil, err
		}
	}
	for _, fs := range tbl.PartitionKeys {
		if err := add(fs); err != nil {
			return nil, err
		}
		t.PartitionKeys = append(t.PartitionKeys, fs.Name)
	}

	for _, nn := range rec.NotNulls {
		i, ok := index[nn.ColumnName]
		if !ok {
			return nil, shared.NewCorruptObject(object, "NOT NULL constraint on unknown column "+nn.ColumnName)
		}
		t.Columns[i].Type = t.Columns[i].Type.NotNull()
	}

	if len(rec.PrimaryKeys) > 0 {
		pks := append([]metastore.PrimaryKey(nil), rec.PrimaryKeys...)
		sort.SliceStable(pks, func(i, j int) bool { return pks[i].KeySeq < pks[j].KeySeq })
		pk := &model.PrimaryKey{Name: pks[0].Name}
		for _, p := range pks {
			if p.Name != pk.Name {
				return nil, shared.NewCorruptObject(object, "more than one primary key: "+pk.Name+", "+p.Name)
			}
			i, ok := index[p.ColumnName]
			if !ok {
				return nil, shared.NewCorruptObject(object, "primary key on unknown column "+p.ColumnName)
			}
			t.Columns[i].Type = t.Columns[i].Type.NotNull()
			pk.Columns = append(pk.Columns, p.ColumnName)
		}
		t.PrimaryKey = pk
	}
	return t, nil
}

// EncodeView builds the metastore record of a view. Column nullability is not
// stored for views.
func (c *Codec) EncodeView(path model.ObjectPath, v *model.View) (*metastore.Table, error) {
	if v.OriginalQuery == "" {
		return nil, shared.NewCatalogInvalidInput("original_query", "view must have a query")
	}
	props := model.CloneProperties(v.Properties)
	if err := CheckReserved(props, PropComment, PropIsGeneric); err != nil {
		return nil, err
	}
	if v.Comment != "" {
		props[PropComment] = v.Comment
	}

	rec := &metastore.Table{
		DBName:           path.Database,
		TableName:        path.Object,
		TableType:        metastore.TableTypeView,
		Parameters:       props,
		ViewOriginalText: v.OriginalQuery,
		ViewExpandedText: v.ExpandedQuery,
	}
	seen := make(map[string]bool, len(v.Columns))
	for _, col := range v.Columns {
		if seen[col.Name] {
			return nil, shared.NewCatalogInvalidInput("columns", "duplicate column "+col.Name)
		}
		seen[col.Name] = true
		fs, err := fieldSchema(col)
		if err != nil {
			return nil, err
		}
		rec.SD.Cols = append(rec.SD.Cols, fs)
	}
	if rec.ViewExpandedText == "" {
		rec.ViewExpandedText = v.OriginalQuery
	}
	return rec, nil
}

func (c *Codec) DecodeView(rec *metastore.Table) (*model.View, error) {
	object := rec.DBName + "." + rec.TableName
	if rec.TableType != metastore.TableTypeView {
		return nil, shared.NewCatalogWrongObjectType(object, "view", "table")
	}
	props := model.CloneProperties(rec.Parameters)
	comment := props[PropComment]
	delete(props, PropComment)

	v := &model.View{
		OriginalQuery: rec.ViewOriginalText,
		ExpandedQuery: rec.ViewExpandedText,
		Properties:    props,
		Comment:       comment,
	}
	for _, fs := range rec.SD.Cols {
		typ, err := ParseHiveType(fs.Type)
		if err != nil {
			return nil, shared.NewCorruptObject(object, "column "+fs.Name+" has an unparsable type").WithCause(err)
		}
		v.Columns = append(v.Columns, model.Column{Name: fs.Name, Type: typ, Comment: fs.Comment})
	}
	return v, nil
}

// IsView reports whether rec holds a view
func IsView(rec *metastore.Table) bool {
	return rec.TableType == metastore.TableTypeView
}

// IsGeneric reports whether rec holds a generic table
func IsGeneric(rec *metastore.Table) bool {
	return strings.EqualFold(rec.Parameters[PropIsGeneric], "true")
}
