package codec

import (
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/shim"
	"github.com/gear6io/metacat/server/metastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T, version string, onDegrade DegradeFunc) *Codec {
	t.Helper()
	s, err := shim.Resolve(version)
	require.NoError(t, err)
	c, err := New(s, Options{Paths: shared.NewWarehouse("file:///warehouse"), OnDegrade: onDegrade})
	require.NoError(t, err)
	return c
}

func pkTable() *model.Table {
	return &model.Table{
		Columns: []model.Column{
			{Name: "x", Type: model.Timestamp(9).NotNull()},
			{Name: "y", Type: model.Timestamp(9).NotNull()},
			{Name: "z", Type: model.Decimal(10, 2), Comment: "amount"},
		},
		PrimaryKey: &model.PrimaryKey{Name: "pk_name", Columns: []string{"x"}},
		Properties: map[string]string{"k1": "v1"},
		Comment:    "orders",
	}
}

var path = model.NewObjectPath("db1", "t1")

func TestNewRejectsUnknownDefaultFormat(t *testing.T) {
	s, err := shim.Resolve("3.1.2")
	require.NoError(t, err)
	_, err = New(s, Options{DefaultStorageFormat: "csv"})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	c, err := New(s, Options{DefaultStorageFormat: "ORC"})
	require.NoError(t, err)
	assert.Equal(t, "orc", c.defaultFormat)
}

func TestTableRoundTripWithConstraints(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)

	rec, err := c.EncodeTable(path, pkTable(), "")
	require.NoError(t, err)

	assert.Equal(t, "file:///warehouse/db1.db/t1", rec.Table.SD.Location)
	assert.Equal(t, storageFormats["textfile"].input, rec.Table.SD.InputFormat)
	assert.Equal(t, storageFormats["textfile"].output, rec.Table.SD.OutputFormat)
	assert.Equal(t, lazySimpleSerDe, rec.Table.SD.SerDeInfo.SerializationLib)
	assert.Equal(t, "orders", rec.Table.Parameters[PropComment])
	assert.NotContains(t, rec.Table.Parameters, PropIsGeneric)

	require.Len(t, rec.PrimaryKeys, 1)
	assert.Equal(t, metastore.PrimaryKey{
		DBName: "db1", TableName: "t1", ColumnName: "x", KeySeq: 1, Name: "pk_name",
		Enable: true, Validate: false, Rely: true,
	}, rec.PrimaryKeys[0])
	require.Len(t, rec.NotNulls, 2)
	assert.Equal(t, "x", rec.NotNulls[0].ColumnName)
	assert.Equal(t, "y", rec.NotNulls[1].ColumnName)

	got, err := c.DecodeTable(rec)
	require.NoError(t, err)
	want := pkTable()
	assert.Equal(t, want.Columns, got.Columns)
	assert.Equal(t, want.PrimaryKey, got.PrimaryKey)
	assert.Equal(t, want.Properties, got.Properties)
	assert.Equal(t, want.Comment, got.Comment)
	assert.False(t, got.Generic)
	assert.Equal(t, "textfile", got.Storage.Format)
}

func TestPrimaryKeyUnsupportedBeforeConstraints(t *testing.T) {
	c := newCodec(t, "2.3.6", nil)
	_, err := c.EncodeTable(path, pkTable(), "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, shared.CatalogUnsupportedConstraint))
}

func TestNotNullDegradesWithoutConstraints(t *testing.T) {
	var degraded []string
	c := newCodec(t, "2.3.6", func(f shim.Feature, object string) {
		assert.Equal(t, shim.TableConstraints, f)
		degraded = append(degraded, object)
	})

	tbl := &model.Table{Columns: []model.Column{
		{Name: "a", Type: model.Int().NotNull()},
		{Name: "b", Type: model.String().NotNull()},
	}}
	rec, err := c.EncodeTable(path, tbl, "")
	require.NoError(t, err)
	assert.Empty(t, rec.NotNulls)
	assert.False(t, rec.HasConstraints())
	assert.Equal(t, []string{"db1.t1"}, degraded)

	got, err := c.DecodeTable(rec)
	require.NoError(t, err)
	assert.True(t, got.Columns[0].Type.Nullable)
	assert.True(t, got.Columns[1].Type.Nullable)
}

func TestPartitionKeysStoredAfterDataColumns(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	tbl := &model.Table{
		Columns: []model.Column{
			{Name: "id", Type: model.BigInt()},
			{Name: "dt", Type: model.String()},
			{Name: "name", Type: model.Varchar(20)},
		},
		PartitionKeys: []string{"dt"},
		Storage:       model.StorageFormat{Format: "parquet"},
	}
	rec, err := c.EncodeTable(path, tbl, "s3://bucket/db1")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/db1/t1", rec.Table.SD.Location)
	require.Len(t, rec.Table.SD.Cols, 2)
	require.Len(t, rec.Table.PartitionKeys, 1)
	assert.Equal(t, "dt", rec.Table.PartitionKeys[0].Name)

	got, err := c.DecodeTable(rec)
	require.NoError(t, err)
	names := make([]string, len(got.Columns))
	for i, col := range got.Columns {
		names[i] = col.Name
	}
	assert.Equal(t, []string{"id", "name", "dt"}, names)
	assert.Equal(t, []string{"dt"}, got.PartitionKeys)
	assert.Equal(t, "parquet", got.Storage.Format)
}

func TestGenericTableRoundTrip(t *testing.T) {
	// generic tables keep their primary key even where constraints are unsupported
	c := newCodec(t, "2.3.6", nil)
	tbl := pkTable()
	tbl.Generic = true
	tbl.Columns = append(tbl.Columns, model.Column{Name: "tags", Type: model.Array(model.String().NotNull())})

	rec, err := c.EncodeTable(path, tbl, "")
	require.NoError(t, err)
	assert.Empty(t, rec.Table.SD.Cols)
	assert.False(t, rec.HasConstraints())
	assert.Equal(t, "true", rec.Table.Parameters[PropIsGeneric])
	assert.True(t, IsGeneric(rec.Table))

	got, err := c.DecodeTable(rec)
	require.NoError(t, err)
	assert.True(t, got.Generic)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, tbl.PrimaryKey, got.PrimaryKey)
	assert.Equal(t, map[string]string{"k1": "v1"}, got.Properties)

	t.Run("primary key column names with commas", func(t *testing.T) {
		tbl := &model.Table{
			Generic: true,
			Columns: []model.Column{
				{Name: "a,b", Type: model.Int().NotNull()},
				{Name: "c", Type: model.String()},
			},
			PrimaryKey: &model.PrimaryKey{Name: "pk", Columns: []string{"a,b"}},
		}
		rec, err := c.EncodeTable(path, tbl, "")
		require.NoError(t, err)
		assert.Equal(t, "a,b", rec.Table.Parameters["generic.schema.primary-key.columns.0"])

		got, err := c.DecodeTable(rec)
		require.NoError(t, err)
		assert.Equal(t, tbl.Columns, got.Columns)
		assert.Equal(t, tbl.PrimaryKey, got.PrimaryKey)
	})
}

func TestIsGenericProperty(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	tbl := &model.Table{
		Columns:    []model.Column{{Name: "a", Type: model.Int()}},
		Properties: map[string]string{PropIsGeneric: "false", "k": "v"},
	}
	rec, err := c.EncodeTable(path, tbl, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k": "v"}, rec.Table.Parameters)

	tbl.Properties[PropIsGeneric] = "maybe"
	_, err = c.EncodeTable(path, tbl, "")
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}

func TestReservedPropertiesRejected(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	for _, key := range []string{PropComment, "generic.schema.0.name"} {
		t.Run(key, func(t *testing.T) {
			tbl := &model.Table{
				Columns:    []model.Column{{Name: "a", Type: model.Int()}},
				Properties: map[string]string{key: "x"},
			}
			_, err := c.EncodeTable(path, tbl, "")
			assert.True(t, errors.HasCode(err, shared.CatalogReservedProperty))
		})
	}
}

func TestEncodeRejectsUnsupportedTypes(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	for _, typ := range []model.DataType{model.Timestamp(3), model.Binary(8), model.Char(300)} {
		tbl := &model.Table{Columns: []model.Column{{Name: "a", Type: typ}}}
		_, err := c.EncodeTable(path, tbl, "")
		assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput), typ.String())
	}
}

func TestDecodeCorruptTables(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	base := func() *TableRecord {
		return &TableRecord{Table: &metastore.Table{
			DBName: "db1", TableName: "t1", TableType: metastore.TableTypeManaged,
			SD: metastore.StorageDescriptor{Cols: []metastore.FieldSchema{{Name: "a", Type: "int"}}},
		}}
	}

	tests := []struct {
		name   string
		mutate func(*TableRecord)
	}{
		{"unparsable type", func(r *TableRecord) { r.Table.SD.Cols[0].Type = "int<" }},
		{"duplicate column", func(r *TableRecord) {
			r.Table.PartitionKeys = []metastore.FieldSchema{{Name: "a", Type: "string"}}
		}},
		{"not null on unknown column", func(r *TableRecord) {
			r.NotNulls = []metastore.NotNullConstraint{{ColumnName: "nope"}}
		}},
		{"primary key on unknown column", func(r *TableRecord) {
			r.PrimaryKeys = []metastore.PrimaryKey{{ColumnName: "nope", Name: "pk", KeySeq: 1}}
		}},
		{"two primary keys", func(r *TableRecord) {
			r.Table.SD.Cols = append(r.Table.SD.Cols, metastore.FieldSchema{Name: "b", Type: "int"})
			r.PrimaryKeys = []metastore.PrimaryKey{
				{ColumnName: "a", Name: "pk1", KeySeq: 1},
				{ColumnName: "b", Name: "pk2", KeySeq: 2},
			}
		}},
		{"no data columns", func(r *TableRecord) {
			r.Table.PartitionKeys = r.Table.SD.Cols
			r.Table.SD.Cols = nil
		}},
		{"generic without schema", func(r *TableRecord) {
			r.Table.Parameters = map[string]string{PropIsGeneric: "true"}
		}},
		{"generic column without type", func(r *TableRecord) {
			r.Table.Parameters = map[string]string{PropIsGeneric: "true", "generic.schema.0.name": "a"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base()
			tt.mutate(rec)
			_, err := c.DecodeTable(rec)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, shared.CatalogCorruptObject), err.Error())
		})
	}
}

func TestViews(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	v := &model.View{
		Columns:       []model.Column{{Name: "a", Type: model.Int()}},
		OriginalQuery: "select a from t",
		Comment:       "a view",
	}
	rec, err := c.EncodeView(model.NewObjectPath("db1", "v1"), v)
	require.NoError(t, err)
	assert.True(t, IsView(rec))
	assert.Equal(t, "select a from t", rec.ViewExpandedText)

	_, err = c.DecodeTable(&TableRecord{Table: rec})
	assert.True(t, errors.HasCode(err, shared.CatalogWrongObjectType))

	got, err := c.DecodeView(rec)
	require.NoError(t, err)
	assert.Equal(t, v.Columns, got.Columns)
	assert.Equal(t, "a view", got.Comment)
	assert.Empty(t, got.Properties)

	_, err = c.EncodeView(path, &model.View{})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}

func TestPartitionCodec(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	tbl := &model.Table{
		Columns: []model.Column{
			{Name: "id", Type: model.Int()},
			{Name: "year", Type: model.String()},
			{Name: "month", Type: model.String()},
		},
		PartitionKeys: []string{"year", "month"},
		Storage:       model.StorageFormat{Format: "orc"},
	}
	rec, err := c.EncodeTable(path, tbl, "")
	require.NoError(t, err)

	spec := model.PartitionSpec{"month": "01/02", "year": "2024"}
	part, err := c.EncodePartition(rec.Table, spec, &model.Partition{Comment: "jan", Properties: map[string]string{"k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024", "01/02"}, part.Values)
	assert.Equal(t, "file:///warehouse/db1.db/t1/year=2024/month=01%2F02", part.SD.Location)
	assert.Equal(t, storageFormats["orc"].serde, part.SD.SerDeInfo.SerializationLib)
	assert.Equal(t, "jan", part.Parameters[PropComment])

	gotSpec, got, err := c.DecodePartition(rec.Table, part)
	require.NoError(t, err)
	assert.Equal(t, spec, gotSpec)
	assert.Equal(t, "jan", got.Comment)
	assert.Equal(t, map[string]string{"k": "v"}, got.Properties)
	assert.Equal(t, "orc", got.Storage.Format)

	_, err = c.EncodePartition(rec.Table, model.PartitionSpec{"year": "2024"}, &model.Partition{})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	part.Values = part.Values[:1]
	_, _, err = c.DecodePartition(rec.Table, part)
	assert.True(t, errors.HasCode(err, shared.CatalogCorruptObject))
}

func TestFunctionCodec(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	for _, lang := range []model.FunctionLanguage{model.LanguageJava, model.LanguageScala, model.LanguagePython} {
		t.Run(string(lang), func(t *testing.T) {
			fn := &model.Function{ClassName: "com.example.Upper", Language: lang}
			rec, err := c.EncodeFunction(model.NewObjectPath("db1", "upper"), fn)
			require.NoError(t, err)
			assert.Equal(t, metastore.FunctionTypeJava, rec.FunctionType)
			assert.Equal(t, fn, c.DecodeFunction(rec))
		})
	}

	rec, err := c.EncodeFunction(model.NewObjectPath("db1", "f"), &model.Function{ClassName: "mod.fn", Language: model.LanguagePython})
	require.NoError(t, err)
	assert.Equal(t, "python:mod.fn", rec.ClassName)

	_, err = c.EncodeFunction(model.NewObjectPath("db1", "f"), &model.Function{})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
}

func TestColumnStatisticsCodec(t *testing.T) {
	c := newCodec(t, "3.1.2", nil)
	columns := []model.Column{
		{Name: "amount", Type: model.Decimal(10, 2)},
		{Name: "ratio", Type: model.Double()},
		{Name: "day", Type: model.Date()},
		{Name: "name", Type: model.String()},
	}
	stats := model.ColumnStatistics{
		"amount": model.DoubleStats{Min: model.Ptr(1.5), Max: model.Ptr(100.25), NullCount: model.Ptr(int64(3))},
		"ratio":  model.DoubleStats{Min: model.Ptr(0.1), DistinctCount: model.Ptr(int64(9))},
		"day":    model.DateStats{Min: model.Ptr(model.DateValue(19000)), Max: model.Ptr(model.DateValue(19100))},
		"name":   model.StringStats{MaxLength: model.Ptr(int64(12)), AvgLength: model.Ptr(4.5)},
	}

	objs, err := c.EncodeColumnStatistics(columns, stats)
	require.NoError(t, err)
	require.Len(t, objs, 4)
	assert.Equal(t, "amount", objs[0].ColName)
	assert.Equal(t, "decimal(10,2)", objs[0].ColType)
	require.NotNil(t, objs[0].Data.Decimal)
	assert.Equal(t, "100.25", *objs[0].Data.Decimal.HighValue)
	require.NotNil(t, objs[1].Data.Date)
	assert.Equal(t, int64(19000), *objs[1].Data.Date.LowValue)

	got, err := c.DecodeColumnStatistics("db1.t1", objs)
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	_, err = c.EncodeColumnStatistics(columns, model.ColumnStatistics{"nope": model.LongStats{}})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	_, err = c.DecodeColumnStatistics("db1.t1", []metastore.ColumnStatisticsObj{{ColName: "a", ColType: "int"}})
	assert.True(t, errors.HasCode(err, shared.CatalogCorruptObject))
}
