package model

import (
	"testing"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func partitionedTable() *Table {
	return &Table{
		Columns: []Column{
			{Name: "first", Type: String()},
			{Name: "second", Type: String()},
			{Name: "third", Type: Int()},
		},
		PartitionKeys: []string{"second", "third"},
	}
}

func TestTableValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, partitionedTable().Validate())
	})

	cases := map[string]func(tbl *Table){
		"NoColumns":            func(tbl *Table) { tbl.Columns = nil; tbl.PartitionKeys = nil },
		"DuplicateColumn":      func(tbl *Table) { tbl.Columns[1].Name = "first" },
		"UnknownPartitionKey":  func(tbl *Table) { tbl.PartitionKeys = []string{"nope"} },
		"RepeatedPartitionKey": func(tbl *Table) { tbl.PartitionKeys = []string{"second", "second"} },
		"OutOfOrderPartitions": func(tbl *Table) { tbl.PartitionKeys = []string{"third", "second"} },
		"AllPartitionKeys":     func(tbl *Table) { tbl.PartitionKeys = []string{"first", "second", "third"} },
		"NullablePrimaryKey":   func(tbl *Table) { tbl.PrimaryKey = &PrimaryKey{Name: "pk", Columns: []string{"first"}} },
		"EmptyPrimaryKey":      func(tbl *Table) { tbl.PrimaryKey = &PrimaryKey{Name: "pk"} },
		"UnnamedPrimaryKey": func(tbl *Table) {
			tbl.Columns[0].Type = tbl.Columns[0].Type.NotNull()
			tbl.PrimaryKey = &PrimaryKey{Columns: []string{"first"}}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tbl := partitionedTable()
			mutate(tbl)
			err := tbl.Validate()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
		})
	}

	t.Run("NotNullPrimaryKey", func(t *testing.T) {
		tbl := partitionedTable()
		tbl.Columns[0].Type = String().NotNull()
		tbl.PrimaryKey = &PrimaryKey{Name: "pk", Columns: []string{"first"}}
		assert.NoError(t, tbl.Validate())
	})
}

func TestDataColumns(t *testing.T) {
	cols := partitionedTable().DataColumns()
	require.Len(t, cols, 1)
	assert.Equal(t, "first", cols[0].Name)
}

func TestPartitionSpecValues(t *testing.T) {
	spec := PartitionSpec{"second": "2010-04-21 09:45:00", "third": "2000"}

	values, err := spec.Values([]string{"second", "third"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2010-04-21 09:45:00", "2000"}, values)

	_, err = spec.Values([]string{"second"})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	_, err = spec.Values([]string{"second", "fourth"})
	assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))

	assert.True(t, spec.Contains(PartitionSpec{"third": "2000"}))
	assert.False(t, spec.Contains(PartitionSpec{"third": "2001"}))
	assert.Equal(t, "{second=2010-04-21 09:45:00, third=2000}", spec.String())
	assert.Equal(t, spec, SpecFromValues([]string{"second", "third"}, values))
}

func TestParseObjectPath(t *testing.T) {
	p, err := ParseObjectPath("db1.t1")
	require.NoError(t, err)
	assert.Equal(t, NewObjectPath("db1", "t1"), p)

	for _, bad := range []string{"db1", ".t1", "db1."} {
		_, err := ParseObjectPath(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, "hive.db1.t1", NewIdentifier("hive", "db1", "t1").String())
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "INT NOT NULL", Int().NotNull().String())
	assert.Equal(t, "DECIMAL(10, 3)", Decimal(10, 3).String())
	assert.Equal(t, "MAP<STRING, ARRAY<BIGINT>>", Map(String(), Array(BigInt())).String())
	assert.Equal(t, "ROW<a INT, b VARCHAR(4)>", Row(Field{Name: "a", Type: Int()}, Field{Name: "b", Type: Varchar(4)}).String())
}

func TestStatisticsKindFamilies(t *testing.T) {
	cases := []struct {
		typ  DataType
		kind StatisticsKind
		ok   bool
	}{
		{String(), StatsString, true},
		{Varchar(3), StatsString, true},
		{Int(), StatsLong, true},
		{BigInt(), StatsLong, true},
		{Decimal(30, 3), StatsDouble, true},
		{Boolean(), StatsBoolean, true},
		{Bytes(), StatsBinary, true},
		{Date(), StatsDate, true},
		{Timestamp(9), 0, false},
		{Array(Int()), 0, false},
	}
	for _, tc := range cases {
		kind, ok := tc.typ.StatisticsKind()
		assert.Equal(t, tc.ok, ok, tc.typ.String())
		assert.Equal(t, tc.kind, kind, tc.typ.String())
	}
}

func TestDateValue(t *testing.T) {
	d := DateOf(time.Date(2019, 1, 28, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, DateValue(17924), d)
	assert.Equal(t, "2019-01-28", d.String())
	assert.Equal(t, "1970-03-13", DateValue(71).String())
}
