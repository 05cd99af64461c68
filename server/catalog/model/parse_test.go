package model

import (
	"testing"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataTypeRoundTrip(t *testing.T) {
	types := []DataType{
		Boolean(),
		Int().NotNull(),
		BigInt(),
		Decimal(30, 3),
		Varchar(20).NotNull(),
		Char(5),
		Binary(16),
		Bytes(),
		Date(),
		Timestamp(3),
		Array(String().NotNull()),
		Map(String(), Array(Double())).NotNull(),
		Row(Field{Name: "a", Type: Int().NotNull()}, Field{Name: "b", Type: Row(Field{Name: "c", Type: Date()})}),
	}

	for _, typ := range types {
		t.Run(typ.String(), func(t *testing.T) {
			parsed, err := ParseDataType(typ.String())
			require.NoError(t, err)
			assert.Equal(t, typ, parsed)
		})
	}
}

func TestParseDataTypeCaseAndSpacing(t *testing.T) {
	parsed, err := ParseDataType("map< string ,array<int not null> >")
	require.NoError(t, err)
	assert.Equal(t, Map(String(), Array(Int().NotNull())), parsed)
}

func TestParseDataTypeErrors(t *testing.T) {
	for _, s := range []string{"", "INTEGER", "DECIMAL(10)", "ARRAY<INT", "INT NOT", "INT NOT NIL", "ROW<>", "INT INT"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseDataType(s)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, shared.CatalogInvalidInput))
		})
	}
}
