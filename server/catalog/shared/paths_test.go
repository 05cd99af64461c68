package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWarehouseLocations(t *testing.T) {
	w := NewWarehouse("file:///tmp/warehouse/")

	assert.Equal(t, "file:///tmp/warehouse/sales.db", w.DatabaseLocation("Sales"))
	assert.Equal(t, "file:///tmp/warehouse/sales.db/orders", w.TableLocation("sales", "Orders"))

	loc := w.PartitionLocation(w.TableLocation("sales", "orders"), []string{"second", "third"}, []string{"2010-04-21 09:45:00", "2000"})
	assert.Equal(t, "file:///tmp/warehouse/sales.db/orders/second=2010-04-21 09%3A45%3A00/third=2000", loc)
}

func TestWarehouseWithoutScheme(t *testing.T) {
	w := NewWarehouse("/data/wh")
	assert.Equal(t, "/data/wh/db1.db/t1", w.TableLocation("db1", "t1"))
}

func TestEscapePathName(t *testing.T) {
	cases := map[string]string{
		"plain":     "plain",
		"a/b":       "a%2Fb",
		"k=v":       "k%3Dv",
		"100%":      "100%25",
		"":          DefaultPartitionName,
		"tab\there": "tab%09here",
	}
	for in, want := range cases {
		got := EscapePathName(in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, in, UnescapePathName(got), in)
	}
}
