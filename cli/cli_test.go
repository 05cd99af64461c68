package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gear6io/metacat/server/catalog"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a configuration using a sqlite metastore in a temp dir
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "metacat.yml")
	content := fmt.Sprintf(`catalog:
  name: cli_test
  warehouse: file://%s
metastore:
  type: sqlite
  path: %s
  version: 3.1.2
`, filepath.Join(dir, "warehouse"), filepath.Join(dir, "metastore.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCapabilities(t *testing.T) {
	out, err := run(t, writeConfig(t), "capabilities", "2.3.6")
	require.NoError(t, err)
	assert.Contains(t, out, "2.3.6")
	assert.Contains(t, out, "table_constraints")
	assert.Contains(t, out, "view_listing")
	assert.Contains(t, out, "STATS_GENERATED=TASK")

	out, err = run(t, writeConfig(t), "capabilities", "1.1.1")
	require.NoError(t, err)
	assert.Contains(t, out, "STATS_GENERATED_VIA_STATS_TASK=true")

	_, err = run(t, writeConfig(t), "capabilities", "unknown")
	assert.Error(t, err)
}

func TestMetastoreStatus(t *testing.T) {
	out, err := run(t, writeConfig(t), "metastore", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "cli_test")
	assert.Contains(t, out, "3.1.2")
}

func TestDatabaseCommands(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := run(t, cfgPath, "database", "create", "sales", "--comment", "sales data", "--property", "owner=finance")
	require.NoError(t, err)
	assert.Contains(t, out, "Created database: sales")

	out, err = run(t, cfgPath, "database", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sales")
	assert.Contains(t, out, "default")

	out, err = run(t, cfgPath, "database", "describe", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "sales data")
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "finance")

	out, err = run(t, cfgPath, "database", "drop", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "Dropped database: sales")

	_, err = run(t, cfgPath, "database", "describe", "sales")
	assert.Error(t, err)
}

// seed creates sales.orders with one partition and a function through the
// catalog API, closing it before the commands run
func seed(t *testing.T, cfgPath string) {
	t.Helper()
	ctx := context.Background()
	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	cat, err := catalog.NewCatalog(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer cat.Close()

	require.NoError(t, cat.CreateDatabase(ctx, "sales", &model.Database{}, false))
	orders := model.NewObjectPath("sales", "orders")
	require.NoError(t, cat.CreateTable(ctx, orders, &model.Table{
		Columns: []model.Column{
			{Name: "id", Type: model.BigInt().NotNull()},
			{Name: "amount", Type: model.Decimal(10, 2), Comment: "order total"},
			{Name: "year", Type: model.String()},
		},
		PrimaryKey:    &model.PrimaryKey{Name: "pk_orders", Columns: []string{"id"}},
		PartitionKeys: []string{"year"},
		Comment:       "all orders",
	}, false))
	spec := model.PartitionSpec{"year": "2024"}
	require.NoError(t, cat.CreatePartition(ctx, orders, spec, &model.Partition{}, false))
	require.NoError(t, cat.AlterPartitionStatistics(ctx, orders, spec, model.TableStatistics{RowCount: 42, FileCount: 1, TotalSize: 10, RawDataSize: 8}, false))
	require.NoError(t, cat.AlterPartitionColumnStatistics(ctx, orders, spec, model.ColumnStatistics{
		"id": model.LongStats{Min: model.Ptr(int64(1)), Max: model.Ptr(int64(42))},
	}, false))
	require.NoError(t, cat.CreateFunction(ctx, model.NewObjectPath("sales", "upper"), &model.Function{
		ClassName: "com.example.Upper", Language: model.LanguageJava,
	}, false))
}

func TestTableCommands(t *testing.T) {
	cfgPath := writeConfig(t)
	seed(t, cfgPath)

	out, err := run(t, cfgPath, "table", "list", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "orders")

	out, err = run(t, cfgPath, "table", "describe", "sales.orders")
	require.NoError(t, err)
	assert.Contains(t, out, "all orders")
	assert.Contains(t, out, "DECIMAL(10, 2)")
	assert.Contains(t, out, "order total")
	assert.Contains(t, out, "pk_orders")
	assert.Contains(t, out, "Partitioned by: year")

	out, err = run(t, cfgPath, "table", "stats", "sales.orders")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown")

	_, err = run(t, cfgPath, "table", "describe", "sales.missing")
	assert.Error(t, err)

	_, err = run(t, cfgPath, "table", "describe", "no_database_part")
	assert.Error(t, err)
}

func TestPartitionAndFunctionCommands(t *testing.T) {
	cfgPath := writeConfig(t)
	seed(t, cfgPath)

	out, err := run(t, cfgPath, "partition", "list", "sales.orders", "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "year=2024")
	assert.Contains(t, out, "42")

	out, err = run(t, cfgPath, "function", "list", "sales")
	require.NoError(t, err)
	assert.Contains(t, out, "upper")
	assert.Contains(t, out, "com.example.Upper")
	assert.Contains(t, out, "JAVA")
}
