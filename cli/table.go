package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Inspect catalog tables",
	Long: `Inspect tables and views of the configured catalog.

Examples:
  metacat table list sales
  metacat table describe sales.orders
  metacat table stats sales.orders`,
}

var tableListCmd = &cobra.Command{
	Use:   "list [database]",
	Short: "List tables and views of a database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTableList,
}

var tableDescribeCmd = &cobra.Command{
	Use:   "describe <database.table>",
	Short: "Show the schema and storage of a table or view",
	Args:  cobra.ExactArgs(1),
	RunE:  runTableDescribe,
}

var tableStatsCmd = &cobra.Command{
	Use:   "stats <database.table>",
	Short: "Show table and column statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runTableStats,
}

type tableListOptions struct {
	viewsOnly bool
}

var tableListOpts = &tableListOptions{}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.AddCommand(tableListCmd)
	tableCmd.AddCommand(tableDescribeCmd)
	tableCmd.AddCommand(tableStatsCmd)

	tableListCmd.Flags().BoolVar(&tableListOpts.viewsOnly, "views", false, "list views only")
}

func runTableList(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	database := cat.DefaultDatabase()
	if len(args) == 1 {
		database = args[0]
	}

	var names []string
	if tableListOpts.viewsOnly {
		names, err = cat.ListViews(cmd.Context(), database)
	} else {
		names, err = cat.ListTables(cmd.Context(), database)
	}
	if err != nil {
		d.Error("Failed to list tables of '%s': %v", database, err)
		return err
	}
	return d.Table([]string{"Table"}, nameRows(names))
}

func runTableDescribe(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	path, err := model.ParseObjectPath(args[0])
	if err != nil {
		d.Error("Invalid table name '%s': %v", args[0], err)
		return err
	}
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	t, err := cat.GetTable(cmd.Context(), path)
	if errors.HasCode(err, shared.CatalogWrongObjectType) {
		v, err := cat.GetView(cmd.Context(), path)
		if err != nil {
			d.Error("Failed to describe view '%s': %v", path, err)
			return err
		}
		return renderView(d, path, v)
	}
	if err != nil {
		d.Error("Failed to describe table '%s': %v", path, err)
		d.Info("Use 'metacat table list %s' to see available tables", path.Database)
		return err
	}
	return renderTable(d, path, t)
}

func renderTable(d *display, path model.ObjectPath, t *model.Table) error {
	kind := "native"
	if t.Generic {
		kind = "generic"
	}
	d.Header(fmt.Sprintf("Table %s (%s)", path, kind))
	if t.Comment != "" {
		d.Info("Comment: %s", t.Comment)
	}
	if err := d.Table([]string{"Column", "Type", "Comment"}, columnRows(t.Columns)); err != nil {
		return err
	}
	if len(t.PartitionKeys) > 0 {
		d.Info("Partitioned by: %s", strings.Join(t.PartitionKeys, ", "))
	}
	if t.PrimaryKey != nil {
		d.Info("Primary key %s: %s", t.PrimaryKey.Name, strings.Join(t.PrimaryKey.Columns, ", "))
	}
	if !t.Generic {
		d.Info("Format: %s", t.Storage.Format)
		d.Info("Location: %s", t.Storage.Location)
	}
	return d.Properties(t.Properties)
}

func renderView(d *display, path model.ObjectPath, v *model.View) error {
	d.Header(fmt.Sprintf("View %s", path))
	if v.Comment != "" {
		d.Info("Comment: %s", v.Comment)
	}
	if err := d.Table([]string{"Column", "Type", "Comment"}, columnRows(v.Columns)); err != nil {
		return err
	}
	d.Info("Query: %s", v.OriginalQuery)
	return d.Properties(v.Properties)
}

func columnRows(columns []model.Column) [][]string {
	rows := make([][]string, len(columns))
	for i, c := range columns {
		rows[i] = []string{c.Name, c.Type.String(), c.Comment}
	}
	return rows
}

func runTableStats(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	path, err := model.ParseObjectPath(args[0])
	if err != nil {
		d.Error("Invalid table name '%s': %v", args[0], err)
		return err
	}
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	st, err := cat.GetTableStatistics(cmd.Context(), path)
	if err != nil {
		d.Error("Failed to read statistics of '%s': %v", path, err)
		return err
	}
	cs, err := cat.GetTableColumnStatistics(cmd.Context(), path)
	if err != nil {
		d.Error("Failed to read column statistics of '%s': %v", path, err)
		return err
	}

	d.Header("Statistics " + path.String())
	if err := renderTableStatistics(d, st); err != nil {
		return err
	}
	return renderColumnStatistics(d, cs)
}

func renderTableStatistics(d *display, st model.TableStatistics) error {
	return d.Table([]string{"Statistic", "Value"}, [][]string{
		{"rows", statValue(st.RowCount)},
		{"files", statValue(st.FileCount)},
		{"total size", statValue(st.TotalSize)},
		{"raw data size", statValue(st.RawDataSize)},
	})
}

func statValue(v int64) string {
	if v == model.UnknownStat {
		return "unknown"
	}
	return strconv.FormatInt(v, 10)
}

func renderColumnStatistics(d *display, cs model.ColumnStatistics) error {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, cs[name].Kind().String(), describeStats(cs[name])}
	}
	return d.Table([]string{"Column", "Kind", "Statistics"}, rows)
}

func describeStats(data model.ColumnStatisticsData) string {
	var parts []string
	add := func(label string, v interface{}) {
		switch p := v.(type) {
		case *int64:
			if p != nil {
				parts = append(parts, label+"="+strconv.FormatInt(*p, 10))
			}
		case *float64:
			if p != nil {
				parts = append(parts, label+"="+strconv.FormatFloat(*p, 'g', -1, 64))
			}
		case *model.DateValue:
			if p != nil {
				parts = append(parts, label+"="+p.String())
			}
		}
	}
	switch s := data.(type) {
	case model.StringStats:
		add("max_len", s.MaxLength)
		add("avg_len", s.AvgLength)
		add("nulls", s.NullCount)
		add("distinct", s.DistinctCount)
	case model.LongStats:
		add("min", s.Min)
		add("max", s.Max)
		add("nulls", s.NullCount)
		add("distinct", s.DistinctCount)
	case model.DoubleStats:
		add("min", s.Min)
		add("max", s.Max)
		add("nulls", s.NullCount)
		add("distinct", s.DistinctCount)
	case model.BooleanStats:
		add("true", s.TrueCount)
		add("false", s.FalseCount)
		add("nulls", s.NullCount)
	case model.BinaryStats:
		add("max_len", s.MaxLength)
		add("avg_len", s.AvgLength)
		add("nulls", s.NullCount)
	case model.DateStats:
		add("min", s.Min)
		add("max", s.Max)
		add("nulls", s.NullCount)
		add("distinct", s.DistinctCount)
	}
	return strings.Join(parts, " ")
}
