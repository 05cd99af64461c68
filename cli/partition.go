package cli

import (
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/spf13/cobra"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Inspect partitions of native partitioned tables",
}

var partitionListCmd = &cobra.Command{
	Use:   "list <database.table>",
	Short: "List partitions, optionally matching a partial spec",
	Long: `List the partitions of a table. Each --spec entry must name a partition
key; only partitions matching every entry are listed.

Examples:
  metacat partition list sales.orders
  metacat partition list sales.orders --spec year=2024`,
	Args: cobra.ExactArgs(1),
	RunE: runPartitionList,
}

var functionCmd = &cobra.Command{
	Use:   "function",
	Short: "Inspect catalog functions",
}

var functionListCmd = &cobra.Command{
	Use:   "list [database]",
	Short: "List functions of a database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFunctionList,
}

type partitionListOptions struct {
	spec  map[string]string
	stats bool
}

var partitionListOpts = &partitionListOptions{}

func init() {
	rootCmd.AddCommand(partitionCmd)
	partitionCmd.AddCommand(partitionListCmd)
	rootCmd.AddCommand(functionCmd)
	functionCmd.AddCommand(functionListCmd)

	partitionListCmd.Flags().StringToStringVar(&partitionListOpts.spec, "spec", nil, "partial partition spec (key=value)")
	partitionListCmd.Flags().BoolVar(&partitionListOpts.stats, "stats", false, "show the row count of each partition")
}

func runPartitionList(cmd *cobra.Command, args []string) error {
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

	specs, err := cat.ListPartitions(cmd.Context(), path, model.PartitionSpec(partitionListOpts.spec))
	if err != nil {
		d.Error("Failed to list partitions of '%s': %v", path, err)
		return err
	}

	headers := []string{"Partition"}
	if partitionListOpts.stats {
		headers = append(headers, "Rows")
	}
	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		row := []string{spec.String()}
		if partitionListOpts.stats {
			st, err := cat.GetPartitionStatistics(cmd.Context(), path, spec)
			if err != nil {
				d.Error("Failed to read statistics of %s%s: %v", path, spec, err)
				return err
			}
			row = append(row, statValue(st.RowCount))
		}
		rows = append(rows, row)
	}
	return d.Table(headers, rows)
}

func runFunctionList(cmd *cobra.Command, args []string) error {
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
	names, err := cat.ListFunctions(cmd.Context(), database)
	if err != nil {
		d.Error("Failed to list functions of '%s': %v", database, err)
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		fn, err := cat.GetFunction(cmd.Context(), model.NewObjectPath(database, name))
		if err != nil {
			d.Error("Failed to read function '%s.%s': %v", database, name, err)
			return err
		}
		rows = append(rows, []string{name, string(fn.Language), fn.ClassName})
	}
	return d.Table([]string{"Function", "Language", "Class"}, rows)
}
