package cli

import (
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/spf13/cobra"
)

var databaseCmd = &cobra.Command{
	Use:     "database",
	Aliases: []string{"db"},
	Short:   "Manage catalog databases",
	Long: `Manage databases of the configured catalog.

Examples:
  metacat database list
  metacat database create sales --comment "sales data" --property owner=finance
  metacat database describe sales
  metacat database drop sales --cascade`,
}

var databaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List databases",
	Args:  cobra.NoArgs,
	RunE:  runDatabaseList,
}

var databaseCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatabaseCreate,
}

var databaseDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show a database's comment, location and properties",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatabaseDescribe,
}

var databaseDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a database",
	Long: `Drop a database. A database holding tables or functions is only dropped
with --cascade, which drops them too.`,
	Args: cobra.ExactArgs(1),
	RunE: runDatabaseDrop,
}

type databaseCreateOptions struct {
	comment     string
	location    string
	properties  map[string]string
	ifNotExists bool
}

type databaseDropOptions struct {
	cascade  bool
	ifExists bool
}

var (
	databaseCreateOpts = &databaseCreateOptions{}
	databaseDropOpts   = &databaseDropOptions{}
)

func init() {
	rootCmd.AddCommand(databaseCmd)
	databaseCmd.AddCommand(databaseListCmd)
	databaseCmd.AddCommand(databaseCreateCmd)
	databaseCmd.AddCommand(databaseDescribeCmd)
	databaseCmd.AddCommand(databaseDropCmd)

	databaseCreateCmd.Flags().StringVar(&databaseCreateOpts.comment, "comment", "", "database comment")
	databaseCreateCmd.Flags().StringVar(&databaseCreateOpts.location, "location", "", "database location (defaults under the warehouse)")
	databaseCreateCmd.Flags().StringToStringVar(&databaseCreateOpts.properties, "property", nil, "database properties (key=value)")
	databaseCreateCmd.Flags().BoolVar(&databaseCreateOpts.ifNotExists, "if-not-exists", false, "succeed when the database already exists")

	databaseDropCmd.Flags().BoolVar(&databaseDropOpts.cascade, "cascade", false, "drop tables and functions of the database too")
	databaseDropCmd.Flags().BoolVar(&databaseDropOpts.ifExists, "if-exists", false, "succeed when the database does not exist")
}

func runDatabaseList(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	names, err := cat.ListDatabases(cmd.Context())
	if err != nil {
		d.Error("Failed to list databases: %v", err)
		return err
	}
	return d.Table([]string{"Database"}, nameRows(names))
}

func runDatabaseCreate(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	db := &model.Database{
		Comment:    databaseCreateOpts.comment,
		Location:   databaseCreateOpts.location,
		Properties: databaseCreateOpts.properties,
	}
	if err := cat.CreateDatabase(cmd.Context(), args[0], db, databaseCreateOpts.ifNotExists); err != nil {
		d.Error("Failed to create database '%s': %v", args[0], err)
		return err
	}
	d.Success("Created database: %s", args[0])
	return nil
}

func runDatabaseDescribe(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	db, err := cat.GetDatabase(cmd.Context(), args[0])
	if err != nil {
		d.Error("Failed to describe database '%s': %v", args[0], err)
		d.Info("Use 'metacat database list' to see available databases")
		return err
	}
	d.Header("Database " + args[0])
	d.Info("Comment: %s", db.Comment)
	d.Info("Location: %s", db.Location)
	return d.Properties(db.Properties)
}

func runDatabaseDrop(cmd *cobra.Command, args []string) error {
	d := newDisplay(cmd)
	cat, err := openCatalog(cmd)
	if err != nil {
		d.Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	if err := cat.DropDatabase(cmd.Context(), args[0], databaseDropOpts.ifExists, databaseDropOpts.cascade); err != nil {
		d.Error("Failed to drop database '%s': %v", args[0], err)
		return err
	}
	d.Success("Dropped database: %s", args[0])
	return nil
}
