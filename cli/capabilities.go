package cli

import (
	"strconv"

	"github.com/gear6io/metacat/server/catalog/shim"
	"github.com/spf13/cobra"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities <version>",
	Short: "Show the capabilities of a metastore version",
	Long: `Resolve a metastore version string and show which capabilities it offers.

Versions between or beyond the known releases resolve to the nearest known
release at or below them.

Examples:
  metacat capabilities 2.3.6
  metacat capabilities 3.1.2-cdh7`,
	Args: cobra.ExactArgs(1),
	RunE: runCapabilities,
}

var metastoreCmd = &cobra.Command{
	Use:   "metastore",
	Short: "Inspect the configured metastore",
}

var metastoreStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Connect to the configured metastore and show its version",
	Args:  cobra.NoArgs,
	RunE:  runMetastoreStatus,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(metastoreCmd)
	metastoreCmd.AddCommand(metastoreStatusCmd)
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	s, err := shim.Resolve(args[0])
	if err != nil {
		newDisplay(cmd).Error("Cannot resolve version %q: %v", args[0], err)
		return err
	}
	return renderShim(newDisplay(cmd), s)
}

func runMetastoreStatus(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		newDisplay(cmd).Error("Failed to open catalog: %v", err)
		return err
	}
	defer cat.Close()

	d := newDisplay(cmd)
	d.Success("Connected catalog %s (session %s)", cat.Name(), cat.SessionID())
	return renderShim(d, cat.Capabilities())
}

func renderShim(d *display, s *shim.Shim) error {
	d.Info("Reported version: %s", s.ReportedVersion())
	d.Info("Resolved version: %s", s.Version())
	d.Info("Stats marker: %s=%s", s.StatsGeneratedKey(), s.StatsGeneratedValue())

	rows := make([][]string, 0, len(shim.AllFeatures))
	for _, f := range shim.AllFeatures {
		rows = append(rows, []string{f.String(), strconv.FormatBool(s.Supports(f))})
	}
	return d.Table([]string{"Feature", "Supported"}, rows)
}
