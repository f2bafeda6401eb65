package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "glacier",
	Short: "Consistent backup snapshots for live table catalogs",
	Long: `Glacier assembles consistent backup snapshots from a live table catalog.

It re-reads the catalog until two consecutive scans agree, holds shared
locks on every collected table while the backup is written, and can
coordinate multi-host cluster backups through a shared stage store.`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file")
}
