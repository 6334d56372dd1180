// Package cli wires garmin-go's cobra subcommands (ingest, sync, archive,
// report, scale, tui) to the config, store, and domain packages.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/store"
)

// NewRootCmd builds the garmin-go root command, wired against an already
// loaded config and opened store.
func NewRootCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	root := &cobra.Command{
		Use:   "garmin-go",
		Short: "Ingest, archive, sync and report on fitness-tracking data",
		Long: `garmin-go parses GPS/telemetry files into a canonical activity
record, archives heart-rate samples into month-partitioned columnar files,
keeps a local directory and a remote object store in sync, and reports on
the result from the command line or an interactive TUI.`,
	}

	root.AddCommand(
		newIngestCmd(cfg, db),
		newDaemonCmd(cfg, db),
		newSyncCmd(cfg, db),
		newArchiveCmd(cfg, db),
		newReportCmd(cfg, db),
		newScaleCmd(cfg, db),
		newTUICmd(cfg, db),
	)

	return root
}
