package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/daemon"
	"github.com/ddboline/garmin-go/internal/store"
)

func newDaemonCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	var dir string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run ingest repeatedly, one pass per interval, until the failure budget trips",
		Long: `daemon wraps each ingest pass in a one-hour timeout and counts it as a
strike toward a five-strike budget if it times out or returns an error; a
successful pass resets the budget. The daemon exits once the budget trips.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := dir
			if root == "" {
				root = cfg.Directories.GPSDir
			}
			logger := log.New(os.Stderr, "daemon: ", log.LstdFlags)

			pass := func(ctx context.Context) error {
				return runIngest(cfg, db, root)
			}

			err := daemon.RunLoop(cmd.Context(), interval, pass, nil, logger)
			if err != nil {
				return fmt.Errorf("ingest daemon stopped: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to scan (defaults to directories.gps_dir)")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "pause between ingest passes")
	return cmd
}
