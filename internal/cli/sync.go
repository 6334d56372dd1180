package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/store"
	garminsync "github.com/ddboline/garmin-go/internal/sync"
)

func newSyncCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the local cache directory against the remote object store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			remote, err := garminsync.NewS3ObjectStore(ctx, cfg.ObjectStore.Region, cfg.ObjectStore.Endpoint)
			if err != nil {
				return fmt.Errorf("connecting to object store: %w", err)
			}

			engine := garminsync.NewEngine(db, remote, cfg.Directories.CacheDir, cfg.ObjectStore.Bucket)
			return engine.Run(ctx)
		},
	}
}
