package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/scale"
	"github.com/ddboline/garmin-go/internal/store"
)

func newScaleCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	var list bool
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "scale [measurement-line]",
		Short: "Parse and store a scale measurement line (mass,fat%,water%,muscle%,bone%, each x10)",
		Long: `scale stores a measurement line read from the chat interface's text
protocol. With --list it instead prints previously recorded measurements
going back --since (default 30 days), most recent last.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				return listScaleMeasurements(db, since)
			}
			if len(args) != 1 {
				return fmt.Errorf("scale requires a measurement line, or --list")
			}

			m, err := scale.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parsing measurement: %w", err)
			}

			row := &store.ScaleMeasurement{
				DateTime:  time.Now().UTC(),
				Mass:      m.Mass,
				FatPct:    m.FatPct,
				WaterPct:  m.WaterPct,
				MusclePct: m.MusclePct,
				BonePct:   m.BonePct,
			}
			if _, err := db.InsertScaleMeasurement(row); err != nil {
				return fmt.Errorf("storing measurement: %w", err)
			}

			fmt.Printf("recorded mass=%.1flbs fat=%.1f%% water=%.1f%% muscle=%.1f%% bone=%.1f%%\n",
				m.Mass, m.FatPct, m.WaterPct, m.MusclePct, m.BonePct)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list previously recorded measurements instead of storing one")
	cmd.Flags().DurationVar(&since, "since", 30*24*time.Hour, "how far back --list looks")
	return cmd
}

func listScaleMeasurements(db *store.DB, since time.Duration) error {
	end := time.Now().UTC()
	rows, err := db.ListScaleMeasurements(end.Add(-since), end)
	if err != nil {
		return fmt.Errorf("listing measurements: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("no measurements recorded in range")
		return nil
	}
	fmt.Printf("%-25s %8s %6s %6s %7s %6s\n", "datetime", "mass", "fat%", "water%", "muscle%", "bone%")
	for _, m := range rows {
		fmt.Printf("%-25s %8.1f %6.1f %6.1f %7.1f %6.1f\n",
			m.DateTime.Format(time.RFC3339), m.Mass, m.FatPct, m.WaterPct, m.MusclePct, m.BonePct)
	}
	return nil
}
