package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/store"
	"github.com/ddboline/garmin-go/internal/tui"
)

func newTUICmd(cfg *config.Config, db *store.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [tokens...]",
		Short: "Launch the interactive report browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(cfg.Report.DefaultTimeZone)
			if err != nil {
				loc = time.UTC
			}

			app := tui.NewApp(db, cfg.Directories.FitbitArchiveDir, loc, args)
			p := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running TUI: %w", err)
			}
			return nil
		},
	}
}
