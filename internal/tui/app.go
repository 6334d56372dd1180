// Package tui implements the interactive report browser: a scrollable,
// filterable table of the grouped activity roll-ups internal/report
// produces, with an on-demand heart-rate sparkline pulled from
// internal/archive.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/ddboline/garmin-go/internal/archive"
	"github.com/ddboline/garmin-go/internal/report"
	"github.com/ddboline/garmin-go/internal/store"
)

// App is the root Bubble Tea model for the report browser.
type App struct {
	db         *store.DB
	archiveDir string
	loc        *time.Location
	tokens     []string

	rows    []report.Row
	cursor  int
	loading bool
	err     error

	showHelp  bool
	showChart bool
	chart     []float64
	chartErr  error

	table viewport.Model
	ready bool

	width, height int
	status        string
}

// NewApp builds the report browser App over db, using archiveDir for the
// heart-rate sparkline and loc as the default report time zone. tokens is
// the initial filter-token stream compiled via internal/report.
func NewApp(db *store.DB, archiveDir string, loc *time.Location, tokens []string) *App {
	return &App{
		db:         db,
		archiveDir: archiveDir,
		loc:        loc,
		tokens:     tokens,
		loading:    true,
	}
}

type rowsMsg struct {
	rows []report.Row
	err  error
}

// Init kicks off the initial report query.
func (a *App) Init() tea.Cmd {
	return a.loadRows
}

func (a *App) loadRows() tea.Msg {
	summaries, err := a.db.ListActivitySummaries(time.Unix(0, 0), time.Now().Add(24*time.Hour))
	if err != nil {
		return rowsMsg{err: err}
	}

	filenames := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		filenames[s.Filename] = true
	}

	q := report.Compile(a.tokens, filenames)
	matched := report.Matches(q, summaries, a.loc)
	rows := report.Aggregate(q.Level, matched, a.loc)
	return rowsMsg{rows: rows}
}

type chartMsg struct {
	values []float64
	err    error
}

func (a *App) loadChart() tea.Msg {
	if len(a.rows) == 0 || a.cursor >= len(a.rows) {
		return chartMsg{}
	}
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	samples, err := archive.ReadRange(a.archiveDir, start, end, 300)
	if err != nil {
		return chartMsg{err: err}
	}
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = float64(s.BPM)
	}
	return chartMsg{values: values}
}

// Update handles bubbletea messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case rowsMsg:
		a.loading = false
		a.rows, a.err = msg.rows, msg.err
		if a.cursor >= len(a.rows) {
			a.cursor = 0
		}
		a.syncTable()

	case chartMsg:
		a.chart, a.chartErr = msg.values, msg.err

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		tableHeight := a.height - 8
		if tableHeight < 5 {
			tableHeight = 5
		}
		if !a.ready {
			a.table = viewport.New(a.width, tableHeight)
			a.ready = true
		} else {
			a.table.Width, a.table.Height = a.width, tableHeight
		}
		a.syncTable()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "?":
			a.showHelp = !a.showHelp
		case "h":
			a.showChart = !a.showChart
			if a.showChart {
				return a, a.loadChart
			}
		case "r":
			a.loading = true
			return a, a.loadRows
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
			a.syncTable()
		case "down", "j":
			if a.cursor < len(a.rows)-1 {
				a.cursor++
			}
			a.syncTable()
		}
	}
	return a, nil
}

// syncTable rebuilds the table viewport's content from the current rows
// and cursor, and scrolls it so the selected row stays visible. Row
// selection (j/k) is handled here rather than forwarded to the
// viewport's own key handling, since this table's j/k move the cursor,
// not the scroll position.
func (a *App) syncTable() {
	if !a.ready {
		return
	}
	a.table.SetContent(a.renderRows())
	if a.cursor < a.table.YOffset {
		a.table.YOffset = a.cursor
	} else if a.cursor >= a.table.YOffset+a.table.Height {
		a.table.YOffset = a.cursor - a.table.Height + 1
	}
}

// View renders the browser.
func (a *App) View() string {
	if a.showHelp {
		return a.renderHelp()
	}

	title := titleStyle.Render("garmin-go report browser")

	if a.loading {
		return title + "\n\n  loading...\n"
	}
	if a.err != nil {
		return title + "\n\n" + errorStyle.Render(fmt.Sprintf("error: %v", a.err)) + "\n"
	}

	var table string
	if a.ready {
		table = cardStyle.Render(a.table.View())
	} else {
		table = cardStyle.Render(a.renderRows())
	}

	var chart string
	if a.showChart {
		chart = "\n" + a.renderChart()
	}

	footer := statusStyle.Render("\n  j/k move  h heart-rate  r refresh  ? help  q quit")

	return lipgloss.JoinVertical(lipgloss.Left, title, table, chart, footer)
}

// renderRows builds the table body: a header line plus one styled line per
// row, the selected row highlighted.
func (a *App) renderRows() string {
	header := tableHeaderStyle.Render(fmt.Sprintf("%-22s %-10s %6s %10s %8s %10s",
		"period", "sport", "count", "distance", "cal", "format"))

	lines := []string{header}
	for i, r := range a.rows {
		line := fmt.Sprintf("%-22s %-10s %6d %10s %8d %10s",
			r.Period, r.Sport, r.Count, report.FormatDistance(r.TotalDistance), r.TotalCalories, r.Format)
		if i == a.cursor {
			lines = append(lines, selectedRowStyle.Render(line))
		} else {
			lines = append(lines, tableRowStyle.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderChart() string {
	title := cardTitleStyle.Render("Heart rate, last 30 days")
	if a.chartErr != nil {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, errorStyle.Render(a.chartErr.Error())))
	}
	if len(a.chart) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "not enough data"))
	}
	graph := asciigraph.Plot(a.chart,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.Caption("bpm"),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (a *App) renderHelp() string {
	lines := []string{
		titleStyle.Render("garmin-go report browser — help"),
		"",
		"  up/k, down/j   move selection",
		"  h              toggle heart-rate sparkline (last 30 days)",
		"  r              re-run the report query",
		"  ?              toggle this help",
		"  q, ctrl+c      quit",
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
