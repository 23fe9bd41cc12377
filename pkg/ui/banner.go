// Package ui renders the amlreport CLI's terminal output: banner, status
// lines, build summaries and archive listings. Everything goes to the
// writer the caller passes, normally stderr, so stdout stays free for
// report bytes.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/semantic"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Version information, overridable at build time via ldflags:
// go build -ldflags "-X github.com/amlscreen/amlreport/pkg/ui.Commit=abc123"
var (
	Version   = defaults.Version
	BuildDate = "unknown"
	Commit    = "dev"
)

const bannerArt = `
                 __                          __
  ____ _____ ___/ /________  ____  ____  _____/ /_
 / __ '/ __ '__ \/ / ___/ _ \/ __ \/ __ \/ ___/ __/
/ /_/ / / / / / / / /  /  __/ /_/ / /_/ / /  / /_
\__,_/_/ /_/ /_/_/_/   \___/ .___/\____/_/   \__/
                          /_/`

// PrintBanner writes the application banner to w.
func PrintBanner(w io.Writer) {
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "  %s  %s\n\n", VersionStyle.Render("v"+Version), LabelStyle.Render(defaults.ProductLabel))
}

// PrintVersion writes version details to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s (commit %s, built %s)\n", defaults.ToolName, Version, Commit, BuildDate)
}

// PrintSuccess writes a success status line.
func PrintSuccess(w io.Writer, format string, args ...any) {
	status(w, SuccessStyle, Icon("✔", "[+]"), format, args...)
}

// PrintWarning writes a warning status line.
func PrintWarning(w io.Writer, format string, args ...any) {
	status(w, WarningStyle, Icon("⚠", "[!]"), format, args...)
}

// PrintError writes an error status line.
func PrintError(w io.Writer, format string, args ...any) {
	status(w, ErrorStyle, Icon("✖", "[-]"), format, args...)
}

func status(w io.Writer, style lipgloss.Style, icon, format string, args ...any) {
	Fprintf(w, "%s %s\n", style.Render(icon), fmt.Sprintf(format, args...))
}

// Summary is the terminal view of one build.
type Summary struct {
	ReportID       string
	Level          string
	Score          float64
	Recommendation string
	Sections       int
	Output         string
	Record         string
}

// PrintSummary writes a build summary with the verdict in palette colors.
func PrintSummary(w io.Writer, th *theme.Theme, s Summary) {
	level := semantic.Risk.Map(s.Level)
	rec := semantic.Recommendation.Map(s.Recommendation)

	row := func(label, value string) {
		Fprintf(w, "  %s %s\n", LabelStyle.Render(fmt.Sprintf("%-15s", label)), value)
	}
	row("Report", ValueStyle.Render(s.ReportID))
	row("Risk", RoleStyle(th, level.Role).Render(level.Label)+fmt.Sprintf("  %.0f/100", s.Score))
	row("Recommendation", RoleStyle(th, rec.Role).Render(rec.Label))
	row("Sections", fmt.Sprintf("%d", s.Sections))
	if s.Output != "" {
		row("Output", s.Output)
	}
	if s.Record != "" {
		row("Archive record", s.Record)
	}
}

// Row is one line of an archive listing.
type Row struct {
	ID       string
	Created  string
	ReportID string
	Wallet   string
	Level    string
	Score    float64
	Hash     string
}

// RenderRecords returns an archive listing as a bordered table.
func RenderRecords(th *theme.Theme, rows []Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Muted)).
		Headers("ID", "CREATED", "REPORT", "WALLET", "RISK", "SCORE", "PDF HASH")

	levels := make([]semantic.Token, len(rows))
	for i, r := range rows {
		levels[i] = semantic.Risk.Map(r.Level)
		t.Row(r.ID, r.Created, r.ReportID, r.Wallet, levels[i].Label, fmt.Sprintf("%.0f", r.Score), r.Hash)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		base := lipgloss.NewStyle().Padding(0, 1)
		switch {
		case row == table.HeaderRow:
			return base.Bold(true)
		case col == 4 && row >= 0 && row < len(levels):
			return RoleStyle(th, levels[row].Role).Padding(0, 1)
		}
		return base
	})
	return t.String()
}
