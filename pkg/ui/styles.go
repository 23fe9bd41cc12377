package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/amlscreen/amlreport/pkg/semantic"
	"github.com/amlscreen/amlreport/pkg/theme"
)

// Status colors
var (
	Primary = lipgloss.Color("#1F3A5F")
	Success = lipgloss.Color("#00D26A")
	Warning = lipgloss.Color("#FFB800")
	Error   = lipgloss.Color("#FF3838")
	Muted   = lipgloss.Color("#6B7280")
)

// Pre-configured styles
var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	VersionStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	ValueStyle = lipgloss.NewStyle().
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// RoleStyle colors text with the report palette entry of role, so the
// terminal summary matches the rendered document.
func RoleStyle(th *theme.Theme, role semantic.Role) lipgloss.Style {
	if th == nil {
		th = theme.Default()
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(th.RoleColor(role).Hex())).
		Bold(true)
}
