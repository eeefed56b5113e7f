package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/frogmemo/frogmemo/internal/memo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	valueStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	activeTabStyle = tabStyle.Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
)

// renderStatusBar renders the backend source and the last message.
func renderStatusBar(source string, connected bool, message string, isErr bool, width int) string {
	dotColor := lipgloss.Color("241")
	if connected {
		dotColor = lipgloss.Color("42")
	}
	status := lipgloss.NewStyle().Foreground(dotColor).Render("●") + " " + source
	if message != "" {
		style := okStyle
		if isErr {
			style = errorStyle
		}
		status += "  " + style.Render(message)
	}

	return lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1).
		Render(status)
}

type helpMode int

const (
	helpBrowsing helpMode = iota
	helpSearching
	helpEditing
)

// renderTabs renders the tag tabs with the active one highlighted.
func renderTabs(tabs []string, active string, width int) string {
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		if tab == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, tabStyle.Render(tab))
		}
	}
	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(1).
		Padding(0, 1).
		Render(strings.Join(parts, " "))
}

// renderSearchBar renders the search input and its scope.
func renderSearchBar(input string, scope memo.Scope, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(1).
		Padding(0, 1).
		Render(input + "  " + mutedStyle.Render("in "+string(scope)))
}

// renderHelpBar renders the bottom keybinding bar.
func renderHelpBar(mode helpMode, canToggle bool, width int) string {
	var help string
	switch mode {
	case helpEditing:
		help = "enter: next/submit  esc: cancel  ctrl-c: quit"
	case helpSearching:
		help = "tab: scope  enter: keep results  esc: clear  ctrl-c: quit"
	default:
		help = "n: new  e: edit  d: delete  b: beautify  l: lines  tab: tags  /: search  s: scope"
		if canToggle {
			help += "  t: toggle window"
		}
		help += "  q: quit"
	}
	return lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1).
		Render(help)
}
