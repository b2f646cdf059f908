package main

import "github.com/charmbracelet/lipgloss"

var (
	colorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	colorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}

	styleHeader  = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleDim     = lipgloss.NewStyle().Faint(true)
)
