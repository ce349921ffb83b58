package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Shared style definitions for task rendering.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	idStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	statusInbox     = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	statusActive    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusBlocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusWaiting   = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	statusDone      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusCancelled = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	priorityUrgent = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderStatus colors a status for terminal output.
func renderStatus(s models.TaskStatus) string {
	switch s {
	case models.StatusInbox:
		return statusInbox.Render(string(s))
	case models.StatusActive:
		return statusActive.Render(string(s))
	case models.StatusBlocked:
		return statusBlocked.Render(string(s))
	case models.StatusWaiting:
		return statusWaiting.Render(string(s))
	case models.StatusDone:
		return statusDone.Render(string(s))
	case models.StatusCancelled:
		return statusCancelled.Render(string(s))
	default:
		return string(s)
	}
}

// renderPriority highlights P0 so urgent work stands out.
func renderPriority(p models.Priority) string {
	if p == models.P0 {
		return priorityUrgent.Render(string(p))
	}
	return string(p)
}
