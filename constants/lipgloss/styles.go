package lipgloss

import "github.com/charmbracelet/lipgloss"

var (
	Red    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
	Yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F"))
	Green  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	Info   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true)
	Faint  = lipgloss.NewStyle().Faint(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FAFFF")).
			Padding(0, 1)
)
