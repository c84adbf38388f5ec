package display

import "github.com/charmbracelet/lipgloss"

// Static styles for chart elements
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	BorderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	// Cell shades from always (green) to never (grey).
	AlwaysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	MixedHighStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7"))

	MixedLowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	NeverStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// frequencyStyle picks the cell style for a probability.
func frequencyStyle(p float64) lipgloss.Style {
	switch {
	case p >= 0.95:
		return AlwaysStyle
	case p >= 0.5:
		return MixedHighStyle
	case p > 0.05:
		return MixedLowStyle
	default:
		return NeverStyle
	}
}
