// Package themes holds the dashboard color schemes.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Selected      lipgloss.Style
	Header        lipgloss.Style
	RoundedBox    lipgloss.Style
	Income        lipgloss.Style
	Expense       lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusPending lipgloss.Style
}

// palette is the handful of colors a theme is derived from.
type palette struct {
	text, muted, accent, onAccent, border lipgloss.Color
	income, expense, warning, info        lipgloss.Color
}

func newTheme(p palette) Theme {
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Subtitle: lipgloss.NewStyle().Foreground(p.muted),
		Normal:   lipgloss.NewStyle().Foreground(p.text),
		Bold:     lipgloss.NewStyle().Bold(true).Foreground(p.text),
		Selected: lipgloss.NewStyle().Bold(true).Background(p.accent).Foreground(p.onAccent),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.border),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 2),
		Income:        lipgloss.NewStyle().Foreground(p.income),
		Expense:       lipgloss.NewStyle().Foreground(p.expense),
		StatusInfo:    lipgloss.NewStyle().Bold(true).Foreground(p.info),
		StatusError:   lipgloss.NewStyle().Bold(true).Foreground(p.expense),
		StatusWarning: lipgloss.NewStyle().Bold(true).Foreground(p.warning),
		StatusPending: lipgloss.NewStyle().Italic(true).Foreground(p.muted),
	}
}

// Default is the default theme.
var Default = newTheme(palette{
	text:     "#fafafa",
	muted:    "#a3a3a3",
	accent:   "#2a9d8f",
	onAccent: "#fafafa",
	border:   "#404040",
	income:   "#10b981",
	expense:  "#ef4444",
	warning:  "#f59e0b",
	info:     "#3b82f6",
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme(palette{
	text:     "#cdd6f4",
	muted:    "#a6adc8",
	accent:   "#cba6f7",
	onAccent: "#1e1e2e",
	border:   "#45475a",
	income:   "#a6e3a1",
	expense:  "#f38ba8",
	warning:  "#f9e2af",
	info:     "#89dceb",
})

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
