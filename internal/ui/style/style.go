// Package style provides the colors, icons and text styles shared by the
// log handler and the report renderer.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// Text styles used by report rendering.
var (
	Heading = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	Label   = lipgloss.NewStyle().Foreground(Slate)
	Hit     = lipgloss.NewStyle().Foreground(Green)
	Miss    = lipgloss.NewStyle().Foreground(Yellow)
)
