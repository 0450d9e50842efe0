package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette. The primary blue matches the popup UI accent.
var (
	ColorPrimary = lipgloss.Color("#2563EB")
	ColorSuccess = lipgloss.Color("#22C55E")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorError   = lipgloss.Color("#EF4444")
	ColorInfo    = lipgloss.Color("#3B82F6")
	ColorSubtle  = lipgloss.Color("#6B7280")
	ColorMuted   = lipgloss.Color("#9CA3AF")
)

const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "!"
	SymbolInfo    = "→"
	SymbolBullet  = "•"
)

var (
	BrandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorInfo)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// KeyStyle is sized for the longest label the status view prints.
	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Width(14)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSubtle).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorSubtle)

	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	HintStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Italic(true)
)

// SessionStateStyle picks the style for a session state string: green for an
// authenticated session, amber for anything in flight or expired.
func SessionStateStyle(state string) lipgloss.Style {
	if state == "authenticated" {
		return SuccessStyle
	}
	return WarningStyle
}
