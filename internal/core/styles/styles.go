// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    color.Color
	Secondary  color.Color
	Foreground color.Color
	Muted      color.Color
	Background color.Color
	Surface    color.Color
	Success    color.Color
	Warning    color.Color
	Error      color.Color
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported colors of the active palette.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	SuccessTextStyle   lipgloss.Style
	ErrorTextStyle     lipgloss.Style
	MutedTextStyle     lipgloss.Style

	// Table view.
	TitleStyle        lipgloss.Style
	HeaderCellStyle   lipgloss.Style
	GutterStyle       lipgloss.Style
	CellStyle         lipgloss.Style
	MissingCellStyle  lipgloss.Style
	NumberCellStyle   lipgloss.Style
	CursorRowStyle    lipgloss.Style
	MatchCellStyle    lipgloss.Style
	ColumnSepStyle    lipgloss.Style
	ProgressFullStyle lipgloss.Style
	ProgressVoidStyle lipgloss.Style

	// Status line and search bar.
	StatusBarStyle    lipgloss.Style
	StatusErrorStyle  lipgloss.Style
	SearchPromptStyle lipgloss.Style
	SearchColumnStyle lipgloss.Style
	KeyHintStyle      lipgloss.Style

	// Overlays.
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style
)

// ColorPool is used for deterministic color hashing of column names.
var ColorPool []color.Color

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	ErrorTextStyle = lipgloss.NewStyle().Foreground(ColorError)
	MutedTextStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	HeaderCellStyle = lipgloss.NewStyle().
		Bold(true).
		Underline(true)
	GutterStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Align(lipgloss.Right)
	CellStyle = lipgloss.NewStyle().Foreground(ColorForeground)
	MissingCellStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	NumberCellStyle = lipgloss.NewStyle().Foreground(ColorSecondary)
	CursorRowStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Bold(true)
	MatchCellStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorWarning)
	ColumnSepStyle = lipgloss.NewStyle().Foreground(ColorSurface)
	ProgressFullStyle = lipgloss.NewStyle().Foreground(ColorPrimary)
	ProgressVoidStyle = lipgloss.NewStyle().Foreground(ColorSurface)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(ColorForeground).
		Background(ColorSurface).
		Padding(0, 1)
	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorError).
		Padding(0, 1)
	SearchPromptStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	SearchColumnStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)
	KeyHintStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	ColorPool = []color.Color{
		ColorPrimary,
		ColorSecondary,
		ColorSuccess,
		ColorWarning,
		ColorError,
	}
}

// ColorForString returns a deterministic color for a given string.
// The same string always produces the same color.
func ColorForString(s string) color.Color {
	var hash uint32
	for _, c := range s {
		hash = hash*31 + uint32(c)
	}
	return ColorPool[hash%uint32(len(ColorPool))]
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
