package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ANSI palette, kept to the 16 base colors so the log stream renders the
// same in any terminal a device log ends up in.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "4" // Blue
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// Color modes accepted by output.color and --no-color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ValidColorMode reports whether mode is one of the accepted color modes.
func ValidColorMode(mode string) bool {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return true
	}
	return false
}

// ApplyColorMode configures the global lipgloss color profile.
// "auto" colors only when stdout is a terminal and NO_COLOR is unset.
func ApplyColorMode(mode string) {
	switch mode {
	case ColorNever:
		DisableColors()
	case ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI)
	default:
		if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
			DisableColors()
			return
		}
		lipgloss.SetColorProfile(termenv.EnvColorProfile())
	}
}

// DisableColors switches all styles to plain text.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
