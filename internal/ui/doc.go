// Package ui holds the terminal styling shared by the console and the
// monitor: the ANSI color palette, status symbols, and the phase display
// used to report toolchain runs between device log lines.
//
// # Color Scheme
//
//	ColorInfo    (blue)   - device lines starting with "I "
//	ColorWarning (yellow) - device lines starting with "W "
//	ColorError   (red)    - device lines starting with "E ", failed runs
//	ColorSuccess (green)  - successful runs
//	ColorMuted   (gray)   - timing, prompts, dividers
//
// ApplyColorMode maps the output.color setting onto a lipgloss color
// profile; DisableColors forces plain text (--no-color).
package ui
