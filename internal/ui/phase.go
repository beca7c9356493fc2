package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// DividerWidth is the default width for divider lines.
const DividerWidth = 64

// PhaseDisplay renders the status of console actions (toolchain runs,
// monitor restarts) between chunks of device output.
type PhaseDisplay struct {
	w io.Writer
}

// NewPhaseDisplay creates a new phase display writing to w.
func NewPhaseDisplay(w io.Writer) *PhaseDisplay {
	return &PhaseDisplay{w: w}
}

// CommandPrompt renders the command about to be executed.
// Shows: $ idf.py flash
func (pd *PhaseDisplay) CommandPrompt(cmd string) {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	fmt.Fprintf(pd.w, "%s %s\n", style.Render("$"), cmd)
}

// RenderSuccess renders a completed phase.
// Shows: ● idf.py flash 12.3s
func (pd *PhaseDisplay) RenderSuccess(name string, duration time.Duration) {
	fmt.Fprintln(pd.w, FormatPhase(SymbolComplete, ColorSuccess, name, FormatDuration(duration)))
}

// RenderFailed renders a failed phase with a short reason.
// Shows: ✗ idf.py build exited 2 4.1s
func (pd *PhaseDisplay) RenderFailed(name string, reason string, duration time.Duration) {
	label := name
	if reason != "" {
		label = name + " " + reason
	}
	fmt.Fprintln(pd.w, FormatPhase(SymbolFail, ColorError, label, FormatDuration(duration)))
}

// RenderSkipped renders a notice that an action did nothing.
// Shows: ⊘ monitor stopped (interrupt)
func (pd *PhaseDisplay) RenderSkipped(name string, reason string) {
	timing := ""
	if reason != "" {
		timing = "(" + reason + ")"
	}
	fmt.Fprintln(pd.w, FormatPhase(SymbolSkipped, ColorWarning, name, timing))
}

// Divider renders a horizontal line to separate console output from device output.
func (pd *PhaseDisplay) Divider() {
	fmt.Fprintf(pd.w, "%s\n", FormatDivider(DividerWidth))
}

// FormatPhase returns a formatted phase line as a string.
func FormatPhase(symbol string, symbolColor lipgloss.Color, name string, timing string) string {
	symbolStyle := lipgloss.NewStyle().Foreground(symbolColor)
	timingStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	if timing == "" {
		return fmt.Sprintf("%s %s", symbolStyle.Render(symbol), name)
	}
	return fmt.Sprintf("%s %s %s", symbolStyle.Render(symbol), name, timingStyle.Render(timing))
}

// FormatDivider returns a divider line as a string.
func FormatDivider(width int) string {
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	return style.Render(strings.Repeat("━", width))
}

// FormatDuration renders a phase duration: two decimals under 100ms, one above.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
