package decorate

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/ui"
)

// ReaderTag replaces the elapsed token on records produced by the reader
// itself rather than the device.
const ReaderTag = "READER"

const recordFormat = "[%9s] [%2s] - %s"

var levelStyles = map[Level]lipgloss.Style{
	LevelInfo:    lipgloss.NewStyle().Foreground(ui.ColorInfo),
	LevelWarning: lipgloss.NewStyle().Foreground(ui.ColorWarning),
	LevelError:   lipgloss.NewStyle().Foreground(ui.ColorError),
}

// Render formats a record as "[<elapsed>] [<kind>] - <content>", with the
// content colored by level.
func Render(line LogLine) string {
	content := line.Content()
	if style, ok := levelStyles[line.Level]; ok {
		content = style.Render(content)
	}
	return fmt.Sprintf(recordFormat, "+"+FormatElapsed(line.Elapsed), line.Kind.Tag(), content)
}

// RenderReaderError formats a transport failure so it stands apart from
// device output.
func RenderReaderError(err error) string {
	return fmt.Sprintf(recordFormat, ReaderTag, "", errors.OneLine(err))
}
