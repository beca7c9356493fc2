package console

import (
	"os"
	"time"

	"golang.org/x/term"
)

// KeyReader reads one operator command. Any failure maps to (CommandNone, false).
type KeyReader interface {
	ReadCommand() (Command, bool)
}

const (
	keyCtrlC = 0x03

	// readRetryDelay throttles repeated read failures (e.g. stdin at EOF).
	readRetryDelay = 200 * time.Millisecond
)

// TerminalReader reads single keystrokes from a terminal without waiting
// for Enter. The terminal is switched to non-canonical mode only for the
// duration of one read, so the toolchain always inherits a cooked tty.
type TerminalReader struct {
	in          *os.File
	onInterrupt func()
}

// NewTerminalReader creates a reader on in. onInterrupt is called when
// Ctrl+C is read as a key.
func NewTerminalReader(in *os.File, onInterrupt func()) *TerminalReader {
	return &TerminalReader{in: in, onInterrupt: onInterrupt}
}

// ReadCommand blocks for one key.
func (r *TerminalReader) ReadCommand() (Command, bool) {
	fd := int(r.in.Fd())
	if term.IsTerminal(fd) {
		restore, err := enterKeyMode(fd)
		if err == nil {
			defer restore()
		}
	}

	var buf [1]byte
	n, err := r.in.Read(buf[:])
	if err != nil || n == 0 {
		time.Sleep(readRetryDelay)
		return CommandNone, false
	}
	if buf[0] == keyCtrlC {
		if r.onInterrupt != nil {
			r.onInterrupt()
		}
		return CommandNone, false
	}
	return ParseKey(buf[0])
}
