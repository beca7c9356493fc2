package decorate

import (
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind tells whether a line decoded as text or fell back to hex.
type Kind int

const (
	KindText Kind = iota
	KindBinary
)

// Tag is the single-letter kind token printed in each record.
func (k Kind) Tag() string {
	if k == KindBinary {
		return "B"
	}
	return "S"
}

func (k Kind) String() string {
	if k == KindBinary {
		return "binary"
	}
	return "text"
}

// Level is the presentational classification of a device line. It only
// affects styling.
type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

// Device log prefixes, matched exactly and case-sensitively.
const (
	prefixInfo    = "I "
	prefixWarning = "W "
	prefixError   = "E "
)

// Classify looks only at the first two characters of content.
func Classify(content string) Level {
	switch {
	case strings.HasPrefix(content, prefixInfo):
		return LevelInfo
	case strings.HasPrefix(content, prefixWarning):
		return LevelWarning
	case strings.HasPrefix(content, prefixError):
		return LevelError
	default:
		return LevelNone
	}
}

// Decode turns one raw line into display text. Valid UTF-8 is trimmed of
// surrounding whitespace (including the '\r' of CRLF devices); anything
// else is rendered as lowercase hex of the untouched bytes.
func Decode(raw []byte) (string, Kind) {
	if utf8.Valid(raw) {
		return strings.TrimSpace(string(raw)), KindText
	}
	return hex.EncodeToString(raw), KindBinary
}

// LogLine is one decorated record. It is produced by a Decorator and
// rendered right away; nothing holds on to it.
type LogLine struct {
	Elapsed  time.Duration
	Kind     Kind
	Raw      string
	Resolved string
	Level    Level
}

// Content is what gets displayed: the resolved backtrace when there is
// one, the decoded line otherwise.
func (l LogLine) Content() string {
	if l.Resolved != "" {
		return l.Resolved
	}
	return l.Raw
}
