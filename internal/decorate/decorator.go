package decorate

import (
	"context"
	"strings"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
)

// BacktracePrefix marks a panic backtrace line printed by the firmware.
const BacktracePrefix = "Backtrace: "

// Symbolizer resolves code addresses against a debug-symbol file.
type Symbolizer interface {
	Resolve(ctx context.Context, addresses []string, symbolFile string) (string, error)
}

// Decorator turns raw device lines into LogLines. Its only state is the
// elapsed-time origin.
type Decorator struct {
	origin     time.Time
	now        func() time.Time
	symbolFile string
	symbolizer Symbolizer
	log        logger.Logger
}

// Option configures a Decorator.
type Option func(*Decorator)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Decorator) { d.now = now }
}

// WithSymbolizer enables backtrace resolution against symbolFile.
// An empty symbolFile leaves backtraces verbatim.
func WithSymbolizer(s Symbolizer, symbolFile string) Option {
	return func(d *Decorator) {
		d.symbolizer = s
		d.symbolFile = symbolFile
	}
}

// WithLogger sets where symbolization failures are reported.
func WithLogger(l logger.Logger) Option {
	return func(d *Decorator) { d.log = l }
}

// New creates a Decorator whose origin is the moment of creation.
func New(opts ...Option) *Decorator {
	d := &Decorator{
		now: time.Now,
		log: logger.Noop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.origin = d.now()
	return d
}

// Reset moves the elapsed-time origin to now. Called on every (re)connect.
func (d *Decorator) Reset() {
	d.origin = d.now()
}

// Decorate decodes, times, symbolizes and classifies one raw line.
func (d *Decorator) Decorate(ctx context.Context, raw []byte) LogLine {
	content, kind := Decode(raw)
	line := LogLine{
		Elapsed: d.now().Sub(d.origin),
		Kind:    kind,
		Raw:     content,
	}
	if kind != KindText {
		return line
	}

	if d.symbolizer != nil && d.symbolFile != "" && strings.HasPrefix(content, BacktracePrefix) {
		line.Resolved = d.symbolize(ctx, content)
	}
	line.Level = Classify(line.Content())
	return line
}

func (d *Decorator) symbolize(ctx context.Context, content string) string {
	addrs := strings.Fields(strings.TrimPrefix(content, BacktracePrefix))
	if len(addrs) == 0 {
		return ""
	}
	resolved, err := d.symbolizer.Resolve(ctx, addrs, d.symbolFile)
	if err != nil {
		d.log.Warn("backtrace left unresolved: %s", errors.OneLine(err))
		return ""
	}
	return strings.TrimRight(resolved, "\r\n")
}
