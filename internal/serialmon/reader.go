// Package serialmon streams decorated lines from a serial device and keeps
// reconnecting for as long as it runs.
package serialmon

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/idfrun/idfrun/internal/decorate"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
)

// DefaultBackoff is the pause between a transport failure and the next open.
const DefaultBackoff = 2 * time.Second

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config describes one reader.
type Config struct {
	Device  string
	Backoff time.Duration
}

// Reader is the port reader. It owns at most one open Port at a time.
type Reader struct {
	cfg       Config
	opener    Opener
	decorator *decorate.Decorator
	out       io.Writer
	sleep     SleepFunc
	log       logger.Logger
	onState   func(State)
}

// Option configures a Reader.
type Option func(*Reader)

// WithSleep replaces the backoff wait, for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(r *Reader) { r.sleep = sleep }
}

// WithLogger sets the diagnostic logger (stderr); records still go to out.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) { r.log = l }
}

// WithStateHook is called on every state change.
func WithStateHook(fn func(State)) Option {
	return func(r *Reader) { r.onState = fn }
}

// NewReader creates a Reader writing rendered records to out.
func NewReader(cfg Config, opener Opener, decorator *decorate.Decorator, out io.Writer, opts ...Option) *Reader {
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	r := &Reader{
		cfg:       cfg,
		opener:    opener,
		decorator: decorator,
		out:       out,
		sleep:     sleepContext,
		log:       logger.Noop(),
		onState:   func(State) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run connects, streams and reconnects until ctx is cancelled. It never
// gives up on its own and returns nil once terminated.
func (r *Reader) Run(ctx context.Context) error {
	state := Connecting
	r.onState(state)

	var port Port
	for {
		prev := state
		if ctx.Err() != nil {
			state = Next(state, EventTerminate)
		}

		switch state {
		case Terminated:
			if prev != Terminated {
				r.onState(state)
			}
			return nil

		case Connecting:
			p, err := r.opener.Open(r.cfg.Device)
			if err != nil {
				r.report(err)
				state = Next(state, EventFailed)
				break
			}
			port = p
			r.decorator.Reset()
			r.log.Debug("opened %s", r.cfg.Device)
			state = Next(state, EventOpened)

		case Streaming:
			err := r.stream(ctx, port)
			port = nil
			if ctx.Err() != nil {
				state = Next(state, EventTerminate)
				break
			}
			r.report(err)
			state = Next(state, EventFailed)

		case Reconnecting:
			if err := r.sleep(ctx, r.cfg.Backoff); err != nil {
				state = Next(state, EventTerminate)
				break
			}
			state = Next(state, EventBackoffElapsed)
		}

		if state != prev {
			r.onState(state)
		}
	}
}

// stream reads from port until it fails or ctx is cancelled, then closes it.
func (r *Reader) stream(ctx context.Context, port Port) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = port.Close()
		case <-done:
		}
	}()

	err := port.ReadLines(func(raw []byte) {
		line := r.decorator.Decorate(ctx, raw)
		r.emit(decorate.Render(line))
	})
	_ = port.Close()
	return err
}

func (r *Reader) report(err error) {
	if err == nil {
		err = errors.New(errors.ErrSerial, "Connection ended", "")
	}
	r.log.Debug("transport error on %s: %s", r.cfg.Device, errors.OneLine(err))
	r.emit(decorate.RenderReaderError(err))
}

func (r *Reader) emit(record string) {
	if _, err := fmt.Fprintln(r.out, record); err != nil {
		r.log.Warn("write record: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
