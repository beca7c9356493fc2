package serialmon

import (
	stderrors "errors"
)

// DefaultBaud matches the ESP-IDF console default.
const DefaultBaud = 115200

// ErrPortClosed is returned by ReadLines when the port was closed locally.
var ErrPortClosed = stderrors.New("serial port closed")

// Port is an open, line-oriented serial connection.
type Port interface {
	// ReadLines blocks, calling onLine for every complete line (without the
	// delimiter), until the connection fails or Close is called.
	// It always returns a non-nil error.
	ReadLines(onLine func(raw []byte)) error
	// Close releases the device and unblocks ReadLines. Safe to call twice.
	Close() error
}

// Opener opens a Port for a device path.
type Opener interface {
	Open(device string) (Port, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(device string) (Port, error)

// Open implements Opener.
func (f OpenerFunc) Open(device string) (Port, error) {
	return f(device)
}
