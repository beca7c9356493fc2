//go:build !linux

package serialmon

import (
	"runtime"

	"github.com/idfrun/idfrun/internal/errors"
)

// SerialOpener is unavailable outside Linux; Open always fails, which the
// reader reports and retries like any other transport error.
type SerialOpener struct {
	Baud int
}

// Open implements Opener.
func (o SerialOpener) Open(device string) (Port, error) {
	return nil, errors.New(errors.ErrSerial,
		"Serial monitoring is not supported on "+runtime.GOOS,
		"Run idfrun on Linux, or forward the device into a Linux VM.")
}
