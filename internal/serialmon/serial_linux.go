//go:build linux

package serialmon

import (
	"fmt"
	"os"
	"sync"
	"time"

	serial "github.com/luhtfiimanal/go-linux-serial"

	"github.com/idfrun/idfrun/internal/errors"
)

// presenceInterval is how often an open port checks that its device node
// still exists. USB adapters vanish from /dev when unplugged.
const presenceInterval = time.Second

// SerialOpener opens real tty devices in raw mode.
type SerialOpener struct {
	Baud int
}

// Open implements Opener.
func (o SerialOpener) Open(device string) (Port, error) {
	baud := o.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}
	if err := CheckBaud(baud); err != nil {
		return nil, err
	}
	r, err := serial.Open(serial.Config{
		Device:    device,
		BaudRate:  baud,
		Delimiter: "\n",
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSerial,
			fmt.Sprintf("Couldn't open %s", device),
			"Check the device is plugged in and not held by another program.")
	}
	return &linuxPort{device: device, reader: r}, nil
}

type linuxPort struct {
	device string
	reader *serial.SerialReader

	mu      sync.Mutex
	lostErr error
}

func (p *linuxPort) ReadLines(onLine func(raw []byte)) error {
	stop := make(chan struct{})
	defer close(stop)
	go p.watchPresence(stop)

	var readErr error
	p.reader.ReadLinesLoop(
		func(line string) { onLine([]byte(line)) },
		func(err error) { readErr = err },
	)

	if readErr != nil {
		return errors.Wrap(readErr, fmt.Sprintf("Read from %s failed", p.device))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lostErr != nil {
		return p.lostErr
	}
	return ErrPortClosed
}

// watchPresence closes the port once the device node disappears, since a
// hung-up tty does not always wake the reader's poll.
func (p *linuxPort) watchPresence(stop <-chan struct{}) {
	ticker := time.NewTicker(presenceInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := os.Stat(p.device); err != nil {
				p.mu.Lock()
				p.lostErr = errors.Wrap(err, fmt.Sprintf("Device %s disappeared", p.device))
				p.mu.Unlock()
				_ = p.reader.Close()
				return
			}
		}
	}
}

func (p *linuxPort) Close() error {
	return p.reader.Close()
}
