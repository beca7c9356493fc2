//go:build linux

package serialmon

import (
	"context"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/idfrun/idfrun/internal/decorate"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSerialOpener_ReadsFromPTY(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	log := &eventLog{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	r := NewReader(Config{Device: slave.Name()}, SerialOpener{Baud: 115200}, decorate.New(), log)
	go func() { done <- r.Run(ctx) }()

	// Give the reader time to open the slave before writing.
	time.Sleep(50 * time.Millisecond)
	_, err = master.Write([]byte("I boot ok\r\nE sensor timeout\r\n"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(log.snapshot()) >= 2 }, 2*time.Second, 10*time.Millisecond)
	events := log.snapshot()
	assert.Regexp(t, `\[ S\] - I boot ok$`, events[0])
	assert.Regexp(t, `\[ S\] - E sensor timeout$`, events[1])

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}

func TestSerialOpener_MissingDevice(t *testing.T) {
	_, err := SerialOpener{}.Open("/dev/idfrun-does-not-exist")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSerial))
}

func TestSerialOpener_ProgramsBaud(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := SerialOpener{Baud: 230400}.Open(slave.Name())
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })

	termios, err := unix.IoctlGetTermios(int(slave.Fd()), unix.TCGETS)
	require.NoError(t, err)
	assert.Equal(t, uint32(unix.B230400), termios.Cflag&unix.CBAUD)
}

func TestSerialOpener_RejectsUnsupportedBaud(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	port, err := SerialOpener{Baud: 921600}.Open(slave.Name())

	require.Error(t, err)
	assert.Nil(t, port)
	assert.True(t, errors.IsCode(err, errors.ErrSerial))
	assert.Contains(t, err.Error(), "921600")
}
