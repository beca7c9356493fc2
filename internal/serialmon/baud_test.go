package serialmon

import (
	"testing"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestSupportedBaud(t *testing.T) {
	tests := []struct {
		baud int
		want bool
	}{
		{baud: 9600, want: true},
		{baud: DefaultBaud, want: true},
		{baud: 230400, want: true},
		{baud: 460800, want: false},
		{baud: 921600, want: false},
		{baud: 0, want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SupportedBaud(tt.baud), "baud %d", tt.baud)
	}
}

func TestCheckBaud(t *testing.T) {
	assert.NoError(t, CheckBaud(115200))

	err := CheckBaud(921600)
	assert.True(t, errors.IsCode(err, errors.ErrSerial))
	assert.Contains(t, err.Error(), "921600")
	assert.Equal(t, []string{"9600", "19200", "38400", "57600", "115200", "230400"}, SupportedBaudList())
}
