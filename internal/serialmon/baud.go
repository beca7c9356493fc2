package serialmon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/idfrun/idfrun/internal/errors"
)

// SupportedBauds are the rates the serial transport can program into the
// tty. Anything else would silently fall back to 115200.
var SupportedBauds = []int{9600, 19200, 38400, 57600, 115200, 230400}

// SupportedBaud reports whether baud is one of SupportedBauds.
func SupportedBaud(baud int) bool {
	for _, b := range SupportedBauds {
		if b == baud {
			return true
		}
	}
	return false
}

// SupportedBaudList renders SupportedBauds for messages and prompts.
func SupportedBaudList() []string {
	out := make([]string, len(SupportedBauds))
	for i, b := range SupportedBauds {
		out[i] = strconv.Itoa(b)
	}
	return out
}

// CheckBaud returns an ErrSerial error for a rate the transport can't set.
func CheckBaud(baud int) error {
	if SupportedBaud(baud) {
		return nil
	}
	return errors.New(errors.ErrSerial,
		fmt.Sprintf("Unsupported baud rate %d", baud),
		"Use one of: "+strings.Join(SupportedBaudList(), ", "))
}
