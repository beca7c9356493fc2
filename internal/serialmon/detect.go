package serialmon

import (
	"path/filepath"
	"sort"
)

// devicePatterns match the USB serial bridges found on ESP dev boards.
var devicePatterns = []string{
	"/dev/ttyUSB*",
	"/dev/ttyACM*",
	"/dev/cu.usbserial*",
	"/dev/cu.SLAB_USBtoUART*",
	"/dev/cu.usbmodem*",
	"/dev/cu.wchusbserial*",
}

// DetectPorts lists serial devices that look like a connected board.
func DetectPorts() []string {
	return detectPorts(devicePatterns)
}

func detectPorts(patterns []string) []string {
	var ports []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		ports = append(ports, matches...)
	}
	sort.Strings(ports)
	return ports
}
