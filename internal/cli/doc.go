// Package cli implements the idfrun command-line interface.
//
// # Command Structure
//
//	idfrun <port>          - Interactive console: monitor + build/flash keys
//	idfrun init            - Create .idfrun.yaml
//	idfrun config          - Print the effective configuration
//	idfrun config set k v  - Change one key in the config file
//	idfrun doctor          - Diagnose toolchain, device and config
//	idfrun version         - Version information
//	idfrun completion      - Shell completion scripts
//
// The hidden "monitor <port>" command is the background serial reader. The
// console re-executes its own binary with it, in a separate process group,
// so the reader can be stopped and restarted around toolchain runs without
// ever sharing the port.
//
// # Console Keys
//
//	r  flash      R  reload monitor
//	b  build      c  clean
//	m  menuconfig q  quit
package cli
