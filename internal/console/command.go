package console

// Command is one operator action.
type Command int

const (
	CommandNone Command = iota
	CommandFlash
	CommandReload
	CommandBuild
	CommandClean
	CommandQuit
	CommandMenu
)

var commandNames = map[Command]string{
	CommandNone:   "none",
	CommandFlash:  "flash",
	CommandReload: "reload",
	CommandBuild:  "build",
	CommandClean:  "clean",
	CommandQuit:   "quit",
	CommandMenu:   "menu",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// ToolchainArgs returns the toolchain subcommand for c, or nil when c is
// handled by the console itself.
func (c Command) ToolchainArgs() []string {
	switch c {
	case CommandFlash:
		return []string{"flash"}
	case CommandBuild:
		return []string{"build"}
	case CommandClean:
		return []string{"clean"}
	case CommandMenu:
		return []string{"menuconfig"}
	}
	return nil
}

// KeyMap binds single keys to commands. Keys are case-sensitive.
var KeyMap = map[byte]Command{
	'r': CommandFlash,
	'R': CommandReload,
	'b': CommandBuild,
	'c': CommandClean,
	'q': CommandQuit,
	'm': CommandMenu,
}

// ParseKey maps a key to its command.
func ParseKey(key byte) (Command, bool) {
	cmd, ok := KeyMap[key]
	return cmd, ok
}

// Help is the one-line key reference printed at startup.
const Help = "r flash · R reload monitor · b build · c clean · m menuconfig · q quit"
