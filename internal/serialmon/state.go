package serialmon

// State is a PortReader lifecycle state.
type State int

const (
	Connecting State = iota
	Streaming
	Reconnecting
	Terminated
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case Reconnecting:
		return "reconnecting"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event drives State transitions.
type Event int

const (
	EventOpened Event = iota
	EventLine
	EventFailed
	EventBackoffElapsed
	EventTerminate
)

func (e Event) String() string {
	switch e {
	case EventOpened:
		return "opened"
	case EventLine:
		return "line"
	case EventFailed:
		return "failed"
	case EventBackoffElapsed:
		return "backoff-elapsed"
	case EventTerminate:
		return "terminate"
	default:
		return "unknown"
	}
}

// Next is the reader's transition function. Events that make no sense in
// a state leave it unchanged; Terminated is absorbing.
func Next(s State, e Event) State {
	if s == Terminated || e == EventTerminate {
		return Terminated
	}
	switch s {
	case Connecting:
		switch e {
		case EventOpened:
			return Streaming
		case EventFailed:
			return Reconnecting
		}
	case Streaming:
		if e == EventFailed {
			return Reconnecting
		}
	case Reconnecting:
		if e == EventBackoffElapsed {
			return Connecting
		}
	}
	return s
}
