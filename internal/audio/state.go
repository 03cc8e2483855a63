// Package audio drives read-aloud playback: fetching speech, piping it to a
// player and tracking the Idle/Loading/Playing state.
package audio

// State is the playback state.
type State int

const (
	Idle State = iota
	Loading
	Playing
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	default:
		return "idle"
	}
}

// Event drives a State transition.
type Event int

const (
	// EventPlay is the read-aloud toggle. While busy it acts as a stop.
	EventPlay Event = iota
	EventStop
	EventLoaded
	EventFailed
	EventPlaybackEnded
)

func (e Event) String() string {
	switch e {
	case EventPlay:
		return "play"
	case EventStop:
		return "stop"
	case EventLoaded:
		return "loaded"
	case EventFailed:
		return "failed"
	case EventPlaybackEnded:
		return "playback_ended"
	default:
		return "unknown"
	}
}

// Next returns the state after ev. Events that do not apply leave the state
// unchanged.
func Next(s State, ev Event) State {
	switch s {
	case Idle:
		if ev == EventPlay {
			return Loading
		}
	case Loading:
		switch ev {
		case EventPlay, EventStop, EventFailed:
			return Idle
		case EventLoaded:
			return Playing
		}
	case Playing:
		switch ev {
		case EventPlay, EventStop, EventPlaybackEnded:
			return Idle
		}
	}
	return s
}
