package gestures

import (
	"fmt"
	"strings"
)

// Phase is the touch phase of a pointer sample.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "pointerDown"
	case PhaseMove:
		return "pointerMove"
	case PhaseUp:
		return "pointerUp"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase accepts W3C pointer action names as well as the short forms.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pointerdown", "down":
		return PhaseDown, nil
	case "pointermove", "move":
		return PhaseMove, nil
	case "pointerup", "up":
		return PhaseUp, nil
	}
	return 0, fmt.Errorf("unknown pointer action type: %q", s)
}

// State of the recognizer. Up is idle, Down is undecided, the Control states
// are committed for the rest of the gesture.
type State int

const (
	StateUp State = iota
	StateDown
	StateControlSeek
	StateControlVolume
	StateControlBright
)

func (s State) String() string {
	switch s {
	case StateUp:
		return "up"
	case StateDown:
		return "down"
	case StateControlSeek:
		return "control_seek"
	case StateControlVolume:
		return "control_volume"
	case StateControlBright:
		return "control_bright"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for candidate := StateUp; candidate <= StateControlBright; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}

// Controlling reports whether the gesture has been claimed by a control mode.
func (s State) Controlling() bool {
	return s != StateUp && s != StateDown
}

// PropertyChange identifies what an observer notification is about.
type PropertyChange int

const (
	Init PropertyChange = iota
	Seek
	SeekSub
	Volume
	Bright
	Finalize
)

var propertyChangeNames = map[PropertyChange]string{
	Init:     "init",
	Seek:     "seek",
	SeekSub:  "seek_sub",
	Volume:   "volume",
	Bright:   "bright",
	Finalize: "finalize",
}

func (p PropertyChange) String() string {
	if name, ok := propertyChangeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PropertyChange(%d)", int(p))
}

func (p PropertyChange) MarshalText() ([]byte, error) {
	if _, ok := propertyChangeNames[p]; !ok {
		return nil, fmt.Errorf("unknown property change %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *PropertyChange) UnmarshalText(text []byte) error {
	for kind, name := range propertyChangeNames {
		if name == string(text) {
			*p = kind
			return nil
		}
	}
	return fmt.Errorf("unknown property change %q", string(text))
}

// Observer receives the recognizer's notifications. It runs on the caller's
// goroutine and must not block.
type Observer interface {
	OnPropertyChange(p PropertyChange, delta float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(p PropertyChange, delta float64)

func (f ObserverFunc) OnPropertyChange(p PropertyChange, delta float64) {
	f(p, delta)
}

// Multi fans a notification out to every observer in order.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(p PropertyChange, delta float64) {
		for _, o := range observers {
			o.OnPropertyChange(p, delta)
		}
	})
}
