package gestures

import (
	"errors"
	"fmt"
	"math"

	"github.com/mobile-next/gesturekit/types"
)

var (
	ErrInvalidDimensions = errors.New("screen dimensions must be positive")
	ErrNilObserver       = errors.New("observer is required")
)

// Recognizer classifies a single-finger drag into seek, subtitle seek, volume
// or brightness control and streams deltas to its observer while the finger
// is down. It is not safe for concurrent use; feed it one touch stream at a
// time.
type Recognizer struct {
	width    float64
	height   float64
	cfg      Config
	observer Observer

	// minimum movement which commits to a Control state
	trigger float64

	state State
	// where the finger was placed (pointerDown)
	initialPos types.Point
	// last position that made it past the throttle
	lastPos types.Point
}

// New creates a recognizer for a screen of the given size using DefaultConfig.
func New(width, height float64, observer Observer) (*Recognizer, error) {
	return NewWithConfig(width, height, observer, DefaultConfig())
}

// NewWithConfig creates a recognizer with custom tuning.
func NewWithConfig(width, height float64, observer Observer, cfg Config) (*Recognizer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %gx%g", ErrInvalidDimensions, width, height)
	}
	if observer == nil {
		return nil, ErrNilObserver
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Recognizer{
		width:    width,
		height:   height,
		cfg:      cfg,
		observer: observer,
		trigger:  math.Min(width, height) / cfg.TriggerRate,
		state:    StateUp,
	}, nil
}

// State returns the current gesture state.
func (r *Recognizer) State() State {
	return r.state
}

// Trigger returns the minimum displacement that commits a control mode.
func (r *Recognizer) Trigger() float64 {
	return r.trigger
}

// Size returns the screen dimensions the recognizer was built for.
func (r *Recognizer) Size() types.ScreenSize {
	return types.ScreenSize{Width: r.width, Height: r.height}
}

// Reset drops any gesture in progress without notifying the observer.
func (r *Recognizer) Reset() {
	r.state = StateUp
}

// HandleEvent feeds one pointer sample. The result tells the host whether the
// sample was consumed: always true for an accepted down (so the rest of the
// touch stream keeps coming), and true for move/up only while a control mode
// owns the gesture.
func (r *Recognizer) HandleEvent(phase Phase, p types.Point) bool {
	switch phase {
	case PhaseDown:
		if r.inDeadzone(p.Y) {
			return false
		}
		r.initialPos = p
		r.lastPos = p
		r.state = StateDown
		return true

	case PhaseMove:
		return r.processMovement(p)

	case PhaseUp:
		handled := r.processMovement(p)
		r.send(Finalize, 0)
		r.state = StateUp
		return handled
	}

	return false
}

func (r *Recognizer) inDeadzone(y float64) bool {
	return y < r.height*r.cfg.DeadzonePercent/100 ||
		y > r.height*(100-r.cfg.DeadzonePercent)/100
}

func (r *Recognizer) processMovement(p types.Point) bool {
	if p.Sub(r.lastPos).Length() < r.trigger/r.cfg.ThrottleDivisor {
		return false
	}
	r.lastPos = p

	dx := p.X - r.initialPos.X
	dy := p.Y - r.initialPos.Y

	if r.state == StateDown {
		r.classify(p, dx, dy)
	}

	// the sample that commits a control mode also carries its first delta
	switch r.state {
	case StateControlSeek:
		r.send(Seek, r.cfg.SeekMax*dx/r.width)
	case StateControlVolume:
		r.send(Volume, -r.cfg.VolumeMax*dy/r.height)
	case StateControlBright:
		r.send(Bright, -r.cfg.BrightMax*dy/r.height)
	}

	return r.state.Controlling()
}

// classify runs while undecided. Horizontal wins over vertical when both
// exceed the trigger.
func (r *Recognizer) classify(p types.Point, dx, dy float64) {
	inSubtitleArea := p.Y > r.height*r.cfg.SubtitleAreaThreshold

	if math.Abs(dx) > r.trigger {
		if inSubtitleArea {
			// drag right goes to the previous subtitle, left to the next
			step := 1.0
			if dx > 0 {
				step = -1
			}
			r.send(SeekSub, step)
			r.state = StateUp
		} else {
			r.state = StateControlSeek
		}
	} else if math.Abs(dy) > r.trigger {
		if r.initialPos.X > r.width/2 {
			r.state = StateControlVolume
		} else {
			r.state = StateControlBright
		}
	}

	// give the observer a chance to snapshot its baseline values
	if r.state != StateDown {
		r.send(Init, 0)
	}
}

func (r *Recognizer) send(p PropertyChange, delta float64) {
	r.observer.OnPropertyChange(p, delta)
}
