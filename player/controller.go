package player

import (
	"fmt"
	"math"
	"sync"

	"github.com/mobile-next/gesturekit/gestures"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/samber/lo"
)

// fallback when the backend cannot report brightness
const defaultBrightness = 0.5

// Feedback is the transient on-screen text shown while a gesture is active.
type Feedback struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text"`
}

// Controller implements gestures.Observer on top of a Backend. Deltas are
// applied to the values captured on Init and clamped to the valid range.
// Backend failures are logged and never reach the recognizer.
type Controller struct {
	backend Backend

	mu            sync.Mutex
	initialSeek   int
	initialBright float64
	initialVolume int
	maxVolume     int
	feedback      Feedback
	onFeedback    func(Feedback)
}

func NewController(backend Backend) *Controller {
	return &Controller{
		backend:     backend,
		initialSeek: -1,
	}
}

// OnFeedback registers a callback invoked every time the feedback changes.
func (c *Controller) OnFeedback(fn func(Feedback)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFeedback = fn
}

// Feedback returns the current gesture feedback.
func (c *Controller) Feedback() Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback
}

func (c *Controller) OnPropertyChange(p gestures.PropertyChange, delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch p {
	case gestures.Init:
		c.snapshot()
		c.setFeedback(Feedback{Visible: true})
	case gestures.Seek:
		c.seek(delta)
	case gestures.SeekSub:
		offset := int(math.Round(delta))
		if err := c.backend.SubSeek(offset); err != nil {
			utils.Error("sub-seek %d failed: %v", offset, err)
		}
	case gestures.Volume:
		c.volume(delta)
	case gestures.Bright:
		c.bright(delta)
	case gestures.Finalize:
		c.setFeedback(Feedback{})
	}
}

func (c *Controller) snapshot() {
	pos, err := c.backend.TimePos()
	if err != nil {
		utils.Verbose("time-pos unavailable: %v", err)
		pos = -1
	}
	c.initialSeek = pos

	bright, err := c.backend.Brightness()
	if err != nil {
		utils.Verbose("brightness unavailable: %v", err)
		bright = defaultBrightness
	}
	c.initialBright = bright

	c.initialVolume, err = c.backend.Volume()
	if err != nil {
		utils.Verbose("volume unavailable: %v", err)
		c.initialVolume = 0
	}

	c.maxVolume, err = c.backend.MaxVolume()
	if err != nil {
		utils.Verbose("max volume unavailable: %v", err)
		c.maxVolume = 0
	}
}

func (c *Controller) seek(delta float64) {
	// no seeking on livestreams or without a known position
	duration, err := c.backend.Duration()
	if err != nil || duration == 0 || c.initialSeek < 0 {
		return
	}

	newPos := lo.Clamp(c.initialSeek+int(delta), 0, duration)
	if err := c.backend.Seek(newPos); err != nil {
		utils.Error("seek to %d failed: %v", newPos, err)
		return
	}

	diff := newPos - c.initialSeek
	sign := "+"
	if diff < 0 {
		sign = "-"
	}
	c.setFeedback(Feedback{
		Visible: c.feedback.Visible,
		Text:    fmt.Sprintf("%s\n[%s%s]", PrettyTime(newPos), sign, PrettyTime(absInt(diff))),
	})
}

func (c *Controller) volume(delta float64) {
	if c.maxVolume <= 0 {
		return
	}

	newVolume := lo.Clamp(c.initialVolume+int(delta*float64(c.maxVolume)), 0, c.maxVolume)
	if err := c.backend.SetVolume(newVolume); err != nil {
		utils.Error("set volume to %d failed: %v", newVolume, err)
		return
	}

	c.setFeedback(Feedback{
		Visible: c.feedback.Visible,
		Text:    fmt.Sprintf("V: %d%%", 100*newVolume/c.maxVolume),
	})
}

func (c *Controller) bright(delta float64) {
	newBright := lo.Clamp(c.initialBright+delta, 0, 1)
	if err := c.backend.SetBrightness(newBright); err != nil {
		utils.Error("set brightness to %.2f failed: %v", newBright, err)
		return
	}

	c.setFeedback(Feedback{
		Visible: c.feedback.Visible,
		Text:    fmt.Sprintf("B: %d%%", int(math.Round(newBright*100))),
	})
}

func (c *Controller) setFeedback(f Feedback) {
	c.feedback = f
	if c.onFeedback != nil {
		c.onFeedback(f)
	}
}

// PrettyTime formats seconds as mm:ss, or h:mm:ss from one hour on.
func PrettyTime(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	h := seconds / 3600
	m := seconds / 60 % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m, s)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
