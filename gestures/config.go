package gestures

import (
	"errors"
	"fmt"
)

// Tuned for phone-sized touch screens. Keep the defaults unless there is a
// product reason to change them.
const (
	// DefaultTriggerRate makes the trigger 1/30th of the smaller screen dimension
	DefaultTriggerRate = 30.0

	// DefaultDeadzonePercent ignores touches starting on the top/bottom 5% of
	// the screen, leaving room for the system status and navigation bars
	DefaultDeadzonePercent = 5.0

	// DefaultSubtitleAreaThreshold is the fraction of the screen height (from
	// the top) that is not part of the subtitle area
	DefaultSubtitleAreaThreshold = 0.7

	// DefaultThrottleDivisor only lets a sample through once it moved
	// trigger/3 away from the last emitted sample
	DefaultThrottleDivisor = 3.0

	// ControlSeekMax is the number of seconds covered by a full-width sweep
	ControlSeekMax = 150.0

	// ControlVolumeMax is a full-height sweep, rescaled by the observer
	ControlVolumeMax = 1.5

	// ControlBrightMax is above 1 so going from none to full brightness does
	// not require starting at the very bottom of the screen
	ControlBrightMax = 1.5
)

var ErrInvalidConfig = errors.New("invalid gesture config")

// Config holds the tunables of a Recognizer.
type Config struct {
	TriggerRate           float64 `json:"triggerRate"`
	DeadzonePercent       float64 `json:"deadzonePercent"`
	SubtitleAreaThreshold float64 `json:"subtitleAreaThreshold"`
	ThrottleDivisor       float64 `json:"throttleDivisor"`
	SeekMax               float64 `json:"seekMax"`
	VolumeMax             float64 `json:"volumeMax"`
	BrightMax             float64 `json:"brightMax"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		TriggerRate:           DefaultTriggerRate,
		DeadzonePercent:       DefaultDeadzonePercent,
		SubtitleAreaThreshold: DefaultSubtitleAreaThreshold,
		ThrottleDivisor:       DefaultThrottleDivisor,
		SeekMax:               ControlSeekMax,
		VolumeMax:             ControlVolumeMax,
		BrightMax:             ControlBrightMax,
	}
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	if c.TriggerRate <= 0 {
		return fmt.Errorf("%w: trigger rate must be positive, got %g", ErrInvalidConfig, c.TriggerRate)
	}
	if c.DeadzonePercent < 0 || c.DeadzonePercent >= 50 {
		return fmt.Errorf("%w: deadzone percent must be in [0, 50), got %g", ErrInvalidConfig, c.DeadzonePercent)
	}
	if c.SubtitleAreaThreshold < 0 || c.SubtitleAreaThreshold > 1 {
		return fmt.Errorf("%w: subtitle area threshold must be in [0, 1], got %g", ErrInvalidConfig, c.SubtitleAreaThreshold)
	}
	if c.ThrottleDivisor <= 0 {
		return fmt.Errorf("%w: throttle divisor must be positive, got %g", ErrInvalidConfig, c.ThrottleDivisor)
	}
	if c.SeekMax <= 0 || c.VolumeMax <= 0 || c.BrightMax <= 0 {
		return fmt.Errorf("%w: control maximums must be positive", ErrInvalidConfig)
	}
	return nil
}
