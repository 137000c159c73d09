package player

import (
	"errors"
	"sync"
)

var ErrNoPosition = errors.New("playback position unavailable")

const defaultDuration = 600

// MemoryState is the full state of a MemoryBackend.
type MemoryState struct {
	// Position is -1 when nothing is loaded
	Position   int     `json:"position"`
	Duration   int     `json:"duration"`
	Volume     int     `json:"volume"`
	MaxVolume  int     `json:"maxVolume"`
	Brightness float64 `json:"brightness"`
	SubSeeks   []int   `json:"subSeeks,omitempty"`
}

// DefaultMemoryState is a ten minute file at its start, with the volume
// range of a phone's music stream (15 steps).
func DefaultMemoryState() MemoryState {
	return MemoryState{
		Position:   0,
		Duration:   defaultDuration,
		Volume:     7,
		MaxVolume:  15,
		Brightness: defaultBrightness,
	}
}

// MemoryBackend keeps playback and device state in memory. It backs
// simulated sessions and tests.
type MemoryBackend struct {
	mu    sync.Mutex
	state MemoryState
}

func NewMemoryBackend(state MemoryState) *MemoryBackend {
	return &MemoryBackend{state: state}
}

// State returns a copy of the current state.
func (b *MemoryBackend) State() MemoryState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.state
	s.SubSeeks = append([]int(nil), b.state.SubSeeks...)
	return s
}

func (b *MemoryBackend) TimePos() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Position < 0 {
		return 0, ErrNoPosition
	}
	return b.state.Position, nil
}

func (b *MemoryBackend) Duration() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Duration, nil
}

func (b *MemoryBackend) Seek(pos int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Position = pos
	return nil
}

func (b *MemoryBackend) SubSeek(offset int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.SubSeeks = append(b.state.SubSeeks, offset)
	return nil
}

func (b *MemoryBackend) Volume() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Volume, nil
}

func (b *MemoryBackend) MaxVolume() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.MaxVolume, nil
}

func (b *MemoryBackend) SetVolume(volume int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Volume = volume
	return nil
}

func (b *MemoryBackend) Brightness() (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Brightness, nil
}

func (b *MemoryBackend) SetBrightness(brightness float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Brightness = brightness
	return nil
}
