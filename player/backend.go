// Package player turns recognized touch gestures into playback commands.
package player

// Backend is the playback engine and device state a Controller drives.
// Positions and durations are whole seconds.
type Backend interface {
	TimePos() (int, error)
	Duration() (int, error)
	// Seek jumps to an absolute position, keyframe precision is enough
	Seek(pos int) error
	SubSeek(offset int) error

	Volume() (int, error)
	MaxVolume() (int, error)
	SetVolume(volume int) error

	// Brightness is in [0, 1]
	Brightness() (float64, error)
	SetBrightness(brightness float64) error
}
