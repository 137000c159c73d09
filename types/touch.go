package types

import "math"

// Point is a position in screen pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Length is the euclidean norm of p.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// ScreenSize represents width and height dimensions in pixels.
type ScreenSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TouchAction represents a single action in a gesture sequence, using the
// pointer action vocabulary (pointerDown/pointerMove/pointerUp).
type TouchAction struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Duration int     `json:"duration,omitempty"`
}

// Position returns the action's coordinates.
func (a TouchAction) Position() Point {
	return Point{X: a.X, Y: a.Y}
}
