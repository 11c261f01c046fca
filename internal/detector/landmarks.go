// Package detector provides hand detection interfaces and types for gesture control.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the landmark pairs joined by bones, in MediaPipe's
// HAND_CONNECTIONS order.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Landmark is one labeled hand point in frame pixel coordinates.
type Landmark struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Point returns the landmark position as an image.Point.
func (l Landmark) Point() image.Point {
	return image.Point{X: l.X, Y: l.Y}
}

// Hand is one detected hand. A full detection carries NumLandmarks points
// ordered by index; a partial one may carry fewer.
type Hand struct {
	Landmarks  []Landmark `json:"landmarks"`
	Handedness string     `json:"handedness"` // "Left" or "Right"
	Score      float64    `json:"score"`
}

// Complete reports whether the hand has every landmark.
func (h *Hand) Complete() bool {
	return h != nil && len(h.Landmarks) >= NumLandmarks
}

// At returns the landmark at position i.
func (h *Hand) At(i int) (Landmark, bool) {
	if h == nil || i < 0 || i >= len(h.Landmarks) {
		return Landmark{}, false
	}
	return h.Landmarks[i], true
}

// Distance returns the Euclidean pixel distance between two landmarks.
func Distance(a, b Landmark) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
