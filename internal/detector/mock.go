package detector

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned one per Detect call; once the queue is
// drained the hands set with SetHands are returned on every call.
type MockDetector struct {
	mu     sync.Mutex
	hands  []Hand
	queue  [][]Hand
	err    error
	calls  int
	closed int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-frame results consumed in order by Detect.
func (m *MockDetector) Queue(frames ...[]Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued result, the pre-configured hands, or the error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close records the call; the mock holds no resources.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// PinchHand returns a right hand whose thumb tip sits at origin, with the
// index tip pinch pixels to the right of it and the pinky tip span pixels
// below it. The remaining landmarks form a plausible open palm.
func PinchHand(origin image.Point, pinch, span int) Hand {
	ox, oy := origin.X, origin.Y

	pts := [NumLandmarks]image.Point{
		Wrist:     {ox - 40, oy + 160},
		ThumbCMC:  {ox - 30, oy + 120},
		ThumbMCP:  {ox - 20, oy + 80},
		ThumbIP:   {ox - 10, oy + 40},
		ThumbTip:  {ox, oy},
		IndexMCP:  {ox - 60, oy + 60},
		IndexPIP:  {ox - 60, oy + 20},
		IndexDIP:  {ox - 60, oy - 10},
		MiddleMCP: {ox - 80, oy + 60},
		MiddlePIP: {ox - 80, oy + 10},
		MiddleDIP: {ox - 80, oy - 20},
		MiddleTip: {ox - 80, oy - 50},
		RingMCP:   {ox - 100, oy + 65},
		RingPIP:   {ox - 100, oy + 20},
		RingDIP:   {ox - 100, oy - 10},
		RingTip:   {ox - 100, oy - 35},
		PinkyMCP:  {ox - 120, oy + 75},
		PinkyPIP:  {ox - 120, oy + 45},
		PinkyDIP:  {ox - 120, oy + 20},
	}
	pts[IndexTip] = image.Point{X: ox + pinch, Y: oy}
	pts[PinkyTip] = image.Point{X: ox, Y: oy + span}

	hand := Hand{
		Landmarks:  make([]Landmark, NumLandmarks),
		Handedness: "Right",
		Score:      0.95,
	}
	for i, p := range pts {
		hand.Landmarks[i] = Landmark{Index: i, X: p.X, Y: p.Y}
	}
	return hand
}

// PartialHand returns the first n landmarks of a PinchHand, as a detector
// reports a partially occluded hand.
func PartialHand(n int) Hand {
	h := PinchHand(image.Point{X: 320, Y: 240}, 100, 200)
	if n < len(h.Landmarks) {
		h.Landmarks = h.Landmarks[:n]
	}
	return h
}
