package render

import (
	"sync"

	"github.com/ayusman/handvolume/internal/detector"
	"gocv.io/x/gocv"
)

// MockDisplay records what it is shown.
type MockDisplay struct {
	mu       sync.Mutex
	statuses []string
	frames   int
	blanks   int
	hands    int
	closed   bool
}

func NewMockDisplay() *MockDisplay {
	return &MockDisplay{}
}

func (m *MockDisplay) Show(frame *gocv.Mat, hands []detector.Hand, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	if frame == nil {
		m.blanks++
	} else {
		m.frames++
	}
	m.hands += len(hands)
	return nil
}

func (m *MockDisplay) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Statuses returns a copy of every status shown.
func (m *MockDisplay) Statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.statuses...)
}

// Last returns the most recent status, or "" if none.
func (m *MockDisplay) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.statuses) == 0 {
		return ""
	}
	return m.statuses[len(m.statuses)-1]
}

// Frames returns how many non-nil frames were shown.
func (m *MockDisplay) Frames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

// Blanks returns how many times Show was called without a frame.
func (m *MockDisplay) Blanks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blanks
}

// Hands returns the total number of hands shown.
func (m *MockDisplay) Hands() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hands
}
