package audio

import (
	"sync"

	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/pkg/errors"
)

// MockSink records every call for tests and can be told to fail.
type MockSink struct {
	mu       sync.Mutex
	rng      gesture.VolumeRange
	rangeErr error
	levelErr error
	muteErr  error
	levels   []float64
	mutes    []bool
}

// NewMockSink creates a MockSink reporting rng.
func NewMockSink(rng gesture.VolumeRange) *MockSink {
	return &MockSink{rng: rng}
}

func (m *MockSink) Range() (gesture.VolumeRange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rangeErr != nil {
		return gesture.VolumeRange{}, m.rangeErr
	}
	return m.rng, nil
}

func (m *MockSink) SetLevel(level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.levelErr != nil {
		return errors.Wrap(ErrDeviceControl, m.levelErr.Error())
	}
	m.levels = append(m.levels, level)
	return nil
}

func (m *MockSink) SetMute(muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.muteErr != nil {
		return errors.Wrap(ErrDeviceControl, m.muteErr.Error())
	}
	m.mutes = append(m.mutes, muted)
	return nil
}

// FailRange makes Range return err.
func (m *MockSink) FailRange(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rangeErr = err
}

// FailLevel makes SetLevel fail with err wrapped in ErrDeviceControl.
func (m *MockSink) FailLevel(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levelErr = err
}

// FailMute makes SetMute fail with err wrapped in ErrDeviceControl.
func (m *MockSink) FailMute(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muteErr = err
}

// Levels returns a copy of the levels applied so far.
func (m *MockSink) Levels() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.levels...)
}

// Mutes returns a copy of the mute flags applied so far.
func (m *MockSink) Mutes() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.mutes...)
}
