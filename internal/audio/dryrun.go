package audio

import (
	"sync"

	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/sirupsen/logrus"
)

// DefaultDryRunRange mirrors the decibel range a typical Windows speaker
// endpoint reports.
var DefaultDryRunRange = gesture.VolumeRange{Min: -65.25, Max: 0}

// DryRunSink logs volume changes instead of applying them.
type DryRunSink struct {
	rng gesture.VolumeRange
	log *logrus.Entry

	mu    sync.Mutex
	level float64
	muted bool
}

func NewDryRunSink(rng gesture.VolumeRange, log *logrus.Entry) *DryRunSink {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &DryRunSink{
		rng:   rng,
		log:   log.WithField("sink", BackendDryRun),
		level: rng.Max,
	}
}

func (s *DryRunSink) Range() (gesture.VolumeRange, error) {
	return s.rng, nil
}

func (s *DryRunSink) SetLevel(level float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level != s.level {
		s.log.WithField("level", level).Debug("Set volume level")
	}
	s.level = level
	return nil
}

func (s *DryRunSink) SetMute(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.WithField("muted", muted).Info("Set mute")
	s.muted = muted
	return nil
}

// Level returns the last level set.
func (s *DryRunSink) Level() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Muted returns the last mute flag set.
func (s *DryRunSink) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}
