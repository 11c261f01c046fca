package app

import (
	"context"

	"github.com/ayusman/handvolume/internal/audio"
	"github.com/ayusman/handvolume/internal/capture"
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/ayusman/handvolume/internal/render"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// session is one Start..Stop run. Everything but done and cancel is owned
// by the loop goroutine.
type session struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *logrus.Entry

	camera      capture.Camera
	detector    detector.Detector
	sink        audio.Sink
	display     render.Display
	interpreter *gesture.Interpreter
	volumeRange gesture.VolumeRange
	debouncer   *gesture.Debouncer

	frames     int
	status     string
	volumeLine string
	err        error
}

// step runs one iteration. A non-nil error ends the session.
func (s *session) step() error {
	s.frames++
	log := s.log.WithField("frame", s.frames)

	frame, err := s.camera.ReadFrame()
	if err != nil {
		log.WithError(errors.Wrap(ErrCameraUnavailable, err.Error())).Warn("Camera read failed")
		s.status = StatusCameraError
		s.show(log, nil, nil)
		return nil
	}
	defer frame.Close()

	hands, err := s.detector.Detect(frame)
	if err != nil {
		log.WithError(err).Warn("Hand detection failed")
		hands = nil
	}

	var hand *detector.Hand
	if len(hands) > 0 {
		hand = &hands[0]
	}
	reading := s.interpreter.Interpret(hand, s.volumeRange)

	if reading.HasVolume && !s.debouncer.Muted() {
		if err := s.sink.SetLevel(reading.Level); err != nil {
			return errors.Wrap(err, "set volume")
		}
	}

	flipped, err := s.debouncer.Step(reading.MuteRequested)
	if err != nil {
		return errors.Wrap(err, "set mute")
	}
	if flipped {
		log.WithField("muted", s.debouncer.Muted()).Info("Mute toggled")
	}

	if reading.HasVolume {
		s.volumeLine = volumeStatus(reading.Percent)
		log.WithFields(logrus.Fields{
			"pinch": reading.Pinch,
			"span":  reading.Span,
			"level": reading.Level,
		}).Trace("Hand measured")
	}
	s.status = statusText(s.debouncer.Muted(), s.volumeLine)
	s.show(log, frame, hands)
	return nil
}

func (s *session) show(log *logrus.Entry, frame *gocv.Mat, hands []detector.Hand) {
	if err := s.display.Show(frame, hands, s.status); err != nil {
		log.WithError(err).Warn("Display failed")
	}
}
