// Package render draws annotated camera frames and the status line.
package render

import (
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Display receives one annotated frame and status line per loop iteration.
type Display interface {
	// Show presents frame with hands overlaid and the status text. frame is
	// nil when no image is available, e.g. after a camera error or on stop.
	// Implementations must not retain frame after returning.
	Show(frame *gocv.Mat, hands []detector.Hand, status string) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Show(*gocv.Mat, []detector.Hand, string) error { return nil }
func (Nop) Close() error                                  { return nil }

// StatusFunc adapts a status callback, such as a tray label, to Display.
type StatusFunc func(status string)

func (f StatusFunc) Show(_ *gocv.Mat, _ []detector.Hand, status string) error {
	f(status)
	return nil
}

func (f StatusFunc) Close() error { return nil }

// LogStatus logs each status change to log at Info level.
func LogStatus(log *logrus.Entry) StatusFunc {
	var last string
	return func(status string) {
		if status == last {
			return
		}
		last = status
		log.WithField("status", status).Info("Status changed")
	}
}

// Multi shows every frame on each display in order.
type Multi []Display

// Show calls every display and returns the first error.
func (m Multi) Show(frame *gocv.Mat, hands []detector.Hand, status string) error {
	var first error
	for _, d := range m {
		if err := d.Show(frame, hands, status); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every display and returns the first error.
func (m Multi) Close() error {
	var first error
	for _, d := range m {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
