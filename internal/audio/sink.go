// Package audio applies volume levels and mute flags to the system output device.
package audio

import (
	"os/exec"
	"runtime"
	"time"

	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Backend names accepted by New.
const (
	BackendAuto      = "auto"
	BackendPactl     = "pactl"
	BackendOSAScript = "osascript"
	BackendDryRun    = "dry-run"
)

// ErrDeviceControl wraps every failure to apply a level or mute flag.
var ErrDeviceControl = errors.New("audio device control failed")

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown audio backend")

// Sink is the system audio endpoint.
type Sink interface {
	// Range reports the device's native volume scale.
	Range() (gesture.VolumeRange, error)
	// SetLevel applies a level within Range.
	SetLevel(level float64) error
	// SetMute applies the mute flag.
	SetMute(muted bool) error
}

// Options configures New.
type Options struct {
	Backend string
	// Timeout bounds each device command.
	Timeout time.Duration
	// DryRunRange is reported by the dry-run sink. The zero value selects
	// DefaultDryRunRange.
	DryRunRange gesture.VolumeRange
	Log         *logrus.Entry
}

// New returns the sink for opts.Backend. "auto" picks osascript on macOS,
// pactl when it is on PATH, and the dry-run sink otherwise.
func New(opts Options) (Sink, error) {
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	backend := opts.Backend
	if backend == "" || backend == BackendAuto {
		backend = detectBackend()
		log.WithField("backend", backend).Info("Selected audio backend")
	}

	switch backend {
	case BackendPactl:
		return NewCommandSink(Pactl, opts.Timeout), nil
	case BackendOSAScript:
		return NewCommandSink(OSAScript, opts.Timeout), nil
	case BackendDryRun:
		rng := opts.DryRunRange
		if rng == (gesture.VolumeRange{}) {
			rng = DefaultDryRunRange
		}
		if err := rng.Validate(); err != nil {
			return nil, errors.Wrap(err, "dry-run range")
		}
		return NewDryRunSink(rng, log), nil
	default:
		return nil, errors.Wrap(ErrUnknownBackend, backend)
	}
}

func detectBackend() string {
	if runtime.GOOS == "darwin" {
		return BackendOSAScript
	}
	if _, err := exec.LookPath(Pactl.Binary); err == nil {
		return BackendPactl
	}
	return BackendDryRun
}
