package gesture

import (
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/pkg/errors"
)

// Gesture defaults, in frame pixels and frames.
const (
	DefaultPinchMin       = 50.0
	DefaultPinchMax       = 300.0
	DefaultMuteSpan       = 40.0
	DefaultCooldownFrames = 30
)

// ErrInvalidRange is returned for a volume range whose minimum is not below its maximum.
var ErrInvalidRange = errors.New("volume range minimum must be below maximum")

// VolumeRange is the device-native volume scale reported by the audio sink.
type VolumeRange struct {
	Min float64
	Max float64
}

// Validate checks that Min < Max.
func (r VolumeRange) Validate() error {
	if !(r.Min < r.Max) {
		return errors.Wrapf(ErrInvalidRange, "got [%g, %g]", r.Min, r.Max)
	}
	return nil
}

// Config holds the gesture thresholds.
type Config struct {
	// PinchMin and PinchMax bound the thumb-index distance mapped onto the
	// volume range.
	PinchMin float64
	PinchMax float64

	// MuteSpan is the thumb-pinky distance below which a mute toggle is requested.
	MuteSpan float64

	// CooldownFrames is the refractory window after a mute toggle.
	CooldownFrames int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		PinchMin:       DefaultPinchMin,
		PinchMax:       DefaultPinchMax,
		MuteSpan:       DefaultMuteSpan,
		CooldownFrames: DefaultCooldownFrames,
	}
}

// Reading is the result of interpreting one frame's hand.
type Reading struct {
	// HasVolume is false when no complete hand was seen; Level and Percent
	// are meaningless then.
	HasVolume bool
	// Level is the pinch distance mapped onto the device range.
	Level float64
	// Percent is the pinch distance mapped onto [0,100] for display.
	Percent float64

	Pinch float64
	Span  float64

	MuteRequested bool
}

// Interpreter measures the pinch and mute gestures on a hand.
type Interpreter struct {
	config Config
}

// NewInterpreter creates an Interpreter with the given thresholds.
func NewInterpreter(config Config) *Interpreter {
	return &Interpreter{config: config}
}

// Interpret measures hand against rng. A nil or partial hand yields the
// zero Reading.
func (i *Interpreter) Interpret(hand *detector.Hand, rng VolumeRange) Reading {
	if !hand.Complete() {
		return Reading{}
	}

	thumb := hand.Landmarks[detector.ThumbTip]
	pinch := detector.Distance(thumb, hand.Landmarks[detector.IndexTip])
	span := detector.Distance(thumb, hand.Landmarks[detector.PinkyTip])

	return Reading{
		HasVolume:     true,
		Level:         ClampedLerp(pinch, i.config.PinchMin, i.config.PinchMax, rng.Min, rng.Max),
		Percent:       ClampedLerp(pinch, i.config.PinchMin, i.config.PinchMax, 0, 100),
		Pinch:         pinch,
		Span:          span,
		MuteRequested: span < i.config.MuteSpan,
	}
}
