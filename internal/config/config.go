// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"time"

	"github.com/ayusman/handvolume/internal/audio"
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Prefix is prepended to every environment variable name.
const Prefix = "HANDVOLUME_"

// User interface modes.
const (
	UIWindow   = "window"
	UITray     = "tray"
	UITerminal = "terminal"
)

// Config holds every tunable of the application.
type Config struct {
	CameraID    int           `env:"CAMERA"       envDefault:"0"`
	FrameWidth  int           `env:"FRAME_WIDTH"  envDefault:"640"`
	FrameHeight int           `env:"FRAME_HEIGHT" envDefault:"480"`
	FPS         int           `env:"FPS"          envDefault:"30"`
	FrameDelay  time.Duration `env:"FRAME_DELAY"  envDefault:"10ms"`

	UI            string `env:"UI"             envDefault:"window"`
	DisplayWidth  int    `env:"DISPLAY_WIDTH"  envDefault:"800"`
	DisplayHeight int    `env:"DISPLAY_HEIGHT" envDefault:"450"`
	// AnsiEvery is how often the terminal UI redraws the camera image, in frames.
	AnsiEvery int  `env:"ANSI_EVERY" envDefault:"5"`
	Autostart bool `env:"AUTOSTART"  envDefault:"true"`

	AudioBackend string        `env:"AUDIO"         envDefault:"auto"`
	AudioTimeout time.Duration `env:"AUDIO_TIMEOUT" envDefault:"2s"`
	DryRunMin    float64       `env:"DRY_RUN_MIN"   envDefault:"-65.25"`
	DryRunMax    float64       `env:"DRY_RUN_MAX"   envDefault:"0"`

	PinchMin       float64 `env:"PINCH_MIN"       envDefault:"50"`
	PinchMax       float64 `env:"PINCH_MAX"       envDefault:"300"`
	MuteSpan       float64 `env:"MUTE_SPAN"       envDefault:"40"`
	CooldownFrames int     `env:"COOLDOWN_FRAMES" envDefault:"30"`

	MaxHands              int     `env:"MAX_HANDS"               envDefault:"2"`
	MinConfidence         float64 `env:"MIN_CONFIDENCE"          envDefault:"0.5"`
	MinTrackingConfidence float64 `env:"MIN_TRACKING_CONFIDENCE" envDefault:"0.5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads envFile into the process environment, if it exists, and
// parses the result. Variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}
	return parse(env.Options{Prefix: Prefix})
}

// FromMap parses vars, given without Prefix, ignoring the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	environ := make(map[string]string, len(vars))
	for k, v := range vars {
		environ[Prefix+k] = v
	}
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that parse but cannot work.
func (c *Config) Validate() error {
	switch c.UI {
	case UIWindow, UITray, UITerminal:
	default:
		return errors.Errorf("unknown ui %q", c.UI)
	}

	switch c.AudioBackend {
	case audio.BackendAuto, audio.BackendPactl, audio.BackendOSAScript, audio.BackendDryRun:
	default:
		return errors.Wrap(audio.ErrUnknownBackend, c.AudioBackend)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	if c.FPS <= 0 {
		return errors.New("fps must be positive")
	}
	if c.FrameDelay <= 0 {
		return errors.New("frame delay must be positive")
	}
	if c.PinchMin >= c.PinchMax {
		return errors.Errorf("pinch range [%g, %g] is empty", c.PinchMin, c.PinchMax)
	}
	if c.MuteSpan <= 0 {
		return errors.New("mute span must be positive")
	}
	if c.CooldownFrames < 0 {
		return errors.New("cooldown frames must not be negative")
	}
	if c.MaxHands < 1 {
		return errors.New("max hands must be at least 1")
	}
	return errors.Wrap(c.DryRunRange().Validate(), "dry-run range")
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Gesture returns the interpreter and debounce thresholds.
func (c *Config) Gesture() gesture.Config {
	return gesture.Config{
		PinchMin:       c.PinchMin,
		PinchMax:       c.PinchMax,
		MuteSpan:       c.MuteSpan,
		CooldownFrames: c.CooldownFrames,
	}
}

// Detector returns the hand detector settings.
func (c *Config) Detector() detector.Config {
	return detector.Config{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}

// DryRunRange returns the range reported by the dry-run audio sink.
func (c *Config) DryRunRange() gesture.VolumeRange {
	return gesture.VolumeRange{Min: c.DryRunMin, Max: c.DryRunMax}
}

// Audio returns options for audio.New.
func (c *Config) Audio(log *logrus.Entry) audio.Options {
	return audio.Options{
		Backend:     c.AudioBackend,
		Timeout:     c.AudioTimeout,
		DryRunRange: c.DryRunRange(),
		Log:         log,
	}
}
