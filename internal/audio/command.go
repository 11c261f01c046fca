package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single device command.
const DefaultTimeout = 2 * time.Second

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Backend describes how to drive a volume control command line tool.
// Levels are whole percentages within Range.
type Backend struct {
	Name      string
	Binary    string
	Range     gesture.VolumeRange
	LevelArgs func(percent int) []string
	MuteArgs  func(muted bool) []string
}

// Pactl drives the default PulseAudio/PipeWire sink.
var Pactl = Backend{
	Name:   BackendPactl,
	Binary: "pactl",
	Range:  gesture.VolumeRange{Min: 0, Max: 100},
	LevelArgs: func(percent int) []string {
		return []string{"set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", percent)}
	},
	MuteArgs: func(muted bool) []string {
		flag := "0"
		if muted {
			flag = "1"
		}
		return []string{"set-sink-mute", "@DEFAULT_SINK@", flag}
	},
}

// OSAScript drives the macOS output volume through AppleScript.
var OSAScript = Backend{
	Name:   BackendOSAScript,
	Binary: "osascript",
	Range:  gesture.VolumeRange{Min: 0, Max: 100},
	LevelArgs: func(percent int) []string {
		return []string{"-e", fmt.Sprintf("set volume output volume %d", percent)}
	},
	MuteArgs: func(muted bool) []string {
		return []string{"-e", fmt.Sprintf("set volume output muted %t", muted)}
	},
}

// CommandSink is a Sink backed by an external command. Level updates that
// round to the last applied percentage are skipped, so a steady hand does
// not spawn a process per frame.
type CommandSink struct {
	backend Backend
	timeout time.Duration
	run     Runner

	mu        sync.Mutex
	lastLevel int
	hasLevel  bool
}

// CommandOption configures a CommandSink.
type CommandOption func(*CommandSink)

// WithRunner replaces the command runner.
func WithRunner(r Runner) CommandOption {
	return func(s *CommandSink) {
		s.run = r
	}
}

// NewCommandSink creates a sink for backend. A non-positive timeout uses DefaultTimeout.
func NewCommandSink(backend Backend, timeout time.Duration, opts ...CommandOption) *CommandSink {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &CommandSink{
		backend: backend,
		timeout: timeout,
		run:     ExecRunner,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Range returns the backend's fixed percentage range.
func (s *CommandSink) Range() (gesture.VolumeRange, error) {
	return s.backend.Range, nil
}

// SetLevel applies level, rounded to a whole percentage.
func (s *CommandSink) SetLevel(level float64) error {
	rng := s.backend.Range
	level = math.Max(rng.Min, math.Min(rng.Max, level))
	percent := int(math.Round(level))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasLevel && percent == s.lastLevel {
		return nil
	}

	if err := s.exec(s.backend.LevelArgs(percent)); err != nil {
		return err
	}

	s.lastLevel = percent
	s.hasLevel = true
	return nil
}

// SetMute applies the mute flag.
func (s *CommandSink) SetMute(muted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exec(s.backend.MuteArgs(muted))
}

func (s *CommandSink) exec(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	output, err := s.run(ctx, s.backend.Binary, args...)

	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrapf(ErrDeviceControl, "%s timed out after %s", s.backend.Binary, s.timeout)
	}

	if err != nil {
		out := strings.TrimSpace(string(output))
		if out != "" {
			return errors.Wrapf(ErrDeviceControl, "%s %s: %v: %s", s.backend.Binary, strings.Join(args, " "), err, out)
		}
		return errors.Wrapf(ErrDeviceControl, "%s %s: %v", s.backend.Binary, strings.Join(args, " "), err)
	}

	return nil
}
