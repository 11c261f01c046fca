// Package app runs the gesture volume control loop.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/ayusman/handvolume/internal/audio"
	"github.com/ayusman/handvolume/internal/capture"
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/ayusman/handvolume/internal/logger"
	"github.com/ayusman/handvolume/internal/render"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultFrameDelay is the pause between the end of one iteration and the
// start of the next.
const DefaultFrameDelay = 10 * time.Millisecond

var (
	// ErrCameraUnavailable wraps camera open and read failures.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrSessionActive is returned by Run when a session is already running.
	ErrSessionActive = errors.New("control session already active")
)

// Config holds the collaborators and tuning of a Controller.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Sink     audio.Sink
	Display  render.Display
	Gesture  gesture.Config

	// FrameDelay defaults to DefaultFrameDelay.
	FrameDelay time.Duration

	// OnRunning, if set, is called with true when a session starts and
	// false when it ends, before Stop returns. It must not call Stop.
	OnRunning func(running bool)
}

// State is a snapshot of the controller for UIs.
type State struct {
	Running   bool
	SessionID string
	Status    string
	Muted     bool
	Cooldown  int
	Debounce  string
	Frames    int
}

// Controller owns at most one control session at a time.
type Controller struct {
	config      Config
	interpreter *gesture.Interpreter
	volumeRange gesture.VolumeRange

	mu      sync.RWMutex
	session *session
	state   State
	err     error
}

// New validates cfg and queries the sink's volume range once.
func New(cfg Config) (*Controller, error) {
	if cfg.Camera == nil || cfg.Detector == nil || cfg.Sink == nil {
		return nil, errors.New("app: camera, detector and sink are required")
	}
	if cfg.Display == nil {
		cfg.Display = render.Nop{}
	}
	if cfg.FrameDelay <= 0 {
		cfg.FrameDelay = DefaultFrameDelay
	}
	if cfg.Gesture == (gesture.Config{}) {
		cfg.Gesture = gesture.DefaultConfig()
	}

	rng, err := cfg.Sink.Range()
	if err != nil {
		return nil, errors.Wrap(err, "query volume range")
	}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		config:      cfg,
		interpreter: gesture.NewInterpreter(cfg.Gesture),
		volumeRange: rng,
		state:       State{Status: StatusIdle, Debounce: gesture.StateIdle},
	}, nil
}

// Start opens the camera and runs the control loop on a new goroutine.
// Starting a running controller is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	s, err := c.begin(ctx)
	if err != nil || s == nil {
		return err
	}
	go c.loop(s)
	return nil
}

// Run is like Start but runs the loop on the calling goroutine until ctx is
// cancelled, Stop is called, or the session fails. It returns the session's
// fatal error, if any.
func (c *Controller) Run(ctx context.Context) error {
	s, err := c.begin(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		return ErrSessionActive
	}
	c.loop(s)
	return s.err
}

// Stop cancels the active session and waits for it to release the camera.
// It must not be called from the loop goroutine, e.g. from a Display.
func (c *Controller) Stop() {
	c.mu.RLock()
	s := c.session
	c.mu.RUnlock()

	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Running reports whether a session is active.
func (c *Controller) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// Status returns the last published status line.
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Status
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the error that ended the last session, if any.
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// VolumeRange returns the range queried from the sink.
func (c *Controller) VolumeRange() gesture.VolumeRange {
	return c.volumeRange
}

// begin creates the session. It returns nil, nil if one is already active.
func (c *Controller) begin(ctx context.Context) (*session, error) {
	c.mu.Lock()

	if c.session != nil {
		c.mu.Unlock()
		return nil, nil
	}

	if err := c.config.Camera.Open(); err != nil {
		c.mu.Unlock()
		return nil, errors.Wrapf(ErrCameraUnavailable, "open: %v", err)
	}

	id := uuid.New()
	log := logger.FromContext(ctx).WithField("session", id.String())
	ctx, cancel := context.WithCancel(logger.WithLogEntry(ctx, log))

	s := &session{
		id:          id,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log,
		camera:      c.config.Camera,
		detector:    c.config.Detector,
		sink:        c.config.Sink,
		display:     c.config.Display,
		interpreter: c.interpreter,
		volumeRange: c.volumeRange,
		debouncer:   gesture.NewDebouncer(c.config.Sink, c.config.Gesture.CooldownFrames),
		volumeLine:  StatusWaiting,
	}

	c.session = s
	c.err = nil
	c.state = State{
		Running:   true,
		SessionID: id.String(),
		Status:    StatusWaiting,
		Debounce:  gesture.StateIdle,
	}
	c.mu.Unlock()

	log.WithField("range", c.volumeRange).Info("Control session started")
	if c.config.OnRunning != nil {
		c.config.OnRunning(true)
	}
	return s, nil
}

// loop re-arms a timer after each iteration, so iterations never overlap.
func (c *Controller) loop(s *session) {
	defer c.finish(s)
	defer func() {
		if r := recover(); r != nil {
			s.err = errors.Errorf("control loop panic: %v", r)
		}
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.step(); err != nil {
			s.err = err
			return
		}
		c.publish(s)

		timer.Reset(c.config.FrameDelay)
	}
}

func (c *Controller) publish(s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Status = s.status
	c.state.Muted = s.debouncer.Muted()
	c.state.Cooldown = s.debouncer.Cooldown()
	c.state.Debounce = s.debouncer.State()
	c.state.Frames = s.frames
}

// finish releases the session's resources on every exit path.
func (c *Controller) finish(s *session) {
	s.cancel()

	if err := s.camera.Close(); err != nil {
		s.log.WithError(err).Warn("Error closing camera")
	}
	if err := s.detector.Close(); err != nil {
		s.log.WithError(err).Warn("Error closing detector")
	}

	status := StatusStopped
	if s.err != nil {
		status = StatusDeviceError
		if !errors.Is(s.err, audio.ErrDeviceControl) {
			status = StatusFailed
		}
		s.log.WithError(s.err).Error("Control session aborted")
	} else {
		s.log.WithField("frames", s.frames).Info("Control session stopped")
	}

	if err := s.display.Show(nil, nil, status); err != nil {
		s.log.WithError(err).Warn("Display failed")
	}

	c.mu.Lock()
	c.session = nil
	c.err = s.err
	c.state.Running = false
	c.state.Status = status
	c.mu.Unlock()

	if c.config.OnRunning != nil {
		c.config.OnRunning(false)
	}

	close(s.done)
}
