package app

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/handvolume/internal/audio"
	"github.com/ayusman/handvolume/internal/capture"
	"github.com/ayusman/handvolume/internal/detector"
	"github.com/ayusman/handvolume/internal/gesture"
	"github.com/ayusman/handvolume/internal/render"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var testRange = gesture.VolumeRange{Min: -65, Max: 0}

var origin = image.Point{X: 200, Y: 150}

func volumeHand(pinch int) []detector.Hand {
	return []detector.Hand{detector.PinchHand(origin, pinch, 200)}
}

func muteHand() []detector.Hand {
	return []detector.Hand{detector.PinchHand(origin, 175, 30)}
}

type fixture struct {
	camera   *capture.MockCamera
	detector *detector.MockDetector
	sink     *audio.MockSink
	display  *render.MockDisplay
	ctrl     *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	f := &fixture{
		camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		detector: detector.NewMockDetector(),
		sink:     audio.NewMockSink(testRange),
		display:  render.NewMockDisplay(),
	}

	ctrl, err := New(Config{
		Camera:     f.camera,
		Detector:   f.detector,
		Sink:       f.sink,
		Display:    f.display,
		FrameDelay: time.Millisecond,
	})
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

// manual begins a session without starting the loop so tests can step it
// frame by frame.
func (f *fixture) manual(t *testing.T) *session {
	t.Helper()
	s, err := f.ctrl.begin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	t.Cleanup(func() {
		select {
		case <-s.done:
		default:
			f.ctrl.finish(s)
		}
	})
	return s
}

func steps(t *testing.T, s *session, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.step())
	}
}

func TestNew(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	det := detector.NewMockDetector()

	t.Run("missing collaborators", func(t *testing.T) {
		_, err := New(Config{Camera: camera})
		assert.Error(t, err)
	})

	t.Run("range query fails", func(t *testing.T) {
		sink := audio.NewMockSink(testRange)
		sink.FailRange(errors.New("no device"))
		_, err := New(Config{Camera: camera, Detector: det, Sink: sink})
		assert.ErrorContains(t, err, "no device")
	})

	t.Run("invalid range", func(t *testing.T) {
		sink := audio.NewMockSink(gesture.VolumeRange{Min: 0, Max: -10})
		_, err := New(Config{Camera: camera, Detector: det, Sink: sink})
		assert.True(t, errors.Is(err, gesture.ErrInvalidRange))
	})

	t.Run("defaults", func(t *testing.T) {
		ctrl, err := New(Config{Camera: camera, Detector: det, Sink: audio.NewMockSink(testRange)})
		require.NoError(t, err)
		assert.Equal(t, DefaultFrameDelay, ctrl.config.FrameDelay)
		assert.Equal(t, gesture.DefaultConfig(), ctrl.config.Gesture)
		assert.Equal(t, testRange, ctrl.VolumeRange())
		assert.Equal(t, StatusIdle, ctrl.Status())
		assert.False(t, ctrl.Running())
	})
}

func TestStep_SetsVolume(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands(volumeHand(175))
	s := f.manual(t)

	steps(t, s, 1)

	assert.Equal(t, []float64{-32.5}, f.sink.Levels())
	assert.Equal(t, "Volume: 50 %", f.display.Last())
	assert.Equal(t, 1, f.display.Frames())
	assert.Equal(t, 1, f.display.Hands())
}

func TestStep_MutedSuppressesVolume(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(volumeHand(175), muteHand())
	f.detector.SetHands(volumeHand(300))
	s := f.manual(t)

	steps(t, s, 2)
	assert.Equal(t, []bool{true}, f.sink.Mutes())
	assert.Equal(t, StatusMuted, f.display.Last())
	levels := f.sink.Levels()

	steps(t, s, 10)
	assert.Equal(t, levels, f.sink.Levels(), "no level changes while muted")
	assert.Equal(t, StatusMuted, f.display.Last())
}

func TestStep_SingleFrameMuteToggle(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(muteHand())
	f.detector.SetHands(volumeHand(175))
	s := f.manual(t)

	steps(t, s, 40)
	assert.Equal(t, []bool{true}, f.sink.Mutes())
	assert.True(t, s.debouncer.Muted())
	assert.Equal(t, gesture.StateIdle, s.debouncer.State())

	f.detector.Queue(muteHand())
	steps(t, s, 1)
	assert.Equal(t, []bool{true, false}, f.sink.Mutes())
	assert.Equal(t, "Volume: 50 %", f.display.Last())
}

func TestStep_HeldMuteFlipsAfterCooldown(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands(muteHand())
	s := f.manual(t)

	var flips []int
	for frame := 1; frame <= 100; frame++ {
		before := len(f.sink.Mutes())
		require.NoError(t, s.step())
		if len(f.sink.Mutes()) > before {
			flips = append(flips, frame)
		}
	}

	assert.Equal(t, []int{1, 31, 61, 91}, flips)
	assert.Equal(t, []bool{true, false, true, false}, f.sink.Mutes())
}

func TestStep_CameraFailureMidSession(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(muteHand())
	f.detector.SetHands(volumeHand(175))
	f.camera.FailOn(3)
	s := f.manual(t)

	steps(t, s, 2)
	require.Equal(t, 28, s.debouncer.Cooldown())

	steps(t, s, 1)
	assert.Equal(t, StatusCameraError, f.display.Last())
	assert.Equal(t, 28, s.debouncer.Cooldown(), "debouncer skipped on camera error")
	assert.Equal(t, 2, f.detector.Calls())
	assert.Equal(t, 1, f.display.Blanks())

	steps(t, s, 1)
	assert.Equal(t, 27, s.debouncer.Cooldown())
	assert.Equal(t, StatusMuted, f.display.Last())
	assert.True(t, s.ctx.Err() == nil, "session keeps running")
}

func TestStep_CameraFailureKeepsVolumeLine(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(volumeHand(175))
	f.camera.FailOn(2)
	s := f.manual(t)

	steps(t, s, 3)
	assert.Equal(t, []string{"Volume: 50 %", StatusCameraError, "Volume: 50 %"}, f.display.Statuses())
}

func TestStep_NoHand(t *testing.T) {
	f := newFixture(t)
	s := f.manual(t)

	steps(t, s, 3)
	assert.Empty(t, f.sink.Levels())
	assert.Empty(t, f.sink.Mutes())
	assert.Equal(t, StatusWaiting, f.display.Last())

	f.detector.Queue(volumeHand(300))
	steps(t, s, 2)
	assert.Equal(t, []float64{0}, f.sink.Levels())
	assert.Equal(t, "Volume: 100 %", f.display.Last(), "last volume line is kept")
}

func TestStep_PartialHandIgnored(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands([]detector.Hand{detector.PartialHand(10)})
	s := f.manual(t)

	steps(t, s, 2)
	assert.Empty(t, f.sink.Levels())
	assert.Equal(t, StatusWaiting, f.display.Last())
}

func TestStep_FirstHandWins(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands([]detector.Hand{
		detector.PinchHand(origin, 50, 200),
		detector.PinchHand(origin, 300, 200),
	})
	s := f.manual(t)

	steps(t, s, 1)
	assert.Equal(t, []float64{-65}, f.sink.Levels())
	assert.Equal(t, 2, f.display.Hands(), "every hand is drawn")
}

func TestStep_DetectorErrorIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.detector.SetError(errors.New("helper crashed"))
	s := f.manual(t)

	steps(t, s, 2)
	assert.Equal(t, StatusWaiting, f.display.Last())
	assert.Equal(t, 2, f.display.Frames())
}

func TestStep_DeviceFailure(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands(volumeHand(175))
	f.sink.FailLevel(errors.New("pactl: connection refused"))
	s := f.manual(t)

	err := s.step()
	assert.True(t, errors.Is(err, audio.ErrDeviceControl))
}

func TestRun_DeviceFailureEndsSession(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(volumeHand(175), volumeHand(175))
	f.detector.SetHands(muteHand())
	f.sink.FailMute(errors.New("osascript: not authorized"))

	err := f.ctrl.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, audio.ErrDeviceControl))
	assert.Equal(t, 1, f.camera.Closes(), "camera released")
	assert.Equal(t, StatusDeviceError, f.ctrl.Status())
	assert.Equal(t, StatusDeviceError, f.display.Last())
	assert.False(t, f.ctrl.Running())
	assert.Equal(t, err, f.ctrl.Err())
}

func TestRun_ContextCancel(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands(volumeHand(175))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.ctrl.Run(ctx) }()

	require.Eventually(t, func() bool { return f.ctrl.State().Frames >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, f.camera.Closes())
	assert.Equal(t, StatusStopped, f.ctrl.Status())
}

type panicDetector struct{ detector.MockDetector }

func (*panicDetector) Detect(*gocv.Mat) ([]detector.Hand, error) { panic("boom") }

func TestRun_PanicReleasesCamera(t *testing.T) {
	f := newFixture(t)
	f.ctrl.config.Detector = &panicDetector{}

	err := f.ctrl.Run(context.Background())

	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, f.camera.Closes())
	assert.Equal(t, StatusFailed, f.ctrl.Status())
}

func TestStartStop(t *testing.T) {
	f := newFixture(t)
	f.detector.SetHands(volumeHand(175))

	var mu sync.Mutex
	var running []bool
	f.ctrl.config.OnRunning = func(r bool) {
		mu.Lock()
		defer mu.Unlock()
		running = append(running, r)
	}

	ctx := context.Background()
	require.NoError(t, f.ctrl.Start(ctx))
	require.NoError(t, f.ctrl.Start(ctx), "second Start is a no-op")
	assert.Equal(t, 1, f.camera.Opens())
	assert.True(t, f.ctrl.Running())
	assert.Equal(t, ErrSessionActive, f.ctrl.Run(ctx))

	require.Eventually(t, func() bool { return f.ctrl.Status() == "Volume: 50 %" }, time.Second, time.Millisecond)
	assert.NotEmpty(t, f.ctrl.State().SessionID)

	f.ctrl.Stop()
	assert.False(t, f.ctrl.Running())
	assert.Equal(t, 1, f.camera.Closes())
	assert.Equal(t, StatusStopped, f.ctrl.Status())
	assert.Equal(t, StatusStopped, f.display.Last())

	mu.Lock()
	assert.Equal(t, []bool{true, false}, running)
	mu.Unlock()

	f.ctrl.Stop()
	assert.Equal(t, 1, f.camera.Closes(), "Stop without a session is a no-op")
}

func TestRestartResetsDebounce(t *testing.T) {
	f := newFixture(t)
	f.detector.Queue(muteHand())
	f.detector.SetHands(volumeHand(175))

	first := f.manual(t)
	steps(t, first, 2)
	require.True(t, first.debouncer.Muted())
	f.ctrl.finish(first)

	second := f.manual(t)
	assert.NotEqual(t, first.id, second.id)
	assert.False(t, second.debouncer.Muted())
	assert.Equal(t, 0, second.debouncer.Cooldown())

	steps(t, second, 1)
	assert.Equal(t, "Volume: 50 %", f.display.Last())
	assert.Equal(t, 2, f.camera.Opens())
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, StatusMuted, statusText(true, "Volume: 10 %"))
	assert.Equal(t, "Volume: 10 %", statusText(false, "Volume: 10 %"))
	assert.Equal(t, "Volume: 33 %", volumeStatus(33.4))
	assert.Equal(t, "Volume: 34 %", volumeStatus(33.5))
}
