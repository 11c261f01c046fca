package gesture

import (
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

// Debounce states.
const (
	StateIdle    = "idle"
	StateCooling = "cooling"
)

const (
	eventTrigger = "trigger"
	eventExpire  = "expire"
)

// MuteSetter applies a mute flag to an output device.
type MuteSetter interface {
	SetMute(muted bool) error
}

// Debouncer turns per-frame mute requests into edge-triggered mute flips
// with a refractory window of cooldownFrames frames. It is not safe for
// concurrent use; one control loop owns it.
type Debouncer struct {
	sink           MuteSetter
	cooldownFrames int
	muted          bool
	cooldown       int
	fsm            *fsm.FSM
}

// NewDebouncer creates an unmuted, idle Debouncer that applies flips to sink.
func NewDebouncer(sink MuteSetter, cooldownFrames int) *Debouncer {
	if cooldownFrames < 0 {
		cooldownFrames = 0
	}
	return &Debouncer{
		sink:           sink,
		cooldownFrames: cooldownFrames,
		fsm:            newDebounceFSM(),
	}
}

func newDebounceFSM() *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventTrigger, Src: []string{StateIdle}, Dst: StateCooling},
			{Name: eventExpire, Src: []string{StateCooling}, Dst: StateIdle},
		},
		fsm.Callbacks{},
	)
}

// Step advances the machine by one frame and reports whether the mute flag
// flipped on it. The flip frame itself counts towards the cooldown, so a
// held request flips every cooldownFrames frames. If the sink rejects the
// new flag the flip is not committed and the sink's error is returned.
func (d *Debouncer) Step(requested bool) (bool, error) {
	flipped := false

	if d.cooldown == 0 && requested {
		next := !d.muted
		if d.sink != nil {
			if err := d.sink.SetMute(next); err != nil {
				return false, err
			}
		}
		d.muted = next
		d.cooldown = d.cooldownFrames
		flipped = true
		if d.cooldown > 0 {
			if err := d.transition(eventTrigger); err != nil {
				return true, err
			}
		}
	}

	if d.cooldown > 0 {
		d.cooldown--
		if d.cooldown == 0 {
			return flipped, d.transition(eventExpire)
		}
	}

	return flipped, nil
}

func (d *Debouncer) transition(event string) error {
	err := d.fsm.Event(event)
	if _, ok := err.(fsm.NoTransitionError); err != nil && !ok {
		return errors.Wrapf(err, "debounce %s from %s", event, d.fsm.Current())
	}
	return nil
}

// Muted reports the current mute flag.
func (d *Debouncer) Muted() bool {
	return d.muted
}

// Cooldown returns the number of frames left before another flip is allowed.
func (d *Debouncer) Cooldown() int {
	return d.cooldown
}

// State returns StateIdle or StateCooling.
func (d *Debouncer) State() string {
	return d.fsm.Current()
}

// FSM exposes the underlying state machine, e.g. for fsm.Visualize.
func (d *Debouncer) FSM() *fsm.FSM {
	return d.fsm
}
