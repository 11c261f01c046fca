// Package tray provides the system tray interface for hand volume control.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu bar front end: a status line plus Start, Stop and Quit.
type Tray struct {
	onStart func()
	onStop  func()
	onQuit  func()
	onReady func()
	running bool
	status  string
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuStart  *systray.MenuItem
	menuStop   *systray.MenuItem
}

// New creates a stopped Tray showing status.
func New(status string) *Tray {
	return &Tray{status: status}
}

// OnStart sets the callback for the Start menu item.
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnStop sets the callback for the Stop menu item.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// OnReady sets a callback run once the menu exists.
func (t *Tray) OnReady(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReady = fn
}

// Run starts the system tray application on the calling goroutine, which
// must be the main one. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.ready, t.exit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) ready() {
	systray.SetTitle("Hand Volume")
	systray.SetTooltip("Gesture volume control")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(t.status, "Current status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuStart = systray.AddMenuItem("Start", "Start gesture control")
	t.menuStop = systray.AddMenuItem("Stop", "Stop gesture control")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Hand Volume")

	t.applyRunning()
	start, stop := t.menuStart, t.menuStop
	callback := t.onReady
	t.mu.Unlock()

	go func() {
		for {
			select {
			case <-start.ClickedCh:
				t.handleStart()
			case <-stop.ClickedCh:
				t.handleStop()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()

	if callback != nil {
		callback()
	}
}

func (t *Tray) exit() {}

func (t *Tray) handleStart() {
	t.mu.RLock()
	callback := t.onStart
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleStop() {
	t.mu.RLock()
	callback := t.onStop
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the status line in the menu.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status == t.status {
		return
	}
	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
	}
}

// SetRunning enables Stop while a session runs and Start otherwise.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
	t.applyRunning()
}

// applyRunning must be called with mu held.
func (t *Tray) applyRunning() {
	if t.menuStart == nil || t.menuStop == nil {
		return
	}
	if t.running {
		t.menuStart.Disable()
		t.menuStop.Enable()
	} else {
		t.menuStart.Enable()
		t.menuStop.Disable()
	}
}

// Status returns the status line last set.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// IsRunning reports the state last set with SetRunning.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}
