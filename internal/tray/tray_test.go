package tray

import "testing"

func TestTray_Callbacks(t *testing.T) {
	tr := New("Click Start to Begin")

	var started, stopped int
	tr.OnStart(func() { started++ })
	tr.OnStop(func() { stopped++ })

	tr.handleStart()
	tr.handleStart()
	tr.handleStop()

	if started != 2 || stopped != 1 {
		t.Errorf("started = %d, stopped = %d, want 2, 1", started, stopped)
	}
}

func TestTray_NilCallbacks(t *testing.T) {
	tr := New("")
	tr.handleStart()
	tr.handleStop()
}

func TestTray_StateBeforeReady(t *testing.T) {
	tr := New("Click Start to Begin")

	if got := tr.Status(); got != "Click Start to Begin" {
		t.Errorf("Status() = %q", got)
	}

	tr.SetStatus("Volume: 40 %")
	tr.SetRunning(true)

	if got := tr.Status(); got != "Volume: 40 %" {
		t.Errorf("Status() = %q, want %q", got, "Volume: 40 %")
	}
	if !tr.IsRunning() {
		t.Error("IsRunning() = false, want true")
	}

	tr.SetRunning(false)
	if tr.IsRunning() {
		t.Error("IsRunning() = true, want false")
	}
}
