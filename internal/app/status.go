package app

import (
	"fmt"
	"math"
)

// Status lines shown to the user.
const (
	StatusIdle        = "Click Start to Begin"
	StatusWaiting     = "Waiting for hand"
	StatusStopped     = "Stopped"
	StatusMuted       = "Muted"
	StatusCameraError = "Camera Error"
	StatusDeviceError = "Audio Device Error"
	StatusFailed      = "Error"
)

func volumeStatus(percent float64) string {
	return fmt.Sprintf("Volume: %d %%", int(math.Round(percent)))
}

// statusText picks the line for a frame that produced an image.
func statusText(muted bool, volumeLine string) string {
	if muted {
		return StatusMuted
	}
	return volumeLine
}
