// Package gesture turns hand landmarks into volume and mute commands.
package gesture

// ClampedLerp maps x from [x0,x1] onto [y0,y1] linearly. Inputs outside the
// source range are pinned to the nearest target bound. A degenerate source
// range maps everything to y0.
func ClampedLerp(x, x0, x1, y0, y1 float64) float64 {
	if x0 == x1 {
		return y0
	}

	t := (x - x0) / (x1 - x0)
	switch {
	case t <= 0:
		return y0
	case t >= 1:
		return y1
	}

	return y0 + t*(y1-y0)
}
