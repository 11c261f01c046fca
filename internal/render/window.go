package render

import (
	"image"

	"github.com/ayusman/handvolume/internal/detector"
	"gocv.io/x/gocv"
)

// Default window size.
const (
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 450
)

const keyEsc = 27

// WindowDisplay shows frames in a HighGUI window. HighGUI must be driven
// from the main OS thread, so Show is called from the loop started by
// app.Controller.Run on the main goroutine.
type WindowDisplay struct {
	window *gocv.Window
	size   image.Point
	canvas gocv.Mat
	onQuit func()
}

// NewWindowDisplay opens a window titled title. onQuit is called when the
// user presses q or Esc, or closes the window.
func NewWindowDisplay(title string, size image.Point, onQuit func()) *WindowDisplay {
	if size.X <= 0 || size.Y <= 0 {
		size = image.Point{X: DefaultWindowWidth, Y: DefaultWindowHeight}
	}
	return &WindowDisplay{
		window: gocv.NewWindow(title),
		size:   size,
		canvas: gocv.NewMat(),
		onQuit: onQuit,
	}
}

func (w *WindowDisplay) Show(frame *gocv.Mat, hands []detector.Hand, status string) error {
	if frame == nil || frame.Empty() {
		blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), w.size.Y, w.size.X, gocv.MatTypeCV8UC3)
		blank.CopyTo(&w.canvas)
		blank.Close()
	} else {
		annotated := frame.Clone()
		Annotate(&annotated, hands)
		gocv.Resize(annotated, &w.canvas, w.size, 0, 0, gocv.InterpolationLinear)
		annotated.Close()
	}

	DrawStatus(&w.canvas, status)
	w.window.IMShow(w.canvas)

	key := w.window.WaitKey(1)
	if key == 'q' || key == keyEsc || !w.window.IsOpen() {
		if w.onQuit != nil {
			w.onQuit()
		}
	}
	return nil
}

func (w *WindowDisplay) Close() error {
	w.canvas.Close()
	return w.window.Close()
}
