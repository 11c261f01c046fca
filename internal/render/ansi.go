package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/ayusman/handvolume/internal/detector"
	"github.com/eliukblau/pixterm/pkg/ansimage"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// AnsiDisplay prints status changes to a terminal and, every Nth frame,
// redraws the annotated frame as ANSI art.
type AnsiDisplay struct {
	out        io.Writer
	every      int
	frames     int
	lastStatus string
	size       func() (cols, rows int)
}

// NewAnsiDisplay writes to out. every <= 0 disables image rendering.
func NewAnsiDisplay(out io.Writer, every int) *AnsiDisplay {
	return &AnsiDisplay{
		out:   out,
		every: every,
		size:  terminalSize,
	}
}

func (d *AnsiDisplay) Show(frame *gocv.Mat, hands []detector.Hand, status string) error {
	if frame == nil || frame.Empty() || d.every <= 0 {
		d.printStatus(status)
		return nil
	}

	d.frames++
	if d.frames%d.every != 0 {
		d.printStatus(status)
		return nil
	}

	annotated := frame.Clone()
	defer annotated.Close()
	Annotate(&annotated, hands)

	img, err := annotated.ToImage()
	if err != nil {
		return errors.Wrap(err, "Mat.ToImage")
	}

	cols, rows := d.size()
	if rows > 2 {
		rows -= 2 // room for the status line
	}
	art, err := ansimage.NewScaledFromImage(img, ansimage.BlockSizeY*rows, ansimage.BlockSizeX*cols,
		color.Black, ansimage.ScaleModeFit, ansimage.DitheringWithChars)
	if err != nil {
		return errors.Wrap(err, "ansimage.NewScaledFromImage")
	}

	fmt.Fprint(d.out, "\033[H\033[2J")
	fmt.Fprint(d.out, art.Render())
	fmt.Fprintln(d.out, status)
	d.lastStatus = status
	return nil
}

func (d *AnsiDisplay) printStatus(status string) {
	if status == d.lastStatus {
		return
	}
	fmt.Fprintln(d.out, status)
	d.lastStatus = status
}

func (d *AnsiDisplay) Close() error { return nil }
