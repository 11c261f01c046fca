package render

import (
	"image"
	"image/color"

	"github.com/ayusman/handvolume/internal/detector"
	"gocv.io/x/gocv"
)

var (
	boneColor     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	jointColor    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	pinchColor    = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	statusColor   = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	statusShadow  = color.RGBA{A: 0}
	statusOrigin  = image.Point{X: 12, Y: 34}
	statusScale   = 0.9
	statusStroke  = 2
	jointRadius   = 4
	pinchRadius   = 8
	boneThickness = 2
)

// Annotate draws every hand's skeleton on img and highlights the
// thumb-index segment of complete hands.
func Annotate(img *gocv.Mat, hands []detector.Hand) {
	for i := range hands {
		drawHand(img, &hands[i])
	}
}

func drawHand(img *gocv.Mat, hand *detector.Hand) {
	for _, c := range detector.Connections {
		a, okA := hand.At(c[0])
		b, okB := hand.At(c[1])
		if okA && okB {
			gocv.Line(img, a.Point(), b.Point(), boneColor, boneThickness)
		}
	}
	for _, lm := range hand.Landmarks {
		gocv.Circle(img, lm.Point(), jointRadius, jointColor, -1)
	}

	if !hand.Complete() {
		return
	}
	thumb := hand.Landmarks[detector.ThumbTip].Point()
	index := hand.Landmarks[detector.IndexTip].Point()
	mid := thumb.Add(index).Div(2)

	gocv.Line(img, thumb, index, pinchColor, boneThickness+1)
	gocv.Circle(img, thumb, pinchRadius, pinchColor, -1)
	gocv.Circle(img, index, pinchRadius, pinchColor, -1)
	gocv.Circle(img, mid, pinchRadius, pinchColor, -1)
}

// DrawStatus writes status in the top-left corner of img.
func DrawStatus(img *gocv.Mat, status string) {
	if status == "" {
		return
	}
	shadow := statusOrigin.Add(image.Point{X: 2, Y: 2})
	gocv.PutText(img, status, shadow, gocv.FontHersheySimplex, statusScale, statusShadow, statusStroke+1)
	gocv.PutText(img, status, statusOrigin, gocv.FontHersheySimplex, statusScale, statusColor, statusStroke)
}
