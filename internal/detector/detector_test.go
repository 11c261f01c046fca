package detector

import (
	"errors"
	"image"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

const epsilon = 1e-9

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Landmark
		want float64
	}{
		{
			name: "same point",
			a:    Landmark{X: 10, Y: 10},
			b:    Landmark{X: 10, Y: 10},
			want: 0,
		},
		{
			name: "3-4-5 triangle",
			a:    Landmark{X: 0, Y: 0},
			b:    Landmark{X: 3, Y: 4},
			want: 5,
		},
		{
			name: "order does not matter",
			a:    Landmark{X: 103, Y: 204},
			b:    Landmark{X: 100, Y: 200},
			want: 5,
		},
		{
			name: "horizontal",
			a:    Landmark{X: 50, Y: 7},
			b:    Landmark{X: 225, Y: 7},
			want: 175,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > epsilon {
				t.Errorf("Distance() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestHand_Complete(t *testing.T) {
	full := PinchHand(image.Point{X: 100, Y: 100}, 50, 50)
	partial := PartialHand(20)

	var nilHand *Hand
	if nilHand.Complete() {
		t.Error("nil hand should not be complete")
	}
	if !full.Complete() {
		t.Error("full hand should be complete")
	}
	if partial.Complete() {
		t.Errorf("hand with %d landmarks should not be complete", len(partial.Landmarks))
	}
}

func TestHand_At(t *testing.T) {
	hand := PartialHand(5)

	if lm, ok := hand.At(ThumbTip); !ok || lm.Index != ThumbTip {
		t.Errorf("At(ThumbTip) = %+v, %v", lm, ok)
	}
	if _, ok := hand.At(IndexTip); ok {
		t.Error("At(IndexTip) should fail on a 5-landmark hand")
	}
	if _, ok := hand.At(-1); ok {
		t.Error("At(-1) should fail")
	}
}

func TestPinchHand(t *testing.T) {
	origin := image.Point{X: 320, Y: 240}
	hand := PinchHand(origin, 175, 35)

	t.Run("landmarks are indexed in order", func(t *testing.T) {
		if len(hand.Landmarks) != NumLandmarks {
			t.Fatalf("got %d landmarks, want %d", len(hand.Landmarks), NumLandmarks)
		}
		for i, lm := range hand.Landmarks {
			if lm.Index != i {
				t.Errorf("landmark %d has index %d", i, lm.Index)
			}
		}
	})

	t.Run("thumb tip at origin", func(t *testing.T) {
		if got := hand.Landmarks[ThumbTip].Point(); got != origin {
			t.Errorf("thumb tip = %v, want %v", got, origin)
		}
	})

	t.Run("pinch and span distances", func(t *testing.T) {
		thumb := hand.Landmarks[ThumbTip]
		if d := Distance(thumb, hand.Landmarks[IndexTip]); math.Abs(d-175) > epsilon {
			t.Errorf("pinch = %f, want 175", d)
		}
		if d := Distance(thumb, hand.Landmarks[PinkyTip]); math.Abs(d-35) > epsilon {
			t.Errorf("span = %f, want 35", d)
		}
	})
}

func TestConnections(t *testing.T) {
	if len(Connections) != 21 {
		t.Errorf("got %d connections, want 21", len(Connections))
	}
	for _, c := range Connections {
		for _, idx := range c {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("connection %v references landmark %d out of range", c, idx)
			}
		}
	}
}

func TestJSONHand_ToHand(t *testing.T) {
	t.Run("scales to pixels", func(t *testing.T) {
		jh := jsonHand{Handedness: "Left", Score: 0.8}
		for i := 0; i < NumLandmarks; i++ {
			jh.Points = append(jh.Points, jsonPoint{X: 0.5, Y: 0.25})
		}

		hand := jh.toHand(640, 480)

		if len(hand.Landmarks) != NumLandmarks {
			t.Fatalf("got %d landmarks, want %d", len(hand.Landmarks), NumLandmarks)
		}
		if got := hand.Landmarks[ThumbTip]; got.X != 320 || got.Y != 120 || got.Index != ThumbTip {
			t.Errorf("thumb tip = %+v, want {4 320 120}", got)
		}
		if hand.Handedness != "Left" || hand.Score != 0.8 {
			t.Errorf("metadata = %s/%f, want Left/0.8", hand.Handedness, hand.Score)
		}
	})

	t.Run("keeps partial detections partial", func(t *testing.T) {
		jh := jsonHand{Points: make([]jsonPoint, 7)}
		if got := len(jh.toHand(640, 480).Landmarks); got != 7 {
			t.Errorf("got %d landmarks, want 7", got)
		}
	})

	t.Run("truncates extra points", func(t *testing.T) {
		jh := jsonHand{Points: make([]jsonPoint, NumLandmarks+3)}
		if got := len(jh.toHand(640, 480).Landmarks); got != NumLandmarks {
			t.Errorf("got %d landmarks, want %d", got, NumLandmarks)
		}
	})
}

func TestMockDetector(t *testing.T) {
	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	t.Run("queue then default", func(t *testing.T) {
		m := NewMockDetector()
		first := []Hand{PartialHand(3)}
		m.Queue(first, nil)
		m.SetHands([]Hand{PartialHand(21)})

		got, _ := m.Detect(&frame)
		if len(got) != 1 || len(got[0].Landmarks) != 3 {
			t.Errorf("first Detect() = %v, want queued partial hand", got)
		}
		if got, _ := m.Detect(&frame); len(got) != 0 {
			t.Errorf("second Detect() = %v, want no hands", got)
		}
		if got, _ := m.Detect(&frame); len(got) != 1 || !got[0].Complete() {
			t.Errorf("third Detect() = %v, want default hand", got)
		}
		if m.Calls() != 3 {
			t.Errorf("Calls() = %d, want 3", m.Calls())
		}
	})

	t.Run("error", func(t *testing.T) {
		m := NewMockDetector()
		want := errors.New("boom")
		m.SetError(want)
		if _, err := m.Detect(&frame); !errors.Is(err, want) {
			t.Errorf("Detect() error = %v, want %v", err, want)
		}
	})
}
