package cvframe

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"
)

var (
	background = gocv.NewScalar(64, 32, 16, 0)
	barColor   = color.RGBA{R: 240, G: 180, B: 0, A: 0}
	textColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// Pattern generates synthetic frames: a bar sweeping the image and the
// frame number with its timestamp.
type Pattern struct {
	Width  int
	Height int
	n      int
}

func NewPattern(width, height int) *Pattern {
	return &Pattern{Width: width, Height: height}
}

// Next renders the next frame.
func (p *Pattern) Next(ts time.Time) *Frame {
	mat := gocv.NewMatWithSizeFromScalar(background, p.Height, p.Width, gocv.MatTypeCV8UC3)
	x := barOffset(p.n, p.Width)
	gocv.Rectangle(&mat, image.Rect(x, 0, x+barWidth(p.Width), p.Height), barColor, -1)
	label := fmt.Sprintf("#%d %s", p.n, ts.Format("15:04:05.000"))
	gocv.PutText(&mat, label, image.Pt(10, p.Height-20), gocv.FontHersheySimplex, 1.0, textColor, 2)
	p.n++
	return NewFrame(mat)
}

func barWidth(width int) int {
	w := width / 20
	if w < 1 {
		w = 1
	}
	return w
}

// barOffset moves the bar by 4 pixels per frame, wrapping around
func barOffset(n, width int) int {
	span := width - barWidth(width)
	if span <= 0 {
		return 0
	}
	return (n * 4) % span
}
