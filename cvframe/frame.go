// Package cvframe adapts OpenCV matrices to the frames of package skyline.
package cvframe

import (
	"errors"
	"fmt"
	"image"

	"github.com/backpack-edge/backpack/skyline"
	"gocv.io/x/gocv"
)

// ErrNotMat is returned when resizing a frame that is not backed by a gocv.Mat.
var ErrNotMat = errors.New("cvframe: frame is not an OpenCV matrix")

// Frame is a BGR image held in an OpenCV matrix.
// It must be closed to release the native memory.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// FromBGR copies packed BGR pixels into a new frame.
func FromBGR(width, height int, data []byte) (*Frame, error) {
	if len(data) != width*height*3 {
		return nil, fmt.Errorf("cvframe: %d bytes is not a %dx%d BGR image", len(data), width, height)
	}
	mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	if err != nil {
		return nil, err
	}
	return &Frame{mat: mat}, nil
}

func (f *Frame) Size() (int, int) {
	return f.mat.Cols(), f.mat.Rows()
}

// Bytes returns a copy of the pixels.
func (f *Frame) Bytes() []byte {
	return f.mat.ToBytes()
}

// Mat returns the underlying matrix, owned by the frame.
func (f *Frame) Mat() *gocv.Mat {
	return &f.mat
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// Resizer scales frames with bilinear interpolation.
type Resizer struct {
	Interpolation gocv.InterpolationFlags
}

func NewResizer() *Resizer {
	return &Resizer{Interpolation: gocv.InterpolationLinear}
}

// Resize returns a new frame, to be closed by the caller.
func (r *Resizer) Resize(f skyline.Frame, width, height int) (skyline.Frame, error) {
	src, ok := f.(*Frame)
	if !ok {
		return nil, ErrNotMat
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cvframe: invalid size %dx%d", width, height)
	}
	dst := gocv.NewMat()
	gocv.Resize(src.mat, &dst, image.Pt(width, height), 0, 0, r.Interpolation)
	return &Frame{mat: dst}, nil
}
