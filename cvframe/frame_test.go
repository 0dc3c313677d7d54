package cvframe

import (
	"testing"
)

type otherFrame struct{}

func (otherFrame) Size() (int, int) { return 1, 1 }

func TestResizeRejectsForeignFrames(t *testing.T) {
	if _, err := NewResizer().Resize(otherFrame{}, 10, 10); err != ErrNotMat {
		t.Fatalf("expected ErrNotMat, got %v", err)
	}
}

func TestFromBGRChecksLength(t *testing.T) {
	if _, err := FromBGR(4, 2, make([]byte, 10)); err == nil {
		t.Fatalf("expected an error for a short buffer")
	}
}

func TestBarOffset(t *testing.T) {
	cases := []struct {
		n, width, exp int
	}{
		{0, 640, 0},
		{1, 640, 4},
		{152, 640, 0},
		{153, 640, 4},
		{5, 10, 2},
		{3, 1, 0},
	}
	for _, c := range cases {
		if got := barOffset(c.n, c.width); got != c.exp {
			t.Fatalf("barOffset(%d, %d): expected %d, got %d", c.n, c.width, c.exp, got)
		}
	}
}
