package finch

import (
	"bytes"
	"image"
	"image/gif"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wbrown/finch/imageutil"
)

func TestDecimate(t *testing.T) {
	keep := decimate(120, 50)
	if len(keep) != 50 {
		t.Fatalf("Expected 50 frames, got %d", len(keep))
	}
	if keep[0] != 0 || keep[49] != 119 {
		t.Errorf("Expected first and last frames kept, got %d and %d", keep[0], keep[49])
	}
	for i := 1; i < len(keep); i++ {
		if keep[i] <= keep[i-1] {
			t.Fatalf("Indices not strictly increasing at %d: %v", i, keep)
		}
	}

	if diff := cmp.Diff([]int{0, 1, 2}, decimate(3, 50)); diff != "" {
		t.Errorf("Short sequence changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 2, 4}, decimate(5, 3)); diff != "" {
		t.Errorf("decimate(5, 3) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{9}, decimate(10, 1)); diff != "" {
		t.Errorf("decimate(10, 1) mismatch (-want +got):\n%s", diff)
	}
}

func decodeGIF(t *testing.T, data []byte) *gif.GIF {
	t.Helper()
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeAll failed: %v", err)
	}
	return g
}

func TestAssembleGIF(t *testing.T) {
	frames := make([]image.Image, 60)
	for i := range frames {
		frames[i] = imageutil.CreateGradientImage(32, 24)
	}
	data, err := AssembleGIF(frames)
	if err != nil {
		t.Fatalf("AssembleGIF failed: %v", err)
	}
	g := decodeGIF(t, data)

	want := GIFFrameBudget + GIFFramesPerSecond*GIFHoldSeconds
	if len(g.Image) != want {
		t.Errorf("Expected %d frames, got %d", want, len(g.Image))
	}
	for i, d := range g.Delay {
		if d != 20 {
			t.Fatalf("Frame %d: expected delay 20, got %d", i, d)
		}
	}
	if b := g.Image[0].Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("Expected 32x24 frames, got %v", b)
	}
}

func TestAssembleGIFLargeFrame(t *testing.T) {
	data, err := AssembleGIF([]image.Image{imageutil.CreateColorBarsImage(1000, 500)})
	if err != nil {
		t.Fatalf("AssembleGIF failed: %v", err)
	}
	g := decodeGIF(t, data)
	if len(g.Image) != 1+GIFFramesPerSecond*GIFHoldSeconds {
		t.Errorf("Expected single frame plus hold, got %d", len(g.Image))
	}
	if b := g.Image[0].Bounds(); b.Dx() != 720 || b.Dy() != 360 {
		t.Errorf("Expected 720x360, got %v", b)
	}
}

func TestAssembleGIFEmpty(t *testing.T) {
	if _, err := AssembleGIF(nil); err == nil {
		t.Error("Expected error for no frames")
	}
}
