package chart

import (
	"bytes"
	"image/png"
	"testing"
)

func decode(t *testing.T, data []byte) map[uint32]bool {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != canvasWidth || b.Dy() != canvasHeight {
		t.Fatalf("unexpected canvas size %dx%d", b.Dx(), b.Dy())
	}
	colors := make(map[uint32]bool)
	for y := b.Min.Y; y < b.Max.Y; y += 4 {
		for x := b.Min.X; x < b.Max.X; x += 4 {
			r, g, bb, _ := img.At(x, y).RGBA()
			colors[(r>>8)<<16|(g>>8)<<8|(bb>>8)] = true
		}
	}
	return colors
}

func TestRenderSeries(t *testing.T) {
	data, err := Render([]float64{1, 2, 3}, "weight")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(decode(t, data)) < 2 {
		t.Fatalf("plotted chart is a uniform image")
	}
}

func TestRenderDegenerateInputs(t *testing.T) {
	cases := map[string][]float64{
		"empty":        nil,
		"single point": {5},
		"all zeros":    {0, 0, 0},
	}
	for name, series := range cases {
		data, err := Render(series, "weight")
		if err != nil {
			t.Fatalf("%s: render must not fail: %v", name, err)
		}
		decode(t, data)
	}
}
