package analyzer

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stepImage(w, h, split int, lo, hi uint8) *image.Gray {
	return createGrayImage(w, h, func(x, y int) uint8 {
		if x < split {
			return lo
		}
		return hi
	})
}

func edgePixels(edges *image.Gray) []image.Point {
	var pts []image.Point
	b := edges.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if edges.GrayAt(x, y).Y != 0 {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}

func TestDetectEdges_Uniform(t *testing.T) {
	edges := DetectEdges(createGrayImage(16, 16, func(x, y int) uint8 { return 90 }), 50, 150)
	assert.Empty(t, edgePixels(edges))
}

func TestDetectEdges_VerticalStep(t *testing.T) {
	edges := DetectEdges(stepImage(20, 20, 10, 0, 255), 50, 150)

	pts := edgePixels(edges)
	assert.Len(t, pts, 20)
	for _, p := range pts {
		assert.Equal(t, 9, p.X, "edge must be thinned to a single column")
	}
}

func TestDetectEdges_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		hi     uint8
		expect int
	}{
		{"below low threshold", 10, 0},
		{"weak edge without strong seed", 30, 0},
		{"strong edge", 60, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := DetectEdges(stepImage(12, 12, 6, 0, tt.hi), 50, 150)
			assert.Len(t, edgePixels(edges), tt.expect)
		})
	}
}

func TestDetectEdges_SubImage(t *testing.T) {
	base := stepImage(40, 40, 20, 0, 255)
	sub := base.SubImage(image.Rect(10, 5, 30, 25)).(*image.Gray)

	edges := DetectEdges(sub, 50, 150)
	assert.Equal(t, image.Rect(0, 0, 20, 20), edges.Bounds())
	for _, p := range edgePixels(edges) {
		assert.Equal(t, 9, p.X)
	}
}

func TestEdgeDensity(t *testing.T) {
	img := stepImage(20, 20, 10, 0, 255)
	assert.InDelta(t, 0.05, edgeDensity(img.Pix, 20, 20, 50, 150), 1e-12)
	assert.Equal(t, 0.0, edgeDensity(nil, 0, 0, 50, 150))
}
