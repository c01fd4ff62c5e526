package analyzer

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// SymmetryScore returns the normalised cross-correlation of two equally sized
// samples, clamped to [-1, 1]. Two identical constant samples score 1; any
// other zero-variance, empty or mismatched pair scores 0.
func SymmetryScore(a, b []float64) float64 {
	score, _ := correlate(a, b)
	return score
}

// correlate is SymmetryScore that also explains why a neutral value was used.
func correlate(a, b []float64) (float64, string) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, "empty half"
	}

	constA, constB := isConstant(a), isConstant(b)
	switch {
	case constA && constB && a[0] == b[0]:
		return 1, "identical constant halves"
	case constA || constB:
		return 0, "zero-variance half"
	}

	r := activeBackend.Correlation(a, b)
	if math.IsNaN(r) {
		return 0, "undefined correlation"
	}
	return math.Max(-1, math.Min(1, r)), ""
}

func isConstant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// leftRightHalves returns the left half and the mirrored right half of gray,
// both truncated to the narrower width.
func leftRightHalves(gray *image.Gray) (left, right []float64) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	half := w / 2
	if half == 0 || h == 0 {
		return nil, nil
	}
	l := imaging.Crop(gray, image.Rect(0, 0, half, h))
	r := transform.FlipH(imaging.Crop(gray, image.Rect(half, 0, w, h)))
	return samplePlane(l.Pix, l.Stride, half, h), samplePlane(r.Pix, r.Stride, half, h)
}

// topBottomHalves returns the top half and the vertically flipped bottom half
// of gray, both truncated to the shorter height.
func topBottomHalves(gray *image.Gray) (top, bottom []float64) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	half := h / 2
	if half == 0 || w == 0 {
		return nil, nil
	}
	t := imaging.Crop(gray, image.Rect(0, 0, w, half))
	b := transform.FlipV(imaging.Crop(gray, image.Rect(0, half, w, h)))
	return samplePlane(t.Pix, t.Stride, w, half), samplePlane(b.Pix, b.Stride, w, half)
}

// samplePlane reads the first channel of a 4-byte-per-pixel buffer.
func samplePlane(pix []uint8, stride, w, h int) []float64 {
	out := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out = append(out, float64(pix[y*stride+x*4]))
		}
	}
	return out
}
