package analyzer

import (
	"image"

	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// visionBackend provides the pixel primitives the passes are built on.
// The pure Go backend is always compiled; builds with the gocv tag swap in OpenCV.
type visionBackend interface {
	Name() string
	// EdgeMask runs Canny over a contiguous w*h luminance buffer.
	EdgeMask(pix []uint8, w, h int, low, high float64) []bool
	LaplacianVariance(gray *image.Gray) float64
	// Blur5 applies the 5x5 Gaussian with reflect-101 borders.
	Blur5(gray *image.Gray) []uint8
	HoughLines(edges *image.Gray, threshold int) []Line
	Centroid(gray *image.Gray) (models.Point, bool)
	// CountRegions counts 8-connected components larger than minArea.
	CountRegions(mask []bool, w, h, minArea int) int
	// Correlation is only called with non-constant samples of equal length.
	Correlation(a, b []float64) float64
}

var activeBackend = defaultBackend()

// VisionBackend names the backend the analyzer was built with ("go" or "opencv").
func VisionBackend() string {
	return activeBackend.Name()
}

type pureBackend struct{}

func (pureBackend) Name() string { return "go" }

func (pureBackend) EdgeMask(pix []uint8, w, h int, low, high float64) []bool {
	return canny(pix, w, h, low, high)
}

func (pureBackend) LaplacianVariance(gray *image.Gray) float64 {
	return laplacianVariance(gray)
}

func (pureBackend) Blur5(gray *image.Gray) []uint8 {
	return gaussian5(gray)
}

func (pureBackend) HoughLines(edges *image.Gray, threshold int) []Line {
	return detectLines(edges, threshold)
}

func (pureBackend) Centroid(gray *image.Gray) (models.Point, bool) {
	return visualCentroid(gray)
}

func (pureBackend) CountRegions(mask []bool, w, h, minArea int) int {
	return countRegions(mask, w, h, minArea)
}

func (pureBackend) Correlation(a, b []float64) float64 {
	return stat.Correlation(a, b, nil)
}

// LaplacianVariance returns the population variance of the 4-neighbour
// Laplacian response, with mirrored (reflect-101) borders.
func LaplacianVariance(gray *image.Gray) float64 {
	return activeBackend.LaplacianVariance(gray)
}

// DetectLines runs a standard Hough transform (1 px, 1 degree) over a binary
// edge map and returns the accumulator peaks above threshold, strongest first.
func DetectLines(edges *image.Gray, threshold int) []Line {
	return activeBackend.HoughLines(edges, threshold)
}

// VisualCentroid returns the brightness-weighted centre of mass, sampling each
// pixel at its centre. A black image yields the geometric centre and ok=false.
func VisualCentroid(gray *image.Gray) (models.Point, bool) {
	return activeBackend.Centroid(gray)
}

// CountRegions counts the 8-connected components of a row-major boolean mask
// (w*h entries) whose pixel area is strictly greater than minArea.
func CountRegions(mask []bool, w, h, minArea int) int {
	return activeBackend.CountRegions(mask, w, h, minArea)
}

// grayPixels returns the pixels of gray as a contiguous row-major buffer,
// sharing the backing array when the image is already tightly packed.
func grayPixels(gray *image.Gray) []uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if gray.Stride == w && b.Min == (image.Point{}) {
		return gray.Pix[:w*h]
	}
	pix := make([]uint8, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := gray.PixOffset(b.Min.X, y)
		pix = append(pix, gray.Pix[off:off+w]...)
	}
	return pix
}
