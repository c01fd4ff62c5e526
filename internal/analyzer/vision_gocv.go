//go:build gocv
// +build gocv

package analyzer

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

func defaultBackend() visionBackend {
	return gocvBackend{}
}

// gocvBackend runs the primitives through OpenCV. Any Mat construction
// failure falls back to the pure Go implementation of the same primitive.
type gocvBackend struct {
	fallback pureBackend
}

func (gocvBackend) Name() string { return "opencv" }

func (b gocvBackend) EdgeMask(pix []uint8, w, h int, low, high float64) []bool {
	if w == 0 || h == 0 {
		return make([]bool, w*h)
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, pix[:w*h])
	if err != nil {
		return b.fallback.EdgeMask(pix, w, h, low, high)
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(src, &edges, float32(low), float32(high))

	out := make([]bool, w*h)
	for i, v := range edges.ToBytes() {
		out[i] = v != 0
	}
	return out
}

func (b gocvBackend) LaplacianVariance(gray *image.Gray) float64 {
	src, ok := grayMat(gray)
	if !ok {
		return b.fallback.LaplacianVariance(gray)
	}
	defer src.Close()

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(src, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean, std := gocv.NewMat(), gocv.NewMat()
	defer mean.Close()
	defer std.Close()
	gocv.MeanStdDev(lap, &mean, &std)
	sd := std.GetDoubleAt(0, 0)
	return sd * sd
}

func (b gocvBackend) Blur5(gray *image.Gray) []uint8 {
	src, ok := grayMat(gray)
	if !ok {
		return b.fallback.Blur5(gray)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	return dst.ToBytes()
}

// HoughLines leaves Line.Votes at zero; OpenCV already orders lines by votes.
func (b gocvBackend) HoughLines(edges *image.Gray, threshold int) []Line {
	src, ok := grayMat(edges)
	if !ok {
		return b.fallback.HoughLines(edges, threshold)
	}
	defer src.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.HoughLines(src, &out, 1, float32(math.Pi/180), threshold)

	lines := make([]Line, 0, out.Rows())
	for i := 0; i < out.Rows(); i++ {
		v := out.GetVecfAt(i, 0)
		lines = append(lines, Line{Rho: float64(v[0]), Theta: float64(v[1])})
	}
	return lines
}

func (b gocvBackend) Centroid(gray *image.Gray) (models.Point, bool) {
	src, ok := grayMat(gray)
	if !ok {
		return b.fallback.Centroid(gray)
	}
	defer src.Close()

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	m := gocv.Moments(src, false)
	if m["m00"] == 0 {
		return models.Point{X: float64(w) / 2, Y: float64(h) / 2}, false
	}
	// OpenCV places pixel x at coordinate x; shift to pixel centres.
	return models.Point{
		X: m["m10"]/m["m00"] + 0.5,
		Y: m["m01"]/m["m00"] + 0.5,
	}, true
}

func (b gocvBackend) CountRegions(mask []bool, w, h, minArea int) int {
	if w <= 0 || h <= 0 || len(mask) < w*h {
		return 0
	}
	pix := make([]byte, w*h)
	for i, set := range mask[:w*h] {
		if set {
			pix[i] = 255
		}
	}
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, pix)
	if err != nil {
		return b.fallback.CountRegions(mask, w, h, minArea)
	}
	defer src.Close()

	labels, stats, centroids := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
	defer labels.Close()
	defer stats.Close()
	defer centroids.Close()
	n := gocv.ConnectedComponentsWithStats(src, &labels, &stats, &centroids)

	count := 0
	// label 0 is the background
	for i := 1; i < n; i++ {
		if int(stats.GetIntAt(i, int(gocv.CCStatArea))) > minArea {
			count++
		}
	}
	return count
}

// Correlation uses normalised correlation-coefficient template matching, which
// for two equally sized samples is their Pearson correlation.
func (b gocvBackend) Correlation(a, c []float64) float64 {
	img := gocv.NewMatWithSize(1, len(a), gocv.MatTypeCV32F)
	defer img.Close()
	templ := gocv.NewMatWithSize(1, len(c), gocv.MatTypeCV32F)
	defer templ.Close()
	for i := range a {
		img.SetFloatAt(0, i, float32(a[i]))
		templ.SetFloatAt(0, i, float32(c[i]))
	}

	result, mask := gocv.NewMat(), gocv.NewMat()
	defer result.Close()
	defer mask.Close()
	gocv.MatchTemplate(img, templ, &result, gocv.TmCcoeffNormed, mask)
	if result.Empty() {
		return b.fallback.Correlation(a, c)
	}
	return float64(result.GetFloatAt(0, 0))
}

// grayMat copies gray into a single-channel 8-bit Mat.
func grayMat(gray *image.Gray) (gocv.Mat, bool) {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, false
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, grayPixels(gray))
	if err != nil {
		return gocv.Mat{}, false
	}
	return m, true
}
