package analyzer

import (
	"image"

	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// Sharpness labels, from best to worst
const (
	SharpnessVerySharp  = "very sharp"
	SharpnessSharp      = "sharp"
	SharpnessAcceptable = "acceptable"
	SharpnessBlurry     = "blurry"
)

// analyzeQuality computes the two independent sharpness signals and the noise estimate.
// blur_score and sharpness_score are not expected to agree.
func analyzeQuality(f *Frame, opts AnalysisOptions) (models.QualityMetrics, []DegenerateInputWarning) {
	var warnings []DegenerateInputWarning
	if f.Width < 2 && f.Height < 2 {
		warnings = append(warnings, DegenerateInputWarning{Pass: PassQuality, Reason: "single pixel has no gradient"})
	}

	blur := LaplacianVariance(f.Gray)
	density := edgeDensity(f.Gray.Pix, f.Width, f.Height, opts.CannyLow, opts.CannyHigh)

	return models.QualityMetrics{
		EdgeDensity:    roundTo(density, 4),
		BlurScore:      roundTo(blur, 1),
		NoiseLevel:     roundTo(NoiseLevel(f.Gray), 1),
		SharpnessScore: roundTo(density*100, 2),
		SharpnessLevel: sharpnessLevel(blur, opts),
	}, warnings
}

func sharpnessLevel(blur float64, opts AnalysisOptions) string {
	switch {
	case blur > opts.VerySharpThreshold:
		return SharpnessVerySharp
	case blur > opts.SharpThreshold:
		return SharpnessSharp
	case blur > opts.AcceptableThreshold:
		return SharpnessAcceptable
	default:
		return SharpnessBlurry
	}
}

// laplacianVariance returns the population variance of the 4-neighbour
// Laplacian response, with mirrored (reflect-101) borders.
func laplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(b.Min.X+reflect101(x, w), b.Min.Y+reflect101(y, h)).Y)
	}

	values := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			values = append(values, lap)
		}
	}
	return stat.PopVariance(values, nil)
}

// NoiseLevel estimates sensor noise as the standard deviation of the
// difference between the image and its 5x5 Gaussian blur.
func NoiseLevel(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	blurred := activeBackend.Blur5(gray)
	diff := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			orig := float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			diff = append(diff, orig-float64(blurred[y*w+x]))
		}
	}
	_, std := stat.PopMeanStdDev(diff, nil)
	return std
}

var gaussianKernel5 = [5]int{1, 4, 6, 4, 1}

// gaussian5 applies the separable binomial 5x5 kernel (sum 256) with
// reflect-101 borders and rounds the result back to 8 bits.
func gaussian5(gray *image.Gray) []uint8 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	rows := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += gaussianKernel5[k+2] * int(gray.GrayAt(b.Min.X+reflect101(x+k, w), b.Min.Y+y).Y)
			}
			rows[y*w+x] = sum
		}
	}

	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += gaussianKernel5[k+2] * rows[reflect101(y+k, h)*w+x]
			}
			out[y*w+x] = uint8((sum + 128) >> 8)
		}
	}
	return out
}

// reflect101 mirrors an out-of-range index without repeating the edge pixel
// (for n = 5: -2 -> 2, 5 -> 3).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}
