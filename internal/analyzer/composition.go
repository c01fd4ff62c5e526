package analyzer

import (
	"image"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

var (
	gridRows = [3]string{"top", "middle", "bottom"}
	gridCols = [3]string{"left", "center", "right"}
)

// analyzeComposition computes the visual centre, activity grid, line counts and symmetry.
func analyzeComposition(f *Frame, opts AnalysisOptions) (models.CompositionMetrics, []DegenerateInputWarning) {
	var warnings []DegenerateInputWarning
	warn := func(reason string) {
		warnings = append(warnings, DegenerateInputWarning{Pass: PassComposition, Reason: reason})
	}

	w, h := f.Width, f.Height
	centre := models.Point{X: float64(w) / 2, Y: float64(h) / 2}
	centroid, ok := VisualCentroid(f.Gray)
	if !ok {
		warn("zero total intensity, using geometric centre")
	}

	activeRegion, activeDensity, emptyCells := mostActiveCell(f, opts)
	if emptyCells > 0 {
		warn("grid cells narrower than one pixel")
	}

	edges := DetectEdges(f.Gray, opts.CannyLow, opts.CannyHigh)
	lines := DetectLines(edges, opts.HoughThreshold)
	horizontal, vertical := ClassifyLineAngles(lines, opts.LineAngleTolerance)

	hSym, reason := correlate(leftRightHalves(f.Gray))
	if reason != "" {
		warn("left/right symmetry: " + reason)
	}
	vSym, reason := correlate(topBottomHalves(f.Gray))
	if reason != "" {
		warn("top/bottom symmetry: " + reason)
	}

	return models.CompositionMetrics{
		VisualCenter:       models.Point{X: roundTo(centroid.X, 1), Y: roundTo(centroid.Y, 1)},
		ImageCenter:        centre,
		CenterOffset:       models.Point{X: roundTo(centroid.X-centre.X, 1), Y: roundTo(centroid.Y-centre.Y, 1)},
		MainSubjectArea:    GridCell(centroid, w, h),
		MostActiveRegion:   activeRegion,
		MostActiveDensity:  roundTo(activeDensity, 4),
		HorizontalLines:    horizontal,
		VerticalLines:      vertical,
		HasHorizon:         horizontal > 0,
		HorizontalSymmetry: roundTo(hSym, 2),
		VerticalSymmetry:   roundTo(vSym, 2),
		IsSymmetric:        hSym > opts.SymmetryThreshold || vSym > opts.SymmetryThreshold,
	}, warnings
}

// visualCentroid returns the brightness-weighted centre of mass in continuous
// coordinates, where pixel (x, y) covers [x, x+1) and is sampled at its centre.
// When the image has no intensity the geometric centre is returned with ok=false.
func visualCentroid(gray *image.Gray) (p models.Point, ok bool) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	var sum, sumX2, sumY2 uint64
	for y := 0; y < h; y++ {
		off := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for x, v := range gray.Pix[off : off+w] {
			i := uint64(v)
			sum += i
			sumX2 += uint64(2*x+1) * i
			sumY2 += uint64(2*y+1) * i
		}
	}
	if sum == 0 {
		return models.Point{X: float64(w) / 2, Y: float64(h) / 2}, false
	}
	return models.Point{
		X: float64(sumX2) / float64(2*sum),
		Y: float64(sumY2) / float64(2*sum),
	}, true
}

// GridCell names the rule-of-thirds cell containing p, e.g. "top_left".
// A point exactly on a third line belongs to the middle band.
func GridCell(p models.Point, w, h int) string {
	return gridRows[thirdBand(p.Y, float64(h))] + "_" + gridCols[thirdBand(p.X, float64(w))]
}

func thirdBand(v, extent float64) int {
	switch {
	case v < extent/3:
		return 0
	case v > 2*extent/3:
		return 2
	default:
		return 1
	}
}

// mostActiveCell returns the 3x3 grid cell with the highest edge density,
// scanning row-major so the first maximum wins. The last row and column
// absorb the remainder of the integer division.
func mostActiveCell(f *Frame, opts AnalysisOptions) (name string, density float64, empty int) {
	tw, th := f.Width/3, f.Height/3
	best := -1.0
	for i := 0; i < 3; i++ {
		y0, y1 := i*th, (i+1)*th
		if i == 2 {
			y1 = f.Height
		}
		for j := 0; j < 3; j++ {
			x0, x1 := j*tw, (j+1)*tw
			if j == 2 {
				x1 = f.Width
			}

			d := 0.0
			if pix := f.grayRegion(x0, y0, x1, y1); len(pix) > 0 {
				d = edgeDensity(pix, x1-x0, y1-y0, opts.CannyLow, opts.CannyHigh)
			} else {
				empty++
			}
			if d > best {
				best = d
				name = gridRows[i] + "_" + gridCols[j]
			}
		}
	}
	return name, best, empty
}
