package analyzer

import (
	"image"
	"math"
	"sort"
)

// Line is a straight line in normal form: x*cos(Theta) + y*sin(Theta) = Rho.
// Theta is in radians within [0, pi).
type Line struct {
	Rho   float64
	Theta float64
	Votes int
}

// detectLines runs a standard Hough transform (1 px distance step, 1 degree
// angle step) over a binary edge map and returns every accumulator local
// maximum whose vote count exceeds threshold, strongest first.
func detectLines(edges *image.Gray, threshold int) []Line {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	const numAngle = 180
	numRho := (w+h)*2 + 1
	stride := numRho + 2
	accum := make([]int, (numAngle+2)*stride)

	var sinTab, cosTab [numAngle]float32
	for n := 0; n < numAngle; n++ {
		ang := float64(n) * math.Pi / numAngle
		sinTab[n] = float32(math.Sin(ang))
		cosTab[n] = float32(math.Cos(ang))
	}

	offset := (numRho - 1) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if edges.GrayAt(b.Min.X+x, b.Min.Y+y).Y == 0 {
				continue
			}
			fx, fy := float32(x), float32(y)
			for n := 0; n < numAngle; n++ {
				r := int(math.RoundToEven(float64(fx*cosTab[n] + fy*sinTab[n])))
				r += offset
				accum[(n+1)*stride+r+1]++
			}
		}
	}

	var lines []Line
	for n := 0; n < numAngle; n++ {
		for r := 0; r < numRho; r++ {
			base := (n+1)*stride + r + 1
			v := accum[base]
			if v > threshold &&
				v > accum[base-1] && v >= accum[base+1] &&
				v > accum[base-stride] && v >= accum[base+stride] {
				lines = append(lines, Line{
					Rho:   float64(r - offset),
					Theta: float64(n) * math.Pi / numAngle,
					Votes: v,
				})
			}
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Votes > lines[j].Votes
	})
	return lines
}

// ClassifyLineAngles counts horizontal and vertical lines. A line's direction
// is perpendicular to its normal, so it is (Theta + 90deg) mod 180deg.
// Horizontal means within tolerance degrees of 0 or 180, vertical within
// tolerance of 90. The buckets are independent and a line may fall in neither.
func ClassifyLineAngles(lines []Line, tolerance float64) (horizontal, vertical int) {
	for _, l := range lines {
		dir := math.Mod(l.Theta*180/math.Pi+90, 180)
		if dir < 0 {
			dir += 180
		}
		if dir <= tolerance || dir >= 180-tolerance {
			horizontal++
		}
		if math.Abs(dir-90) <= tolerance {
			vertical++
		}
	}
	return horizontal, vertical
}
