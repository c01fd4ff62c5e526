package analyzer

import (
	"image"
)

// Fixed-point tangents of 22.5 degrees and the shift they are scaled by,
// used to bucket the gradient direction during non-maximum suppression.
const (
	cannyShift = 15
	tan22Fixed = 13573 // round(tan(22.5deg) * 2^15)
)

// DetectEdges runs a two-threshold Canny detector over a luminance image and
// returns a binary map (255 edge, 0 background) with origin (0,0).
// Gradients use a 3x3 Sobel operator with replicated borders and L1 magnitude.
func DetectEdges(gray *image.Gray, low, high float64) *image.Gray {
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, e := range activeBackend.EdgeMask(grayPixels(gray), w, h, low, high) {
		if e {
			out.Pix[i] = 255
		}
	}
	return out
}

// edgeDensity returns the fraction of pixels the Canny detector marks as edges.
func edgeDensity(pix []uint8, w, h int, low, high float64) float64 {
	if w == 0 || h == 0 {
		return 0
	}
	count := 0
	for _, e := range activeBackend.EdgeMask(pix, w, h, low, high) {
		if e {
			count++
		}
	}
	return float64(count) / float64(w*h)
}

// canny works on a contiguous w*h luminance buffer and returns a row-major edge mask.
func canny(pix []uint8, w, h int, low, high float64) []bool {
	n := w * h
	edges := make([]bool, n)
	if n == 0 {
		return edges
	}

	lowT, highT := int32(low), int32(high)
	if lowT > highT {
		lowT, highT = highT, lowT
	}

	dx := make([]int32, n)
	dy := make([]int32, n)
	mag := make([]int32, n)
	at := func(x, y int) int32 {
		return int32(pix[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs32(gx) + abs32(gy)
		}
	}

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// 0 = not an edge, 1 = weak candidate, 2 = strong edge
	state := make([]uint8, n)
	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= lowT {
				continue
			}

			xs, ys := abs32(dx[i]), abs32(dy[i])
			tg22x := int64(xs) * tan22Fixed
			yShift := int64(ys) << cannyShift

			var isMax bool
			switch {
			case yShift < tg22x:
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case yShift > tg22x+(int64(xs)<<(cannyShift+1)):
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (dx[i] ^ dy[i]) < 0 {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > highT {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	// hysteresis: grow strong edges through weak 8-neighbours
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		edges[i] = true
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}
	return edges
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
