package analyzer

// countRegions counts the 8-connected components of a row-major boolean mask
// (w*h entries) whose pixel area is strictly greater than minArea.
func countRegions(mask []bool, w, h, minArea int) int {
	if w <= 0 || h <= 0 || len(mask) < w*h {
		return 0
	}

	visited := make([]bool, w*h)
	stack := make([]int, 0, 256)
	count := 0

	for start := 0; start < w*h; start++ {
		if !mask[start] || visited[start] {
			continue
		}

		area := 0
		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			area++

			x, y := i%w, i/w
			for ny := y - 1; ny <= y+1; ny++ {
				if ny < 0 || ny >= h {
					continue
				}
				for nx := x - 1; nx <= x+1; nx++ {
					if nx < 0 || nx >= w {
						continue
					}
					j := ny*w + nx
					if mask[j] && !visited[j] {
						visited[j] = true
						stack = append(stack, j)
					}
				}
			}
		}

		if area > minArea {
			count++
		}
	}
	return count
}
