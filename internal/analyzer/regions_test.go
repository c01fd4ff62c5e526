package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rectMask(w, h int, rects ...[4]int) []bool {
	mask := make([]bool, w*h)
	for _, r := range rects {
		for y := r[1]; y < r[3]; y++ {
			for x := r[0]; x < r[2]; x++ {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

func TestCountRegions(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		mask    []bool
		minArea int
		want    int
	}{
		{"empty mask", 50, rectMask(50, 50), 100, 0},
		{"one large blob", 50, rectMask(50, 50, [4]int{0, 0, 20, 20}), 100, 1},
		{"two separate blobs", 50, rectMask(50, 50, [4]int{0, 0, 11, 11}, [4]int{30, 30, 45, 45}), 100, 2},
		{"area equal to minimum is excluded", 50, rectMask(50, 50, [4]int{0, 0, 10, 10}), 100, 0},
		{"touching blobs merge", 50, rectMask(50, 50, [4]int{0, 0, 10, 10}, [4]int{10, 0, 20, 10}), 100, 1},
		{"singletons with zero minimum", 5, rectMask(5, 5, [4]int{0, 0, 1, 1}, [4]int{2, 2, 3, 3}, [4]int{4, 4, 5, 5}), 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountRegions(tt.mask, tt.size, tt.size, tt.minArea))
		})
	}
}

func TestCountRegions_DiagonalConnectivity(t *testing.T) {
	const size = 200
	mask := make([]bool, size*size)
	for i := 0; i < 150; i++ {
		mask[i*size+i] = true
	}
	assert.Equal(t, 1, CountRegions(mask, size, size, 100))
}

func TestCountRegions_InvalidDimensions(t *testing.T) {
	assert.Equal(t, 0, CountRegions(nil, 0, 0, 0))
	assert.Equal(t, 0, CountRegions(make([]bool, 3), 2, 2, 0))
}
