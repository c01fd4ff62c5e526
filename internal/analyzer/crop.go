package analyzer

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// cropResizer implements the smartcrop resizer on top of imaging.
type cropResizer struct {
	filter imaging.ResampleFilter
}

func (r cropResizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.filter)
}

// suggestCrop finds the most interesting window of the given aspect ratio.
// The smartcrop search cannot be interrupted, so cancellation only stops the wait.
func suggestCrop(ctx context.Context, f *Frame, aspect float64) (*models.CropRect, error) {
	cw, ch := cropSize(f.Width, f.Height, aspect)
	if cw == 0 || ch == 0 {
		return nil, fmt.Errorf("crop of aspect %g does not fit %dx%d", aspect, f.Width, f.Height)
	}

	type cropResult struct {
		rect image.Rectangle
		err  error
	}
	resultChan := make(chan cropResult, 1)

	go func() {
		analyzer := smartcrop.NewAnalyzer(cropResizer{filter: imaging.Lanczos})
		rect, err := analyzer.FindBestCrop(f.RGB, cw, ch)
		resultChan <- cropResult{rect: rect, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			return nil, fmt.Errorf("finding best crop: %w", result.err)
		}
		r := result.rect.Intersect(f.RGB.Rect)
		return &models.CropRect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}, nil
	}
}

// cropSize returns the largest width x height of the given aspect ratio that fits w x h.
func cropSize(w, h int, aspect float64) (int, int) {
	if aspect <= 0 || w == 0 || h == 0 {
		return 0, 0
	}
	if float64(w)/float64(h) > aspect {
		return int(math.Round(float64(h) * aspect)), h
	}
	return w, int(math.Round(float64(w) / aspect))
}
