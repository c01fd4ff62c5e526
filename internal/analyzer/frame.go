package analyzer

import (
	"bytes"
	"image"
	"math"

	"github.com/disintegration/imaging"

	// extra formats on top of the jpeg/png/gif decoders imaging registers
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frame is the decoded, orientation-corrected raster shared read-only by all passes.
type Frame struct {
	RGB    *image.NRGBA
	Gray   *image.Gray
	Width  int
	Height int

	// ChannelMeans holds the R, G, B means over the whole frame.
	ChannelMeans [3]float64
}

// decodeFrame decodes encoded image bytes, applying the EXIF orientation tag.
func decodeFrame(data []byte, source string) (*Frame, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Source: source, Cause: errEmptyInput}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Source: source, Cause: err}
	}
	return newFrame(img, source)
}

// loadFrame opens and decodes an image file from disk.
func loadFrame(path string) (*Frame, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Source: path, Cause: err}
	}
	return newFrame(img, path)
}

// newFrame converts any image into an 8-bit NRGBA raster with origin (0,0)
// and derives its luminance plane and channel means.
func newFrame(img image.Image, source string) (*Frame, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, &DecodeError{Source: source, Cause: errZeroArea}
	}

	rgb := imaging.Clone(img)
	w, h := rgb.Rect.Dx(), rgb.Rect.Dy()
	gray := image.NewGray(image.Rect(0, 0, w, h))

	var sumR, sumG, sumB uint64
	for y := 0; y < h; y++ {
		row := rgb.Pix[y*rgb.Stride : y*rgb.Stride+w*4]
		out := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x := 0; x < w; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			out[x] = luminance(r, g, b)
			sumR += uint64(r)
			sumG += uint64(g)
			sumB += uint64(b)
		}
	}

	n := float64(w * h)
	return &Frame{
		RGB:          rgb,
		Gray:         gray,
		Width:        w,
		Height:       h,
		ChannelMeans: [3]float64{float64(sumR) / n, float64(sumG) / n, float64(sumB) / n},
	}, nil
}

// luminance is the BT.601 weighting in 14-bit fixed point, rounded.
func luminance(r, g, b uint8) uint8 {
	return uint8((4899*uint32(r) + 9617*uint32(g) + 1868*uint32(b) + 8192) >> 14)
}

// PixelCount returns the number of pixels in the frame
func (f *Frame) PixelCount() int {
	return f.Width * f.Height
}

// grayRegion returns the luminance values of the half-open rectangle [x0,x1)x[y0,y1).
func (f *Frame) grayRegion(x0, y0, x1, y1 int) []uint8 {
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	out := make([]uint8, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		off := y * f.Gray.Stride
		out = append(out, f.Gray.Pix[off+x0:off+x1]...)
	}
	return out
}

// roundTo rounds v half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// percent returns count/total*100, or 0 when total is 0.
func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
