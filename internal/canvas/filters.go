package canvas

import (
	"image"
	"math"

	"github.com/manash/imgstudio/pkg/models"
)

// Adjust applies the parametric color pipeline in a fixed order:
// brightness, contrast, saturation, blur, sepia, grayscale. Output
// dimensions equal input dimensions.
func Adjust(src []byte, adj models.Adjustments) ([]byte, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	applyBrightness(img, adj.Brightness/100)
	applyContrast(img, adj.Contrast/100)
	applySaturation(img, adj.Saturation/100)
	if adj.Blur > 0 {
		img = gaussianBlur(img, adj.Blur)
	}
	applySepia(img, adj.Sepia/100)
	applyGrayscale(img, adj.Grayscale/100)

	return encode(img)
}

func applyBrightness(img *image.NRGBA, factor float64) {
	if factor == 1 {
		return
	}
	mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		return r * factor, g * factor, b * factor
	})
}

func applyContrast(img *image.NRGBA, factor float64) {
	if factor == 1 {
		return
	}
	mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		return (r-128)*factor + 128, (g-128)*factor + 128, (b-128)*factor + 128
	})
}

func applySaturation(img *image.NRGBA, factor float64) {
	if factor == 1 {
		return
	}
	mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		gray := luminance(r, g, b)
		return gray + (r-gray)*factor, gray + (g-gray)*factor, gray + (b-gray)*factor
	})
}

func applySepia(img *image.NRGBA, amount float64) {
	if amount == 0 {
		return
	}
	mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		return r + (sr-r)*amount, g + (sg-g)*amount, b + (sb-b)*amount
	})
}

func applyGrayscale(img *image.NRGBA, amount float64) {
	if amount == 0 {
		return
	}
	mapPixels(img, func(r, g, b float64) (float64, float64, float64) {
		gray := luminance(r, g, b)
		return r + (gray-r)*amount, g + (gray-g)*amount, b + (gray-b)*amount
	})
}

func mapPixels(img *image.NRGBA, fn func(r, g, b float64) (float64, float64, float64)) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			r, g, b := fn(float64(row[x]), float64(row[x+1]), float64(row[x+2]))
			row[x] = clampByte(r)
			row[x+1] = clampByte(g)
			row[x+2] = clampByte(b)
		}
	}
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// gaussianBlur runs a separable gaussian with sigma derived from the
// radius parameter (radius is in CSS-filter pixels).
func gaussianBlur(img *image.NRGBA, radius float64) *image.NRGBA {
	sigma := radius / 2
	if sigma < 0.5 {
		sigma = 0.5
	}
	half := int(math.Ceil(sigma * 3))

	kernel := make([]float64, 2*half+1)
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	horizontal := convolve1D(img, kernel, half, true)
	return convolve1D(horizontal, kernel, half, false)
}

func convolve1D(img *image.NRGBA, kernel []float64, half int, horizontal bool) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float64
			for k, weight := range kernel {
				sx, sy := x, y
				if horizontal {
					sx = clampInt(x+k-half, 0, w-1)
				} else {
					sy = clampInt(y+k-half, 0, h-1)
				}
				i := sy*img.Stride + sx*4
				r += float64(img.Pix[i]) * weight
				g += float64(img.Pix[i+1]) * weight
				b += float64(img.Pix[i+2]) * weight
				a += float64(img.Pix[i+3]) * weight
			}
			i := y*dst.Stride + x*4
			dst.Pix[i] = clampByte(r)
			dst.Pix[i+1] = clampByte(g)
			dst.Pix[i+2] = clampByte(b)
			dst.Pix[i+3] = clampByte(a)
		}
	}
	return dst
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

// outlineThreshold is the per-pixel edge activation level: the sum of
// absolute Laplacian responses over the three channels.
const outlineThreshold = 30

// Outline runs a discrete Laplacian over the interior pixels and paints a
// two-color edge map: accent where the response exceeds the threshold,
// background everywhere else. The 1-pixel border stays background. This is
// a stylized filter, not a general-purpose edge detector.
func Outline(src []byte) ([]byte, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = fill.R
		dst.Pix[i+1] = fill.G
		dst.Pix[i+2] = fill.B
		dst.Pix[i+3] = 0xff
	}

	// Kernel [[0,1,0],[1,-4,1],[0,1,0]] applied per channel.
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var total float64
			for ch := 0; ch < 3; ch++ {
				center := float64(img.Pix[y*img.Stride+x*4+ch])
				up := float64(img.Pix[(y-1)*img.Stride+x*4+ch])
				down := float64(img.Pix[(y+1)*img.Stride+x*4+ch])
				left := float64(img.Pix[y*img.Stride+(x-1)*4+ch])
				right := float64(img.Pix[y*img.Stride+(x+1)*4+ch])
				total += math.Abs(up + down + left + right - 4*center)
			}
			if total > outlineThreshold {
				i := y*dst.Stride + x*4
				dst.Pix[i] = accent.R
				dst.Pix[i+1] = accent.G
				dst.Pix[i+2] = accent.B
			}
		}
	}

	return encode(dst)
}
