package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Mark geometry: a diamond ring with a solid dot beside it, twice as wide
// as it is tall.
const markAspect = 2.0

// Watermark composites the studio mark onto the bottom-right corner at 50%
// opacity with a soft drop shadow, so it reads on both light and dark
// content. Callers retain the unwatermarked bytes separately; watermarks
// must never compound across edit iterations.
func Watermark(src []byte) ([]byte, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	minDim := math.Min(float64(w), float64(h))

	markW := int(math.Max(60, minDim*0.10))
	markH := int(float64(markW) / markAspect)
	if markH < 1 {
		markH = 1
	}
	pad := int(math.Max(15, minDim*0.02))

	shape := markShape(markW, markH)

	x := w - markW - pad
	y := h - markH - pad
	rect := image.Rect(x, y, x+markW, y+markH)

	// Soft shadow: the same shape, blurred, offset down-right.
	shadow := image.NewNRGBA(image.Rect(0, 0, markW, markH))
	draw.DrawMask(shadow, shadow.Bounds(),
		image.NewUniform(color.NRGBA{A: 0x60}), image.Point{}, shape, image.Point{}, draw.Src)
	shadow = gaussianBlur(shadow, 3)
	draw.Draw(img, rect.Add(image.Pt(2, 2)), shadow, image.Point{}, draw.Over)

	draw.DrawMask(img, rect,
		image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}),
		image.Point{}, shape, image.Point{}, draw.Over)

	return encode(img)
}

// markShape renders the mark's coverage as an alpha mask.
func markShape(w, h int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, w, h))

	// Diamond ring centered in the left square of the mark box.
	dcx, dcy := float64(h)/2, float64(h)/2
	dr := float64(h) / 2

	// Solid dot in the right half.
	ccx, ccy := float64(w)-float64(h)*0.35, float64(h)/2
	cr := float64(h) * 0.28

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fx, fy := float64(x)+0.5, float64(y)+0.5

			d := (math.Abs(fx-dcx) + math.Abs(fy-dcy)) / dr
			inRing := d <= 1 && d >= 0.55

			dx, dy := fx-ccx, fy-ccy
			inDot := dx*dx+dy*dy <= cr*cr

			if inRing || inDot {
				mask.SetAlpha(x, y, color.Alpha{A: 0xff})
			}
		}
	}
	return mask
}
