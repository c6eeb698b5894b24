package canvas

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/manash/imgstudio/pkg/models"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func flatImage(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func decodeNRGBA(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return toNRGBA(img)
}

func TestDimensions(t *testing.T) {
	src := flatImage(t, 64, 48, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	w, h, err := Dimensions(src)
	if err != nil {
		t.Fatalf("Dimensions() error = %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("Dimensions() = %dx%d, want 64x48", w, h)
	}

	if _, _, err := Dimensions([]byte("not an image")); !errors.Is(err, ErrDecode) {
		t.Errorf("Dimensions(garbage) error = %v, want ErrDecode", err)
	}
}

func TestExtend(t *testing.T) {
	src := flatImage(t, 100, 80, color.NRGBA{R: 200, G: 50, B: 50, A: 255})

	out, err := Extend(src, 1.5)
	if err != nil {
		t.Fatalf("Extend() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	if got := img.Bounds().Dx(); got != 150 {
		t.Errorf("width = %d, want 150", got)
	}
	if got := img.Bounds().Dy(); got != 120 {
		t.Errorf("height = %d, want 120", got)
	}

	// Corner is border fill, center is original content.
	if got := img.NRGBAAt(0, 0); got != fill {
		t.Errorf("corner = %v, want fill %v", got, fill)
	}
	if got := img.NRGBAAt(75, 60); got.R != 200 {
		t.Errorf("center = %v, want original red", got)
	}
}

func TestExtend_InvalidScale(t *testing.T) {
	src := flatImage(t, 10, 10, color.NRGBA{A: 255})
	if _, err := Extend(src, 1.0); err == nil {
		t.Error("Extend(scale=1) should fail")
	}
}

func TestCrop_FullBoxKeepsDimensions(t *testing.T) {
	src := flatImage(t, 120, 90, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	out, err := Crop(src, models.SelectionBox{X: 0, Y: 0, W: 100, H: 100})
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	if img.Bounds().Dx() != 120 || img.Bounds().Dy() != 90 {
		t.Errorf("full crop = %dx%d, want 120x90", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCrop_Region(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.NRGBA{A: 255}
			if x >= 50 {
				c.R = 255
			}
			base.SetNRGBA(x, y, c)
		}
	}
	src := encodePNG(t, base)

	out, err := Crop(src, models.SelectionBox{X: 50, Y: 0, W: 50, H: 50})
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
		t.Fatalf("crop = %dx%d, want 50x50", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if got := img.NRGBAAt(10, 10); got.R != 255 {
		t.Errorf("cropped pixel = %v, want red half", got)
	}
}

func TestCrop_Degenerate(t *testing.T) {
	src := flatImage(t, 100, 100, color.NRGBA{A: 255})
	if _, err := Crop(src, models.SelectionBox{X: 50, Y: 50, W: 0.1, H: 0.1}); !errors.Is(err, ErrEmptyCrop) {
		t.Errorf("Crop(empty box) error = %v, want ErrEmptyCrop", err)
	}
}

func TestOutline_FlatImageIsAllBackground(t *testing.T) {
	src := flatImage(t, 40, 40, color.NRGBA{R: 120, G: 140, B: 160, A: 255})

	out, err := Outline(src)
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if got := img.NRGBAAt(x, y); got != fill {
				t.Fatalf("pixel (%d,%d) = %v, want background %v", x, y, got, fill)
			}
		}
	}
}

func TestOutline_DetectsSharpEdge(t *testing.T) {
	base := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{A: 255}
			if x >= 20 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			base.SetNRGBA(x, y, c)
		}
	}

	out, err := Outline(encodePNG(t, base))
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	found := false
	for y := 1; y < 39; y++ {
		if img.NRGBAAt(19, y) == accent || img.NRGBAAt(20, y) == accent {
			found = true
			break
		}
	}
	if !found {
		t.Error("no accent pixels along a hard vertical edge")
	}
}

func TestWatermark(t *testing.T) {
	src := flatImage(t, 200, 100, color.NRGBA{R: 10, G: 10, B: 10, A: 255})

	out, err := Watermark(src)
	if err != nil {
		t.Fatalf("Watermark() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Fatalf("watermarked = %dx%d, want 200x100", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Top-left is untouched; the mark region bottom-right is lightened.
	if got := img.NRGBAAt(0, 0); got.R != 10 {
		t.Errorf("top-left = %v, want untouched", got)
	}
	changed := false
	for y := 55; y < 85 && !changed; y++ {
		for x := 125; x < 185; x++ {
			if c := img.NRGBAAt(x, y); c.R > 10 {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("no pixels changed in the mark region")
	}
}

func TestAdjust_NeutralIsIdentity(t *testing.T) {
	src := flatImage(t, 30, 30, color.NRGBA{R: 77, G: 88, B: 99, A: 255})

	out, err := Adjust(src, models.DefaultAdjustments())
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}

	img := decodeNRGBA(t, out)
	if got := img.NRGBAAt(15, 15); got != (color.NRGBA{R: 77, G: 88, B: 99, A: 255}) {
		t.Errorf("neutral adjust pixel = %v, want unchanged", got)
	}
}

func TestAdjust_Pipeline(t *testing.T) {
	src := flatImage(t, 20, 20, color.NRGBA{R: 100, G: 150, B: 200, A: 255})

	t.Run("zero brightness is black", func(t *testing.T) {
		adj := models.DefaultAdjustments()
		adj.Brightness = 0
		out, err := Adjust(src, adj)
		if err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
		got := decodeNRGBA(t, out).NRGBAAt(10, 10)
		if got.R != 0 || got.G != 0 || got.B != 0 {
			t.Errorf("pixel = %v, want black", got)
		}
	})

	t.Run("full grayscale equalizes channels", func(t *testing.T) {
		adj := models.DefaultAdjustments()
		adj.Grayscale = 100
		out, err := Adjust(src, adj)
		if err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
		got := decodeNRGBA(t, out).NRGBAAt(10, 10)
		if got.R != got.G || got.G != got.B {
			t.Errorf("pixel = %v, want equal channels", got)
		}
	})

	t.Run("blur keeps dimensions", func(t *testing.T) {
		adj := models.DefaultAdjustments()
		adj.Blur = 4
		out, err := Adjust(src, adj)
		if err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
		img := decodeNRGBA(t, out)
		if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
			t.Errorf("blurred = %dx%d, want 20x20", img.Bounds().Dx(), img.Bounds().Dy())
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		adj := models.DefaultAdjustments()
		adj.Contrast = 500
		if _, err := Adjust(src, adj); !errors.Is(err, models.ErrAdjustmentRange) {
			t.Errorf("Adjust() error = %v, want ErrAdjustmentRange", err)
		}
	})
}

func TestOperations_RejectUndecodableInput(t *testing.T) {
	garbage := []byte("definitely not an image")

	ops := map[string]func() error{
		"Extend":    func() error { _, err := Extend(garbage, 1.5); return err },
		"Crop":      func() error { _, err := Crop(garbage, models.SelectionBox{W: 100, H: 100}); return err },
		"Outline":   func() error { _, err := Outline(garbage); return err },
		"Watermark": func() error { _, err := Watermark(garbage); return err },
		"Adjust":    func() error { _, err := Adjust(garbage, models.DefaultAdjustments()); return err },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			if err := op(); !errors.Is(err, ErrDecode) {
				t.Errorf("%s(garbage) error = %v, want ErrDecode", name, err)
			}
		})
	}
}
