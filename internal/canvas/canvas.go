// Package canvas implements the offline post-processing pipeline: every
// operation decodes an encoded payload, transforms pixels, and re-encodes
// to PNG. Nothing here touches the network or the rate limiter.
package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	_ "image/jpeg"

	"github.com/manash/imgstudio/pkg/models"
)

var (
	ErrDecode    = errors.New("failed to decode image")
	ErrEmptyCrop = errors.New("crop region is empty")
)

// fill is the neutral dark used for the outpainting border and the outline
// background.
var fill = color.NRGBA{R: 0x20, G: 0x21, B: 0x24, A: 0xff}

// accent is the edge color produced by the outline filter.
var accent = color.NRGBA{R: 0x8a, G: 0xb4, B: 0xf8, A: 0xff}

func decode(src []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return toNRGBA(img), nil
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Dimensions returns the intrinsic pixel size of an encoded payload.
func Dimensions(src []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Extend produces the outpainting canvas: a buffer scale times the source
// size, filled with the neutral dark marker color, with the original drawn
// centered. The border is what the remote model is asked to fill in.
func Extend(src []byte, scale float64) ([]byte, error) {
	if scale <= 1 {
		return nil, fmt.Errorf("extend scale must be greater than 1, got %v", scale)
	}

	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	newW, newH := int(float64(w)*scale), int(float64(h)*scale)

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)

	offset := image.Pt((newW-w)/2, (newH-h)/2)
	draw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}, img, image.Point{}, draw.Src)

	return encode(dst)
}

// Crop extracts the percentage box from the source. A full box (0,0,100,100)
// is an identity crop dimension-wise.
func Crop(src []byte, box models.SelectionBox) ([]byte, error) {
	img, err := decode(src)
	if err != nil {
		return nil, err
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	px, py, pw, ph := box.Clamp().PixelRect(w, h)
	if pw < 1 || ph < 1 {
		return nil, ErrEmptyCrop
	}

	dst := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(px, py), draw.Src)

	return encode(dst)
}
