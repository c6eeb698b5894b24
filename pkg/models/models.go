package models

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrEmptyInstruction = errors.New("edit instruction cannot be empty")
	ErrInvalidRatio     = errors.New("invalid aspect ratio")
	ErrInvalidCustom    = errors.New("custom ratio must be positive")
	ErrInvalidTier      = errors.New("invalid resolution tier")
	ErrAdjustmentRange  = errors.New("adjustment value out of range")
	ErrNoImageData      = errors.New("image data is required")
)

// AspectRatio is one of the ratios the remote model generates natively,
// plus a custom marker realized by a client-side crop.
type AspectRatio string

const (
	RatioSquare    AspectRatio = "1:1"
	RatioLandscape AspectRatio = "4:3"
	RatioPortrait  AspectRatio = "3:4"
	RatioWide      AspectRatio = "16:9"
	RatioTall      AspectRatio = "9:16"
	RatioCustom    AspectRatio = "custom"
)

func NativeRatios() []AspectRatio {
	return []AspectRatio{RatioSquare, RatioLandscape, RatioPortrait, RatioWide, RatioTall}
}

func (r AspectRatio) IsValid() bool {
	return r == RatioCustom || slices.Contains(NativeRatios(), r)
}

func (r AspectRatio) String() string {
	return string(r)
}

// Value returns width/height for a native ratio, 0 for custom or unknown.
func (r AspectRatio) Value() float64 {
	switch r {
	case RatioSquare:
		return 1
	case RatioLandscape:
		return 4.0 / 3.0
	case RatioPortrait:
		return 3.0 / 4.0
	case RatioWide:
		return 16.0 / 9.0
	case RatioTall:
		return 9.0 / 16.0
	default:
		return 0
	}
}

// NearestNative maps an arbitrary width/height value to the closest
// natively supported ratio. Custom ratios generate at this ratio and are
// cropped client-side afterward.
func NearestNative(value float64) AspectRatio {
	best := RatioSquare
	bestDiff := math.Inf(1)
	for _, r := range NativeRatios() {
		if d := math.Abs(r.Value() - value); d < bestDiff {
			best = r
			bestDiff = d
		}
	}
	return best
}

// Resolution is the requested output tier.
type Resolution string

const (
	Resolution1K Resolution = "1K"
	Resolution2K Resolution = "2K"
	Resolution4K Resolution = "4K"
)

func ValidResolutions() []Resolution {
	return []Resolution{Resolution1K, Resolution2K, Resolution4K}
}

func (r Resolution) IsValid() bool {
	return slices.Contains(ValidResolutions(), r)
}

// Options carries the generation parameters for a create or edit call.
type Options struct {
	AspectRatio AspectRatio
	CustomRatio float64 // width/height, used only when AspectRatio == RatioCustom
	Resolution  Resolution
	Style       string
	Model       string
}

func DefaultOptions() Options {
	return Options{
		AspectRatio: RatioSquare,
		Resolution:  Resolution1K,
		Model:       "gemini-image-1",
	}
}

func (o *Options) Validate() error {
	if !o.AspectRatio.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRatio, o.AspectRatio)
	}
	if o.AspectRatio == RatioCustom && o.CustomRatio <= 0 {
		return ErrInvalidCustom
	}
	if !o.Resolution.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTier, o.Resolution)
	}
	return nil
}

// EffectiveRatio returns the width/height the user actually asked for.
func (o *Options) EffectiveRatio() float64 {
	if o.AspectRatio == RatioCustom {
		return o.CustomRatio
	}
	return o.AspectRatio.Value()
}

// NativeForCall returns the ratio sent to the remote model. Custom ratios
// map to the nearest native one; the crop happens client-side.
func (o *Options) NativeForCall() AspectRatio {
	if o.AspectRatio == RatioCustom {
		return NearestNative(o.CustomRatio)
	}
	return o.AspectRatio
}

// IsCustomRatio reports whether a client-side crop guide applies.
func (o *Options) IsCustomRatio() bool {
	return o.AspectRatio == RatioCustom
}

// GeneratedImage is a single immutable version of a visual artifact.
// Display holds the watermarked payload shown and downloaded; Clean, when
// present, holds the unwatermarked payload used as the source for further
// edits so watermarks never compound.
type GeneratedImage struct {
	ID           string
	Display      []byte
	Clean        []byte
	MimeType     string
	SourcePrompt string
	CreatedAt    time.Time
}

// SourceBytes returns the payload subsequent edits should start from:
// the clean copy if one was retained, otherwise the display copy.
func (g *GeneratedImage) SourceBytes() []byte {
	if len(g.Clean) > 0 {
		return g.Clean
	}
	return g.Display
}

// SelectionBox is a rectangle in percentage units (0-100) relative to the
// image's intrinsic bounding box, independent of any zoom or pan transform.
type SelectionBox struct {
	X float64
	Y float64
	W float64
	H float64
}

// Clamp constrains the box so it lies entirely within the image:
// x,y,w,h in [0,100] with x+w <= 100 and y+h <= 100.
func (b SelectionBox) Clamp() SelectionBox {
	b.X = clampPct(b.X)
	b.Y = clampPct(b.Y)
	b.W = clampPct(b.W)
	b.H = clampPct(b.H)
	if b.X+b.W > 100 {
		b.W = 100 - b.X
	}
	if b.Y+b.H > 100 {
		b.H = 100 - b.Y
	}
	return b
}

// IsDegenerate reports whether the box is too small to be a deliberate
// selection (an accidental click rather than a drag).
func (b SelectionBox) IsDegenerate() bool {
	return b.W < 1 || b.H < 1
}

// PixelRect converts the percentage box to pixel coordinates for an image
// of the given intrinsic dimensions.
func (b SelectionBox) PixelRect(width, height int) (x, y, w, h int) {
	x = int(b.X / 100 * float64(width))
	y = int(b.Y / 100 * float64(height))
	w = int(b.W / 100 * float64(width))
	h = int(b.H / 100 * float64(height))
	return x, y, w, h
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Adjustments are the parameters of the offline color pipeline. Brightness,
// contrast and saturation are percentages where 100 is identity; blur is a
// radius in pixels; sepia and grayscale are blend percentages.
type Adjustments struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Blur       float64
	Sepia      float64
	Grayscale  float64
}

func DefaultAdjustments() Adjustments {
	return Adjustments{
		Brightness: 100,
		Contrast:   100,
		Saturation: 100,
	}
}

func (a *Adjustments) Validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"brightness", a.Brightness, 0, 200},
		{"contrast", a.Contrast, 0, 200},
		{"saturation", a.Saturation, 0, 200},
		{"blur", a.Blur, 0, 20},
		{"sepia", a.Sepia, 0, 100},
		{"grayscale", a.Grayscale, 0, 100},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s=%v (allowed %v-%v)", ErrAdjustmentRange, c.name, c.value, c.min, c.max)
		}
	}
	return nil
}

// IsNeutral reports whether applying the adjustments would be an identity
// transform.
func (a *Adjustments) IsNeutral() bool {
	return *a == DefaultAdjustments()
}

// Preset is a named, durable snapshot of generation options.
type Preset struct {
	ID        string
	Name      string
	Options   Options
	CreatedAt time.Time
}
