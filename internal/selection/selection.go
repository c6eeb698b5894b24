// Package selection converts pointer-drag gestures into normalized
// percentage regions. All math is relative to the image's own rendered
// bounding rectangle, never the outer pan/zoom wrapper, so selections stay
// correct at any zoom level or pan offset.
package selection

import (
	"errors"

	"github.com/manash/imgstudio/pkg/models"
)

var ErrNotDragging = errors.New("no drag in progress")

// Bounds is the rendered rectangle of the image element itself, in the
// same coordinate space as incoming pointer events.
type Bounds struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Tracker is the drag state machine. A drag produces a box anchored at its
// top-left regardless of drag direction; releasing a degenerate box (under
// 1% in either dimension) discards it as an accidental click.
type Tracker struct {
	enabled  bool
	dragging bool
	originX  float64
	originY  float64
	bounds   Bounds
	box      *models.SelectionBox
	guide    bool
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Enabled() bool {
	return t.enabled
}

func (t *Tracker) SetEnabled(enabled bool) {
	t.enabled = enabled
	if !enabled {
		t.Clear()
	}
}

// Active returns the committed selection box, or nil.
func (t *Tracker) Active() *models.SelectionBox {
	return t.box
}

// IsGuide reports whether the active box is a standing crop guide seeded
// for a custom aspect ratio (kept across edits for repeated cropping).
func (t *Tracker) IsGuide() bool {
	return t.box != nil && t.guide
}

// Clear drops any selection and any drag in progress. Called on image
// change, mode toggle, and after a crop consumes the box.
func (t *Tracker) Clear() {
	t.box = nil
	t.dragging = false
	t.guide = false
}

// Begin starts a drag at a pointer position, recording the origin in
// percentage coordinates clamped to the image.
func (t *Tracker) Begin(pointerX, pointerY float64, bounds Bounds) {
	if !t.enabled {
		return
	}
	t.bounds = bounds
	t.originX, t.originY = t.toPercent(pointerX, pointerY)
	t.dragging = true
	t.guide = false
	t.box = &models.SelectionBox{X: t.originX, Y: t.originY}
}

// Move updates the live box during a drag. The box is normalized so its
// origin is the top-left corner whichever direction the user drags.
func (t *Tracker) Move(pointerX, pointerY float64) {
	if !t.dragging {
		return
	}
	cx, cy := t.toPercent(pointerX, pointerY)
	t.box = &models.SelectionBox{
		X: min(t.originX, cx),
		Y: min(t.originY, cy),
		W: abs(cx - t.originX),
		H: abs(cy - t.originY),
	}
}

// End commits the drag. Degenerate boxes are discarded and (nil, false) is
// returned; otherwise the clamped box is kept active and returned.
func (t *Tracker) End() (*models.SelectionBox, bool) {
	if !t.dragging {
		return nil, false
	}
	t.dragging = false

	if t.box == nil || t.box.IsDegenerate() {
		t.box = nil
		return nil, false
	}

	clamped := t.box.Clamp()
	t.box = &clamped
	return t.box, true
}

// SeedGuide installs a crop guide matching a requested custom ratio and
// force-enables selection mode. The remote model only generates native
// ratios; the guide shows the user what to crop afterward.
func (t *Tracker) SeedGuide(ratio float64) {
	if ratio <= 0 {
		return
	}
	box := models.SelectionBox{X: 10, Y: 10, W: 80, H: 80 / ratio}.Clamp()
	t.box = &box
	t.guide = true
	t.enabled = true
	t.dragging = false
}

func (t *Tracker) toPercent(pointerX, pointerY float64) (float64, float64) {
	x := (pointerX - t.bounds.Left) / t.bounds.Width * 100
	y := (pointerY - t.bounds.Top) / t.bounds.Height * 100
	return clampPct(x), clampPct(y)
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
