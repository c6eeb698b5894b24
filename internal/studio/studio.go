// Package studio orchestrates generation sessions: remote create/edit/
// outpaint calls, offline post-processing, the version history and gallery,
// and the local rate limiter.
package studio

import (
	"errors"
	"fmt"
	"time"

	"github.com/manash/imgstudio/internal/history"
	"github.com/manash/imgstudio/internal/provider"
	"github.com/manash/imgstudio/internal/ratelimit"
	"github.com/manash/imgstudio/internal/selection"
	"github.com/manash/imgstudio/pkg/models"
)

var (
	ErrBusy        = errors.New("an operation is already in flight")
	ErrNoImage     = errors.New("no current image")
	ErrNoSelection = errors.New("no active selection")
)

// RateLimitedError is the local pre-flight denial. The remote call never
// happens and no quota is consumed.
type RateLimitedError struct {
	MinutesUntilReset int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit reached, try again in %d minute(s)", e.MinutesUntilReset)
}

// State tracks whether a remote operation is in flight. Triggers are
// rejected while Submitting; there is no queuing or cancellation of a
// started operation.
type State int

const (
	Idle State = iota
	Submitting
)

// Sequence produces version ids. Ids sort by recency.
type Sequence func() string

// NewSequence derives ids from an injectable clock plus a counter, so two
// versions created in the same millisecond still sort correctly.
func NewSequence(now func() time.Time) Sequence {
	var n uint64
	return func() string {
		n++
		return fmt.Sprintf("%013d-%04d", now().UnixMilli(), n)
	}
}

// Studio owns all session state explicitly; nothing lives in package-level
// globals.
type Studio struct {
	client   provider.Client
	hist     *history.History
	gallery  *history.Gallery
	limiter  *ratelimit.Limiter
	tracker  *selection.Tracker
	opts     models.Options
	adj      models.Adjustments
	nextID   Sequence
	now      func() time.Time
	state    State
}

type Config struct {
	Client  provider.Client
	Limiter *ratelimit.Limiter
	NextID  Sequence
	Now     func() time.Time
}

func New(cfg *Config) *Studio {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	nextID := cfg.NextID
	if nextID == nil {
		nextID = NewSequence(now)
	}
	return &Studio{
		client:  cfg.Client,
		hist:    history.New(),
		gallery: history.NewGallery(),
		limiter: cfg.Limiter,
		tracker: selection.NewTracker(),
		opts:    models.DefaultOptions(),
		adj:     models.DefaultAdjustments(),
		nextID:  nextID,
		now:     now,
	}
}

func (s *Studio) State() State {
	return s.state
}

func (s *Studio) History() *history.History {
	return s.hist
}

func (s *Studio) Gallery() *history.Gallery {
	return s.gallery
}

func (s *Studio) Selection() *selection.Tracker {
	return s.tracker
}

func (s *Studio) Current() *models.GeneratedImage {
	return s.hist.Current()
}

func (s *Studio) Options() models.Options {
	return s.opts
}

func (s *Studio) SetOptions(opts models.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	s.opts = opts
	return nil
}

func (s *Studio) Adjustments() models.Adjustments {
	return s.adj
}

func (s *Studio) SetAdjustments(adj models.Adjustments) error {
	if err := adj.Validate(); err != nil {
		return err
	}
	s.adj = adj
	return nil
}

func (s *Studio) ResetAdjustments() {
	s.adj = models.DefaultAdjustments()
}

// Undo steps back one version. The selection is cleared on image change
// unless it is a standing crop guide.
func (s *Studio) Undo() bool {
	if s.hist.Undo() {
		s.clearSelectionKeepGuide()
		return true
	}
	return false
}

func (s *Studio) Redo() bool {
	if s.hist.Redo() {
		s.clearSelectionKeepGuide()
		return true
	}
	return false
}

func (s *Studio) JumpTo(index int) error {
	if err := s.hist.JumpTo(index); err != nil {
		return err
	}
	s.clearSelectionKeepGuide()
	return nil
}

// LoadFromGallery starts a fresh timeline from a gallery entry. Gallery
// entries outlive the timeline they were produced in.
func (s *Studio) LoadFromGallery(id string) (*models.GeneratedImage, error) {
	img, err := s.gallery.Get(id)
	if err != nil {
		return nil, err
	}
	s.hist.StartNew(img)
	s.tracker.Clear()
	s.adj = models.DefaultAdjustments()
	return img, nil
}

func (s *Studio) clearSelectionKeepGuide() {
	if !s.tracker.IsGuide() {
		s.tracker.Clear()
	}
}

func (s *Studio) newImage(display, clean []byte, mimeType, prompt string) *models.GeneratedImage {
	return &models.GeneratedImage{
		ID:           s.nextID(),
		Display:      display,
		Clean:        clean,
		MimeType:     mimeType,
		SourcePrompt: prompt,
		CreatedAt:    s.now(),
	}
}
