package studio

import (
	"context"
	"fmt"

	"github.com/manash/imgstudio/internal/canvas"
	"github.com/manash/imgstudio/pkg/models"
)

const (
	outpaintScale = 1.5

	outpaintInstruction = "Fill in the empty dark border around the central image, " +
		"seamlessly extending the scene outward. Match the original content's style, " +
		"lighting and perspective exactly. Do not change the central image."
)

// Generate creates a brand-new image and starts a fresh timeline. Custom
// aspect ratios generate at the nearest native ratio; a crop guide is
// seeded so the user can crop to the requested ratio afterward.
func (s *Studio) Generate(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	if prompt == "" {
		return nil, models.ErrEmptyPrompt
	}
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.client.CreateImage(ctx, prompt, s.opts, nil)
	if err != nil {
		return nil, err
	}

	img, err := s.commit(ctx, result.Bytes, result.MimeType, prompt, true)
	if err != nil {
		return nil, err
	}

	s.tracker.Clear()
	if s.opts.IsCustomRatio() {
		s.tracker.SeedGuide(s.opts.CustomRatio)
	}
	s.adj = models.DefaultAdjustments()

	return img, nil
}

// Edit applies a natural-language instruction to the current image. An
// active selection is rewritten into a region constraint clause; the
// remote model only accepts text plus image, never structured masks. The
// edit always starts from the clean (unwatermarked) bytes.
func (s *Studio) Edit(ctx context.Context, instruction string) (*models.GeneratedImage, error) {
	if instruction == "" {
		return nil, models.ErrEmptyInstruction
	}
	current := s.hist.Current()
	if current == nil {
		return nil, ErrNoImage
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	fullInstruction := instruction
	if box := s.tracker.Active(); box != nil {
		fullInstruction = regionConstraint(*box) + instruction
	}

	result, err := s.client.EditImage(ctx, current.SourceBytes(), fullInstruction, s.opts)
	if err != nil {
		return nil, err
	}

	img, err := s.commit(ctx, result.Bytes, result.MimeType, instruction, false)
	if err != nil {
		return nil, err
	}

	// A standing custom-ratio crop guide survives edits for repeated use.
	if !s.tracker.IsGuide() {
		s.tracker.Clear()
	}

	return img, nil
}

// Outpaint extends the current image outward. The expanded-but-unfilled
// canvas is recorded as its own history version before the remote fill
// call, leaving an inspectable intermediate step.
func (s *Studio) Outpaint(ctx context.Context) (*models.GeneratedImage, error) {
	current := s.hist.Current()
	if current == nil {
		return nil, ErrNoImage
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	extended, err := canvas.Extend(current.SourceBytes(), outpaintScale)
	if err != nil {
		return nil, fmt.Errorf("failed to compose outpainting canvas: %w", err)
	}

	if _, err := s.appendProcessed(extended, "Expanded canvas for outpainting"); err != nil {
		return nil, err
	}

	result, err := s.client.EditImage(ctx, extended, outpaintInstruction, s.opts)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, result.Bytes, result.MimeType, "Outpainted", false)
}

// ApplyAdjustments bakes the current adjustment parameters into a new
// version. Local only: the rate limiter is not involved.
func (s *Studio) ApplyAdjustments() (*models.GeneratedImage, error) {
	current := s.hist.Current()
	if current == nil {
		return nil, ErrNoImage
	}

	out, err := canvas.Adjust(current.SourceBytes(), s.adj)
	if err != nil {
		return nil, err
	}

	img, err := s.appendProcessed(out, "Adjusted")
	if err != nil {
		return nil, err
	}
	s.adj = models.DefaultAdjustments()
	return img, nil
}

// ApplyOutline runs the stylized edge-map filter. Local only.
func (s *Studio) ApplyOutline() (*models.GeneratedImage, error) {
	current := s.hist.Current()
	if current == nil {
		return nil, ErrNoImage
	}

	out, err := canvas.Outline(current.SourceBytes())
	if err != nil {
		return nil, err
	}
	return s.appendProcessed(out, "Outline filter")
}

// ApplyCrop consumes the active selection box and crops the current image
// to it. Local only.
func (s *Studio) ApplyCrop() (*models.GeneratedImage, error) {
	current := s.hist.Current()
	if current == nil {
		return nil, ErrNoImage
	}
	box := s.tracker.Active()
	if box == nil {
		return nil, ErrNoSelection
	}

	out, err := canvas.Crop(current.SourceBytes(), *box)
	if err != nil {
		return nil, err
	}

	img, err := s.appendProcessed(out, "Cropped")
	if err != nil {
		return nil, err
	}
	s.tracker.Clear()
	return img, nil
}

// Suggest returns prompt variants. Best effort; an empty slice on failure.
func (s *Studio) Suggest(ctx context.Context, prompt string) []string {
	variants, err := s.client.SuggestVariants(ctx, prompt)
	if err != nil {
		return nil
	}
	return variants
}

// Usage reports requests used inside the current window and the cap.
func (s *Studio) Usage() (used, cap int) {
	return s.limiter.Used(), s.limiter.Cap()
}

// acquire runs the pre-flight gate for remote operations: the busy guard
// and the local rate limiter. Quota is consumed by commit, after success.
func (s *Studio) acquire(ctx context.Context) (func(), error) {
	if s.state == Submitting {
		return nil, ErrBusy
	}

	decision, err := s.limiter.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &RateLimitedError{MinutesUntilReset: decision.MinutesUntilReset}
	}

	s.state = Submitting
	return func() { s.state = Idle }, nil
}

// commit post-processes a successful remote result and records it:
// watermark for display, clean bytes retained, history and gallery
// updated, quota consumed. Any processing failure leaves all state
// untouched.
func (s *Studio) commit(ctx context.Context, raw []byte, mimeType, prompt string, fresh bool) (*models.GeneratedImage, error) {
	display, err := canvas.Watermark(raw)
	if err != nil {
		return nil, err
	}

	if mimeType == "" {
		mimeType = "image/png"
	}
	img := s.newImage(display, raw, mimeType, prompt)

	if fresh {
		s.hist.StartNew(img)
	} else {
		s.hist.Append(img)
	}
	s.gallery.Add(img)

	if err := s.limiter.Record(ctx); err != nil {
		return nil, err
	}
	return img, nil
}

// appendProcessed records the result of a local canvas operation:
// re-watermarked for display, clean bytes retained, no quota consumed.
func (s *Studio) appendProcessed(clean []byte, label string) (*models.GeneratedImage, error) {
	display, err := canvas.Watermark(clean)
	if err != nil {
		return nil, err
	}

	img := s.newImage(display, clean, "image/png", label)
	s.hist.Append(img)
	s.gallery.Add(img)
	return img, nil
}

// regionConstraint renders a selection as the natural-language clause
// prefixed to an edit instruction.
func regionConstraint(box models.SelectionBox) string {
	return fmt.Sprintf(
		"Apply the following change only within the rectangular region located "+
			"%.1f%% from the left and %.1f%% from the top, spanning %.1f%% of the "+
			"image width and %.1f%% of the image height. Preserve everything outside "+
			"that region exactly as it is. Task: ",
		box.X, box.Y, box.W, box.H)
}
