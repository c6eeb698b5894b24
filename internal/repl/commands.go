package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/manash/imgstudio/internal/imagefile"
	"github.com/manash/imgstudio/internal/selection"
	"github.com/manash/imgstudio/pkg/models"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func allCommands() []Command {
	return []Command{
		&GenerateCommand{},
		&EditCommand{},
		&OutpaintCommand{},
		&UndoCommand{},
		&RedoCommand{},
		&JumpCommand{},
		&HistoryCommand{},
		&GalleryCommand{},
		&LoadCommand{},
		&SelectCommand{},
		&CropCommand{},
		&AdjustCommand{},
		&ResetCommand{},
		&OutlineCommand{},
		&PresetCommand{},
		&SuggestCommand{},
		&RatioCommand{},
		&StyleCommand{},
		&UsageCommand{},
		&SaveCommand{},
		&ShowCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}
}

func (r *REPL) registerCommands() {
	for _, cmd := range allCommands() {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// GenerateCommand creates a new image and starts a fresh timeline.
type GenerateCommand struct{}

func (c *GenerateCommand) Name() string        { return "generate" }
func (c *GenerateCommand) Aliases() []string   { return []string{"gen", "g"} }
func (c *GenerateCommand) Description() string { return "Generate a new image from a prompt" }
func (c *GenerateCommand) Usage() string       { return "generate <prompt>" }

func (c *GenerateCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	prompt := strings.Join(args, " ")
	opts := r.studio.Options()

	fmt.Fprintf(r.out, "Generating with %s...\n", opts.Model)

	img, err := r.studio.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	r.showCurrent()
	fmt.Fprintf(r.out, "Created %s\n", img.ID)
	if opts.IsCustomRatio() {
		fmt.Fprintf(r.out, "Custom ratio %.2f requested: generated at %s, a crop guide is active - adjust it and run 'crop'\n",
			opts.CustomRatio, opts.NativeForCall())
	}
	return nil
}

// EditCommand applies an instruction to the current image.
type EditCommand struct{}

func (c *EditCommand) Name() string        { return "edit" }
func (c *EditCommand) Aliases() []string   { return []string{"e"} }
func (c *EditCommand) Description() string { return "Edit the current image with an instruction" }
func (c *EditCommand) Usage() string       { return "edit <instruction>" }

func (c *EditCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	instruction := strings.Join(args, " ")
	if box := r.studio.Selection().Active(); box != nil {
		fmt.Fprintf(r.out, "Editing within selection (%.0f%%, %.0f%%, %.0f%%x%.0f%%)...\n",
			box.X, box.Y, box.W, box.H)
	} else {
		fmt.Fprintln(r.out, "Editing...")
	}

	img, err := r.studio.Edit(ctx, instruction)
	if err != nil {
		return err
	}

	r.showCurrent()
	fmt.Fprintf(r.out, "Created %s (version %d of %d)\n",
		img.ID, r.studio.History().Index()+1, r.studio.History().Len())
	return nil
}

// OutpaintCommand extends the current image outward.
type OutpaintCommand struct{}

func (c *OutpaintCommand) Name() string        { return "outpaint" }
func (c *OutpaintCommand) Aliases() []string   { return []string{"expand"} }
func (c *OutpaintCommand) Description() string { return "Extend the current image beyond its borders" }
func (c *OutpaintCommand) Usage() string       { return "outpaint" }

func (c *OutpaintCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Expanding canvas and filling the border...")

	img, err := r.studio.Outpaint(ctx)
	if err != nil {
		return err
	}

	r.showCurrent()
	fmt.Fprintf(r.out, "Created %s\n", img.ID)
	return nil
}

// UndoCommand steps one version back.
type UndoCommand struct{}

func (c *UndoCommand) Name() string        { return "undo" }
func (c *UndoCommand) Aliases() []string   { return []string{"u", "back"} }
func (c *UndoCommand) Description() string { return "Step back to the previous version" }
func (c *UndoCommand) Usage() string       { return "undo" }

func (c *UndoCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	if !r.studio.Undo() {
		fmt.Fprintln(r.out, "Nothing to undo")
		return nil
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Now at version %d of %d: %q\n",
		r.studio.History().Index()+1, r.studio.History().Len(),
		truncate(r.studio.Current().SourcePrompt, 50))
	return nil
}

// RedoCommand steps one version forward.
type RedoCommand struct{}

func (c *RedoCommand) Name() string        { return "redo" }
func (c *RedoCommand) Aliases() []string   { return []string{"forward"} }
func (c *RedoCommand) Description() string { return "Step forward to the next version" }
func (c *RedoCommand) Usage() string       { return "redo" }

func (c *RedoCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	if !r.studio.Redo() {
		fmt.Fprintln(r.out, "Nothing to redo")
		return nil
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Now at version %d of %d: %q\n",
		r.studio.History().Index()+1, r.studio.History().Len(),
		truncate(r.studio.Current().SourcePrompt, 50))
	return nil
}

// JumpCommand moves directly to a version by number.
type JumpCommand struct{}

func (c *JumpCommand) Name() string        { return "jump" }
func (c *JumpCommand) Aliases() []string   { return []string{"j"} }
func (c *JumpCommand) Description() string { return "Jump to a specific version from history" }
func (c *JumpCommand) Usage() string       { return "jump <version>" }

func (c *JumpCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("version must be a number: %q", args[0])
	}
	if err := r.studio.JumpTo(n - 1); err != nil {
		return fmt.Errorf("no version %d (history has %d)", n, r.studio.History().Len())
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Now at version %d of %d\n", n, r.studio.History().Len())
	return nil
}

// HistoryCommand lists the versions of the active timeline.
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"h", "hist"} }
func (c *HistoryCommand) Description() string { return "Show the version timeline" }
func (c *HistoryCommand) Usage() string       { return "history" }

func (c *HistoryCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	hist := r.studio.History()
	if hist.Len() == 0 {
		fmt.Fprintln(r.out, "No history yet")
		return nil
	}

	for i, v := range hist.Versions() {
		marker := "  "
		if i == hist.Index() {
			marker = "> "
		}
		fmt.Fprintf(r.out, "%s[%d] %s: %q\n",
			marker, i+1, humanize.Time(v.CreatedAt), truncate(v.SourcePrompt, 50))
	}
	return nil
}

// GalleryCommand lists every image produced this session.
type GalleryCommand struct{}

func (c *GalleryCommand) Name() string        { return "gallery" }
func (c *GalleryCommand) Aliases() []string   { return []string{"ls"} }
func (c *GalleryCommand) Description() string { return "List all images from this session" }
func (c *GalleryCommand) Usage() string       { return "gallery" }

func (c *GalleryCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	entries := r.studio.Gallery().List()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "Gallery is empty")
		return nil
	}

	fmt.Fprintf(r.out, "%-20s  %-15s  %s\n", "ID", "Created", "Prompt")
	fmt.Fprintln(r.out, strings.Repeat("-", 70))
	for _, e := range entries {
		fmt.Fprintf(r.out, "%-20s  %-15s  %s\n",
			e.ID, humanize.Time(e.CreatedAt), truncate(e.SourcePrompt, 40))
	}
	return nil
}

// LoadCommand starts a fresh timeline from a gallery image.
type LoadCommand struct{}

func (c *LoadCommand) Name() string        { return "load" }
func (c *LoadCommand) Aliases() []string   { return nil }
func (c *LoadCommand) Description() string { return "Load a gallery image as a new timeline" }
func (c *LoadCommand) Usage() string       { return "load <id>" }

func (c *LoadCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	id := args[0]
	// Accept unambiguous id prefixes.
	if _, err := r.studio.Gallery().Get(id); err != nil {
		var match string
		for _, e := range r.studio.Gallery().List() {
			if strings.HasPrefix(e.ID, id) {
				if match != "" {
					return fmt.Errorf("ambiguous id prefix: %s", id)
				}
				match = e.ID
			}
		}
		if match == "" {
			return fmt.Errorf("image not found: %s", id)
		}
		id = match
	}

	img, err := r.studio.LoadFromGallery(id)
	if err != nil {
		return err
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Loaded %s: %q\n", img.ID, truncate(img.SourcePrompt, 50))
	return nil
}

// SelectCommand manages the region-selection box.
type SelectCommand struct{}

func (c *SelectCommand) Name() string        { return "select" }
func (c *SelectCommand) Aliases() []string   { return []string{"sel"} }
func (c *SelectCommand) Description() string { return "Manage the selection region (on, off, box, clear)" }
func (c *SelectCommand) Usage() string       { return "select <on|off|clear|box x y w h>" }

func (c *SelectCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		if box := r.studio.Selection().Active(); box != nil {
			kind := "selection"
			if r.studio.Selection().IsGuide() {
				kind = "crop guide"
			}
			fmt.Fprintf(r.out, "Active %s: %.1f%%, %.1f%%, %.1f%% x %.1f%%\n",
				kind, box.X, box.Y, box.W, box.H)
		} else {
			fmt.Fprintln(r.out, "No active selection")
		}
		return nil
	}

	tracker := r.studio.Selection()
	switch strings.ToLower(args[0]) {
	case "on":
		tracker.SetEnabled(true)
		fmt.Fprintln(r.out, "Selection mode on")
	case "off":
		tracker.SetEnabled(false)
		fmt.Fprintln(r.out, "Selection mode off, selection cleared")
	case "clear":
		tracker.Clear()
		fmt.Fprintln(r.out, "Selection cleared")
	case "box":
		if len(args) != 5 {
			return fmt.Errorf("usage: select box <x> <y> <w> <h> (percent)")
		}
		vals := make([]float64, 4)
		for i, a := range args[1:] {
			v, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %q", a)
			}
			vals[i] = v
		}
		// Replay the box as a drag over a unit viewport so the same
		// normalization, clamping and degenerate-discard rules apply.
		bounds := selection.Bounds{Width: 100, Height: 100}
		tracker.SetEnabled(true)
		tracker.Begin(vals[0], vals[1], bounds)
		tracker.Move(vals[0]+vals[2], vals[1]+vals[3])
		box, ok := tracker.End()
		if !ok {
			return fmt.Errorf("selection too small (under 1%% in either dimension)")
		}
		fmt.Fprintf(r.out, "Selection set: %.1f%%, %.1f%%, %.1f%% x %.1f%%\n",
			box.X, box.Y, box.W, box.H)
	default:
		return fmt.Errorf("usage: %s", c.Usage())
	}
	return nil
}

// CropCommand crops the current image to the active selection.
type CropCommand struct{}

func (c *CropCommand) Name() string        { return "crop" }
func (c *CropCommand) Aliases() []string   { return nil }
func (c *CropCommand) Description() string { return "Crop the current image to the selection" }
func (c *CropCommand) Usage() string       { return "crop" }

func (c *CropCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	img, err := r.studio.ApplyCrop()
	if err != nil {
		return err
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Cropped, created %s\n", img.ID)
	return nil
}

// AdjustCommand sets and applies color adjustments.
type AdjustCommand struct{}

func (c *AdjustCommand) Name() string      { return "adjust" }
func (c *AdjustCommand) Aliases() []string { return []string{"adj"} }
func (c *AdjustCommand) Description() string {
	return "Set color adjustments and bake them into a new version"
}
func (c *AdjustCommand) Usage() string {
	return "adjust [<name> <value>]... | adjust apply  (names: brightness, contrast, saturation, blur, sepia, grayscale)"
}

func (c *AdjustCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		adj := r.studio.Adjustments()
		fmt.Fprintf(r.out, "brightness=%.0f contrast=%.0f saturation=%.0f blur=%.1f sepia=%.0f grayscale=%.0f\n",
			adj.Brightness, adj.Contrast, adj.Saturation, adj.Blur, adj.Sepia, adj.Grayscale)
		if adj.IsNeutral() {
			fmt.Fprintln(r.out, "(neutral - nothing to apply)")
		}
		return nil
	}

	if len(args) == 1 && strings.EqualFold(args[0], "apply") {
		img, err := r.studio.ApplyAdjustments()
		if err != nil {
			return err
		}
		r.showCurrent()
		fmt.Fprintf(r.out, "Adjustments applied, created %s\n", img.ID)
		return nil
	}

	if len(args)%2 != 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	adj := r.studio.Adjustments()
	for i := 0; i < len(args); i += 2 {
		value, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q", args[i], args[i+1])
		}
		switch strings.ToLower(args[i]) {
		case "brightness":
			adj.Brightness = value
		case "contrast":
			adj.Contrast = value
		case "saturation":
			adj.Saturation = value
		case "blur":
			adj.Blur = value
		case "sepia":
			adj.Sepia = value
		case "grayscale", "gray":
			adj.Grayscale = value
		default:
			return fmt.Errorf("unknown adjustment: %s", args[i])
		}
	}

	if err := r.studio.SetAdjustments(adj); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Adjustments staged - run 'adjust apply' to bake them in")
	return nil
}

// ResetCommand returns staged adjustments to neutral.
type ResetCommand struct{}

func (c *ResetCommand) Name() string        { return "reset" }
func (c *ResetCommand) Aliases() []string   { return nil }
func (c *ResetCommand) Description() string { return "Reset staged adjustments to neutral" }
func (c *ResetCommand) Usage() string       { return "reset" }

func (c *ResetCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	r.studio.ResetAdjustments()
	fmt.Fprintln(r.out, "Adjustments reset")
	return nil
}

// OutlineCommand applies the stylized edge filter.
type OutlineCommand struct{}

func (c *OutlineCommand) Name() string        { return "outline" }
func (c *OutlineCommand) Aliases() []string   { return nil }
func (c *OutlineCommand) Description() string { return "Apply the stylized outline filter" }
func (c *OutlineCommand) Usage() string       { return "outline" }

func (c *OutlineCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	img, err := r.studio.ApplyOutline()
	if err != nil {
		return err
	}
	r.showCurrent()
	fmt.Fprintf(r.out, "Outline applied, created %s\n", img.ID)
	return nil
}

// PresetCommand manages durable option presets.
type PresetCommand struct{}

func (c *PresetCommand) Name() string        { return "preset" }
func (c *PresetCommand) Aliases() []string   { return []string{"p"} }
func (c *PresetCommand) Description() string { return "Manage option presets (save, list, use, delete)" }
func (c *PresetCommand) Usage() string       { return "preset <save|list|use|delete> [name]" }

func (c *PresetCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	sub := strings.ToLower(args[0])
	rest := args[1:]

	switch sub {
	case "save":
		if len(rest) == 0 {
			return fmt.Errorf("usage: preset save <name>")
		}
		name := strings.Join(rest, " ")
		p := &models.Preset{
			ID:        uuid.New().String(),
			Name:      name,
			Options:   r.studio.Options(),
			CreatedAt: time.Now().UTC(),
		}
		if err := r.store.SavePreset(ctx, p); err != nil {
			return fmt.Errorf("failed to save preset: %w", err)
		}
		fmt.Fprintf(r.out, "Preset saved: %s\n", name)
	case "list", "ls":
		presets, err := r.store.ListPresets(ctx)
		if err != nil {
			return err
		}
		if len(presets) == 0 {
			fmt.Fprintln(r.out, "No presets saved")
			return nil
		}
		fmt.Fprintf(r.out, "%-20s  %-8s  %-6s  %s\n", "Name", "Ratio", "Res", "Style")
		fmt.Fprintln(r.out, strings.Repeat("-", 50))
		for _, p := range presets {
			ratio := p.Options.AspectRatio.String()
			if p.Options.IsCustomRatio() {
				ratio = fmt.Sprintf("%.2f", p.Options.CustomRatio)
			}
			style := p.Options.Style
			if style == "" {
				style = "-"
			}
			fmt.Fprintf(r.out, "%-20s  %-8s  %-6s  %s\n",
				truncate(p.Name, 20), ratio, p.Options.Resolution, truncate(style, 20))
		}
	case "use":
		if len(rest) == 0 {
			return fmt.Errorf("usage: preset use <name>")
		}
		name := strings.Join(rest, " ")
		p, err := r.store.GetPreset(ctx, name)
		if err != nil {
			return err
		}
		if err := r.studio.SetOptions(p.Options); err != nil {
			return fmt.Errorf("preset %q holds invalid options: %w", name, err)
		}
		fmt.Fprintf(r.out, "Preset applied: %s\n", name)
	case "delete", "rm":
		if len(rest) == 0 {
			return fmt.Errorf("usage: preset delete <name>")
		}
		name := strings.Join(rest, " ")
		if err := r.store.DeletePreset(ctx, name); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Preset deleted: %s\n", name)
	default:
		return fmt.Errorf("unknown preset command: %s", sub)
	}
	return nil
}

// SuggestCommand asks the model for prompt variants.
type SuggestCommand struct{}

func (c *SuggestCommand) Name() string        { return "suggest" }
func (c *SuggestCommand) Aliases() []string   { return nil }
func (c *SuggestCommand) Description() string { return "Suggest alternative phrasings for a prompt" }
func (c *SuggestCommand) Usage() string       { return "suggest <prompt>" }

func (c *SuggestCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	variants := r.studio.Suggest(ctx, strings.Join(args, " "))
	if len(variants) == 0 {
		fmt.Fprintln(r.out, "No suggestions available right now")
		return nil
	}
	for i, v := range variants {
		fmt.Fprintf(r.out, "%d. %s\n", i+1, v)
	}
	return nil
}

// RatioCommand gets or sets the aspect ratio.
type RatioCommand struct{}

func (c *RatioCommand) Name() string        { return "ratio" }
func (c *RatioCommand) Aliases() []string   { return nil }
func (c *RatioCommand) Description() string { return "Get or set the aspect ratio" }
func (c *RatioCommand) Usage() string       { return "ratio [1:1|4:3|3:4|16:9|9:16|<width/height>]" }

func (c *RatioCommand) Execute(_ context.Context, r *REPL, args []string) error {
	opts := r.studio.Options()
	if len(args) == 0 {
		if opts.IsCustomRatio() {
			fmt.Fprintf(r.out, "Aspect ratio: custom %.3f (generates at %s, cropped after)\n",
				opts.CustomRatio, opts.NativeForCall())
		} else {
			fmt.Fprintf(r.out, "Aspect ratio: %s\n", opts.AspectRatio)
		}
		return nil
	}

	arg := args[0]
	if ratio := models.AspectRatio(arg); ratio != models.RatioCustom && ratio.IsValid() {
		opts.AspectRatio = ratio
		opts.CustomRatio = 0
	} else {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil || value <= 0 {
			return fmt.Errorf("%w: %q (use a native ratio or a positive width/height value)",
				models.ErrInvalidRatio, arg)
		}
		opts.AspectRatio = models.RatioCustom
		opts.CustomRatio = value
	}

	if err := r.studio.SetOptions(opts); err != nil {
		return err
	}
	if opts.IsCustomRatio() {
		fmt.Fprintf(r.out, "Aspect ratio set to custom %.3f (will generate at %s and crop)\n",
			opts.CustomRatio, opts.NativeForCall())
	} else {
		fmt.Fprintf(r.out, "Aspect ratio set to %s\n", opts.AspectRatio)
	}
	return nil
}

// StyleCommand gets or sets the style modifier appended to prompts.
type StyleCommand struct{}

func (c *StyleCommand) Name() string        { return "style" }
func (c *StyleCommand) Aliases() []string   { return nil }
func (c *StyleCommand) Description() string { return "Get or set the style modifier" }
func (c *StyleCommand) Usage() string       { return "style [<text>|none]" }

func (c *StyleCommand) Execute(_ context.Context, r *REPL, args []string) error {
	opts := r.studio.Options()
	if len(args) == 0 {
		if opts.Style == "" {
			fmt.Fprintln(r.out, "No style set")
		} else {
			fmt.Fprintf(r.out, "Style: %s\n", opts.Style)
		}
		return nil
	}

	style := strings.Join(args, " ")
	if strings.EqualFold(style, "none") {
		style = ""
	}
	opts.Style = style
	if err := r.studio.SetOptions(opts); err != nil {
		return err
	}
	if style == "" {
		fmt.Fprintln(r.out, "Style cleared")
	} else {
		fmt.Fprintf(r.out, "Style set to: %s\n", style)
	}
	return nil
}

// UsageCommand reports rate-limit consumption.
type UsageCommand struct{}

func (c *UsageCommand) Name() string        { return "usage" }
func (c *UsageCommand) Aliases() []string   { return nil }
func (c *UsageCommand) Description() string { return "Show request usage for the current window" }
func (c *UsageCommand) Usage() string       { return "usage" }

func (c *UsageCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	used, cap := r.studio.Usage()
	fmt.Fprintf(r.out, "Requests used: %d of %d in the last hour (%d remaining)\n",
		used, cap, cap-used)
	return nil
}

// SaveCommand writes the current image to disk.
type SaveCommand struct{}

func (c *SaveCommand) Name() string        { return "save" }
func (c *SaveCommand) Aliases() []string   { return []string{"s"} }
func (c *SaveCommand) Description() string { return "Save the current image to a file" }
func (c *SaveCommand) Usage() string       { return "save [filename]" }

func (c *SaveCommand) Execute(_ context.Context, r *REPL, args []string) error {
	img := r.studio.Current()
	if img == nil {
		return fmt.Errorf("no current image to save")
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	written, err := imagefile.Save(img, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Saved: %s\n", written)
	return nil
}

// ShowCommand renders the current image inline.
type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return []string{"display", "view"} }
func (c *ShowCommand) Description() string { return "Display the current image" }
func (c *ShowCommand) Usage() string       { return "show" }

func (c *ShowCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	img := r.studio.Current()
	if img == nil {
		return fmt.Errorf("no current image to display")
	}
	return r.displayer.Show(img)
}

// HelpCommand lists available commands.
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out)

	for _, cmd := range allCommands() {
		aliases := ""
		if len(cmd.Aliases()) > 0 {
			aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases(), ", "))
		}
		fmt.Fprintf(r.out, "  %-12s%s\n", cmd.Name()+aliases, cmd.Description())
		fmt.Fprintf(r.out, "               Usage: %s\n", cmd.Usage())
	}
	return nil
}

// QuitCommand exits the REPL.
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit interactive mode" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Goodbye!")
	r.Stop()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
