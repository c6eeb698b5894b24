// Package display renders image previews inline using the kitty graphics
// protocol where the terminal supports it.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/manash/imgstudio/pkg/models"
)

type Displayer struct {
	out io.Writer
}

func New(out io.Writer) *Displayer {
	return &Displayer{out: out}
}

// Show writes the image's display bytes to the terminal inline.
func (d *Displayer) Show(img *models.GeneratedImage) error {
	if img == nil || len(img.Display) == 0 {
		return models.ErrNoImageData
	}

	enc := NewKittyEncoder(d.out)
	if err := enc.Encode(img.Display); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	fmt.Fprintln(d.out)
	return nil
}

// Supported reports whether inline previews can work: stdout must be a
// real terminal and the terminal must speak the kitty protocol.
func Supported(fd uintptr) bool {
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	return terminalSpeaksKitty()
}

func terminalSpeaksKitty() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	for _, prog := range []string{"kitty", "ghostty", "iterm.app", "wezterm"} {
		if termProgram == prog {
			return true
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}
