// Package repl is the interactive surface: it parses commands, drives the
// studio session, and renders results and errors to the terminal.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manash/imgstudio/internal/display"
	"github.com/manash/imgstudio/internal/provider"
	"github.com/manash/imgstudio/internal/store"
	"github.com/manash/imgstudio/internal/studio"
)

type REPL struct {
	in        io.Reader
	out       io.Writer
	err       io.Writer
	studio    *studio.Studio
	store     *store.Store
	displayer *display.Displayer
	inline    bool
	commands  map[string]Command
	running   bool
}

type Config struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Studio *studio.Studio
	Store  *store.Store

	// Inline enables kitty-protocol previews after image-changing
	// operations.
	Inline bool
}

func New(cfg *Config) *REPL {
	r := &REPL{
		in:        cfg.In,
		out:       cfg.Out,
		err:       cfg.Err,
		studio:    cfg.Studio,
		store:     cfg.Store,
		displayer: display.New(cfg.Out),
		inline:    cfg.Inline,
		commands:  make(map[string]Command),
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.err, "Error: %s\n", presentError(err))
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "imgstudio interactive mode")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	opts := r.studio.Options()
	if hist := r.studio.History(); hist.Len() > 0 {
		fmt.Fprintf(r.out, "imgstudio [%s] (v%d/%d)> ", opts.Model, hist.Index()+1, hist.Len())
	} else {
		fmt.Fprintf(r.out, "imgstudio [%s]> ", opts.Model)
	}
}

// showCurrent renders the new current image inline when previews are on.
// Rendering problems are warnings, never command failures.
func (r *REPL) showCurrent() {
	if !r.inline {
		return
	}
	if img := r.studio.Current(); img != nil {
		if err := r.displayer.Show(img); err != nil {
			fmt.Fprintf(r.err, "Warning: failed to display: %v\n", err)
		}
	}
}

// presentError phrases a failure for the terminal, matching on error kind
// rather than message text.
func presentError(err error) string {
	var rle *studio.RateLimitedError
	if errors.As(err, &rle) {
		return fmt.Sprintf("rate limit reached - try again in %d minute(s)", rle.MinutesUntilReset)
	}

	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case provider.KindAuth:
			return "API key was rejected - run 'imgstudio keys set' with a valid key"
		case provider.KindQuota:
			return "the API quota is exhausted - wait before retrying"
		case provider.KindContentRefusal:
			if apiErr.Message != "" {
				return fmt.Sprintf("the model declined this request: %s", apiErr.Message)
			}
			return "the model declined this request - try rephrasing the prompt"
		case provider.KindTimeout:
			return "the request timed out - try again"
		default:
			return fmt.Sprintf("request failed, try again (%v)", err)
		}
	}

	return err.Error()
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
