package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manash/imgstudio/internal/display"
	"github.com/manash/imgstudio/internal/keys"
	"github.com/manash/imgstudio/internal/provider"
	"github.com/manash/imgstudio/internal/provider/gemini"
	"github.com/manash/imgstudio/internal/ratelimit"
	"github.com/manash/imgstudio/internal/repl"
	"github.com/manash/imgstudio/internal/store"
	"github.com/manash/imgstudio/internal/studio"
	"github.com/manash/imgstudio/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagModel      string
	flagRatio      string
	flagResolution string
	flagStyle      string
	flagAPIKey     string
	flagTimeout    int
	flagVerbose    bool
	flagNoInline   bool
)

type App struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	GetEnv    func(string) string
	NewClient func(cfg *provider.Config) (provider.Client, error)
	NewStore  func() (*store.Store, error)
	Inline    func() bool
}

func DefaultApp() *App {
	return &App{
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		GetEnv: os.Getenv,
		NewClient: func(cfg *provider.Config) (provider.Client, error) {
			return gemini.New(cfg)
		},
		NewStore: store.New,
		Inline:   func() bool { return display.Supported(os.Stdout.Fd()) },
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgstudio",
		Short: "Interactive studio for generating and refining images",
		Long: `imgstudio is an interactive terminal studio for AI image generation:
generate an image from a prompt, then refine it iteratively with edits,
outpainting, region selections, crops, filters and color adjustments,
with full undo/redo history and a session gallery.

Examples:
  imgstudio
  imgstudio --ratio 16:9 --style "watercolor"
  imgstudio keys set`,
		Args:    cobra.NoArgs,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudio(app)
		},
	}

	cmd.Flags().StringVarP(&flagModel, "model", "m", "", "image model to use")
	cmd.Flags().StringVarP(&flagRatio, "ratio", "r", "", "aspect ratio (1:1, 4:3, 3:4, 16:9, 9:16 or a custom width/height value)")
	cmd.Flags().StringVar(&flagResolution, "resolution", "", "resolution tier (1K, 2K, 4K)")
	cmd.Flags().StringVar(&flagStyle, "style", "", "style modifier appended to every prompt")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key (defaults to stored key, then "+keys.EnvVar+")")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "request timeout in seconds")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log HTTP requests and responses")
	cmd.Flags().BoolVar(&flagNoInline, "no-inline", false, "disable inline image previews")

	cmd.AddCommand(newKeysCmd(app))

	return cmd
}

func runStudio(app *App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiKey, source, err := keys.GetAPIKey(flagAPIKey, app.GetEnv)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Using API key from %s\n", source)

	client, err := app.NewClient(&provider.Config{
		APIKey:     apiKey,
		TimeoutSec: flagTimeout,
		Verbose:    flagVerbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	opts, err := optionsFromFlags()
	if err != nil {
		return err
	}

	st, err := app.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer st.Close()

	limiter, err := ratelimit.New(ctx, st)
	if err != nil {
		return err
	}

	s := studio.New(&studio.Config{Client: client, Limiter: limiter})
	if err := s.SetOptions(opts); err != nil {
		return err
	}

	inline := !flagNoInline && app.Inline()

	r := repl.New(&repl.Config{
		In:     app.In,
		Out:    app.Out,
		Err:    app.Err,
		Studio: s,
		Store:  st,
		Inline: inline,
	})
	return r.Run(ctx)
}

// optionsFromFlags starts from defaults and overlays whatever was set.
func optionsFromFlags() (models.Options, error) {
	opts := models.DefaultOptions()

	if flagModel != "" {
		opts.Model = flagModel
	}
	if flagRatio != "" {
		if ratio := models.AspectRatio(flagRatio); ratio != models.RatioCustom && ratio.IsValid() {
			opts.AspectRatio = ratio
		} else if value, err := strconv.ParseFloat(flagRatio, 64); err == nil && value > 0 {
			opts.AspectRatio = models.RatioCustom
			opts.CustomRatio = value
		} else {
			return opts, fmt.Errorf("%w: %q", models.ErrInvalidRatio, flagRatio)
		}
	}
	if flagResolution != "" {
		opts.Resolution = models.Resolution(flagResolution)
	}
	opts.Style = flagStyle

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func newKeysCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the stored API key",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set",
			Short: "Store the API key (prompted without echo)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return keysSet(app)
			},
		},
		&cobra.Command{
			Use:     "get",
			Aliases: []string{"list"},
			Short:   "Show the stored API key (masked)",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return keysGet(app)
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove the stored API key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return keysDelete(app)
			},
		},
	)

	return cmd
}

func keysSet(app *App) error {
	store, err := keys.NewStore()
	if err != nil {
		return err
	}

	key, err := readKey(app)
	if err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("no key entered")
	}

	if err := store.Set(key); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "API key stored in %s\n", store.Path())
	return nil
}

// readKey reads the key without echo when stdin is a terminal, falling
// back to a plain line read for pipes and tests.
func readKey(app *App) (string, error) {
	fmt.Fprint(app.Out, "Enter API key: ")

	if f, ok := app.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(app.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return string(raw), nil
	}

	var key string
	if _, err := fmt.Fscanln(app.In, &key); err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return key, nil
}

func keysGet(app *App) error {
	store, err := keys.NewStore()
	if err != nil {
		return err
	}

	key, err := store.Get()
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Fprintln(app.Out, "No API key stored")
		return nil
	}
	fmt.Fprintf(app.Out, "Stored key: %s\n", keys.MaskKey(key))
	return nil
}

func keysDelete(app *App) error {
	store, err := keys.NewStore()
	if err != nil {
		return err
	}

	if err := store.Delete(); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "API key deleted")
	return nil
}
