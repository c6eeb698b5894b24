package repl

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manash/imgstudio/internal/provider"
	"github.com/manash/imgstudio/internal/ratelimit"
	"github.com/manash/imgstudio/internal/store"
	"github.com/manash/imgstudio/internal/studio"
	"github.com/manash/imgstudio/pkg/models"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

type fakeClient struct {
	result   []byte
	err      error
	variants []string
}

func (f *fakeClient) CreateImage(ctx context.Context, prompt string, opts models.Options, source []byte) (*provider.ImageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.ImageResult{Bytes: f.result, MimeType: "image/png"}, nil
}

func (f *fakeClient) EditImage(ctx context.Context, source []byte, instruction string, opts models.Options) (*provider.ImageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &provider.ImageResult{Bytes: f.result, MimeType: "image/png"}, nil
}

func (f *fakeClient) SuggestVariants(ctx context.Context, prompt string) ([]string, error) {
	return f.variants, f.err
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 200, 150))
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0x40, 0x80, 0xc0, 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

type testREPL struct {
	repl *REPL
	out  *bytes.Buffer
	err  *bytes.Buffer
}

func newTestREPL(t *testing.T, client *fakeClient) *testREPL {
	t.Helper()

	st, err := store.NewWithPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.NewWithPath() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	limiter, err := ratelimit.New(context.Background(), st)
	if err != nil {
		t.Fatalf("ratelimit.New() error = %v", err)
	}

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	r := New(&Config{
		In:     strings.NewReader(""),
		Out:    out,
		Err:    errBuf,
		Studio: studio.New(&studio.Config{Client: client, Limiter: limiter}),
		Store:  st,
	})
	return &testREPL{repl: r, out: out, err: errBuf}
}

func (tr *testREPL) run(t *testing.T, line string) {
	t.Helper()
	if err := tr.repl.execute(context.Background(), line); err != nil {
		t.Fatalf("execute(%q) error = %v", line, err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"simple", "generate a cat", []string{"generate", "a", "cat"}},
		{"double quotes", `edit "make it blue"`, []string{"edit", "make it blue"}},
		{"single quotes", "edit 'add a hat'", []string{"edit", "add a hat"}},
		{"mixed quote inside", `edit "it's fine"`, []string{"edit", "it's fine"}},
		{"extra spaces", "undo   now", []string{"undo", "now"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCommand(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("parseCommand(%q) = %v, want %v", tt.line, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("part[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestREPL_UnknownCommand(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{})

	err := tr.repl.execute(context.Background(), "frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("execute(frobnicate) error = %v, want unknown command", err)
	}
}

func TestREPL_GenerateAndHistory(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "generate a quiet harbor at dawn")
	if !strings.Contains(tr.out.String(), "Created ") {
		t.Errorf("output missing creation notice: %q", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "history")
	if !strings.Contains(tr.out.String(), "a quiet harbor at dawn") {
		t.Errorf("history missing prompt: %q", tr.out.String())
	}
	if !strings.Contains(tr.out.String(), "> [1]") {
		t.Errorf("history missing current marker: %q", tr.out.String())
	}
}

func TestREPL_EditUndoRedo(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "generate a harbor")
	tr.run(t, `edit "add a boat"`)

	tr.out.Reset()
	tr.run(t, "undo")
	if !strings.Contains(tr.out.String(), "version 1 of 2") {
		t.Errorf("undo output = %q, want version 1 of 2", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "redo")
	if !strings.Contains(tr.out.String(), "version 2 of 2") {
		t.Errorf("redo output = %q, want version 2 of 2", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "undo")
	tr.run(t, "undo")
	if !strings.Contains(tr.out.String(), "Nothing to undo") {
		t.Errorf("second undo output = %q, want nothing-to-undo notice", tr.out.String())
	}
}

func TestREPL_JumpBounds(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})
	tr.run(t, "generate a harbor")

	if err := tr.repl.execute(context.Background(), "jump 5"); err == nil {
		t.Error("jump 5 with one version should fail")
	}
	if err := tr.repl.execute(context.Background(), "jump x"); err == nil {
		t.Error("jump x should fail")
	}
	tr.run(t, "jump 1")
}

func TestREPL_SelectBoxAndCrop(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})
	tr.run(t, "generate a harbor")

	tr.run(t, "select box 10 20 50 40")
	if !strings.Contains(tr.out.String(), "Selection set") {
		t.Errorf("output = %q, want selection confirmation", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "crop")
	if !strings.Contains(tr.out.String(), "Cropped") {
		t.Errorf("output = %q, want crop confirmation", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "select")
	if !strings.Contains(tr.out.String(), "No active selection") {
		t.Errorf("selection should be consumed by crop: %q", tr.out.String())
	}
}

func TestREPL_SelectBoxDegenerate(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	if err := tr.repl.execute(context.Background(), "select box 10 10 0.5 0.5"); err == nil {
		t.Error("degenerate selection box should be rejected")
	}
}

func TestREPL_AdjustFlow(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})
	tr.run(t, "generate a harbor")

	tr.run(t, "adjust brightness 150 sepia 40")
	if !strings.Contains(tr.out.String(), "staged") {
		t.Errorf("output = %q, want staging notice", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "adjust apply")
	if !strings.Contains(tr.out.String(), "Adjustments applied") {
		t.Errorf("output = %q, want apply confirmation", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "adjust")
	if !strings.Contains(tr.out.String(), "neutral") {
		t.Errorf("adjustments should be neutral after apply: %q", tr.out.String())
	}

	if err := tr.repl.execute(context.Background(), "adjust brightness 999"); err == nil {
		t.Error("out-of-range adjustment should be rejected")
	}
}

func TestREPL_RatioCustom(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "ratio 16:9")
	if !strings.Contains(tr.out.String(), "16:9") {
		t.Errorf("output = %q", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "ratio 2.5")
	if !strings.Contains(tr.out.String(), "custom 2.500") {
		t.Errorf("output = %q, want custom ratio confirmation", tr.out.String())
	}

	if err := tr.repl.execute(context.Background(), "ratio nonsense"); err == nil {
		t.Error("invalid ratio should be rejected")
	}
}

func TestREPL_PresetRoundTrip(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "ratio 16:9")
	tr.run(t, "style cinematic lighting")
	tr.run(t, "preset save wide-cinema")

	tr.run(t, "ratio 1:1")
	tr.run(t, "style none")

	tr.out.Reset()
	tr.run(t, "preset use wide-cinema")
	tr.run(t, "ratio")
	if !strings.Contains(tr.out.String(), "16:9") {
		t.Errorf("preset did not restore ratio: %q", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "preset list")
	if !strings.Contains(tr.out.String(), "wide-cinema") {
		t.Errorf("preset list = %q", tr.out.String())
	}

	tr.run(t, "preset delete wide-cinema")
	if err := tr.repl.execute(context.Background(), "preset use wide-cinema"); err == nil {
		t.Error("using a deleted preset should fail")
	}
}

func TestREPL_UsageReflectsCalls(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "usage")
	if !strings.Contains(tr.out.String(), "0 of 20") {
		t.Errorf("usage output = %q, want 0 of 20", tr.out.String())
	}

	tr.run(t, "generate a harbor")
	tr.out.Reset()
	tr.run(t, "usage")
	if !strings.Contains(tr.out.String(), "1 of 20") {
		t.Errorf("usage output = %q, want 1 of 20", tr.out.String())
	}
}

func TestREPL_GalleryAndLoad(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})

	tr.run(t, "generate first image")
	firstID := tr.repl.studio.Current().ID
	tr.run(t, `edit "change it"`)

	tr.out.Reset()
	tr.run(t, "gallery")
	if !strings.Contains(tr.out.String(), "first image") {
		t.Errorf("gallery output = %q", tr.out.String())
	}

	tr.out.Reset()
	tr.run(t, "load "+firstID)
	if !strings.Contains(tr.out.String(), "first image") {
		t.Errorf("load output = %q", tr.out.String())
	}
	if tr.repl.studio.History().Len() != 1 {
		t.Errorf("History().Len() = %d, want 1 after load", tr.repl.studio.History().Len())
	}
}

func TestREPL_SaveWritesFile(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{result: testPNG(t)})
	chdir(t, t.TempDir())

	tr.run(t, "generate a harbor")
	tr.out.Reset()
	tr.run(t, "save harbor.png")
	if !strings.Contains(tr.out.String(), "Saved: harbor.png") {
		t.Errorf("save output = %q", tr.out.String())
	}

	if err := tr.repl.execute(context.Background(), "save ../escape.png"); err == nil {
		t.Error("save with traversal path should fail")
	}
}

func TestREPL_RunQuits(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{})
	tr.repl.in = strings.NewReader("quit\ngenerate never runs\n")

	if err := tr.repl.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(tr.out.String(), "Goodbye!") {
		t.Errorf("output missing goodbye: %q", tr.out.String())
	}
}

func TestREPL_RunReportsErrors(t *testing.T) {
	tr := newTestREPL(t, &fakeClient{})
	tr.repl.in = strings.NewReader("edit nothing yet\nquit\n")

	if err := tr.repl.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(tr.err.String(), "Error:") {
		t.Errorf("stderr = %q, want error report", tr.err.String())
	}
}

func TestPresentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"rate limited",
			&studio.RateLimitedError{MinutesUntilReset: 12},
			"try again in 12 minute(s)",
		},
		{
			"auth",
			&provider.APIError{Kind: provider.KindAuth, Status: 401},
			"keys set",
		},
		{
			"quota",
			&provider.APIError{Kind: provider.KindQuota, Status: 429},
			"quota",
		},
		{
			"refusal with message",
			&provider.APIError{Kind: provider.KindContentRefusal, Message: "cannot depict that"},
			"cannot depict that",
		},
		{
			"timeout",
			&provider.APIError{Kind: provider.KindTimeout},
			"timed out",
		},
		{
			"transient",
			&provider.APIError{Kind: provider.KindTransient, Status: 500},
			"try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := presentError(tt.err); !strings.Contains(got, tt.want) {
				t.Errorf("presentError() = %q, want substring %q", got, tt.want)
			}
		})
	}
}
