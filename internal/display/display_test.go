package display

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/manash/imgstudio/pkg/models"
)

func TestDisplayer_Show(t *testing.T) {
	var buf bytes.Buffer
	d := New(&buf)

	img := &models.GeneratedImage{Display: []byte("pixels")}
	if err := d.Show(img); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, escapeStart) {
		t.Errorf("output missing graphics escape prefix: %q", out)
	}
	if !strings.Contains(out, base64.StdEncoding.EncodeToString([]byte("pixels"))) {
		t.Error("output missing base64 payload")
	}
}

func TestDisplayer_ShowNoData(t *testing.T) {
	d := New(&bytes.Buffer{})
	if err := d.Show(nil); !errors.Is(err, models.ErrNoImageData) {
		t.Errorf("Show(nil) error = %v, want ErrNoImageData", err)
	}
	if err := d.Show(&models.GeneratedImage{}); !errors.Is(err, models.ErrNoImageData) {
		t.Errorf("Show(empty) error = %v, want ErrNoImageData", err)
	}
}

func TestKittyEncoder_Single(t *testing.T) {
	var buf bytes.Buffer
	enc := NewKittyEncoder(&buf)

	if err := enc.Encode([]byte("small")); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "a=T,f=100,q=2;") {
		t.Errorf("single-chunk output missing transmit params: %q", out)
	}
	if strings.Contains(out, "m=1") {
		t.Error("single-chunk output should not carry continuation flag")
	}
}

func TestKittyEncoder_Chunked(t *testing.T) {
	var buf bytes.Buffer
	enc := NewKittyEncoder(&buf)

	data := bytes.Repeat([]byte("x"), 2*chunkSize)
	if err := enc.Encode(data); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "a=T,f=100,q=2,m=1") {
		t.Error("chunked output missing leading chunk params")
	}
	if !strings.Contains(out, escapeStart+"m=0;") {
		t.Error("chunked output missing terminal chunk")
	}

	var payload strings.Builder
	for _, seq := range strings.Split(out, escapeEnd) {
		if i := strings.IndexByte(seq, ';'); i >= 0 {
			payload.WriteString(seq[i+1:])
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(payload.String())
	if err != nil {
		t.Fatalf("reassembled payload not valid base64: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("reassembled payload does not match input")
	}
}

func TestKittyEncoder_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewKittyEncoder(&buf).Encode(nil); err != nil {
		t.Fatalf("Encode(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Encode(nil) wrote %d bytes, want 0", buf.Len())
	}
}

func TestSplitIntoChunks(t *testing.T) {
	chunks := splitIntoChunks(strings.Repeat("a", 10), 4)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if chunks[2] != "aa" {
		t.Errorf("last chunk = %q, want aa", chunks[2])
	}
}

func TestTerminalSpeaksKitty(t *testing.T) {
	for _, v := range []string{"TERM_PROGRAM", "KITTY_WINDOW_ID", "ITERM_SESSION_ID", "TERM"} {
		t.Setenv(v, "")
	}

	if terminalSpeaksKitty() {
		t.Error("terminalSpeaksKitty() = true with empty environment")
	}

	t.Setenv("TERM", "xterm-kitty")
	if !terminalSpeaksKitty() {
		t.Error("terminalSpeaksKitty() = false with TERM=xterm-kitty")
	}

	t.Setenv("TERM", "dumb")
	t.Setenv("TERM_PROGRAM", "ghostty")
	if !terminalSpeaksKitty() {
		t.Error("terminalSpeaksKitty() = false with TERM_PROGRAM=ghostty")
	}
}
