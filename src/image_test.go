package bookforge

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeImages struct {
	prompt string
	data   []byte
}

func (f *fakeImages) ImageGenerate(prompt string, _, _, _ int, _ string, p Progressor) ([]byte, error) {
	f.prompt = prompt
	orNull(p).UpdateOutput("done")
	return f.data, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	name, err := SaveImage(pngBytes(t), dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("unexpected name %q", name)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if _, err := SaveImage([]byte("plain text"), dir); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestGenerateCoverDefaultPrompt(t *testing.T) {
	f := &fakeImages{data: []byte("img")}
	if _, err := GenerateCover(f, "", "Gardens", "A Guide", nil); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(f.prompt, `"Gardens"`) || !strings.Contains(f.prompt, "A Guide") {
		t.Fatalf("unexpected prompt %q", f.prompt)
	}
	if _, err := GenerateCover(f, "custom", "Gardens", "", nil); err != nil || f.prompt != "custom" {
		t.Fatalf("custom prompt not used: %q %v", f.prompt, err)
	}
}
