package bookcompiler

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
)

// placeholderHost marks generated avatar URLs that were stored as cover
// placeholders; they are never local files.
const placeholderHost = "pravatar"

type coverImage struct {
	Data   []byte
	Format string // "png", "jpeg" or "gif"
	Width  int
	Height int
}

// ResolveCover maps a stored cover path onto a file under baseDir. Stored
// paths look like "/uploads/abc.png"; the leading slash is dropped.
func ResolveCover(stored, baseDir string) (string, error) {
	stored = strings.TrimSpace(stored)
	if stored == "" || strings.Contains(stored, placeholderHost) {
		return "", ErrNoCover
	}
	rel := filepath.FromSlash(strings.TrimPrefix(stored, "/"))
	return filepath.Join(baseDir, rel), nil
}

func loadCover(stored, baseDir string) (*coverImage, error) {
	path, err := ResolveCover(stored, baseDir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cover %s: %w", path, err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cover %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("cover %s has no dimensions: %w", path, ErrNoCover)
	}
	return &coverImage{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// fit scales w×h down to fit inside maxW×maxH, keeping the aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
