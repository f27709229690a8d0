package bookforge

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for data that is not a jpeg, png or gif.
var ErrUnsupportedImage = errors.New("unsupported image type")

type ImageClient interface {
	ImageGenerate(prompt string, steps, width, height int, modelName string, progress Progressor) ([]byte, error)
}

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageExt sniffs data and returns the file extension for it.
func ImageExt(data []byte) (string, error) {
	ext, ok := imageExt[http.DetectContentType(data)]
	if !ok {
		return "", ErrUnsupportedImage
	}
	return ext, nil
}

// SaveImage writes data into dir under a fresh random name and returns
// that name.
func SaveImage(data []byte, dir string) (string, error) {
	ext, err := ImageExt(data)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return name, nil
}
