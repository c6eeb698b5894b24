// Package imagefile exports generated images to disk.
package imagefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manash/imgstudio/internal/security"
	"github.com/manash/imgstudio/pkg/models"
)

// Save writes the image's display bytes to path. An empty path derives a
// timestamped default name in the current directory.
func Save(img *models.GeneratedImage, path string) (string, error) {
	if img == nil || len(img.Display) == 0 {
		return "", models.ErrNoImageData
	}

	if path == "" {
		path = DefaultFilename(img)
	}
	if err := security.ValidateSavePath(path); err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, img.Display, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}

// DefaultFilename derives a name from the image's creation time and id,
// like image-20250601-120000-1a2b3c4d.png.
func DefaultFilename(img *models.GeneratedImage) string {
	timestamp := img.CreatedAt.Format("20060102-150405")
	return security.SanitizeFilename(
		fmt.Sprintf("image-%s-%s.%s", timestamp, shortID(img.ID), extension(img.MimeType)))
}

func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[len(id)-n:]
}

func extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}
