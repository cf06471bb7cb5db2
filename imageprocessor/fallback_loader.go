package imageprocessor

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"gocv.io/x/gocv"
)

// FallbackImageLoader decodes through the pure-Go image packages when the
// OpenCV build cannot read a file (e.g. codecs compiled out).
type FallbackImageLoader struct{}

func (l *FallbackImageLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".webp":
		return fileExists(path)
	}
	return false
}

func (l *FallbackImageLoader) LoadImage(path string) (gocv.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()

	decoded, format, err := image.Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	img, err := gocv.ImageToMatRGB(decoded)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert %s image %s to mat: %w", format, path, err)
	}
	return img, nil
}
