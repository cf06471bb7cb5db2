package imageprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocockn/image-compare/logging"

	"gocv.io/x/gocv"
)

// ImageLoader interface for loading different image formats
type ImageLoader interface {
	CanLoad(path string) bool
	LoadImage(path string) (gocv.Mat, error)
}

// DefaultImageLoader handles common formats supported by gocv directly
type DefaultImageLoader struct{}

func (l *DefaultImageLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	// Check extension and make sure file exists and is readable
	switch ext {
	case ".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".webp":
		return fileExists(path)
	}
	return false
}

func (l *DefaultImageLoader) LoadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return img, fmt.Errorf("failed to load image with default loader: %s", path)
	}
	return img, nil
}

// ImageLoaderRegistry manages available image loaders
type ImageLoaderRegistry struct {
	loaders []ImageLoader
}

// NewImageLoaderRegistry creates a registry with default loaders
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	return &ImageLoaderRegistry{
		loaders: []ImageLoader{
			&DefaultImageLoader{},
			NewRawImageLoader(),
			&FallbackImageLoader{},
		},
	}
}

// RegisterLoader adds a custom loader to the registry
func (r *ImageLoaderRegistry) RegisterLoader(loader ImageLoader) {
	r.loaders = append(r.loaders, loader)
}

// CanLoadFile checks if any registered loader can handle the given file
func (r *ImageLoaderRegistry) CanLoadFile(path string) bool {
	for _, loader := range r.loaders {
		if loader.CanLoad(path) {
			return true
		}
	}
	return false
}

// LoadImage tries each capable loader in turn until one succeeds
func (r *ImageLoaderRegistry) LoadImage(path string) (gocv.Mat, error) {
	var lastErr error
	for _, loader := range r.loaders {
		if !loader.CanLoad(path) {
			continue
		}
		img, err := loader.LoadImage(path)
		if err == nil {
			return img, nil
		}
		logging.LogWarning("Loader %T failed for %s: %v", loader, path, err)
		lastErr = err
	}
	if lastErr != nil {
		return gocv.NewMat(), lastErr
	}
	return gocv.NewMat(), fmt.Errorf("no suitable loader found for image: %s", path)
}

// LoadedPair holds the color images and their grayscale grids for one
// comparison. All four mats are valid by construction.
type LoadedPair struct {
	FirstColor  gocv.Mat
	SecondColor gocv.Mat
	FirstGray   gocv.Mat
	SecondGray  gocv.Mat
}

// Close releases all mats held by the pair
func (p *LoadedPair) Close() {
	p.FirstColor.Close()
	p.SecondColor.Close()
	p.FirstGray.Close()
	p.SecondGray.Close()
}

// LoadImagePair loads both inputs in color and derives a grayscale grid for
// each. On any failure every already-loaded mat is closed and no partial
// result is returned.
func LoadImagePair(firstPath, secondPath string) (*LoadedPair, error) {
	registry := NewImageLoaderRegistry()

	firstColor, err := registry.LoadImage(firstPath)
	if err != nil {
		firstColor.Close()
		return nil, &DecodeError{Path: firstPath, Err: err}
	}

	secondColor, err := registry.LoadImage(secondPath)
	if err != nil {
		firstColor.Close()
		secondColor.Close()
		return nil, &DecodeError{Path: secondPath, Err: err}
	}

	return &LoadedPair{
		FirstColor:  firstColor,
		SecondColor: secondColor,
		FirstGray:   toGrayscale(firstColor),
		SecondGray:  toGrayscale(secondColor),
	}, nil
}

// toGrayscale derives the single-channel intensity grid for an image
func toGrayscale(img gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if img.Channels() > 1 {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	} else {
		img.CopyTo(&gray)
	}
	return gray
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
