package imageprocessor

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pocockn/image-compare/logging"
	"github.com/pocockn/image-compare/signalhandler"

	"gocv.io/x/gocv"
)

var rawFormats = []string{".dng", ".raf", ".arw", ".nef", ".cr2", ".cr3", ".nrw", ".srf"}

// RawImageLoader handles RAW camera formats by converting through a
// temporary TIFF. The temp file is removed on every exit path and is
// registered with the signal handler so an interrupt cannot leak it.
type RawImageLoader struct {
	TempDir string
}

// NewRawImageLoader creates a new RawImageLoader with a temp directory
func NewRawImageLoader() *RawImageLoader {
	return &RawImageLoader{
		TempDir: os.TempDir(),
	}
}

func (l *RawImageLoader) CanLoad(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range rawFormats {
		if ext == format {
			return fileExists(path)
		}
	}
	return false
}

func (l *RawImageLoader) LoadImage(path string) (gocv.Mat, error) {
	// Create a unique temporary filename for the converted image
	tempFilename := filepath.Join(l.TempDir, fmt.Sprintf("imgcmp_raw_%d.tiff", time.Now().UnixNano()))
	signalhandler.RegisterScratchFile(tempFilename)
	defer func() {
		if err := os.Remove(tempFilename); err != nil && !os.IsNotExist(err) {
			logging.LogWarning("Failed to remove temp file %s: %v", tempFilename, err)
		}
		signalhandler.UnregisterScratchFile(tempFilename)
	}()

	// First try with dcraw
	if success, img := l.tryDcraw(path, tempFilename); success {
		return img, nil
	}

	// If dcraw fails, try extracting the embedded preview with exiftool
	if success, img := l.tryPreviewExtract(path, tempFilename); success {
		return img, nil
	}

	// If all else fails, attempt direct load (unlikely to work for most RAW formats)
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return img, fmt.Errorf("failed to load RAW image: %s (all conversion methods failed)", path)
	}

	return img, nil
}

func (l *RawImageLoader) tryDcraw(path string, tempFilename string) (bool, gocv.Mat) {
	// Convert RAW to TIFF using dcraw
	// -T = output TIFF
	// -c = output to stdout (we redirect to file)
	// -w = use camera white balance
	// -q 3 = use high-quality interpolation
	cmd := exec.Command("dcraw", "-T", "-c", "-w", "-q", "3", path)

	outFile, err := os.Create(tempFilename)
	if err != nil {
		logging.LogWarning("Failed to create temp file for dcraw conversion: %v", err)
		return false, gocv.NewMat()
	}
	defer outFile.Close()

	cmd.Stdout = outFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		logging.LogWarning("dcraw conversion failed: %v, stderr: %s", err, stderr.String())
		return false, gocv.NewMat()
	}

	// Load the converted TIFF
	img := gocv.IMRead(tempFilename, gocv.IMReadColor)
	if img.Empty() {
		return false, gocv.NewMat()
	}

	return true, img
}

func (l *RawImageLoader) tryPreviewExtract(path string, tempFilename string) (bool, gocv.Mat) {
	// Many RAW files carry a full-size JPEG preview that exiftool can extract
	cmd := exec.Command("exiftool", "-b", "-PreviewImage", path)

	outFile, err := os.Create(tempFilename)
	if err != nil {
		logging.LogWarning("Failed to create temp file for preview extraction: %v", err)
		return false, gocv.NewMat()
	}
	defer outFile.Close()

	cmd.Stdout = outFile
	if err := cmd.Run(); err != nil {
		logging.LogWarning("exiftool preview extraction failed: %v", err)
		return false, gocv.NewMat()
	}

	info, err := os.Stat(tempFilename)
	if err != nil || info.Size() == 0 {
		return false, gocv.NewMat()
	}

	img := gocv.IMRead(tempFilename, gocv.IMReadColor)
	if img.Empty() {
		return false, gocv.NewMat()
	}

	return true, img
}
