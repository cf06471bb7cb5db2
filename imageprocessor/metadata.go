package imageprocessor

import (
	"github.com/barasher/go-exiftool"

	"github.com/pocockn/image-compare/logging"
)

// Metadata fields worth surfacing when debugging a comparison
var metadataFields = []string{"FileType", "ImageWidth", "ImageHeight", "BitsPerSample", "ColorComponents"}

// LogInputMetadata writes exiftool metadata for the given files to the debug
// log. Best effort: a missing exiftool binary only produces a warning.
func LogInputMetadata(paths ...string) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.LogWarning("exiftool unavailable, skipping input metadata: %v", err)
		return
	}
	defer et.Close()

	for _, fileInfo := range et.ExtractMetadata(paths...) {
		if fileInfo.Err != nil {
			logging.LogWarning("Failed to extract metadata for %s: %v", fileInfo.File, fileInfo.Err)
			continue
		}
		for _, field := range metadataFields {
			if value, err := fileInfo.GetString(field); err == nil {
				logging.DebugLog("Metadata %s: %s=%s", fileInfo.File, field, value)
			}
		}
	}
}
