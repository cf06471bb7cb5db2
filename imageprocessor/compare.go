package imageprocessor

import (
	"database/sql"
	"fmt"

	"github.com/pocockn/image-compare/database"
	"github.com/pocockn/image-compare/logging"
	"github.com/pocockn/image-compare/types"
)

// DefaultDiffPath is where the diff artifact lands unless the caller
// overrides or disables it.
const DefaultDiffPath = "my-diff.png"

// CompareOptions defines the options for a single comparison
type CompareOptions struct {
	FirstPath  string
	SecondPath string

	// SSIMThreshold triggers diff rendering when the score falls strictly
	// below it. 1.0 means any imperfect match produces a diff.
	SSIMThreshold float64

	// SaveDiffTo is the artifact destination. Empty disables artifact output
	// even when the score is below threshold.
	SaveDiffTo string

	// DB, when set, records the comparison in the history database
	DB *sql.DB

	DebugMode bool
}

// Compare loads both images, scores their structural similarity, and writes
// an annotated side-by-side diff when the score falls below the threshold.
//
// Decode and dimension-mismatch failures are fatal and return an error with
// no score. Rendering failures are absorbed after logging: the diff is a
// best-effort artifact and the score is still returned.
func Compare(opts CompareOptions) (*types.ComparisonResult, error) {
	if opts.DebugMode {
		logging.DebugLog("Comparing %s against %s (threshold %.4f)",
			opts.FirstPath, opts.SecondPath, opts.SSIMThreshold)
		LogInputMetadata(opts.FirstPath, opts.SecondPath)
	}

	pair, err := LoadImagePair(opts.FirstPath, opts.SecondPath)
	if err != nil {
		return nil, err
	}
	defer pair.Close()

	score, ssimMap, err := ComputeSSIM(pair.FirstGray, pair.SecondGray)
	if err != nil {
		return nil, err
	}
	defer ssimMap.Close()

	fmt.Printf("SSIM: %.4f\n", score)

	result := &types.ComparisonResult{
		FirstPath:  opts.FirstPath,
		SecondPath: opts.SecondPath,
		Score:      score,
		Threshold:  opts.SSIMThreshold,
	}

	if score < opts.SSIMThreshold && opts.SaveDiffTo != "" {
		render := RenderDiff(ssimMap, pair.FirstColor, pair.SecondColor, opts.SaveDiffTo)
		result.Regions = render.Regions
		if render.Err != nil {
			// Best effort: the score is the product of the run, not the artifact
			logging.LogWarning("Diff artifact not written: %v", render.Err)
		} else {
			result.ArtifactPath = render.ArtifactPath
		}
	}

	logging.LogComparison(opts.FirstPath, opts.SecondPath, score, result.ArtifactPath)

	if opts.DB != nil {
		if err := database.RecordComparison(opts.DB, result); err != nil {
			logging.LogWarning("Failed to record comparison history: %v", err)
		}
	}

	return result, nil
}
