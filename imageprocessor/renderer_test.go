package imageprocessor

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// dissimilarityMap builds a CV32F map that is 1.0 (identical) everywhere
// except inside rect, where it drops to low.
func dissimilarityMap(t *testing.T, rows, cols int, rect image.Rectangle, low float64) gocv.Mat {
	t.Helper()
	ssimMap := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(1.0, 0, 0, 0), rows, cols, gocv.MatTypeCV32F)
	t.Cleanup(func() { ssimMap.Close() })

	patch := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(low, 0, 0, 0), rect.Dy(), rect.Dx(), gocv.MatTypeCV32F)
	defer patch.Close()
	region := ssimMap.Region(rect)
	defer region.Close()
	patch.CopyTo(&region)

	return ssimMap
}

func TestExtractDiffRegions(t *testing.T) {
	target := image.Rect(20, 20, 30, 30)
	ssimMap := dissimilarityMap(t, 100, 100, target, 0)

	regions, err := ExtractDiffRegions(ssimMap)
	require.NoError(t, err)
	require.NotEmpty(t, regions)

	found := false
	for _, region := range regions {
		box := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
		if box.Overlaps(target) {
			found = true
		}
	}
	assert.True(t, found, "expected a region overlapping %v, got %v", target, regions)
}

func TestExtractDiffRegionsEmptyMap(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := ExtractDiffRegions(empty)
	assert.Error(t, err)
}

func TestRenderDiffWritesSideBySideArtifact(t *testing.T) {
	ssimMap := dissimilarityMap(t, 80, 120, image.Rect(10, 10, 20, 20), 0)

	first := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 80, 120, gocv.MatTypeCV8UC3)
	defer first.Close()
	second := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 255, 0, 0), 80, 120, gocv.MatTypeCV8UC3)
	defer second.Close()

	outputPath := filepath.Join(t.TempDir(), "diff.png")
	result := RenderDiff(ssimMap, first, second, outputPath)
	require.NoError(t, result.Err)
	assert.Equal(t, outputPath, result.ArtifactPath)
	assert.NotEmpty(t, result.Regions)

	artifact := gocv.IMRead(outputPath, gocv.IMReadColor)
	defer artifact.Close()
	require.False(t, artifact.Empty())
	assert.Equal(t, 240, artifact.Cols())
	assert.Equal(t, 80, artifact.Rows())
}

func TestRenderDiffDoesNotModifyInputs(t *testing.T) {
	ssimMap := dissimilarityMap(t, 60, 60, image.Rect(5, 5, 15, 15), 0)

	first := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 60, 60, gocv.MatTypeCV8UC3)
	defer first.Close()
	before := first.Clone()
	defer before.Close()
	second := first.Clone()
	defer second.Close()

	outputPath := filepath.Join(t.TempDir(), "diff.png")
	result := RenderDiff(ssimMap, first, second, outputPath)
	require.NoError(t, result.Err)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(first, before, &diff)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(diff, &gray, gocv.ColorBGRToGray)
	assert.Equal(t, 0, gocv.CountNonZero(gray))
}

func TestRenderDiffUnwritableDestination(t *testing.T) {
	ssimMap := dissimilarityMap(t, 40, 40, image.Rect(5, 5, 10, 10), 0)

	first := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 40, 40, gocv.MatTypeCV8UC3)
	defer first.Close()
	second := first.Clone()
	defer second.Close()

	outputPath := filepath.Join(t.TempDir(), "missing-dir", "diff.png")
	result := RenderDiff(ssimMap, first, second, outputPath)
	assert.Error(t, result.Err)
	assert.Empty(t, result.ArtifactPath)

	_, err := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err))
}

func TestComposeSideBySideUnevenHeights(t *testing.T) {
	first := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 255, 0), 100, 50, gocv.MatTypeCV8UC3)
	defer first.Close()
	second := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 60, 70, gocv.MatTypeCV8UC3)
	defer second.Close()

	canvas := composeSideBySide(first, second)
	defer canvas.Close()

	assert.Equal(t, 120, canvas.Cols())
	assert.Equal(t, 100, canvas.Rows())

	// Area below the shorter image stays background black
	assert.Equal(t, uint8(0), canvas.GetUCharAt(99, 110*canvas.Channels()))
}
