package imageprocessor

import (
	"fmt"
	"image"
	"image/color"

	"github.com/pocockn/image-compare/types"

	"gocv.io/x/gocv"
)

const highlightThickness = 2

// Highlight rectangles are drawn in red
var highlightColor = color.RGBA{R: 255, A: 255}

// RenderResult carries the outcome of the best-effort diff rendering step.
// The caller inspects Err and decides whether to surface or discard it.
type RenderResult struct {
	Regions      []types.Region
	ArtifactPath string
	Err          error
}

// RenderDiff binarizes the similarity map, boxes the differing regions on
// copies of both color images, and writes them side by side to outputPath.
// The input mats are not modified.
func RenderDiff(ssimMap, firstColor, secondColor gocv.Mat, outputPath string) RenderResult {
	regions, err := ExtractDiffRegions(ssimMap)
	if err != nil {
		return RenderResult{Err: err}
	}

	annotatedFirst := firstColor.Clone()
	defer annotatedFirst.Close()
	annotatedSecond := secondColor.Clone()
	defer annotatedSecond.Close()

	for _, region := range regions {
		drawHighlight(&annotatedFirst, region)
		drawHighlight(&annotatedSecond, region)
	}

	canvas := composeSideBySide(annotatedFirst, annotatedSecond)
	defer canvas.Close()

	if ok := gocv.IMWrite(outputPath, canvas); !ok {
		return RenderResult{Regions: regions, Err: fmt.Errorf("failed to write diff artifact: %s", outputPath)}
	}

	return RenderResult{Regions: regions, ArtifactPath: outputPath}
}

// ExtractDiffRegions rescales the similarity map to 8-bit, isolates the
// significantly different areas with an Otsu inverse-binary threshold, and
// returns the bounding box of each external contour.
func ExtractDiffRegions(ssimMap gocv.Mat) ([]types.Region, error) {
	if ssimMap.Empty() {
		return nil, fmt.Errorf("cannot extract regions from an empty dissimilarity map")
	}

	// Map [-1, 1] similarity values into [0, 255], saturating
	scaled := gocv.NewMat()
	defer scaled.Close()
	ssimMap.ConvertToWithParams(&scaled, gocv.MatTypeCV8U, 255, 0)

	binarized := gocv.NewMat()
	defer binarized.Close()
	gocv.Threshold(scaled, &binarized, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)

	contours := gocv.FindContours(binarized, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]types.Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		regions = append(regions, types.Region{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
		})
	}
	return regions, nil
}

func drawHighlight(img *gocv.Mat, region types.Region) {
	rect := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
	gocv.Rectangle(img, rect, highlightColor, highlightThickness)
}

// composeSideBySide concatenates the two images horizontally on a canvas of
// width w1+w2 and height max(h1, h2). Uncovered canvas area stays black.
// The caller owns the returned mat.
func composeSideBySide(first, second gocv.Mat) gocv.Mat {
	width := first.Cols() + second.Cols()
	height := max(first.Rows(), second.Rows())

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)

	left := canvas.Region(image.Rect(0, 0, first.Cols(), first.Rows()))
	first.CopyTo(&left)
	left.Close()

	right := canvas.Region(image.Rect(first.Cols(), 0, width, second.Rows()))
	second.CopyTo(&right)
	right.Close()

	return canvas
}
