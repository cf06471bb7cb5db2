package imageprocessor

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Windowed SSIM constants for 8-bit imagery: an 11x11 Gaussian window with
// sigma 1.5, and stabilizers C1=(K1*L)^2, C2=(K2*L)^2 with K1=0.01, K2=0.03,
// L=255.
const (
	ssimWindowSize = 11
	ssimSigma      = 1.5
	ssimC1         = 6.5025
	ssimC2         = 58.5225
)

// ComputeSSIM computes the structural similarity index between two grayscale
// grids of identical dimensions. It returns the scalar score together with
// the full-resolution per-pixel similarity map; the caller owns the map and
// must Close it.
//
// The score is the mean of the map and is nominally in [0, 1], but the
// metric can go negative for pathological inputs, so callers must not assume
// a hard zero floor. Deterministic for identical inputs.
func ComputeSSIM(gray1, gray2 gocv.Mat) (float64, gocv.Mat, error) {
	if gray1.Empty() || gray2.Empty() {
		return 0, gocv.NewMat(), fmt.Errorf("cannot score an empty image")
	}
	if gray1.Cols() != gray2.Cols() || gray1.Rows() != gray2.Rows() {
		return 0, gocv.NewMat(), &DimensionMismatchError{
			FirstWidth:   gray1.Cols(),
			FirstHeight:  gray1.Rows(),
			SecondWidth:  gray2.Cols(),
			SecondHeight: gray2.Rows(),
		}
	}

	window := image.Pt(ssimWindowSize, ssimWindowSize)

	img1 := gocv.NewMat()
	defer img1.Close()
	img2 := gocv.NewMat()
	defer img2.Close()
	gray1.ConvertTo(&img1, gocv.MatTypeCV32F)
	gray2.ConvertTo(&img2, gocv.MatTypeCV32F)

	// Local means
	mu1 := gocv.NewMat()
	defer mu1.Close()
	mu2 := gocv.NewMat()
	defer mu2.Close()
	gocv.GaussianBlur(img1, &mu1, window, ssimSigma, ssimSigma, gocv.BorderDefault)
	gocv.GaussianBlur(img2, &mu2, window, ssimSigma, ssimSigma, gocv.BorderDefault)

	mu1Sq := gocv.NewMat()
	defer mu1Sq.Close()
	mu2Sq := gocv.NewMat()
	defer mu2Sq.Close()
	mu1Mu2 := gocv.NewMat()
	defer mu1Mu2.Close()
	gocv.Multiply(mu1, mu1, &mu1Sq)
	gocv.Multiply(mu2, mu2, &mu2Sq)
	gocv.Multiply(mu1, mu2, &mu1Mu2)

	// Local variances and covariance
	sigma1Sq := gocv.NewMat()
	defer sigma1Sq.Close()
	sigma2Sq := gocv.NewMat()
	defer sigma2Sq.Close()
	sigma12 := gocv.NewMat()
	defer sigma12.Close()

	img1Sq := gocv.NewMat()
	defer img1Sq.Close()
	img2Sq := gocv.NewMat()
	defer img2Sq.Close()
	img1Img2 := gocv.NewMat()
	defer img1Img2.Close()
	gocv.Multiply(img1, img1, &img1Sq)
	gocv.Multiply(img2, img2, &img2Sq)
	gocv.Multiply(img1, img2, &img1Img2)

	gocv.GaussianBlur(img1Sq, &sigma1Sq, window, ssimSigma, ssimSigma, gocv.BorderDefault)
	gocv.Subtract(sigma1Sq, mu1Sq, &sigma1Sq)
	gocv.GaussianBlur(img2Sq, &sigma2Sq, window, ssimSigma, ssimSigma, gocv.BorderDefault)
	gocv.Subtract(sigma2Sq, mu2Sq, &sigma2Sq)
	gocv.GaussianBlur(img1Img2, &sigma12, window, ssimSigma, ssimSigma, gocv.BorderDefault)
	gocv.Subtract(sigma12, mu1Mu2, &sigma12)

	// Numerator: (2*mu1*mu2 + C1) .* (2*sigma12 + C2)
	term1 := gocv.NewMat()
	defer term1.Close()
	gocv.Add(mu1Mu2, mu1Mu2, &term1)
	term1.AddFloat(ssimC1)

	term2 := gocv.NewMat()
	defer term2.Close()
	gocv.Add(sigma12, sigma12, &term2)
	term2.AddFloat(ssimC2)

	numerator := gocv.NewMat()
	defer numerator.Close()
	gocv.Multiply(term1, term2, &numerator)

	// Denominator: (mu1^2 + mu2^2 + C1) .* (sigma1^2 + sigma2^2 + C2)
	term3 := gocv.NewMat()
	defer term3.Close()
	gocv.Add(mu1Sq, mu2Sq, &term3)
	term3.AddFloat(ssimC1)

	term4 := gocv.NewMat()
	defer term4.Close()
	gocv.Add(sigma1Sq, sigma2Sq, &term4)
	term4.AddFloat(ssimC2)

	denominator := gocv.NewMat()
	defer denominator.Close()
	gocv.Multiply(term3, term4, &denominator)

	ssimMap := gocv.NewMat()
	gocv.Divide(numerator, denominator, &ssimMap)

	score := ssimMap.Mean().Val1
	return score, ssimMap, nil
}
