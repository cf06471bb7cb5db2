package imageprocessor

import "fmt"

// DecodeError indicates an input path that is missing, unreadable, or not a
// decodable image. It aborts the whole comparison.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("failed to decode image %s", e.Path)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DimensionMismatchError indicates the two grayscale grids differ in size,
// so scoring cannot proceed.
type DimensionMismatchError struct {
	FirstWidth   int
	FirstHeight  int
	SecondWidth  int
	SecondHeight int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("image dimensions do not match: %dx%d vs %dx%d",
		e.FirstWidth, e.FirstHeight, e.SecondWidth, e.SecondHeight)
}
