package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

// Shape is the extent of a three-dimensional array, outermost first.
type Shape [3]int

// Len returns the number of elements described by the shape.
func (s Shape) Len() int {
	return s[0] * s[1] * s[2]
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d][%d][%d]", s[0], s[1], s[2])
}

// Array3 is a dense row-major float32 array. Sinograms are [slices][width][projections],
// volumes are [slices][width][width].
type Array3 struct {
	Shape Shape
	Data  []float32
}

// NewArray3 allocates a zero-filled array of the given shape.
func NewArray3(shape Shape) *Array3 {
	return &Array3{
		Shape: shape,
		Data:  make([]float32, shape.Len()),
	}
}

// Index returns the flat offset of element (i, j, k).
func (a *Array3) Index(i, j, k int) int {
	return (i*a.Shape[1]+j)*a.Shape[2] + k
}

// At returns element (i, j, k).
func (a *Array3) At(i, j, k int) float32 {
	return a.Data[a.Index(i, j, k)]
}

// Set assigns element (i, j, k).
func (a *Array3) Set(i, j, k int, v float32) {
	a.Data[a.Index(i, j, k)] = v
}

// Slice returns the contiguous data of the i-th outermost plane.
func (a *Array3) Slice(i int) []float32 {
	n := a.Shape[1] * a.Shape[2]
	return a.Data[i*n : (i+1)*n]
}

// ExpectShape returns ErrShapeMismatch unless the array has exactly the given shape
// and a backing slice of matching length.
func (a *Array3) ExpectShape(want Shape) error {
	if a == nil {
		return zerr.With(zerr.Wrap(ErrShapeMismatch, "array is nil"), "want", want.String())
	}
	if a.Shape != want || len(a.Data) != want.Len() {
		return zerr.With(zerr.With(zerr.Wrap(ErrShapeMismatch, "unexpected array shape"),
			"want", want.String()), "got", a.Shape.String())
	}
	return nil
}
