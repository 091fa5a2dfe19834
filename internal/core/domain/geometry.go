// Package domain contains the core domain models for the reconstruction benchmark.
package domain

import "go.trai.ch/zerr"

// Geometry describes the size of a reconstruction problem.
// It is a value type: two geometries are the same problem iff all fields match.
type Geometry struct {
	Width          int `json:"width"`
	NumProjections int `json:"num_projections"`
	NumSlices      int `json:"num_slices"`
}

// NewGeometry validates the three problem-size parameters and returns a Geometry.
func NewGeometry(width, numProjections, numSlices int) (Geometry, error) {
	g := Geometry{
		Width:          width,
		NumProjections: numProjections,
		NumSlices:      numSlices,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate reports an ErrInvalidGeometry for any non-positive dimension.
func (g Geometry) Validate() error {
	for _, dim := range []struct {
		name  string
		value int
	}{
		{"width", g.Width},
		{"num_projections", g.NumProjections},
		{"num_slices", g.NumSlices},
	} {
		if dim.value <= 0 {
			return zerr.With(zerr.Wrap(ErrInvalidGeometry, dim.name+" must be positive"), dim.name, dim.value)
		}
	}
	return nil
}

// SinogramShape returns the [slices][width][projections] shape fed to the adjoint.
func (g Geometry) SinogramShape() Shape {
	return Shape{g.NumSlices, g.Width, g.NumProjections}
}

// VolumeShape returns the [slices][width][width] shape produced by the adjoint.
func (g Geometry) VolumeShape() Shape {
	return Shape{g.NumSlices, g.Width, g.Width}
}
