// Package geometry describes how a voxel grid sits in physical space.
// It maps continuous index coordinates to physical points the same way
// medical image containers do: physical = origin + D * diag(spacing) * index.
package geometry

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidGeometry is returned when spacing or direction cannot describe a grid
var ErrInvalidGeometry = errors.New("invalid image geometry")

// Transform maps a continuous index-space coordinate to a physical point
type Transform interface {
	IndexToPhysical(index r3.Vec) r3.Vec
}

// TransformFunc adapts a plain function to the Transform interface
type TransformFunc func(index r3.Vec) r3.Vec

// IndexToPhysical calls f(index)
func (f TransformFunc) IndexToPhysical(index r3.Vec) r3.Vec {
	return f(index)
}

// Geometry holds the placement of an image grid in physical space
type Geometry struct {
	// Origin is the physical position of the center of voxel (0,0,0)
	Origin r3.Vec

	// Spacing is the physical voxel size along each axis
	Spacing [3]float64

	// Direction is the 3x3 orientation matrix, columns are the grid axes
	Direction *mat.Dense

	// indexToPhysical caches Direction * diag(Spacing)
	indexToPhysical *mat.Dense
}

// New creates a geometry from its origin, voxel spacing and a row-major 3x3
// direction matrix. A nil direction means the identity orientation.
func New(origin r3.Vec, spacing [3]float64, direction []float64) (*Geometry, error) {
	for axis, s := range spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			return nil, errors.Wrapf(ErrInvalidGeometry, "spacing[%d] must be positive, got %v", axis, s)
		}
	}

	if direction == nil {
		direction = []float64{
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		}
	}
	if len(direction) != 9 {
		return nil, errors.Wrapf(ErrInvalidGeometry, "direction needs 9 values, got %d", len(direction))
	}

	dir := mat.NewDense(3, 3, append([]float64(nil), direction...))
	if det := mat.Det(dir); math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return nil, errors.Wrapf(ErrInvalidGeometry, "direction matrix is singular (det=%g)", det)
	}

	scale := mat.NewDiagDense(3, spacing[:])
	m := mat.NewDense(3, 3, nil)
	m.Mul(dir, scale)

	return &Geometry{
		Origin:          origin,
		Spacing:         spacing,
		Direction:       dir,
		indexToPhysical: m,
	}, nil
}

// Identity returns a geometry with zero origin, unit spacing and identity orientation
func Identity() *Geometry {
	g, err := New(r3.Vec{}, [3]float64{1, 1, 1}, nil)
	if err != nil {
		panic(err)
	}
	return g
}

// IndexToPhysical transforms a continuous index to a physical point
func (g *Geometry) IndexToPhysical(index r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(g.indexToPhysical, mat.NewVecDense(3, []float64{index.X, index.Y, index.Z}))
	return r3.Add(g.Origin, r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)})
}

// PhysicalToIndex is the inverse of IndexToPhysical
func (g *Geometry) PhysicalToIndex(point r3.Vec) (r3.Vec, error) {
	var inv mat.Dense
	if err := inv.Inverse(g.indexToPhysical); err != nil {
		return r3.Vec{}, errors.Wrap(ErrInvalidGeometry, err.Error())
	}
	d := r3.Sub(point, g.Origin)
	var out mat.VecDense
	out.MulVec(&inv, mat.NewVecDense(3, []float64{d.X, d.Y, d.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}, nil
}
