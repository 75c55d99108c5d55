package reconstruction

import (
	"gonum.org/v1/gonum/spatial/r3"

	"fibertrack/internal/models"
)

// PolyData is a polyline set: a shared pool of physical points and one
// point-index sequence per accepted fiber.
//
// Points of chains that were discarded for being too short stay in the pool
// without being referenced by any fiber, so pool indices never shift.
type PolyData struct {
	// Points is the append-only physical point pool
	Points []r3.Vec

	// Fibers are the accepted chains in seed order
	Fibers []models.Fiber
}

// NumFibers returns the number of accepted fibers
func (pd *PolyData) NumFibers() int {
	return len(pd.Fibers)
}

// FiberPoints resolves the point indices of fiber i against the pool
func (pd *PolyData) FiberPoints(i int) []r3.Vec {
	if i < 0 || i >= len(pd.Fibers) {
		return nil
	}
	ids := pd.Fibers[i].PointIDs
	pts := make([]r3.Vec, len(ids))
	for j, id := range ids {
		pts[j] = pd.Points[id]
	}
	return pts
}

// ReferencedPoints returns how many pool points belong to an accepted fiber
func (pd *PolyData) ReferencedPoints() int {
	n := 0
	for _, f := range pd.Fibers {
		n += len(f.PointIDs)
	}
	return n
}

// OrphanedPoints returns how many pool points belong to discarded chains
func (pd *PolyData) OrphanedPoints() int {
	return len(pd.Points) - pd.ReferencedPoints()
}

// TotalLength returns the summed arc length of all accepted fibers
func (pd *PolyData) TotalLength() float64 {
	total := 0.0
	for _, f := range pd.Fibers {
		total += f.Length
	}
	return total
}
