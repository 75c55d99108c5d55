package models

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// NoLink marks a missing predecessor or successor link
const NoLink = -1

// Particle represents a single tracking sample with its neighbour links
type Particle struct {
	// Position is the continuous index-space coordinate of the sample
	Position r3.Vec

	// Direction is the local fiber orientation at this sample
	Direction r3.Vec

	// Capacity is passed through from the tracker unchanged
	Capacity float64

	// Length is the tracker's segment length, passed through unchanged
	Length float64

	// MID is the index of the predecessor particle or NoLink
	MID int

	// PID is the index of the successor particle or NoLink
	PID int

	// ID is the position of this particle in the store
	ID int

	// Label identifies the chain this particle belongs to, 0 while unvisited
	Label int

	// Numerator is the signed offset from the chain seed
	Numerator int

	// Inserted is set once the particle's point has been emitted
	Inserted bool
}

// HasPredecessor reports whether the particle links to another particle upstream.
// A link pointing back at the particle itself counts as no link.
func (p *Particle) HasPredecessor() bool {
	return p.MID != NoLink && p.MID != p.ID
}

// HasSuccessor reports whether the particle links to another particle downstream.
func (p *Particle) HasSuccessor() bool {
	return p.PID != NoLink && p.PID != p.ID
}

// Fiber represents one reconstructed chain of particles
type Fiber struct {
	// PointIDs are indices into the shared point pool, in chain order
	PointIDs []int

	// Length is the accumulated arc length in physical units
	Length float64

	// Label is the chain label assigned during reconstruction
	Label int
}

// NumPoints returns the number of points along the fiber
func (f Fiber) NumPoints() int {
	return len(f.PointIDs)
}
