// Package reconstruction turns the particle cloud of a global tractography
// run into continuous fibers.
//
// A FiberBuilder walks the predecessor and successor links of every
// unvisited particle, emits the particles of each connected chain as an
// ordered polyline and keeps the chains whose arc length reaches a minimum.
// Links recorded in the wrong direction are repaired one hop at a time
// while walking.
package reconstruction

import (
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"fibertrack/internal/models"
	"fibertrack/pkg/geometry"
)

// FiberBuilder reconstructs fibers from a particle store.
// It consumes the store's labels, so a store can be reconstructed once.
// A FiberBuilder is not safe for concurrent use.
type FiberBuilder struct {
	store *Store

	// particles is the store's backing slice, labelled in place
	particles []models.Particle

	// transform maps particle positions to physical points
	transform geometry.Transform

	logger *log.Logger

	// stack holds the upstream part of the chain during a predecessor walk
	stack []int

	// repairs counts swapped links over the whole run
	repairs int
}

// NewFiberBuilder creates a builder over store using transform for the
// index to physical mapping. A nil transform means the identity geometry.
func NewFiberBuilder(store *Store, transform geometry.Transform) *FiberBuilder {
	if transform == nil {
		transform = geometry.Identity()
	}
	return &FiberBuilder{
		store:     store,
		particles: store.particles,
		transform: transform,
		logger:    log.Default(),
	}
}

// SetLogger sets the logger used for debug output. A nil logger restores log.Default().
func (b *FiberBuilder) SetLogger(l *log.Logger) {
	if l == nil {
		l = log.Default()
	}
	b.logger = l
}

// Reconstruct labels every particle and returns the fibers whose arc length
// is at least minFiberLength.
//
// Chains are seeded in ascending particle ID order. Within a chain the
// deepest predecessor comes first, followed by the remaining predecessors
// back to the seed and then the successors outward. Points of discarded
// chains remain in the pool.
//
// Returns ErrAlreadyBuilt if any builder has already reconstructed the store.
func (b *FiberBuilder) Reconstruct(minFiberLength float64) (*PolyData, error) {
	if b.store.consumed {
		return nil, ErrAlreadyBuilt
	}
	b.store.consumed = true

	out := &PolyData{
		Points: make([]r3.Vec, 0, len(b.particles)),
	}
	label := 1
	discarded := 0

	for k := range b.particles {
		dp := &b.particles[k]
		if dp.Label != 0 {
			continue
		}

		dp.Label = label
		dp.Numerator = 0
		acc := newFiberAccumulator(out, b.transform)

		b.labelPredecessors(k, acc)
		b.labelSuccessors(k, acc)

		if acc.length >= minFiberLength {
			out.Fibers = append(out.Fibers, models.Fiber{
				PointIDs: acc.ids,
				Length:   acc.length,
				Label:    label,
			})
		} else {
			discarded++
		}
		label++
	}

	b.logger.Debug("reconstructed fibers",
		"particles", len(b.particles),
		"kept", len(out.Fibers),
		"discarded", discarded,
		"repairs", b.repairs,
		"orphaned", out.OrphanedPoints())

	return out, nil
}

// Repairs returns the number of links swapped during reconstruction
func (b *FiberBuilder) Repairs() int {
	return b.repairs
}

// labelPredecessors walks upstream from seed, claiming unlabelled
// predecessors, then emits the walked particles deepest first so that the
// seed is emitted last.
func (b *FiberBuilder) labelPredecessors(seed int, acc *fiberAccumulator) {
	stack := b.stack[:0]

	for cur := seed; ; {
		stack = append(stack, cur)
		dp := &b.particles[cur]
		if !dp.HasPredecessor() {
			break
		}

		pred := &b.particles[dp.MID]
		if repairPredecessorLink(dp, pred) {
			b.repairs++
		}
		if pred.Label != 0 {
			break
		}
		pred.Label = dp.Label
		pred.Numerator = dp.Numerator - 1
		cur = pred.ID
	}

	for i := len(stack) - 1; i >= 0; i-- {
		acc.addPoint(&b.particles[stack[i]])
	}
	b.stack = stack
}

// labelSuccessors emits seed and then walks downstream, emitting each
// newly claimed successor as it is reached.
func (b *FiberBuilder) labelSuccessors(seed int, acc *fiberAccumulator) {
	for cur := seed; ; {
		dp := &b.particles[cur]
		acc.addPoint(dp)
		if !dp.HasSuccessor() {
			return
		}

		succ := &b.particles[dp.PID]
		if repairSuccessorLink(dp, succ) {
			b.repairs++
		}
		if succ.Label != 0 {
			return
		}
		succ.Label = dp.Label
		succ.Numerator = dp.Numerator + 1
		cur = succ.ID
	}
}

// repairPredecessorLink swaps pred's links when pred records dp as its
// predecessor instead of its successor. It only looks at this one hop and
// reports whether a swap happened.
func repairPredecessorLink(dp, pred *models.Particle) bool {
	if pred.PID == dp.ID || pred.MID != dp.ID {
		return false
	}
	pred.MID, pred.PID = pred.PID, pred.MID
	return true
}

// repairSuccessorLink swaps succ's links when succ records dp as its
// successor instead of its predecessor.
func repairSuccessorLink(dp, succ *models.Particle) bool {
	if succ.MID == dp.ID || succ.PID != dp.ID {
		return false
	}
	succ.MID, succ.PID = succ.PID, succ.MID
	return true
}

// fiberAccumulator collects the points of the chain being walked
type fiberAccumulator struct {
	out       *PolyData
	transform geometry.Transform

	// ids are pool indices in emission order
	ids []int

	// length is the running arc length
	length float64

	// last is the previously emitted physical point
	last r3.Vec
}

func newFiberAccumulator(out *PolyData, transform geometry.Transform) *fiberAccumulator {
	return &fiberAccumulator{out: out, transform: transform}
}

// addPoint emits p once: it appends the physical point to the pool, records
// its index and extends the arc length from the previous point.
func (a *fiberAccumulator) addPoint(p *models.Particle) {
	if p.Inserted {
		return
	}
	p.Inserted = true

	point := a.transform.IndexToPhysical(p.Position)
	a.out.Points = append(a.out.Points, point)
	a.ids = append(a.ids, len(a.out.Points)-1)

	if len(a.ids) > 1 {
		a.length += r3.Norm(r3.Sub(point, a.last))
	}
	a.last = point
}

// Build is a convenience wrapper that decodes buf and reconstructs its fibers in one call.
func Build(buf []float32, pointCount int, spacing [3]float64, transform geometry.Transform, minFiberLength float64) (*PolyData, error) {
	store, err := NewStore(buf, pointCount, spacing)
	if err != nil {
		return nil, errors.Wrap(err, "decode particles")
	}
	return NewFiberBuilder(store, transform).Reconstruct(minFiberLength)
}
