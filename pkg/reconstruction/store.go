package reconstruction

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"fibertrack/internal/models"
)

// AttributeCount is the number of float32 values stored per particle:
// position (3), direction (3), capacity, length, predecessor and successor index.
const AttributeCount = 10

// Store owns the particles decoded from a raw tracker buffer
type Store struct {
	// particles are indexed by their ID
	particles []models.Particle

	// normalizedLinks counts links that pointed outside the store
	normalizedLinks int

	// consumed is set once a FiberBuilder has labelled the particles
	consumed bool
}

// NewStore decodes pointCount particles from buf.
//
// Each record holds AttributeCount scalars. Raw positions are divided by
// spacing and shifted by -0.5 so that they follow the voxel-center
// convention. Link values are truncated to integers; links that do not
// address a particle of the store are treated as missing.
//
// Returns ErrInvalidInput if pointCount is negative, buf holds fewer than
// pointCount*AttributeCount values or spacing is not positive and finite.
func NewStore(buf []float32, pointCount int, spacing [3]float64) (*Store, error) {
	if pointCount < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "negative point count %d", pointCount)
	}
	if len(buf)/AttributeCount < pointCount {
		return nil, errors.Wrapf(ErrInvalidInput, "buffer holds %d values, need %d for %d particles",
			len(buf), pointCount*AttributeCount, pointCount)
	}
	for axis, s := range spacing {
		if !(s > 0) || math.IsInf(s, 0) {
			return nil, errors.Wrapf(ErrInvalidInput, "spacing[%d] must be positive, got %v", axis, s)
		}
	}

	s := &Store{
		particles: make([]models.Particle, pointCount),
	}

	for k := 0; k < pointCount; k++ {
		rec := buf[k*AttributeCount : (k+1)*AttributeCount]
		p := &s.particles[k]

		p.Position = r3.Vec{
			X: float64(rec[0])/spacing[0] - 0.5,
			Y: float64(rec[1])/spacing[1] - 0.5,
			Z: float64(rec[2])/spacing[2] - 0.5,
		}
		p.Direction = r3.Vec{X: float64(rec[3]), Y: float64(rec[4]), Z: float64(rec[5])}
		p.Capacity = float64(rec[6])
		p.Length = float64(rec[7])
		p.MID = s.decodeLink(rec[8], pointCount)
		p.PID = s.decodeLink(rec[9], pointCount)
		p.ID = k
	}

	return s, nil
}

// decodeLink truncates a stored link toward zero and maps anything that is
// not an index into the store to models.NoLink.
func (s *Store) decodeLink(v float32, n int) int {
	f := math.Trunc(float64(v))
	if f == models.NoLink {
		return models.NoLink
	}
	if math.IsNaN(f) || f < 0 || f >= float64(n) {
		s.normalizedLinks++
		return models.NoLink
	}
	return int(f)
}

// Len returns the number of particles in the store
func (s *Store) Len() int {
	return len(s.particles)
}

// Particle returns a copy of the particle with the given ID
func (s *Store) Particle(id int) (models.Particle, bool) {
	if id < 0 || id >= len(s.particles) {
		return models.Particle{}, false
	}
	return s.particles[id], true
}

// Particles returns a copy of all particles in ID order
func (s *Store) Particles() []models.Particle {
	out := make([]models.Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// NormalizedLinks returns how many decoded links pointed outside the store
// and were replaced by models.NoLink.
func (s *Store) NormalizedLinks() int {
	return s.normalizedLinks
}
